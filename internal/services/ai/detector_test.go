package ai

import (
	"testing"

	"bridgewatch/internal/models"
)

func TestDecodeRows_ThresholdAndScaling(t *testing.T) {
	rows := [][]float32{
		// cx, cy, w, h, cracks score, severe score
		{320, 320, 64, 64, 0.75, 0.1}, // kept, cracks
		{100, 100, 32, 32, 0.2, 0.85}, // kept, severe crack
		{200, 200, 16, 16, 0.5, 0.3},  // below threshold
	}

	// Frame twice the model input size on both axes.
	results := DecodeRows(rows, 1280, 1280, 0.6)

	if len(results) != 2 {
		t.Fatalf("Expected 2 detections, got %d: %v", len(results), results)
	}

	first := results[0]
	if first.Label != models.LabelCrack {
		t.Errorf("Expected label %q, got %q", models.LabelCrack, first.Label)
	}
	if first.Confidence != 0.75 {
		t.Errorf("Expected confidence 0.75, got %v", first.Confidence)
	}
	// (320 - 32) * 2 = 576, 64 * 2 = 128
	if first.X != 576 || first.Y != 576 || first.Width != 128 || first.Height != 128 {
		t.Errorf("Unexpected box: %+v", first)
	}

	if results[1].Label != models.LabelSevereCrack {
		t.Errorf("Expected label %q, got %q", models.LabelSevereCrack, results[1].Label)
	}
}

func TestDecodeRows_ExactThresholdExcluded(t *testing.T) {
	rows := [][]float32{
		{320, 320, 64, 64, 0.5, 0.1},
	}

	if results := DecodeRows(rows, 640, 640, 0.5); len(results) != 0 {
		t.Errorf("Score equal to threshold should be dropped, got %v", results)
	}
}

func TestDecodeRows_MalformedRows(t *testing.T) {
	rows := [][]float32{
		{1, 2, 3}, // too short
		nil,
		{},
	}

	if results := DecodeRows(rows, 640, 640, 0.6); len(results) != 0 {
		t.Errorf("Malformed rows should produce no detections, got %v", results)
	}
}

func TestDecodeRows_Empty(t *testing.T) {
	if results := DecodeRows(nil, 640, 640, 0.6); len(results) != 0 {
		t.Errorf("Expected no detections, got %v", results)
	}
}
