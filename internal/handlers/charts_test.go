package handlers

import (
	"math"
	"testing"

	"bridgewatch/internal/models"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildConfidenceHistogram(t *testing.T) {
	detections := []models.Detection{
		{Label: models.LabelCrack, Confidence: 0.61},
		{Label: models.LabelCrack, Confidence: 0.64},
		{Label: models.LabelCrack, Confidence: 0.91},
		{Label: models.LabelSevereCrack, Confidence: 0.75},
	}

	buckets := BuildConfidenceHistogram(detections, 20)

	if len(buckets) != 3 {
		t.Fatalf("Expected 3 non-empty buckets, got %d: %v", len(buckets), buckets)
	}

	// 0.61 and 0.64 share the [0.60, 0.65) bin.
	first := buckets[0]
	if first.Label != models.LabelCrack || first.Count != 2 {
		t.Errorf("Unexpected first bucket: %+v", first)
	}
	if !approxEqual(first.From, 0.60) || !approxEqual(first.To, 0.65) {
		t.Errorf("Expected bin [0.60, 0.65), got [%v, %v)", first.From, first.To)
	}
}

func TestBuildConfidenceHistogram_EdgeValues(t *testing.T) {
	detections := []models.Detection{
		{Label: models.LabelCrack, Confidence: 1.0},
		{Label: models.LabelCrack, Confidence: 0.0},
	}

	buckets := BuildConfidenceHistogram(detections, 20)

	if len(buckets) != 2 {
		t.Fatalf("Expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].From != 0 {
		t.Errorf("Confidence 0 should land in the first bin, got from=%v", buckets[0].From)
	}
	if !approxEqual(buckets[1].To, 1.0) {
		t.Errorf("Confidence 1 should land in the last bin, got to=%v", buckets[1].To)
	}
}

func TestBuildConfidenceHistogram_Empty(t *testing.T) {
	if got := BuildConfidenceHistogram(nil, 20); len(got) != 0 {
		t.Errorf("Expected no buckets for no detections, got %v", got)
	}
	if got := BuildConfidenceHistogram([]models.Detection{{Label: "x", Confidence: 0.5}}, 0); len(got) != 0 {
		t.Errorf("Expected no buckets for zero bins, got %v", got)
	}
}

func TestMergeTimelines(t *testing.T) {
	timeline := []models.TimelineBucket{
		{VideoSource: "bridge01", Date: "2026-01-02", Label: models.LabelCrack, Count: 3},
		{VideoSource: "bridge02", Date: "2026-01-02", Label: models.LabelCrack, Count: 2},
		{VideoSource: "bridge01", Date: "2026-01-01", Label: models.LabelSevereCrack, Count: 1},
	}
	frequency := []models.FrequencyBucket{
		{Date: "2026-01-01", AlertType: "WATER", Count: 5},
		{Date: "2026-01-02", AlertType: "VIBRATION", Count: 2},
	}

	combined := MergeTimelines(timeline, frequency)

	if len(combined) != 4 {
		t.Fatalf("Expected 4 combined buckets, got %d: %v", len(combined), combined)
	}

	// Sorted by date, then event type.
	if combined[0].Date != "2026-01-01" || combined[0].EventType != "WATER" {
		t.Errorf("Unexpected first bucket: %+v", combined[0])
	}

	// Same (date, label) from two sources is folded into one bucket.
	for _, b := range combined {
		if b.Date == "2026-01-02" && b.EventType == models.LabelCrack && b.Events != 5 {
			t.Errorf("Expected 5 crack events on 2026-01-02, got %d", b.Events)
		}
	}
}

func TestMergeTimelines_Empty(t *testing.T) {
	if got := MergeTimelines(nil, nil); len(got) != 0 {
		t.Errorf("Expected no buckets, got %v", got)
	}
}
