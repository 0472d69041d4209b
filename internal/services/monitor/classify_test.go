package monitor

import (
	"testing"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		detections []dto.DetectionResult
		wantCrack  bool
		wantSevere bool
	}{
		{"no detections", nil, false, false},
		{"plain crack only", []dto.DetectionResult{
			{Label: models.LabelCrack},
		}, true, false},
		{"severe crack only", []dto.DetectionResult{
			{Label: models.LabelSevereCrack},
		}, false, true},
		{"both labels", []dto.DetectionResult{
			{Label: models.LabelCrack},
			{Label: models.LabelSevereCrack},
		}, true, true},
		{"unknown label ignored", []dto.DetectionResult{
			{Label: "pothole"},
		}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crack, severe := Classify(tt.detections)
			if crack != tt.wantCrack || severe != tt.wantSevere {
				t.Errorf("Classify() = (%v, %v), want (%v, %v)", crack, severe, tt.wantCrack, tt.wantSevere)
			}
		})
	}
}
