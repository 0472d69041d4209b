package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Labels produced by the crack detector. Free-form strings from the model,
// lowercased before storage.
const (
	LabelCrack       = "cracks"
	LabelSevereCrack = "severe crack"
)

// Detection represents a logged observation of a crack-like region.
type Detection struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Timestamp   time.Time           `bson:"timestamp" json:"timestamp"`
	Label       string              `bson:"label" json:"label"`
	Confidence  float64             `bson:"confidence" json:"confidence"`
	FrameID     int                 `bson:"frame_id" json:"frame_id"`
	VideoSource string              `bson:"video_source" json:"video_source"`
	ImageID     *primitive.ObjectID `bson:"image_id,omitempty" json:"image_id,omitempty"`
}

// DetectionFilter contains filtering options for querying detections.
// Empty label/source lists mean "all"; the date range is inclusive.
type DetectionFilter struct {
	Labels    []string
	Sources   []string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
	Offset    int
}

// DetectionStats summarizes detections matching a filter.
type DetectionStats struct {
	Total         int     `json:"total"`
	SevereCount   int     `json:"severe_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// TimelineBucket is a per-(source, date, label) detection count.
type TimelineBucket struct {
	VideoSource string `bson:"video_source" json:"video_source"`
	Date        string `bson:"date" json:"date"` // YYYY-MM-DD
	Label       string `bson:"label" json:"label"`
	Count       int    `bson:"count" json:"count"`
}

// LabelCount is a per-label detection count for the class breakdown chart.
type LabelCount struct {
	Label string `bson:"label" json:"label"`
	Count int    `bson:"count" json:"count"`
}
