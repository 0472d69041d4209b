package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert represents a logged sensor event (water level, vibration).
type Alert struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	AlertType string             `bson:"alert_type" json:"alert_type"`
	Value     float64            `bson:"value" json:"value"`
	DeviceID  string             `bson:"device_id" json:"device_id"`
}

// AlertStats summarizes the stored alerts.
type AlertStats struct {
	Total    int       `json:"total"`
	LastType string    `json:"last_type"`
	LastSeen time.Time `json:"last_seen"`
}

// FrequencyBucket is a per-(date, alert type) alert count.
type FrequencyBucket struct {
	Date      string `bson:"date" json:"date"` // YYYY-MM-DD
	AlertType string `bson:"alert_type" json:"alert_type"`
	Count     int    `bson:"count" json:"count"`
}

// CombinedBucket merges crack detections and sensor alerts into one
// per-(date, event type) timeline.
type CombinedBucket struct {
	Date      string `json:"date"`
	EventType string `json:"event_type"`
	Events    int    `json:"events"`
}
