package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bridgewatch/internal/models"
)

// ErrSnapshotNotFound is returned when a referenced snapshot image does not
// exist in the large-object store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DetectionRepository defines the interface for detection data operations.
type DetectionRepository interface {
	// Create operations
	Insert(ctx context.Context, det *models.Detection) (primitive.ObjectID, error)
	InsertBatch(ctx context.Context, detections []models.Detection) error

	// Read operations
	GetAll(ctx context.Context, filter *models.DetectionFilter) ([]models.Detection, error)
	GetTotalCount(ctx context.Context, filter *models.DetectionFilter) (int, error)
	GetStats(ctx context.Context, filter *models.DetectionFilter) (*models.DetectionStats, error)
	GetTimeline(ctx context.Context, filter *models.DetectionFilter) ([]models.TimelineBucket, error)
	GetLabelCounts(ctx context.Context, filter *models.DetectionFilter) ([]models.LabelCount, error)
	GetSevere(ctx context.Context, filter *models.DetectionFilter, limit int) ([]models.Detection, error)
	GetLabels(ctx context.Context) ([]string, error)
	GetSources(ctx context.Context) ([]string, error)
}

// AlertRepository defines the interface for sensor alert operations.
type AlertRepository interface {
	Insert(ctx context.Context, alert *models.Alert) error
	GetRecent(ctx context.Context, limit int) ([]models.Alert, error)
	GetStats(ctx context.Context) (*models.AlertStats, error)
	GetFrequency(ctx context.Context) ([]models.FrequencyBucket, error)
}

// SnapshotStore stores and retrieves snapshot images in the database's
// large-object mechanism.
type SnapshotStore interface {
	Put(filename string, data []byte) (primitive.ObjectID, error)
	Get(id primitive.ObjectID) ([]byte, error)
}
