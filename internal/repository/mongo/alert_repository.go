package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bridgewatch/internal/models"
)

// AlertRepository implements repository.AlertRepository for MongoDB.
type AlertRepository struct {
	coll *mongo.Collection
}

// NewAlertRepository creates a new MongoDB alert repository.
func NewAlertRepository(db *DB) *AlertRepository {
	return &AlertRepository{coll: db.Database().Collection(alertsCollection)}
}

// Insert adds a new alert record.
func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	if _, err := r.coll.InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetRecent returns the newest alerts, most recent first.
func (r *AlertRepository) GetRecent(ctx context.Context, limit int) ([]models.Alert, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}

// GetStats returns the total alert count and the type/time of the latest alert.
func (r *AlertRepository) GetStats(ctx context.Context) (*models.AlertStats, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}

	stats := &models.AlertStats{Total: int(count)}
	if count == 0 {
		return stats, nil
	}

	var last models.Alert
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&last); err != nil {
		return nil, fmt.Errorf("failed to get latest alert: %w", err)
	}
	stats.LastType = last.AlertType
	stats.LastSeen = last.Timestamp

	return stats, nil
}

// GetFrequency returns alert counts grouped by (date, alert type),
// sorted by date ascending.
func (r *AlertRepository) GetFrequency(ctx context.Context) ([]models.FrequencyBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"date":       bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp"}},
				"alert_type": "$alert_type",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"date":       "$_id.date",
			"alert_type": "$_id.alert_type",
			"count":      1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "alert_type", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate alert frequency: %w", err)
	}

	var buckets []models.FrequencyBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode alert frequency: %w", err)
	}
	return buckets, nil
}
