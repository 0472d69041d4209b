package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bridgewatch/internal/models"
)

// DetectionRepository implements repository.DetectionRepository for MongoDB.
type DetectionRepository struct {
	coll *mongo.Collection
}

// NewDetectionRepository creates a new MongoDB detection repository.
func NewDetectionRepository(db *DB) *DetectionRepository {
	return &DetectionRepository{coll: db.Database().Collection(detectionsCollection)}
}

// Insert adds a new detection record.
func (r *DetectionRepository) Insert(ctx context.Context, det *models.Detection) (primitive.ObjectID, error) {
	result, err := r.coll.InsertOne(ctx, det)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert detection: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

// InsertBatch adds multiple detection records in one call.
func (r *DetectionRepository) InsertBatch(ctx context.Context, detections []models.Detection) error {
	if len(detections) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(detections))
	for i := range detections {
		docs = append(docs, detections[i])
	}

	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert detections: %w", err)
	}
	return nil
}

// buildQuery translates a DetectionFilter into a MongoDB query document.
// Empty label/source lists match everything; the end date is inclusive.
func buildQuery(filter *models.DetectionFilter) bson.M {
	query := bson.M{}

	if len(filter.Labels) > 0 {
		query["label"] = bson.M{"$in": filter.Labels}
	}
	if len(filter.Sources) > 0 {
		query["video_source"] = bson.M{"$in": filter.Sources}
	}

	timeRange := bson.M{}
	if !filter.StartDate.IsZero() {
		timeRange["$gte"] = filter.StartDate
	}
	if !filter.EndDate.IsZero() {
		timeRange["$lt"] = filter.EndDate.AddDate(0, 0, 1)
	}
	if len(timeRange) > 0 {
		query["timestamp"] = timeRange
	}

	return query
}

// GetAll retrieves detections matching the filter, newest first.
func (r *DetectionRepository) GetAll(ctx context.Context, filter *models.DetectionFilter) ([]models.Detection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.coll.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}

	var detections []models.Detection
	if err := cursor.All(ctx, &detections); err != nil {
		return nil, fmt.Errorf("failed to decode detections: %w", err)
	}
	return detections, nil
}

// GetTotalCount returns the number of detections matching the filter.
func (r *DetectionRepository) GetTotalCount(ctx context.Context, filter *models.DetectionFilter) (int, error) {
	count, err := r.coll.CountDocuments(ctx, buildQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count detections: %w", err)
	}
	return int(count), nil
}

// GetStats returns total/severe counts and the average confidence for the filter.
func (r *DetectionRepository) GetStats(ctx context.Context, filter *models.DetectionFilter) (*models.DetectionStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"severe": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$label", models.LabelSevereCrack}}, 1, 0},
			}},
			"avg_confidence": bson.M{"$avg": "$confidence"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	var results []struct {
		Total         int      `bson:"total"`
		Severe        int      `bson:"severe"`
		AvgConfidence *float64 `bson:"avg_confidence"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}

	stats := &models.DetectionStats{}
	if len(results) > 0 {
		stats.Total = results[0].Total
		stats.SevereCount = results[0].Severe
		if results[0].AvgConfidence != nil {
			stats.AvgConfidence = *results[0].AvgConfidence
		}
	}
	return stats, nil
}

// GetTimeline returns detection counts grouped by (source, date, label),
// sorted by date ascending.
func (r *DetectionRepository) GetTimeline(ctx context.Context, filter *models.DetectionFilter) ([]models.TimelineBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"video_source": "$video_source",
				"date":         bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$timestamp"}},
				"label":        "$label",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"video_source": "$_id.video_source",
			"date":         "$_id.date",
			"label":        "$_id.label",
			"count":        1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "video_source", Value: 1}, {Key: "label", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate timeline: %w", err)
	}

	var buckets []models.TimelineBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode timeline: %w", err)
	}
	return buckets, nil
}

// GetLabelCounts returns the number of detections per label.
func (r *DetectionRepository) GetLabelCounts(ctx context.Context, filter *models.DetectionFilter) ([]models.LabelCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$label",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"label": "$_id",
			"count": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate label counts: %w", err)
	}

	var counts []models.LabelCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode label counts: %w", err)
	}
	return counts, nil
}

// GetSevere returns the most recent severe crack detections matching the filter.
func (r *DetectionRepository) GetSevere(ctx context.Context, filter *models.DetectionFilter, limit int) ([]models.Detection, error) {
	query := buildQuery(filter)
	query["label"] = models.LabelSevereCrack

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query severe detections: %w", err)
	}

	var detections []models.Detection
	if err := cursor.All(ctx, &detections); err != nil {
		return nil, fmt.Errorf("failed to decode severe detections: %w", err)
	}
	return detections, nil
}

// GetLabels returns the distinct detection labels.
func (r *DetectionRepository) GetLabels(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "label")
}

// GetSources returns the distinct video source names.
func (r *DetectionRepository) GetSources(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "video_source")
}

func (r *DetectionRepository) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct %s: %w", field, err)
	}

	var result []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result, nil
}
