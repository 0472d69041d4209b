package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/models"
	"bridgewatch/internal/repository"
)

// fakeDetectionRepo is an in-memory DetectionRepository for handler tests.
type fakeDetectionRepo struct {
	detections []models.Detection
	lastFilter *models.DetectionFilter
	err        error
}

func (f *fakeDetectionRepo) Insert(ctx context.Context, det *models.Detection) (primitive.ObjectID, error) {
	f.detections = append(f.detections, *det)
	return primitive.NewObjectID(), f.err
}

func (f *fakeDetectionRepo) InsertBatch(ctx context.Context, detections []models.Detection) error {
	f.detections = append(f.detections, detections...)
	return f.err
}

func (f *fakeDetectionRepo) GetAll(ctx context.Context, filter *models.DetectionFilter) ([]models.Detection, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}

	result := f.detections
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (f *fakeDetectionRepo) GetTotalCount(ctx context.Context, filter *models.DetectionFilter) (int, error) {
	return len(f.detections), f.err
}

func (f *fakeDetectionRepo) GetStats(ctx context.Context, filter *models.DetectionFilter) (*models.DetectionStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	stats := &models.DetectionStats{Total: len(f.detections)}
	for _, d := range f.detections {
		if d.Label == models.LabelSevereCrack {
			stats.SevereCount++
		}
	}
	return stats, nil
}

func (f *fakeDetectionRepo) GetTimeline(ctx context.Context, filter *models.DetectionFilter) ([]models.TimelineBucket, error) {
	return nil, f.err
}

func (f *fakeDetectionRepo) GetLabelCounts(ctx context.Context, filter *models.DetectionFilter) ([]models.LabelCount, error) {
	return nil, f.err
}

func (f *fakeDetectionRepo) GetSevere(ctx context.Context, filter *models.DetectionFilter, limit int) ([]models.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	var severe []models.Detection
	for _, d := range f.detections {
		if d.Label == models.LabelSevereCrack {
			severe = append(severe, d)
		}
		if len(severe) == limit {
			break
		}
	}
	return severe, nil
}

func (f *fakeDetectionRepo) GetLabels(ctx context.Context) ([]string, error) {
	return []string{models.LabelCrack, models.LabelSevereCrack}, f.err
}

func (f *fakeDetectionRepo) GetSources(ctx context.Context) ([]string, error) {
	return []string{"bridge01"}, f.err
}

// fakeAlertRepo is an in-memory AlertRepository for handler tests.
type fakeAlertRepo struct {
	alerts []models.Alert
	err    error
}

func (f *fakeAlertRepo) Insert(ctx context.Context, alert *models.Alert) error {
	f.alerts = append(f.alerts, *alert)
	return f.err
}

func (f *fakeAlertRepo) GetRecent(ctx context.Context, limit int) ([]models.Alert, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.alerts) {
		return f.alerts[:limit], nil
	}
	return f.alerts, nil
}

func (f *fakeAlertRepo) GetStats(ctx context.Context) (*models.AlertStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AlertStats{Total: len(f.alerts)}, nil
}

func (f *fakeAlertRepo) GetFrequency(ctx context.Context) ([]models.FrequencyBucket, error) {
	return nil, f.err
}

// fakeSnapshotStore keeps images in a map.
type fakeSnapshotStore struct {
	images map[primitive.ObjectID][]byte
}

func (f *fakeSnapshotStore) Put(filename string, data []byte) (primitive.ObjectID, error) {
	if f.images == nil {
		f.images = make(map[primitive.ObjectID][]byte)
	}
	id := primitive.NewObjectID()
	f.images[id] = data
	return id, nil
}

func (f *fakeSnapshotStore) Get(id primitive.ObjectID) ([]byte, error) {
	data, ok := f.images[id]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	return data, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(t.TempDir())
}

func makeDetections(n int, label string) []models.Detection {
	detections := make([]models.Detection, 0, n)
	for i := 0; i < n; i++ {
		detections = append(detections, models.Detection{
			ID:          primitive.NewObjectID(),
			Timestamp:   time.Now().UTC(),
			Label:       label,
			Confidence:  0.7,
			FrameID:     i,
			VideoSource: "bridge01",
		})
	}
	return detections
}

func TestGetDetectionsHandler_Pagination(t *testing.T) {
	repo := &fakeDetectionRepo{detections: makeDetections(30, models.LabelCrack)}
	handler := GetDetectionsHandler(repo, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/detections?page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var data dto.DetectionsData
	if err := json.NewDecoder(rec.Body).Decode(&data); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(data.Detections) != 10 {
		t.Errorf("Expected 10 detections on page 2, got %d", len(data.Detections))
	}
	if data.Length != 30 {
		t.Errorf("Expected total length 30, got %d", data.Length)
	}
	if data.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", data.TotalPages)
	}
	if data.CurrentPage != 2 {
		t.Errorf("Expected current page 2, got %d", data.CurrentPage)
	}

	if repo.lastFilter.Offset != 10 {
		t.Errorf("Expected offset 10 for page 2, got %d", repo.lastFilter.Offset)
	}
}

func TestGetDetectionsHandler_FilterPassing(t *testing.T) {
	repo := &fakeDetectionRepo{}
	handler := GetDetectionsHandler(repo, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/detections?label=severe+crack&source=bridge01", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if len(repo.lastFilter.Labels) != 1 || repo.lastFilter.Labels[0] != models.LabelSevereCrack {
		t.Errorf("Expected severe crack label filter, got %v", repo.lastFilter.Labels)
	}
	if len(repo.lastFilter.Sources) != 1 || repo.lastFilter.Sources[0] != "bridge01" {
		t.Errorf("Expected bridge01 source filter, got %v", repo.lastFilter.Sources)
	}
}

func TestGetDetectionStatsHandler(t *testing.T) {
	repo := &fakeDetectionRepo{detections: append(
		makeDetections(3, models.LabelCrack),
		makeDetections(2, models.LabelSevereCrack)...,
	)}
	handler := GetDetectionStatsHandler(repo, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/detections/stats", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var stats models.DetectionStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.Total != 5 || stats.SevereCount != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestGetSevereHandler_DefaultLimit(t *testing.T) {
	repo := &fakeDetectionRepo{detections: makeDetections(10, models.LabelSevereCrack)}
	handler := GetSevereHandler(repo, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/detections/severe", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var detections []models.Detection
	if err := json.NewDecoder(rec.Body).Decode(&detections); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(detections) != defaultSevereLimit {
		t.Errorf("Expected %d severe detections, got %d", defaultSevereLimit, len(detections))
	}
}

func TestGetFiltersHandler(t *testing.T) {
	handler := GetFiltersHandler(&fakeDetectionRepo{}, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/detections/filters", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var options dto.FilterOptions
	if err := json.NewDecoder(rec.Body).Decode(&options); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(options.Labels) != 2 || len(options.Sources) != 1 {
		t.Errorf("Unexpected filter options: %+v", options)
	}
}

func TestGetAlertsHandler_DefaultLimit(t *testing.T) {
	repo := &fakeAlertRepo{}
	for i := 0; i < 150; i++ {
		repo.alerts = append(repo.alerts, models.Alert{
			Timestamp: time.Now().UTC(),
			AlertType: "WATER",
			Value:     float64(i),
			DeviceID:  "esp32-mainboard-01",
		})
	}
	handler := GetAlertsHandler(repo, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	var alerts []models.Alert
	if err := json.NewDecoder(rec.Body).Decode(&alerts); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(alerts) != defaultAlertLimit {
		t.Errorf("Expected %d alerts, got %d", defaultAlertLimit, len(alerts))
	}
}

func TestViewSnapshotHandler(t *testing.T) {
	store := &fakeSnapshotStore{}
	id, _ := store.Put("severe_crack_test.jpg", []byte("jpeg-bytes"))
	handler := ViewSnapshotHandler(store, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/snapshots/view?id="+id.Hex(), nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Expected image/jpeg content type, got %s", ct)
	}
	if rec.Body.String() != "jpeg-bytes" {
		t.Errorf("Unexpected body: %q", rec.Body.String())
	}
}

func TestViewSnapshotHandler_Errors(t *testing.T) {
	handler := ViewSnapshotHandler(&fakeSnapshotStore{}, testLogger(t))

	tests := []struct {
		name     string
		url      string
		expected int
	}{
		{"missing id", "/api/snapshots/view", http.StatusBadRequest},
		{"invalid id", "/api/snapshots/view?id=not-hex", http.StatusBadRequest},
		{"unknown id", "/api/snapshots/view?id=" + primitive.NewObjectID().Hex(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestGetCombinedTimelineHandler(t *testing.T) {
	handler := GetCombinedTimelineHandler(&fakeDetectionRepo{}, &fakeAlertRepo{}, testLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/timeline/combined", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
}
