package handlers

import (
	"encoding/json"
	"net/http"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/repository"
)

const defaultSevereLimit = 6

// GetDetectionsHandler returns the filtered, paginated detection list,
// newest first. Response is JSON of type dto.DetectionsData.
func GetDetectionsHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		filter := filterFromQuery(q)
		filter.Limit = limit
		filter.Offset = (page - 1) * limit

		detections, err := repo.GetAll(r.Context(), filter)
		if err != nil {
			logger.Error("Error querying detections: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := repo.GetTotalCount(r.Context(), filter)
		if err != nil {
			logger.Error("Error counting detections: %v", err)
			totalCount = len(detections)
		}

		data := dto.DetectionsData{
			Detections:  detections,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// GetFiltersHandler returns available labels and video sources for filtering.
func GetFiltersHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		labels, err := repo.GetLabels(r.Context())
		if err != nil {
			logger.Error("Failed to get labels: %v", err)
			labels = []string{}
		}

		sources, err := repo.GetSources(r.Context())
		if err != nil {
			logger.Error("Failed to get sources: %v", err)
			sources = []string{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dto.FilterOptions{Labels: labels, Sources: sources})
	}
}

// GetDetectionStatsHandler returns total/severe counts and average confidence
// for the current filters.
func GetDetectionStatsHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.GetStats(r.Context(), filterFromQuery(r.URL.Query()))
		if err != nil {
			logger.Error("Failed to get detection stats: %v", err)
			http.Error(w, "Failed to retrieve stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// GetTimelineHandler returns detection counts grouped by (source, date, label).
func GetTimelineHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buckets, err := repo.GetTimeline(r.Context(), filterFromQuery(r.URL.Query()))
		if err != nil {
			logger.Error("Failed to get timeline: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(buckets)
	}
}

// GetBreakdownHandler returns per-label detection counts for the class pie.
func GetBreakdownHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := repo.GetLabelCounts(r.Context(), filterFromQuery(r.URL.Query()))
		if err != nil {
			logger.Error("Failed to get label counts: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(counts)
	}
}

// GetConfidenceHandler returns the per-label confidence histogram.
func GetConfidenceHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := filterFromQuery(r.URL.Query())

		detections, err := repo.GetAll(r.Context(), filter)
		if err != nil {
			logger.Error("Failed to get detections for histogram: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(BuildConfidenceHistogram(detections, histogramBins))
	}
}

// GetSevereHandler returns the most recent severe crack detections with their
// snapshot references.
func GetSevereHandler(repo repository.DetectionRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := atoiDefault(q.Get("limit"), defaultSevereLimit)

		detections, err := repo.GetSevere(r.Context(), filterFromQuery(q), limit)
		if err != nil {
			logger.Error("Failed to get severe detections: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(detections)
	}
}
