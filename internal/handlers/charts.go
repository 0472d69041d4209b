package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/models"
	"bridgewatch/internal/repository"
)

// histogramBins is the number of confidence bins, matching the dashboard chart.
const histogramBins = 20

// BuildConfidenceHistogram bins detection confidences into per-label buckets
// over [0, 1). Values at or above 1 land in the last bin.
func BuildConfidenceHistogram(detections []models.Detection, bins int) []dto.ConfidenceBucket {
	if bins <= 0 || len(detections) == 0 {
		return []dto.ConfidenceBucket{}
	}

	width := 1.0 / float64(bins)
	counts := make(map[string][]int)

	for _, d := range detections {
		if _, ok := counts[d.Label]; !ok {
			counts[d.Label] = make([]int, bins)
		}

		bin := int(d.Confidence / width)
		if bin < 0 {
			bin = 0
		}
		if bin >= bins {
			bin = bins - 1
		}
		counts[d.Label][bin]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var buckets []dto.ConfidenceBucket
	for _, label := range labels {
		for i, count := range counts[label] {
			if count == 0 {
				continue
			}
			buckets = append(buckets, dto.ConfidenceBucket{
				Label: label,
				From:  float64(i) * width,
				To:    float64(i+1) * width,
				Count: count,
			})
		}
	}
	return buckets
}

// MergeTimelines folds crack detection buckets and alert frequency buckets
// into one per-(date, event type) series, sorted by date then event type.
func MergeTimelines(timeline []models.TimelineBucket, frequency []models.FrequencyBucket) []models.CombinedBucket {
	type key struct {
		date      string
		eventType string
	}

	merged := make(map[key]int)
	for _, b := range timeline {
		merged[key{b.Date, b.Label}] += b.Count
	}
	for _, b := range frequency {
		merged[key{b.Date, b.AlertType}] += b.Count
	}

	combined := make([]models.CombinedBucket, 0, len(merged))
	for k, count := range merged {
		combined = append(combined, models.CombinedBucket{
			Date:      k.date,
			EventType: k.eventType,
			Events:    count,
		})
	}

	sort.Slice(combined, func(i, j int) bool {
		if combined[i].Date != combined[j].Date {
			return combined[i].Date < combined[j].Date
		}
		return combined[i].EventType < combined[j].EventType
	})
	return combined
}

// GetCombinedTimelineHandler returns the merged crack and sensor alert
// timeline.
func GetCombinedTimelineHandler(detections repository.DetectionRepository, alerts repository.AlertRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeline, err := detections.GetTimeline(r.Context(), filterFromQuery(r.URL.Query()))
		if err != nil {
			logger.Error("Failed to get detection timeline: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		frequency, err := alerts.GetFrequency(r.Context())
		if err != nil {
			logger.Error("Failed to get alert frequency: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(MergeTimelines(timeline, frequency))
	}
}
