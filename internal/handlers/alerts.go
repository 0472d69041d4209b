package handlers

import (
	"encoding/json"
	"net/http"

	"bridgewatch/internal/logger"
	"bridgewatch/internal/repository"
)

const defaultAlertLimit = 100

// GetAlertsHandler returns the most recent sensor alerts.
func GetAlertsHandler(repo repository.AlertRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDefault(r.URL.Query().Get("limit"), defaultAlertLimit)

		alerts, err := repo.GetRecent(r.Context(), limit)
		if err != nil {
			logger.Error("Error querying alerts: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(alerts); err != nil {
			logger.Error("Error encoding JSON response: %v", err)
		}
	}
}

// GetAlertStatsHandler returns the alert total and the latest alert info.
func GetAlertStatsHandler(repo repository.AlertRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := repo.GetStats(r.Context())
		if err != nil {
			logger.Error("Failed to get alert stats: %v", err)
			http.Error(w, "Failed to retrieve stats", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// GetAlertFrequencyHandler returns alert counts grouped by (date, type).
func GetAlertFrequencyHandler(repo repository.AlertRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buckets, err := repo.GetFrequency(r.Context())
		if err != nil {
			logger.Error("Failed to get alert frequency: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(buckets)
	}
}
