package handlers

import (
	"encoding/json"
	"net/http"

	"bridgewatch/internal/config"
)

// GetConfigHandler exposes the settings the dashboard page needs at runtime.
func GetConfigHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"refresh_interval": cfg.RefreshInterval,
			"device_id":        cfg.DeviceID,
			"sensor_topic":     cfg.MQTTTopicSensor,
		})
	}
}
