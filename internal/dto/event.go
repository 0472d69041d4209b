package dto

import "bridgewatch/internal/models"

// Event is pushed to dashboard websocket clients when new data arrives,
// so the page can refresh between full reloads. Only the dashboard's own
// sensor listener produces events; the detector runs in a separate process
// and has no channel into this hub.
type Event struct {
	Kind  string        `json:"kind"` // "alert"
	Alert *models.Alert `json:"alert,omitempty"`
}
