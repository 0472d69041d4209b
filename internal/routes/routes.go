package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"bridgewatch/internal/config"
	"bridgewatch/internal/handlers"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
	"bridgewatch/internal/middleware"
	"bridgewatch/internal/repository"
	"bridgewatch/internal/services/websocket"
)

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/dashboard"
	}

	filePath := filepath.Join("static", path+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers HTTP routes, static file serving, API endpoints,
// and wraps the mux with the authentication middleware.
func SetupRoutes(
	detections repository.DetectionRepository,
	alerts repository.AlertRepository,
	snapshots repository.SnapshotStore,
	hub *websocket.HubService,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *logger.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Detection endpoints
	mux.HandleFunc("/api/detections", handlers.GetDetectionsHandler(detections, logger))
	mux.HandleFunc("/api/detections/filters", handlers.GetFiltersHandler(detections, logger))
	mux.HandleFunc("/api/detections/stats", handlers.GetDetectionStatsHandler(detections, logger))
	mux.HandleFunc("/api/detections/timeline", handlers.GetTimelineHandler(detections, logger))
	mux.HandleFunc("/api/detections/breakdown", handlers.GetBreakdownHandler(detections, logger))
	mux.HandleFunc("/api/detections/confidence", handlers.GetConfidenceHandler(detections, logger))
	mux.HandleFunc("/api/detections/severe", handlers.GetSevereHandler(detections, logger))
	mux.HandleFunc("/api/snapshots/view", handlers.ViewSnapshotHandler(snapshots, logger))

	// Sensor alert endpoints
	mux.HandleFunc("/api/alerts", handlers.GetAlertsHandler(alerts, logger))
	mux.HandleFunc("/api/alerts/stats", handlers.GetAlertStatsHandler(alerts, logger))
	mux.HandleFunc("/api/alerts/frequency", handlers.GetAlertFrequencyHandler(alerts, logger))
	mux.HandleFunc("/api/timeline/combined", handlers.GetCombinedTimelineHandler(detections, alerts, logger))

	// Live event stream and dashboard settings
	mux.HandleFunc("/api/events", handlers.EventsWebsocketHandler(hub, logger))
	mux.HandleFunc("/api/config", handlers.GetConfigHandler(cfg))
	mux.Handle("/metrics", m.Handler())

	// Log endpoints
	mux.HandleFunc("/logs/info", handlers.ShowInfoLogsHandler(cfg))
	mux.HandleFunc("/logs/warning", handlers.ShowWarningLogsHandler(cfg))
	mux.HandleFunc("/logs/error", handlers.ShowErrorLogsHandler(cfg))

	mux.HandleFunc("/logs/info/clear", handlers.ClearInfoLogsHandler(logger))
	mux.HandleFunc("/logs/warning/clear", handlers.ClearWarningLogsHandler(logger))
	mux.HandleFunc("/logs/error/clear", handlers.ClearErrorLogsHandler(logger))

	// Auth endpoints
	mux.HandleFunc("/auth/login", handlers.LoginHandler(cfg, logger))
	mux.HandleFunc("/auth/logout", handlers.LogoutHandler)

	// Automatic HTML handler mapping for example: /charts -> /static/charts.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	// Apply middleware
	return middleware.AuthMiddleware(mux)
}
