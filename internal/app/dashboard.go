package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bridgewatch/internal/config"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
	"bridgewatch/internal/mqtt"
	mongorepo "bridgewatch/internal/repository/mongo"
	"bridgewatch/internal/routes"
	"bridgewatch/internal/services/websocket"
)

// DashboardApp hosts the web dashboard and the MQTT sensor listener.
type DashboardApp struct {
	config     *config.Config
	logger     *logger.Logger
	metrics    *metrics.Metrics
	db         *mongorepo.DB
	hubService *websocket.HubService
	router     http.Handler
}

// NewDashboardApp wires the dashboard's dependencies. The MQTT listener is
// optional: when the broker is unreachable the dashboard still serves stored
// data.
func NewDashboardApp() (*DashboardApp, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogDirectory)
	m := metrics.New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := mongorepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	detections := mongorepo.NewDetectionRepository(db)
	alerts := mongorepo.NewAlertRepository(db)
	snapshots, err := mongorepo.NewSnapshotStore(db)
	if err != nil {
		return nil, fmt.Errorf("snapshot store init failed: %w", err)
	}

	hub := websocket.NewHubService(log, m)

	// The listener subscribes from the client's on-connect hook so the
	// subscription is re-established after every reconnect.
	listener := mqtt.NewSensorListener(cfg.MQTTTopicSensor, cfg.DeviceID, alerts, hub, log, m)
	if _, err := mqtt.NewClient(cfg, log, "bridgewatch-dashboard", listener.Subscribe); err != nil {
		log.Warning("MQTT unavailable, sensor alerts disabled: %v", err)
	}

	return &DashboardApp{
		config:     cfg,
		logger:     log,
		metrics:    m,
		db:         db,
		hubService: hub,
		router:     routes.SetupRoutes(detections, alerts, snapshots, hub, m, cfg, log),
	}, nil
}

// Run starts the background services and blocks on the HTTP server.
func (a *DashboardApp) Run() error {
	go a.hubService.Run()

	a.logger.Info("Bridge monitoring dashboard on http://localhost:%d", a.config.Port)
	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.Port), a.router)
}

// Close releases the database connection.
func (a *DashboardApp) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.Close(ctx); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
}
