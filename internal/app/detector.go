package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bridgewatch/internal/config"
	"bridgewatch/internal/handlers"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
	"bridgewatch/internal/mqtt"
	mongorepo "bridgewatch/internal/repository/mongo"
	"bridgewatch/internal/services/ai"
	"bridgewatch/internal/services/capture"
	"bridgewatch/internal/services/monitor"
	"bridgewatch/internal/services/websocket"
)

// DetectorApp runs the live crack detection daemon: camera capture, inference,
// MQTT alerting and detection storage.
type DetectorApp struct {
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	db       *mongorepo.DB
	hub      *websocket.HubService
	pipeline *monitor.Pipeline
	source   *capture.Source
}

// NewDetectorApp wires the detector's dependencies. MQTT is optional; when
// the broker is unreachable detections are still stored, only alerts are
// skipped.
func NewDetectorApp() (*DetectorApp, error) {
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
	snapshots, err := mongorepo.NewSnapshotStore(db)
	if err != nil {
		return nil, fmt.Errorf("snapshot store init failed: %w", err)
	}

	var publisher *mqtt.CrackPublisher
	client, err := mqtt.NewClient(cfg, log, "bridgewatch-detector", nil)
	if err != nil {
		log.Warning("MQTT unavailable, crack alerts disabled: %v", err)
	} else {
		cooldown := time.Duration(cfg.PublishCooldown * float64(time.Second))
		publisher = mqtt.NewCrackPublisher(client, cfg.MQTTTopicCrack, cooldown, log, m)
	}

	detector := ai.NewDetectorService(cfg.ModelPath, cfg.ConfidenceThreshold, log)

	source, err := capture.Open(cfg.VideoSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open video source %q: %w", cfg.VideoSource, err)
	}

	hub := websocket.NewHubService(log, m)
	pipeline := monitor.NewPipeline(detector, detections, snapshots, publisher, hub,
		cfg.StoreInterval, cfg.ProcessingWorkers, log, m)

	return &DetectorApp{
		config:   cfg,
		logger:   log,
		metrics:  m,
		db:       db,
		hub:      hub,
		pipeline: pipeline,
		source:   source,
	}, nil
}

// Run processes the video source until it ends, serving metrics alongside.
func (a *DetectorApp) Run() error {
	go a.hub.Run()

	// Metrics and the live frame viewer share the side port.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		mux.HandleFunc("/view", handlers.EventsWebsocketHandler(a.hub, a.logger))

		addr := fmt.Sprintf(":%d", a.config.MetricsPort)
		a.logger.Info("Metrics and live view listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Metrics server stopped: %v", err)
		}
	}()

	a.logger.Info("Detector started on source %s", a.source.Name())
	return a.pipeline.Run(a.source)
}

// Close drains the pipeline and releases the camera and database.
func (a *DetectorApp) Close() {
	a.pipeline.Stop()
	a.source.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.db.Close(ctx); err != nil {
		a.logger.Error("Error closing database: %v", err)
	}
}
