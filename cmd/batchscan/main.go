package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"bridgewatch/internal/config"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
	mongorepo "bridgewatch/internal/repository/mongo"
	"bridgewatch/internal/services/ai"
	"bridgewatch/internal/services/capture"
	"bridgewatch/internal/services/monitor"
)

// batchscan runs the crack detector over a recorded video once and exits,
// storing detections and severe snapshots without MQTT or live streaming.
func main() {
	video := flag.String("video", "", "Video file to scan (defaults to VIDEO_SOURCE)")
	flag.Parse()

	cfg := config.Load()
	if *video != "" {
		cfg.VideoSource = *video
	}

	appLogger := logger.New(cfg.LogDirectory)
	m := metrics.New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := mongorepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Database init failed: %v", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		db.Close(closeCtx)
	}()

	detections := mongorepo.NewDetectionRepository(db)
	snapshots, err := mongorepo.NewSnapshotStore(db)
	if err != nil {
		log.Fatalf("Snapshot store init failed: %v", err)
	}

	detector := ai.NewDetectorService(cfg.ModelPath, cfg.ConfidenceThreshold, appLogger)
	if !detector.Ready() {
		log.Fatalf("Model not loaded: %s", cfg.ModelPath)
	}

	source, err := capture.Open(cfg.VideoSource)
	if err != nil {
		log.Fatalf("Failed to open video source %q: %v", cfg.VideoSource, err)
	}
	defer source.Close()

	pipeline := monitor.NewPipeline(detector, detections, snapshots, nil, nil,
		cfg.StoreInterval, cfg.ProcessingWorkers, appLogger, m)

	start := time.Now()
	if err := pipeline.Run(source); err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	pipeline.Stop()

	fmt.Printf("Scanned %s: %d frames in %s\n", source.Name(), pipeline.FramesRead(), time.Since(start).Round(time.Second))
	for label, count := range pipeline.LabelTotals() {
		fmt.Printf("   %s: %d\n", label, count)
	}
}
