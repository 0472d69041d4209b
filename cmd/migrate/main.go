package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bridgewatch/internal/config"
	"bridgewatch/internal/models"
	mongorepo "bridgewatch/internal/repository/mongo"
)

// migrate imports legacy snapshot JPEGs written by the old file-based scanner
// into MongoDB. Filenames follow 20060102_150405_<source>_<label>.jpg where
// the label uses dashes instead of spaces.
func main() {
	imagesDir := flag.String("images", "static/images", "Directory containing legacy snapshots")
	flag.Parse()

	cfg := config.Load()

	fmt.Printf("Migrating snapshots from %s to %s/%s\n", *imagesDir, cfg.MongoURI, cfg.MongoDatabase)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongorepo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		db.Close(closeCtx)
	}()

	detections := mongorepo.NewDetectionRepository(db)
	snapshots, err := mongorepo.NewSnapshotStore(db)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}

	files, err := os.ReadDir(*imagesDir)
	if err != nil {
		log.Fatalf("Failed to read images directory: %v", err)
	}

	var records []models.Detection
	skipped := 0
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".jpg" {
			continue
		}

		timestamp, source, label, err := parseFilename(file.Name())
		if err != nil {
			log.Printf("Skipping %s: %v", file.Name(), err)
			skipped++
			continue
		}

		data, err := os.ReadFile(filepath.Join(*imagesDir, file.Name()))
		if err != nil {
			log.Printf("Failed to read %s: %v", file.Name(), err)
			skipped++
			continue
		}

		record := models.Detection{
			Timestamp:   timestamp,
			Label:       label,
			Confidence:  1.0,
			VideoSource: source,
		}

		if label == models.LabelSevereCrack {
			id, err := snapshots.Put(file.Name(), data)
			if err != nil {
				log.Printf("Failed to upload %s, keeping record without image: %v", file.Name(), err)
			} else {
				record.ImageID = &id
			}
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		fmt.Println("No snapshots found to migrate")
		return
	}

	fmt.Printf("Inserting %d detection record(s)...\n", len(records))
	if err := detections.InsertBatch(ctx, records); err != nil {
		log.Fatalf("Failed to insert detections: %v", err)
	}

	fmt.Printf("Successfully migrated %d snapshot(s)\n", len(records))
	if skipped > 0 {
		fmt.Printf("Skipped %d file(s) (invalid format or errors)\n", skipped)
	}
}

// parseFilename splits 20060102_150405_<source>_<label>.jpg into its parts.
func parseFilename(name string) (time.Time, string, string, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.SplitN(base, "_", 4)
	if len(parts) != 4 {
		return time.Time{}, "", "", fmt.Errorf("unexpected filename format %q", name)
	}

	timestamp, err := time.Parse("20060102_150405", parts[0]+"_"+parts[1])
	if err != nil {
		return time.Time{}, "", "", fmt.Errorf("invalid timestamp in %q: %w", name, err)
	}

	label := strings.ReplaceAll(parts[3], "-", " ")
	switch label {
	case models.LabelCrack, models.LabelSevereCrack:
	default:
		return time.Time{}, "", "", fmt.Errorf("unknown label %q in %q", label, name)
	}

	return timestamp, parts[2], label, nil
}
