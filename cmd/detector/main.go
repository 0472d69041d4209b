package main

import (
	"log"

	"bridgewatch/internal/app"
)

func main() {
	application, err := app.NewDetectorApp()
	if err != nil {
		log.Fatalf("Failed to start detector: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalf("Detector stopped: %v", err)
	}
}
