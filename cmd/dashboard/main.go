package main

import (
	"log"

	"bridgewatch/internal/app"
)

func main() {
	application, err := app.NewDashboardApp()
	if err != nil {
		log.Fatalf("Failed to start dashboard: %v", err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		log.Fatalf("Dashboard server stopped: %v", err)
	}
}
