package handlers

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bridgewatch/internal/logger"
	"bridgewatch/internal/repository"
)

// ViewSnapshotHandler serves a stored severe crack snapshot by its id.
func ViewSnapshotHandler(store repository.SnapshotStore, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := r.URL.Query().Get("id")
		if idParam == "" {
			http.Error(w, "Missing id parameter", http.StatusBadRequest)
			return
		}

		id, err := primitive.ObjectIDFromHex(idParam)
		if err != nil {
			http.Error(w, "Invalid id parameter", http.StatusBadRequest)
			return
		}

		data, err := store.Get(id)
		if err != nil {
			if errors.Is(err, repository.ErrSnapshotNotFound) {
				logger.Warning("Snapshot not found: %s", idParam)
				http.NotFound(w, r)
				return
			}
			logger.Error("Failed to read snapshot %s: %v", idParam, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "max-age=3600")
		w.Write(data)
	}
}
