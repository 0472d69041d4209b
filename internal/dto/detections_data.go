package dto

import "bridgewatch/internal/models"

// DetectionsData is a paginated response payload for the detections list.
type DetectionsData struct {
	Detections  []models.Detection `json:"detections"`
	Length      int                `json:"length"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	Limit       int                `json:"pageSize"`
}
