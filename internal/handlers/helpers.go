package handlers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"bridgewatch/internal/models"
)

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// parseDate parses a date string in the format "2006-01-02" from the request (HTML input format).
func parseDate(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseList splits a comma-separated multi-select value. Empty entries are
// dropped; an empty result means "all".
func parseList(v string) []string {
	if v == "" {
		return nil
	}

	var values []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	return values
}

// filterFromQuery builds a detection filter from dashboard query parameters.
func filterFromQuery(q url.Values) *models.DetectionFilter {
	return &models.DetectionFilter{
		Labels:    parseList(q.Get("label")),
		Sources:   parseList(q.Get("source")),
		StartDate: parseDate(q.Get("dateAfter")),
		EndDate:   parseDate(q.Get("dateBefore")),
	}
}
