package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	FramesRead      prometheus.Counter
	FramesProcessed prometheus.Counter
	FramesDropped   prometheus.Counter

	DetectionsTotal  *prometheus.CounterVec
	SnapshotsStored  prometheus.Counter
	AlertsPublished  prometheus.Counter
	AlertsReceived   prometheus.Counter
	PublishErrors    prometheus.Counter
	StoreErrors      prometheus.Counter
	ConnectedViewers prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		FramesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_frames_read_total",
			Help: "Total frames read from the video source",
		}),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_frames_processed_total",
			Help: "Total frames run through the detector",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_frames_dropped_total",
			Help: "Total frames dropped because the store queue was full",
		}),
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgewatch_detections_total",
			Help: "Total qualifying detections by label",
		}, []string{"label"}),
		SnapshotsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_snapshots_stored_total",
			Help: "Total snapshot images uploaded to GridFS",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_alerts_published_total",
			Help: "Total crack alerts published over MQTT",
		}),
		AlertsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_alerts_received_total",
			Help: "Total sensor alerts received over MQTT",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_publish_errors_total",
			Help: "Total MQTT publish errors",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridgewatch_store_errors_total",
			Help: "Total database write errors",
		}),
		ConnectedViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridgewatch_connected_viewers",
			Help: "Number of connected websocket viewers",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesRead,
		m.FramesProcessed,
		m.FramesDropped,
		m.DetectionsTotal,
		m.SnapshotsStored,
		m.AlertsPublished,
		m.AlertsReceived,
		m.PublishErrors,
		m.StoreErrors,
		m.ConnectedViewers,
	)

	return m
}

// Handler returns the Prometheus HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
