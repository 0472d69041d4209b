package mqtt

import (
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
)

// crackPayload is the flat alert payload the receiving boards expect.
const crackPayload = "1"

// CrackPublisher publishes crack alerts with a cooldown so that a burst of
// detections produces at most one message per window.
type CrackPublisher struct {
	client   pahomqtt.Client
	topic    string
	cooldown time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	lastSend time.Time
	now      func() time.Time
}

// NewCrackPublisher creates a publisher for the given topic.
func NewCrackPublisher(client pahomqtt.Client, topic string, cooldown time.Duration, log *logger.Logger, m *metrics.Metrics) *CrackPublisher {
	return &CrackPublisher{
		client:   client,
		topic:    topic,
		cooldown: cooldown,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Publish sends a crack alert unless one was sent within the cooldown window.
// Returns true when a message was actually published. The cooldown is measured
// from the last successful publish.
func (p *CrackPublisher) Publish() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.now().Sub(p.lastSend) < p.cooldown {
		return false
	}

	token := p.client.Publish(p.topic, 0, false, crackPayload)
	token.Wait()
	if err := token.Error(); err != nil {
		p.logger.Error("MQTT publish error: %v", err)
		if p.metrics != nil {
			p.metrics.PublishErrors.Inc()
		}
		return false
	}

	p.lastSend = p.now()
	if p.metrics != nil {
		p.metrics.AlertsPublished.Inc()
	}
	p.logger.Info("Published crack alert to %s", p.topic)
	return true
}
