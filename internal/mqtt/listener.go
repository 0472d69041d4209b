package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"bridgewatch/internal/dto"
	"bridgewatch/internal/logger"
	"bridgewatch/internal/metrics"
	"bridgewatch/internal/models"
	"bridgewatch/internal/repository"
)

// EventBroadcaster pushes live events to connected dashboard clients.
type EventBroadcaster interface {
	BroadcastEvent(event dto.Event)
}

// SensorListener subscribes to the sensor topic and stores each decoded
// message as an alert record. Per-message errors are logged and never stop
// the listener.
type SensorListener struct {
	topic       string
	deviceID    string
	alerts      repository.AlertRepository
	broadcaster EventBroadcaster
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// NewSensorListener creates a listener writing alerts to the given repository.
func NewSensorListener(topic, deviceID string, alerts repository.AlertRepository, broadcaster EventBroadcaster, log *logger.Logger, m *metrics.Metrics) *SensorListener {
	return &SensorListener{
		topic:       topic,
		deviceID:    deviceID,
		alerts:      alerts,
		broadcaster: broadcaster,
		logger:      log,
		metrics:     m,
	}
}

// Subscribe registers the sensor topic handler on the given client. Intended
// as the client's on-connect hook: the broker drops subscriptions on
// connection loss, so it must run on every (re)connect. Message handling runs
// on the paho client's own goroutines.
func (l *SensorListener) Subscribe(client pahomqtt.Client) {
	token := client.Subscribe(l.topic, 0, func(c pahomqtt.Client, msg pahomqtt.Message) {
		l.handleMessage(msg.Payload())
	})
	token.Wait()
	if err := token.Error(); err != nil {
		l.logger.Error("Failed to subscribe to %s: %v", l.topic, err)
		return
	}

	l.logger.Info("Subscribed to sensor topic: %s", l.topic)
}

func (l *SensorListener) handleMessage(payload []byte) {
	alertType, value, err := ParseSensorPayload(payload)
	if err != nil {
		l.logger.Error("Error processing sensor message: %v", err)
		return
	}

	alert := &models.Alert{
		Timestamp: time.Now().UTC(),
		AlertType: alertType,
		Value:     value,
		DeviceID:  l.deviceID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.alerts.Insert(ctx, alert); err != nil {
		l.logger.Error("Failed to store alert: %v", err)
		if l.metrics != nil {
			l.metrics.StoreErrors.Inc()
		}
		return
	}

	if l.metrics != nil {
		l.metrics.AlertsReceived.Inc()
	}
	l.logger.Info("Stored alert %s: %v", alert.AlertType, alert.Value)

	if l.broadcaster != nil {
		l.broadcaster.BroadcastEvent(dto.Event{Kind: "alert", Alert: alert})
	}
}

// ParseSensorPayload decodes a JSON sensor message like
// {"type":"WATER","value":123}. A missing type defaults to UNKNOWN; a missing
// value is an error and the message is dropped.
func ParseSensorPayload(payload []byte) (string, float64, error) {
	var msg struct {
		Type  string      `json:"type"`
		Value interface{} `json:"value"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return "", 0, fmt.Errorf("invalid sensor payload %q: %w", payload, err)
	}

	if msg.Value == nil {
		return "", 0, fmt.Errorf("sensor payload %q has no value", payload)
	}

	alertType := msg.Type
	if alertType == "" {
		alertType = "UNKNOWN"
	}

	switch v := msg.Value.(type) {
	case float64:
		return alertType, v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", 0, fmt.Errorf("sensor payload value %q is not numeric", v)
		}
		return alertType, f, nil
	case bool:
		if v {
			return alertType, 1, nil
		}
		return alertType, 0, nil
	default:
		return "", 0, fmt.Errorf("sensor payload value has unsupported type %T", msg.Value)
	}
}
