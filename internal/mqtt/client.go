package mqtt

import (
	"crypto/tls"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"bridgewatch/internal/config"
	"bridgewatch/internal/logger"
)

// NewClient connects to the MQTT broker over TLS with the configured
// credentials. The paho client handles reconnects internally; onConnect runs
// on every successful (re)connect, so subscriptions registered there survive
// a broker restart. Pass nil when the client only publishes.
func NewClient(cfg *config.Config, log *logger.Logger, clientID string, onConnect func(pahomqtt.Client)) (pahomqtt.Client, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("ssl://%s:%d", cfg.MQTTBroker, cfg.MQTTPort)).
		SetClientID(clientID).
		SetUsername(cfg.MQTTUser).
		SetPassword(cfg.MQTTPass).
		SetTLSConfig(&tls.Config{InsecureSkipVerify: cfg.MQTTTLSInsecure}).
		SetAutoReconnect(true)

	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		log.Info("Connected to MQTT broker at %s:%d", cfg.MQTTBroker, cfg.MQTTPort)
		if onConnect != nil {
			onConnect(c)
		}
	})
	opts.SetConnectionLostHandler(func(c pahomqtt.Client, err error) {
		log.Warning("MQTT connection lost: %v", err)
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return client, nil
}
