package transport

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vectorapi/vector-agent/internal/config"
)

// MQTT publishes over an MQTT broker link. Reconnection is handled by the
// client; dispatch only ever reads connectivity and enqueues.
type MQTT struct {
	client  mqtt.Client
	timeout time.Duration
}

func NewMQTT(cfg *config.Config) *MQTT {
	clientID := cfg.Transport.ClientID
	if clientID == "" {
		clientID = "vector-agent-" + uuid.NewString()[:8]
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Transport.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)

	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", cfg.Transport.Broker).Msg("mqtt connected")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	}

	return &MQTT{
		client:  mqtt.NewClient(opts),
		timeout: time.Duration(cfg.Transport.TimeoutSeconds) * time.Second,
	}
}

// Connect starts the broker session. A broker that is down at boot is not an
// error: the client keeps retrying and dispatch skips until connected.
func (m *MQTT) Connect(ctx context.Context) error {
	token := m.client.Connect()
	if !token.WaitTimeout(m.timeout) {
		log.Warn().Msg("mqtt broker not reachable yet, continuing in background")
		return nil
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (m *MQTT) IsConnected() bool {
	return m.client.IsConnectionOpen()
}

// Publish enqueues and returns; delivery completion is the client's problem.
func (m *MQTT) Publish(topic string, payload []byte, qos byte, retain bool) error {
	m.client.Publish(topic, qos, retain, payload)
	return nil
}

func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
