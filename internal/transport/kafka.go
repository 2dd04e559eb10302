package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/vectorapi/vector-agent/internal/config"
)

// Kafka adapts a kafka producer to the push-transport contract. Topics use
// dots instead of slashes; qos maps onto required acks and retain has no
// kafka equivalent, so it is ignored.
type Kafka struct {
	writer    *kafka.Writer
	brokers   []string
	connected atomic.Bool
}

func NewKafka(cfg *config.Config) (*Kafka, error) {
	if len(cfg.Transport.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}

	k := &Kafka{brokers: cfg.Transport.Brokers}

	acks := kafka.RequireNone
	if cfg.Transport.QoS > 0 {
		acks = kafka.RequireOne
	}

	k.writer = &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Transport.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           acks,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			k.connected.Store(err == nil)
			if err != nil {
				log.Warn().Err(err).Int("count", len(messages)).Msg("kafka delivery failed")
			}
		},
	}

	log.Info().Strs("brokers", cfg.Transport.Brokers).Msg("kafka producer initialized")
	return k, nil
}

// Connect dials the first broker once to establish initial connectivity
// state; afterwards delivery completions keep the flag current.
func (k *Kafka) Connect(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", k.brokers[0])
	if err != nil {
		log.Warn().Err(err).Msg("kafka broker not reachable yet")
		return nil
	}
	conn.Close()
	k.connected.Store(true)
	return nil
}

func (k *Kafka) IsConnected() bool {
	return k.connected.Load()
}

func (k *Kafka) Publish(topic string, payload []byte, qos byte, retain bool) error {
	err := k.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: strings.ReplaceAll(topic, "/", "."),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}

func (k *Kafka) Close() {
	if err := k.writer.Close(); err != nil {
		log.Warn().Err(err).Msg("kafka writer close failed")
	}
}
