package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"ridedeck/internal/models"
	"ridedeck/pkg/logger"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaMirror wraps a broker and additionally writes every event to a Kafka
// topic, keyed by ride id. Kafka failures are logged and never reach the
// caller.
type KafkaMirror struct {
	Broker
	writer messageWriter
	logger *logger.Logger
}

func NewKafkaMirror(inner Broker, brokers []string, topic string, log *logger.Logger) *KafkaMirror {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				log.WithError(err).WithField("count", len(messages)).Error("Failed to mirror ride events to Kafka")
			}
		},
	}

	return newKafkaMirror(inner, writer, log)
}

func newKafkaMirror(inner Broker, writer messageWriter, log *logger.Logger) *KafkaMirror {
	return &KafkaMirror{
		Broker: inner,
		writer: writer,
		logger: log,
	}
}

func (m *KafkaMirror) Publish(ctx context.Context, event *models.RideEvent) error {
	if err := m.Broker.Publish(ctx, event); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		m.logger.WithError(err).Error("Failed to marshal ride event for Kafka")
		return nil
	}

	msg := kafkago.Message{Value: value, Time: event.Timestamp}
	if event.Ride != nil {
		msg.Key = []byte(event.Ride.ID.Hex())
	}
	if err := m.writer.WriteMessages(ctx, msg); err != nil {
		m.logger.WithError(err).WithField("event", event.Type).Error("Failed to mirror ride event to Kafka")
	}
	return nil
}

func (m *KafkaMirror) Close() error {
	if err := m.writer.Close(); err != nil {
		return err
	}
	return m.Broker.Close()
}
