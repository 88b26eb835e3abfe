package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/edulearn/lms/internal/core/domain"
)

const defaultTopic = "lms.auth.events"

// Config holds the Kafka publisher settings.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes auth events to a Kafka topic as JSON, keyed by user id so
// one account's events land on one partition.
type Publisher struct {
	writer messageWriter
	topic  string
	log    zerolog.Logger
}

// NewPublisher creates a Publisher backed by a kafka-go writer.
func NewPublisher(cfg Config, log zerolog.Logger) *Publisher {
	topic := cfg.Topic
	if topic == "" {
		topic = defaultTopic
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, topic, log)
}

func newPublisher(w messageWriter, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{writer: w, topic: topic, log: log}
}

// Publish sends one auth event.
func (p *Publisher) Publish(ctx context.Context, event domain.AuthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.UserID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "source", Value: []byte("lms-auth")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event to %s: %w", p.topic, err)
	}

	p.log.Debug().
		Str("topic", p.topic).
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Msg("event written")
	return nil
}

// Close flushes pending messages.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs events instead of shipping them. It stands in for Kafka
// when no brokers are configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.AuthEvent) error {
	evt := p.log.Info().
		Str("type", string(event.Type)).
		Str("user_id", event.UserID).
		Str("email", event.Email)
	for k, v := range event.Data {
		evt = evt.Str(k, v)
	}
	evt.Msg("auth event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
