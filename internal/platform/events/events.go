// Package events announces record changes to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change describes one successful write.
type Change struct {
	Entity    string    `json:"entity"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	RequestID string    `json:"request_id,omitempty"`
}

// Key partitions changes so every change to one record lands in order.
func (c Change) Key() string {
	return fmt.Sprintf("%s:%d", c.Entity, c.ID)
}

// Publisher delivers changes. Delivery is best effort: a failed publish is
// logged and never fails the write that caused it.
type Publisher interface {
	Publish(ctx context.Context, change Change)
}

// LogPublisher records changes in the log only.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, change Change) {
	p.logger.Debug().
		Str("entity", change.Entity).
		Str("action", string(change.Action)).
		Int64("id", change.ID).
		Str("request_id", change.RequestID).
		Msg("record changed")
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const publishTimeout = 2 * time.Second

// KafkaPublisher writes each change as a JSON message to a Kafka topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewKafkaPublisher connects a writer to brokers. Connections are opened lazily
// on the first publish.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	})
	return newKafkaPublisher(w, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("topic", topic).Logger(),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, change Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		p.logger.Error().Err(err).Str("key", change.Key()).Msg("encode change event")
		return
	}

	// The write already committed; a cancelled request must not drop its event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(change.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "entity", Value: []byte(change.Entity)},
			{Key: "action", Value: []byte(change.Action)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn().Err(err).Str("key", change.Key()).Msg("publish change event")
		return
	}
	p.logger.Debug().Str("key", change.Key()).Str("action", string(change.Action)).Msg("change event published")
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// String describes the publisher for startup logs.
func (p *KafkaPublisher) String() string {
	return "kafka:" + p.topic
}
