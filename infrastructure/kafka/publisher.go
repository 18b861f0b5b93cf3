package kafka

import (
	"chat-live/contract"
	"chat-live/domain"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	k "github.com/segmentio/kafka-go"
)

var _ contract.IPublisher = (*Publisher)(nil)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...k.Message) error
	Close() error
}

// Publisher sends created messages to a Kafka topic as JSON, keyed by chat id
// so the messages of one chat stay ordered within a partition.
type Publisher struct {
	writer messageWriter
	log    *slog.Logger
}

// NewPublisher writes synchronously: Publish returns once the leader acknowledged,
// which lets the relay advance its cursor only after delivery.
func NewPublisher(brokers []string, topic string, log *slog.Logger) *Publisher {
	writer := &k.Writer{
		Addr:         k.TCP(brokers...),
		Topic:        topic,
		Balancer:     &k.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: k.RequireOne,
	}
	return newPublisher(writer, log)
}

func newPublisher(writer messageWriter, log *slog.Logger) *Publisher {
	return &Publisher{writer: writer, log: log}
}

func (p *Publisher) Publish(ctx context.Context, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	records := make([]k.Message, 0, len(messages))
	for _, message := range messages {
		value, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("marshal message %d: %w", message.ID, err)
		}
		records = append(records, k.Message{
			Key:   []byte(message.ChatID.String()),
			Value: value,
			Time:  message.CreatedAt,
		})
	}
	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("publish %d messages: %w", len(records), err)
	}
	p.log.Debug("Messages published", "count", len(records))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
