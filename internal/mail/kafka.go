package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolio/internal/observability"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQueue is a Sender that enqueues messages for cmd/mailer instead of delivering them.
type KafkaQueue struct {
	writer messageWriter
}

func NewKafkaQueue(brokers []string, topic string) *KafkaQueue {
	return &KafkaQueue{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}}
}

func (q *KafkaQueue) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	err = q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		observability.MailDispatches.WithLabelValues("kafka", "error").Inc()
		return fmt.Errorf("mail: enqueue: %w", err)
	}
	observability.MailDispatches.WithLabelValues("kafka", "ok").Inc()
	return nil
}

func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer drains the mail topic into a delivering Sender.
type Consumer struct {
	reader  messageReader
	deliver Sender
	backoff time.Duration
}

func NewConsumer(brokers []string, groupID, topic string, deliver Sender) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		deliver: deliver,
		backoff: time.Second,
	}
}

// Run blocks until ctx is cancelled. Undecodable payloads and failed deliveries are
// logged and committed so one bad message cannot stall the topic.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() { _ = c.reader.Close() }()

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Default().WarnContext(ctx, "mail consumer fetch failed", slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		if err := c.handle(ctx, m); err != nil {
			observability.LogAsyncOperationError(ctx, "mail_consume", err, map[string]any{"offset": m.Offset})
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && !errors.Is(err, context.Canceled) {
			slog.Default().WarnContext(ctx, "mail consumer commit failed", slog.String("error", err.Error()))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	var msg Message
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return c.deliver.Send(ctx, msg)
}
