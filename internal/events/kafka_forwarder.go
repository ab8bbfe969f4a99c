package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the forwarder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(topic string, timeout time.Duration, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           timeout,
		AllowAutoTopicCreation: true,
	}
}

// KafkaForwarder relays broker messages to a Kafka topic. Delivery stays at-most-once:
// a failed write is logged and the message is not retried.
type KafkaForwarder[T any] struct {
	writer    MessageWriter
	eventType string
	key       func(T) string
	timeout   time.Duration
	log       *zap.Logger
}

func NewKafkaForwarder[T any](writer MessageWriter, eventType string, key func(T) string, log *zap.Logger) *KafkaForwarder[T] {
	return &KafkaForwarder[T]{
		writer:    writer,
		eventType: eventType,
		key:       key,
		timeout:   10 * time.Second,
		log:       logger.OrNop(log).With(zap.String("event_type", eventType)),
	}
}

// Run forwards messages until ctx is done or in is closed.
func (f *KafkaForwarder[T]) Run(ctx context.Context, in <-chan T) {
	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return
			}
			if err := f.forward(ctx, msg); err != nil {
				f.log.Error("failed to forward event", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (f *KafkaForwarder[T]) forward(ctx context.Context, msg T) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	key := f.key(msg)
	writeCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	err = f.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(key), // transaction id keeps per-sale ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(f.eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("kafka write failed for key %s: %w", key, err)
	}

	f.log.Debug("event forwarded", zap.String("key", key))
	return nil
}

func (f *KafkaForwarder[T]) Close() error {
	return f.writer.Close()
}
