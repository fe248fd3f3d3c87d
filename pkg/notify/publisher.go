// Package notify carries order events out of the process: a Kafka publisher
// on the write side and a consumer that turns events into confirmation
// emails on the read side.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"cs-store-backend/internal/models"

	"github.com/segmentio/kafka-go"
)

// WriterInterface is the slice of kafka.Writer the publisher needs, kept as
// an interface so tests can fake it.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits one message per created order, keyed by order ID so
// retries of the same order land on the same partition.
type KafkaPublisher struct {
	writer WriterInterface
}

func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  list,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return &KafkaPublisher{writer: w}
}

// NewKafkaPublisherWithWriter injects a prebuilt writer. Used by tests.
func NewKafkaPublisherWithWriter(w WriterInterface) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, ev models.OrderEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify.PublishOrderCreated: marshal: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: b,
		Time:  ev.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notify.PublishOrderCreated: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Println("notify: error closing kafka writer:", err)
	}
}
