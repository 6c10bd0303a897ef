package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
)

// KafkaProducer publishes status changes keyed by order id, so all changes of
// one order land in the same partition in order.
type KafkaProducer struct {
	w *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	return &KafkaProducer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaProducer) Send(ctx context.Context, events []lifecycle.StatusChange) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal status change: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.OrderID),
			Value: payload,
		})
	}
	return p.w.WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) Close() error {
	return p.w.Close()
}
