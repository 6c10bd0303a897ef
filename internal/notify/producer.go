package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
)

// Producer delivers a batch of status-change events to the notification sink.
type Producer interface {
	Send(ctx context.Context, events []lifecycle.StatusChange) error
	Close() error
}

// ConsoleProducer prints events instead of publishing them; used for local
// runs without a broker.
type ConsoleProducer struct {
	logger *zap.Logger
}

func NewConsoleProducer(logger *zap.Logger) *ConsoleProducer {
	return &ConsoleProducer{logger: logger}
}

func (p *ConsoleProducer) Send(ctx context.Context, events []lifecycle.StatusChange) error {
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal status change: %w", err)
		}
		p.logger.Info("status change", zap.ByteString("event", payload))
	}
	return nil
}

func (p *ConsoleProducer) Close() error {
	return nil
}
