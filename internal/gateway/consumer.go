package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/repository"
)

// Transitioner is the slice of the storage surface the gateway needs.
type Transitioner interface {
	Transition(ctx context.Context, orderID string, target lifecycle.OrderStatus) (*lifecycle.Order, error)
}

// Event is what the payment/escrow gateway reports: funds secured, funds
// released, and so on, already expressed as the pipeline status the order
// should move to.
type Event struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Consumer applies escrow gateway events as order transitions. The gateway is
// only a trigger; all validation happens in the lifecycle rules, and events
// the rules reject are logged and skipped, never retried.
type Consumer struct {
	reader  *kafka.Reader
	storage Transitioner
	logger  *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, storage Transitioner, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
			MaxWait:        3 * time.Second,
		}),
		storage: storage,
		logger:  logger,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("failed to close gateway reader", zap.Error(err))
		}
	}()

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to read gateway event", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		c.handle(ctx, m.Value)
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		c.logger.Warn("discarding malformed gateway event", zap.Error(err))
		return
	}

	target := lifecycle.OrderStatus(event.Status)
	if !lifecycle.ValidStatus(target) {
		c.logger.Warn("discarding gateway event with unknown status",
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status))
		return
	}

	_, err := c.storage.Transition(ctx, event.OrderID, target)
	switch {
	case err == nil:
		c.logger.Info("applied gateway transition",
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status))
	case errors.Is(err, repository.ErrObjectNotFound):
		c.logger.Warn("gateway event for unknown order",
			zap.String("order_id", event.OrderID))
	case errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, lifecycle.ErrUnknownStatus):
		// Stale or duplicate gateway event; the pipeline already moved on.
		c.logger.Info("skipping rejected gateway transition",
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
			zap.Error(err))
	default:
		c.logger.Error("failed to apply gateway transition",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}
