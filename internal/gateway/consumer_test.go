package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/repository"
)

type fakeTransitioner struct {
	calls []struct {
		orderID string
		target  lifecycle.OrderStatus
	}
	err error
}

func (f *fakeTransitioner) Transition(_ context.Context, orderID string, target lifecycle.OrderStatus) (*lifecycle.Order, error) {
	f.calls = append(f.calls, struct {
		orderID string
		target  lifecycle.OrderStatus
	}{orderID, target})
	if f.err != nil {
		return nil, f.err
	}
	return &lifecycle.Order{ID: orderID, Status: target}, nil
}

func testConsumer(storage Transitioner) *Consumer {
	return &Consumer{storage: storage, logger: zap.NewNop()}
}

func TestHandleAppliesTransition(t *testing.T) {
	storage := &fakeTransitioner{}
	c := testConsumer(storage)

	c.handle(context.Background(), []byte(`{"order_id":"order-1","status":"pickup_scheduled"}`))

	assert.Len(t, storage.calls, 1)
	assert.Equal(t, "order-1", storage.calls[0].orderID)
	assert.Equal(t, lifecycle.StatusPickupScheduled, storage.calls[0].target)
}

func TestHandleDiscardsBadEvents(t *testing.T) {
	storage := &fakeTransitioner{}
	c := testConsumer(storage)

	c.handle(context.Background(), []byte(`{not json`))
	c.handle(context.Background(), []byte(`{"order_id":"order-1","status":"refunded"}`))

	assert.Empty(t, storage.calls)
}

func TestHandleToleratesRejections(t *testing.T) {
	for _, err := range []error{
		lifecycle.ErrInvalidTransition,
		lifecycle.ErrUnknownStatus,
		repository.ErrObjectNotFound,
	} {
		storage := &fakeTransitioner{err: err}
		c := testConsumer(storage)

		// Must not panic and must not retry.
		c.handle(context.Background(), []byte(`{"order_id":"order-1","status":"delivered"}`))
		assert.Len(t, storage.calls, 1)
	}
}
