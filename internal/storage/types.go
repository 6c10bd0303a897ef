package storage

import "github.com/gadgettrust/orderflow/internal/lifecycle"

type CreateOrderRequest struct {
	Items       []lifecycle.Item
	DeliveryFee int64
}

// Notifier receives status changes after a successful transition. Publishing
// must not block and its failures never reach the transition caller.
type Notifier interface {
	Publish(change lifecycle.StatusChange)
}

type NopNotifier struct{}

func (NopNotifier) Publish(lifecycle.StatusChange) {}
