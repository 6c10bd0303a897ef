package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/metrics"
	"github.com/gadgettrust/orderflow/internal/repository"
)

// MemoryStorage keeps orders in a mutex-guarded map with copy-in/copy-out
// semantics, so callers can never mutate stored state directly. An optional
// JSON snapshot file survives restarts.
type MemoryStorage struct {
	mu       sync.RWMutex
	orders   map[string]*lifecycle.Order
	history  map[string][]lifecycle.StatusChange
	selector *lifecycle.Selector
	notifier Notifier
	snapshot *Snapshot
	now      func() time.Time
}

type MemoryOption func(*MemoryStorage)

func WithSnapshot(snapshot *Snapshot) MemoryOption {
	return func(s *MemoryStorage) { s.snapshot = snapshot }
}

func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStorage) { s.now = now }
}

func NewMemoryStorage(selector *lifecycle.Selector, notifier Notifier, opts ...MemoryOption) (*MemoryStorage, error) {
	s := &MemoryStorage{
		orders:   make(map[string]*lifecycle.Order),
		history:  make(map[string][]lifecycle.StatusChange),
		selector: selector,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.snapshot != nil {
		orders, history, err := s.snapshot.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		for _, order := range orders {
			s.orders[order.ID] = order
		}
		for id, changes := range history {
			s.history[id] = changes
		}
	}

	return s, nil
}

func (s *MemoryStorage) CreateOrder(ctx context.Context, req CreateOrderRequest) (*lifecycle.Order, error) {
	pipeline := s.selector.Select(req.Items)

	order, err := lifecycle.NewOrder(uuid.New().String(), req.Items, req.DeliveryFee, pipeline, s.now())
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_order").Inc()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.ID] = cloneOrder(order)
	s.persistLocked()

	metrics.OrdersCreatedTotal.Inc()
	return order, nil
}

func (s *MemoryStorage) GetOrder(ctx context.Context, orderID string) (*lifecycle.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	return cloneOrder(order), nil
}

func (s *MemoryStorage) ListOrders(ctx context.Context, limit int) ([]*lifecycle.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]*lifecycle.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *MemoryStorage) Transition(ctx context.Context, orderID string, target lifecycle.OrderStatus) (*lifecycle.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}

	change, err := order.Transition(target, s.now())
	if err != nil {
		metrics.TransitionsRejectedTotal.Inc()
		return nil, err
	}

	s.history[orderID] = append(s.history[orderID], change)
	s.persistLocked()

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
	s.notifier.Publish(change)

	return cloneOrder(order), nil
}

func (s *MemoryStorage) AttachVerificationReport(ctx context.Context, orderID, report string) (*lifecycle.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}

	if err := order.AttachVerificationReport(report); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("attach_report").Inc()
		return nil, err
	}
	order.UpdatedAt = s.now().UTC()
	s.persistLocked()

	return cloneOrder(order), nil
}

func (s *MemoryStorage) GetOrderHistory(ctx context.Context, orderID string) ([]lifecycle.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, repository.ErrObjectNotFound
	}

	changes := make([]lifecycle.StatusChange, len(s.history[orderID]))
	copy(changes, s.history[orderID])
	return changes, nil
}

func (s *MemoryStorage) persistLocked() {
	if s.snapshot == nil {
		return
	}
	orders := make([]*lifecycle.Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}
	if err := s.snapshot.Save(orders, s.history); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("snapshot").Inc()
	}
}

func cloneOrder(o *lifecycle.Order) *lifecycle.Order {
	return o.Clone()
}
