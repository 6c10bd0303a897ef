package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gadgettrust/orderflow/internal/cache"
	"github.com/gadgettrust/orderflow/internal/db"
	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/metrics"
	"github.com/gadgettrust/orderflow/internal/repository"
)

type OrderRepository interface {
	Create(ctx context.Context, order *repository.Order) error
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error)
	UpdateStatusTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	List(ctx context.Context, limit int) ([]*repository.Order, error)
	ListActive(ctx context.Context) ([]*repository.Order, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *repository.OrderItem) error
	GetByOrderID(ctx context.Context, orderID string) ([]*repository.OrderItem, error)
}

type StepRepository interface {
	Create(ctx context.Context, step *repository.TrackingStep) error
	GetByOrderID(ctx context.Context, orderID string) ([]*repository.TrackingStep, error)
	UpdateTx(ctx context.Context, tx db.Tx, step *repository.TrackingStep) error
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByOrderID(ctx context.Context, orderID string) ([]*repository.HistoryEntry, error)
}

// PostgresStorage owns the persistent order store. Transitions run inside a
// transaction holding a row lock on the order, so concurrent updates of the
// same order serialize and forward-only validation always reads the latest
// status.
type PostgresStorage struct {
	db          db.DB
	orderRepo   OrderRepository
	itemRepo    ItemRepository
	stepRepo    StepRepository
	historyRepo HistoryRepository
	selector    *lifecycle.Selector
	notifier    Notifier
	cache       *cache.OrderCache
	now         func() time.Time
}

func NewPostgresStorage(
	database db.DB,
	orderRepo OrderRepository,
	itemRepo ItemRepository,
	stepRepo StepRepository,
	historyRepo HistoryRepository,
	selector *lifecycle.Selector,
	notifier Notifier,
) *PostgresStorage {
	return &PostgresStorage{
		db:          database,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		stepRepo:    stepRepo,
		historyRepo: historyRepo,
		selector:    selector,
		notifier:    notifier,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for step timestamps.
func (s *PostgresStorage) WithClock(now func() time.Time) *PostgresStorage {
	s.now = now
	return s
}

// WithCache adds an in-memory cache in front of single-order reads.
func (s *PostgresStorage) WithCache(c *cache.OrderCache) *PostgresStorage {
	s.cache = c
	return s
}

// WarmCache preloads every non-terminal order, so a restart does not begin
// with cold single-order reads.
func (s *PostgresStorage) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	rows, err := s.orderRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active orders: %w", err)
	}
	for _, row := range rows {
		order, err := s.assembleOrder(ctx, row)
		if err != nil {
			return err
		}
		s.cache.Set(order)
	}
	return nil
}

func (s *PostgresStorage) CreateOrder(ctx context.Context, req CreateOrderRequest) (*lifecycle.Order, error) {
	pipeline := s.selector.Select(req.Items)

	order, err := lifecycle.NewOrder(uuid.New().String(), req.Items, req.DeliveryFee, pipeline, s.now())
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_order").Inc()
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, orderToRow(order)); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	for i, item := range order.Items {
		if err := s.itemRepo.Create(ctx, itemToRow(order.ID, i, item)); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
	}
	for i, step := range order.TrackingSteps {
		if err := s.stepRepo.Create(ctx, stepToRow(order.ID, i, step)); err != nil {
			return nil, fmt.Errorf("failed to create tracking step: %w", err)
		}
	}

	metrics.OrdersCreatedTotal.Inc()
	if s.cache != nil {
		s.cache.Set(order)
	}
	return order, nil
}

func (s *PostgresStorage) GetOrder(ctx context.Context, orderID string) (*lifecycle.Order, error) {
	if s.cache != nil {
		if order, found := s.cache.Get(orderID); found {
			return order, nil
		}
	}

	row, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order, err := s.assembleOrder(ctx, row)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(order)
	}
	return order, nil
}

func (s *PostgresStorage) ListOrders(ctx context.Context, limit int) ([]*lifecycle.Order, error) {
	rows, err := s.orderRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*lifecycle.Order, 0, len(rows))
	for _, row := range rows {
		order, err := s.assembleOrder(ctx, row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *PostgresStorage) Transition(ctx context.Context, orderID string, target lifecycle.OrderStatus) (*lifecycle.Order, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	row, err := s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.assembleOrder(ctx, row)
	if err != nil {
		return nil, err
	}

	change, err := order.Transition(target, s.now())
	if err != nil {
		metrics.TransitionsRejectedTotal.Inc()
		return nil, err
	}

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, orderToRow(order)); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	for i, step := range order.TrackingSteps {
		if !step.Completed {
			break
		}
		if err := s.stepRepo.UpdateTx(ctx, tx, stepToRow(order.ID, i, step)); err != nil {
			return nil, fmt.Errorf("failed to update tracking step: %w", err)
		}
	}
	if err := s.historyRepo.CreateTx(ctx, tx, &repository.HistoryEntry{
		OrderID:   change.OrderID,
		OldStatus: string(change.OldStatus),
		NewStatus: string(change.NewStatus),
		ChangedAt: change.At,
	}); err != nil {
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
	s.notifier.Publish(change)
	if s.cache != nil {
		s.cache.Set(order)
	}

	return order, nil
}

func (s *PostgresStorage) AttachVerificationReport(ctx context.Context, orderID, report string) (*lifecycle.Order, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	row, err := s.orderRepo.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.assembleOrder(ctx, row)
	if err != nil {
		return nil, err
	}

	if err := order.AttachVerificationReport(report); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("attach_report").Inc()
		return nil, err
	}
	order.UpdatedAt = s.now().UTC()

	if err := s.orderRepo.UpdateStatusTx(ctx, tx, orderToRow(order)); err != nil {
		return nil, fmt.Errorf("failed to store verification report: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit verification report: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(order)
	}
	return order, nil
}

func (s *PostgresStorage) GetOrderHistory(ctx context.Context, orderID string) ([]lifecycle.StatusChange, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}

	changes := make([]lifecycle.StatusChange, 0, len(entries))
	for _, entry := range entries {
		changes = append(changes, lifecycle.StatusChange{
			OrderID:   entry.OrderID,
			OldStatus: lifecycle.OrderStatus(entry.OldStatus),
			NewStatus: lifecycle.OrderStatus(entry.NewStatus),
			At:        entry.ChangedAt,
		})
	}
	return changes, nil
}

func (s *PostgresStorage) assembleOrder(ctx context.Context, row *repository.Order) (*lifecycle.Order, error) {
	itemRows, err := s.itemRepo.GetByOrderID(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	stepRows, err := s.stepRepo.GetByOrderID(ctx, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tracking steps: %w", err)
	}
	return orderFromRows(row, itemRows, stepRows), nil
}
