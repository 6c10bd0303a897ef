package storage_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/repository"
	"github.com/gadgettrust/orderflow/internal/storage"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []lifecycle.StatusChange
}

func (n *recordingNotifier) Publish(change lifecycle.StatusChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) all() []lifecycle.StatusChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]lifecycle.StatusChange, len(n.changes))
	copy(out, n.changes)
	return out
}

func newTestStorage(t *testing.T, notifier storage.Notifier, opts ...storage.MemoryOption) *storage.MemoryStorage {
	t.Helper()
	s, err := storage.NewMemoryStorage(lifecycle.NewSelector(false), notifier, opts...)
	require.NoError(t, err)
	return s
}

func createRequest() storage.CreateOrderRequest {
	return storage.CreateOrderRequest{
		Items: []lifecycle.Item{
			{
				Product: lifecycle.Product{ID: "prod-1", Name: "Pixel 8", Price: 420000},
				Price:   400000,
			},
		},
		DeliveryFee: 2500,
	}
}

func TestMemoryStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, storage.NopNotifier{})

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(402500), created.TotalAmount)
	assert.Equal(t, lifecycle.StatusProcessing, created.Status)

	got, err := s.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// Returned orders are copies; mutating them must not leak into the store.
	got.Status = lifecycle.StatusDelivered
	got.TrackingSteps[1].Completed = true

	again, err := s.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusProcessing, again.Status)
	assert.False(t, again.TrackingSteps[1].Completed)
}

func TestMemoryStorage_CreateRejectsEmptyItems(t *testing.T) {
	s := newTestStorage(t, storage.NopNotifier{})

	_, err := s.CreateOrder(context.Background(), storage.CreateOrderRequest{})
	assert.ErrorIs(t, err, lifecycle.ErrEmptyItems)
}

func TestMemoryStorage_GetOrderNotFound(t *testing.T) {
	s := newTestStorage(t, storage.NopNotifier{})

	_, err := s.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}

func TestMemoryStorage_TransitionNotifiesAndRecordsHistory(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	s := newTestStorage(t, notifier)

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)

	updated, err := s.Transition(ctx, created.ID, lifecycle.StatusPickupScheduled)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusPickupScheduled, updated.Status)

	_, err = s.Transition(ctx, created.ID, lifecycle.StatusVerified)
	require.NoError(t, err)

	changes := notifier.all()
	require.Len(t, changes, 2)
	assert.Equal(t, lifecycle.StatusProcessing, changes[0].OldStatus)
	assert.Equal(t, lifecycle.StatusPickupScheduled, changes[0].NewStatus)
	assert.Equal(t, lifecycle.StatusPickupScheduled, changes[1].OldStatus)
	assert.Equal(t, lifecycle.StatusVerified, changes[1].NewStatus)

	history, err := s.GetOrderHistory(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestMemoryStorage_RejectedTransitionEmitsNothing(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	s := newTestStorage(t, notifier)

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)

	_, err = s.Transition(ctx, created.ID, lifecycle.StatusProcessing)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Empty(t, notifier.all())

	got, err := s.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusProcessing, got.Status)
}

func TestMemoryStorage_AttachVerificationReport(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, storage.NopNotifier{})

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)

	_, err = s.AttachVerificationReport(ctx, created.ID, "report")
	assert.ErrorIs(t, err, lifecycle.ErrReportNotAllowed)

	_, err = s.Transition(ctx, created.ID, lifecycle.StatusAtHubVerification)
	require.NoError(t, err)

	updated, err := s.AttachVerificationReport(ctx, created.ID, "battery 93%, no screen damage")
	require.NoError(t, err)
	assert.Equal(t, "battery 93%, no screen damage", updated.VerificationReport)
}

func TestMemoryStorage_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.json")

	notifier := &recordingNotifier{}
	s := newTestStorage(t, notifier, storage.WithSnapshot(storage.NewSnapshot(path)))

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)
	_, err = s.Transition(ctx, created.ID, lifecycle.StatusInTransitToHub)
	require.NoError(t, err)

	// A fresh storage over the same file sees the same state.
	reloaded := newTestStorage(t, storage.NopNotifier{}, storage.WithSnapshot(storage.NewSnapshot(path)))

	got, err := reloaded.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusInTransitToHub, got.Status)
	assert.True(t, got.TrackingSteps[2].Completed)

	history, err := reloaded.GetOrderHistory(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, lifecycle.StatusInTransitToHub, history[0].NewStatus)
}

func TestMemoryStorage_ConcurrentTransitionsStayMonotonic(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, storage.NopNotifier{})

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)

	targets := []lifecycle.OrderStatus{
		lifecycle.StatusPickupScheduled,
		lifecycle.StatusInTransitToHub,
		lifecycle.StatusAtHubVerification,
		lifecycle.StatusVerified,
		lifecycle.StatusOutForDelivery,
		lifecycle.StatusDelivered,
	}

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target lifecycle.OrderStatus) {
			defer wg.Done()
			// Some of these will lose the race and be rejected; the stored
			// status may only ever move forward.
			_, _ = s.Transition(ctx, created.ID, target)
		}(target)
	}
	wg.Wait()

	got, err := s.GetOrder(ctx, created.ID)
	require.NoError(t, err)

	idx := got.ActiveStepIndex()
	for i, step := range got.TrackingSteps {
		assert.Equal(t, i <= idx, step.Completed)
	}
}

func TestMemoryStorage_ClockInjection(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	s := newTestStorage(t, storage.NopNotifier{}, storage.WithClock(func() time.Time { return fixed }))

	created, err := s.CreateOrder(ctx, createRequest())
	require.NoError(t, err)
	assert.Equal(t, fixed, created.CreatedAt)
	require.NotNil(t, created.TrackingSteps[0].Timestamp)
	assert.Equal(t, fixed, *created.TrackingSteps[0].Timestamp)
}
