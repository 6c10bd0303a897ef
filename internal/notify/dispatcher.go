package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/metrics"
)

// Dispatcher fans status-change events out to the producer through a bounded
// queue and a small worker pool. Delivery is strictly fire-and-forget: a full
// queue or a failing producer drops the event, counts it, and never surfaces
// to the caller that performed the transition.
type Dispatcher struct {
	workerCount int
	batchSize   int
	timeout     time.Duration

	producer Producer
	logger   *zap.Logger

	inputChan  chan lifecycle.StatusChange
	batchChan  chan []lifecycle.StatusChange
	shutdownCh chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

func NewDispatcher(producer Producer, logger *zap.Logger, workerCount, batchSize int, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		workerCount: workerCount,
		batchSize:   batchSize,
		timeout:     timeout,
		producer:    producer,
		logger:      logger,
		inputChan:   make(chan lifecycle.StatusChange, workerCount*batchSize*2),
		batchChan:   make(chan []lifecycle.StatusChange, workerCount*2),
		shutdownCh:  make(chan struct{}),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.runAggregator(ctx)

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

// Publish enqueues one event without blocking the transition path.
func (d *Dispatcher) Publish(change lifecycle.StatusChange) {
	select {
	case d.inputChan <- change:
	default:
		metrics.NotificationsDroppedTotal.Inc()
		d.logger.Warn("notification queue full, dropping event",
			zap.String("order_id", change.OrderID),
			zap.String("new_status", string(change.NewStatus)))
	}
}

func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.once.Do(func() {
		close(d.shutdownCh)

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			d.logger.Info("notification dispatcher stopped")
		case <-ctx.Done():
			d.logger.Warn("notification dispatcher shutdown interrupted")
		}

		if err := d.producer.Close(); err != nil {
			d.logger.Error("failed to close notification producer", zap.Error(err))
		}
	})
}

func (d *Dispatcher) runAggregator(ctx context.Context) {
	defer d.wg.Done()

	var (
		batch    []lifecycle.StatusChange
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		if len(batch) > 0 {
			d.dispatchBatch(batch)
		}
		close(d.batchChan)
	}()

	for {
		select {
		case change := <-d.inputChan:
			batch = append(batch, change)
			if len(batch) >= d.batchSize {
				d.dispatchBatch(batch)
				batch = nil
				timeoutC = nil
			} else if len(batch) == 1 {
				timer = time.NewTimer(d.timeout)
				timeoutC = timer.C
			}

		case <-timeoutC:
			d.dispatchBatch(batch)
			batch = nil
			timeoutC = nil

		case <-ctx.Done():
			return

		case <-d.shutdownCh:
			return
		}
	}
}

func (d *Dispatcher) dispatchBatch(batch []lifecycle.StatusChange) {
	batchCopy := make([]lifecycle.StatusChange, len(batch))
	copy(batchCopy, batch)

	select {
	case d.batchChan <- batchCopy:
	default:
		metrics.NotificationsDroppedTotal.Add(float64(len(batchCopy)))
		d.logger.Warn("notification batch queue full, dropping batch",
			zap.Int("size", len(batchCopy)))
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()

	send := func(batch []lifecycle.StatusChange) {
		sendCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := d.producer.Send(sendCtx, batch); err != nil {
			metrics.NotificationsDroppedTotal.Add(float64(len(batch)))
			d.logger.Warn("failed to deliver notifications",
				zap.Int("worker", id),
				zap.Int("size", len(batch)),
				zap.Error(err))
		}
	}

	for {
		select {
		case batch, ok := <-d.batchChan:
			if !ok {
				return
			}
			send(batch)
		case <-ctx.Done():
			// Drain what is already batched, then exit.
			for {
				select {
				case batch, ok := <-d.batchChan:
					if !ok {
						return
					}
					send(batch)
				default:
					return
				}
			}
		}
	}
}
