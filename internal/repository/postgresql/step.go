package postgresql

import (
	"context"

	"github.com/gadgettrust/orderflow/internal/db"
	"github.com/gadgettrust/orderflow/internal/repository"
)

type StepRepo struct {
	db db.DB
}

func NewStepRepo(db db.DB) *StepRepo {
	return &StepRepo{db: db}
}

func (r *StepRepo) Create(ctx context.Context, step *repository.TrackingStep) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tracking_steps (
            order_id, status, label, position, completed, completed_at, location
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, step.OrderID, step.Status, step.Label, step.Position, step.Completed, step.CompletedAt, step.Location)
	return err
}

func (r *StepRepo) GetByOrderID(ctx context.Context, orderID string) ([]*repository.TrackingStep, error) {
	var steps []*repository.TrackingStep
	err := r.db.Select(ctx, &steps, `
        SELECT * FROM tracking_steps
        WHERE order_id = $1
        ORDER BY position ASC
    `, orderID)
	return steps, err
}

// UpdateTx rewrites the mutable fields of one step; the step set itself is
// fixed at order creation.
func (r *StepRepo) UpdateTx(ctx context.Context, tx db.Tx, step *repository.TrackingStep) error {
	_, err := tx.Exec(ctx, `
        UPDATE tracking_steps
        SET completed = $1,
            completed_at = $2,
            location = $3
        WHERE order_id = $4 AND position = $5
    `, step.Completed, step.CompletedAt, step.Location, step.OrderID, step.Position)
	return err
}
