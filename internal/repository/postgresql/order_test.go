package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_database "github.com/gadgettrust/orderflow/internal/db/mocks"
	"github.com/gadgettrust/orderflow/internal/repository"
	"github.com/gadgettrust/orderflow/internal/repository/postgresql"
)

func TestOrderRepo_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrder := &repository.Order{
			ID:          "order-123",
			Status:      "processing",
			Pipeline:    "standard",
			DeliveryFee: 3500,
			TotalAmount: 653500,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testOrder.ID),
			gomock.Eq(testOrder.Status),
			gomock.Eq(testOrder.Pipeline),
			gomock.Eq(testOrder.DeliveryFee),
			gomock.Eq(testOrder.TotalAmount),
			gomock.Eq(testOrder.VerificationReport),
			gomock.Eq(testOrder.CreatedAt),
			gomock.Eq(testOrder.UpdatedAt),
		).Return(nil, nil)

		err := repo.Create(ctx, testOrder)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(),
				gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.Create(ctx, &repository.Order{ID: "order-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestOrderRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("order found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				order := dest.(*repository.Order)
				order.ID = "order-123"
				order.Status = "pickup_scheduled"
				order.Pipeline = "standard"
				return nil
			})

		order, err := repo.GetByID(ctx, "order-123")
		assert.NoError(t, err)
		assert.Equal(t, "order-123", order.ID)
		assert.Equal(t, "pickup_scheduled", order.Status)
	})

	t.Run("query error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("connection refused")
		mockDB.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		order, err := repo.GetByID(ctx, "order-123")
		assert.Nil(t, order)
		assert.Equal(t, expectedErr, err)
	})
}

func TestOrderRepo_UpdateStatusTx(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewOrderRepo(mockDB)

	now := time.Now().UTC()
	order := &repository.Order{
		ID:        "order-123",
		Status:    "verified",
		UpdatedAt: now,
	}

	mockTx.EXPECT().Exec(
		gomock.Any(),
		gomock.Any(),
		gomock.Eq(order.Status),
		gomock.Eq(order.VerificationReport),
		gomock.Eq(order.UpdatedAt),
		gomock.Eq(order.ID),
	).Return(nil, nil)

	err := repo.UpdateStatusTx(ctx, mockTx, order)
	assert.NoError(t, err)
}
