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

func TestHistoryRepo_CreateTx(t *testing.T) {
	ctx := context.Background()
	changed := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	entry := &repository.HistoryEntry{
		OrderID:   "order-123",
		OldStatus: "processing",
		NewStatus: "pickup_scheduled",
		ChangedAt: changed,
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewHistoryRepo(mockDB)

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(),
				gomock.Eq(entry.OrderID),
				gomock.Eq(entry.OldStatus),
				gomock.Eq(entry.NewStatus),
				gomock.Eq(entry.ChangedAt)).
			Return(nil, nil)

		err := repo.CreateTx(ctx, mockTx, entry)
		assert.NoError(t, err)
	})

	t.Run("tx error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewHistoryRepo(mockDB)

		txErr := errors.New("transaction error")

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, txErr)

		err := repo.CreateTx(ctx, mockTx, entry)
		assert.Error(t, err)
		assert.Equal(t, txErr, err)
	})
}

func TestHistoryRepo_GetByOrderID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewHistoryRepo(mockDB)

		changed := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
		expected := []*repository.HistoryEntry{
			{
				ID:        1,
				OrderID:   "order-123",
				OldStatus: "processing",
				NewStatus: "pickup_scheduled",
				ChangedAt: changed,
			},
			{
				ID:        2,
				OrderID:   "order-123",
				OldStatus: "pickup_scheduled",
				NewStatus: "verified",
				ChangedAt: changed.Add(time.Hour),
			},
		}

		mockDB.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				out := dest.(*[]*repository.HistoryEntry)
				*out = expected
				return nil
			})

		entries, err := repo.GetByOrderID(ctx, "order-123")
		assert.NoError(t, err)
		assert.Equal(t, expected, entries)
	})

	t.Run("db error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewHistoryRepo(mockDB)

		dbErr := errors.New("database error")

		mockDB.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			Return(dbErr)

		entries, err := repo.GetByOrderID(ctx, "order-123")
		assert.Error(t, err)
		assert.Equal(t, dbErr, err)
		assert.Nil(t, entries)
	})
}
