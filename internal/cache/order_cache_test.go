package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgettrust/orderflow/internal/cache"
	"github.com/gadgettrust/orderflow/internal/lifecycle"
)

func cachedOrder(t *testing.T) *lifecycle.Order {
	t.Helper()
	p, err := lifecycle.GetPipeline(lifecycle.PipelineStandard)
	require.NoError(t, err)
	order, err := lifecycle.NewOrder("order-1", []lifecycle.Item{
		{Product: lifecycle.Product{ID: "p1", Name: "Tablet", Price: 90000}, Price: 90000},
	}, 0, p, time.Now())
	require.NoError(t, err)
	return order
}

func TestOrderCache(t *testing.T) {
	c := cache.NewOrderCache()
	order := cachedOrder(t)

	_, found := c.Get(order.ID)
	assert.False(t, found)

	c.Set(order)
	got, found := c.Get(order.ID)
	require.True(t, found)
	assert.Equal(t, order.ID, got.ID)

	// The cache hands out copies.
	got.Status = lifecycle.StatusVerified
	again, found := c.Get(order.ID)
	require.True(t, found)
	assert.Equal(t, lifecycle.StatusProcessing, again.Status)

	c.Delete(order.ID)
	_, found = c.Get(order.ID)
	assert.False(t, found)
}

func TestOrderCacheEvictsDelivered(t *testing.T) {
	c := cache.NewOrderCache()
	order := cachedOrder(t)
	c.Set(order)

	_, err := order.Transition(lifecycle.StatusDelivered, time.Now())
	require.NoError(t, err)

	c.Set(order)
	_, found := c.Get(order.ID)
	assert.False(t, found)
}
