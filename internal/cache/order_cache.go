package cache

import (
	"sync"

	"github.com/gadgettrust/orderflow/internal/lifecycle"
	"github.com/gadgettrust/orderflow/internal/metrics"
)

// OrderCache keeps in-flight orders in memory in front of the persistent
// store. Delivered orders are evicted; they no longer change and reads for
// them are rare.
type OrderCache struct {
	mu    sync.RWMutex
	cache map[string]*lifecycle.Order
}

func NewOrderCache() *OrderCache {
	return &OrderCache{
		cache: make(map[string]*lifecycle.Order),
	}
}

func (c *OrderCache) Get(orderID string) (*lifecycle.Order, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	order, found := c.cache[orderID]
	if !found {
		return nil, false
	}
	return order.Clone(), true
}

func (c *OrderCache) Set(order *lifecycle.Order) {
	if order.Terminal() {
		c.Delete(order.ID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[order.ID] = order.Clone()
	metrics.OrderCacheItems.Set(float64(len(c.cache)))
}

func (c *OrderCache) Delete(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, found := c.cache[orderID]; found {
		delete(c.cache, orderID)
		metrics.OrderCacheItems.Set(float64(len(c.cache)))
	}
}
