package environment

import (
	"context"
	"sync"
)

// originCache holds one configuration instance per normalized key
type originCache[T any] struct {
	kind    string
	factory func(prefix, id string) T
	metrics *Metrics

	mu    sync.RWMutex
	items map[string]T
}

func newOriginCache[T any](kind string, metrics *Metrics, factory func(prefix, id string) T) *originCache[T] {
	c := &originCache[T]{
		kind:    kind,
		factory: factory,
		metrics: metrics,
		items:   make(map[string]T),
	}
	metrics.observeSize(kind, c.size)
	return c
}

// getOrCreate returns the instance for (prefix, id), constructing it at most once
func (c *originCache[T]) getOrCreate(prefix, id string) T {
	key := ToKey(prefix, id)

	c.mu.RLock()
	if item, ok := c.items[key]; ok {
		c.mu.RUnlock()
		c.metrics.recordHit(context.Background(), c.kind)
		return item
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok {
		c.metrics.recordHit(context.Background(), c.kind)
		return item
	}

	item := c.factory(prefix, id)
	c.items[key] = item
	c.metrics.recordMiss(context.Background(), c.kind)
	return item
}

func (c *originCache[T]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
