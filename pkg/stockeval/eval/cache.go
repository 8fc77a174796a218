package eval

import (
	"context"
	"sync"
	"time"
)

// CachedEvaluator decorates an Evaluator with a TTL+LRU cache so repeated
// adds and workbook imports of the same symbol within the TTL hit the
// network once.
type CachedEvaluator struct {
	next Evaluator
	ttl  time.Duration
	size int

	now func() time.Time

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // LRU order, oldest at index 0
}

type cacheEntry struct {
	at  time.Time
	res Result
}

// NewCachedEvaluator wraps next with a cache of the given TTL and size.
func NewCachedEvaluator(next Evaluator, ttl time.Duration, size int) *CachedEvaluator {
	return &CachedEvaluator{
		next:  next,
		ttl:   ttl,
		size:  size,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

func (c *CachedEvaluator) Evaluate(ctx context.Context, symbol string) (Result, error) {
	if symbol == "" {
		return Result{}, nil
	}
	now := c.now()

	c.mu.Lock()
	if ent, ok := c.items[symbol]; ok {
		if now.Sub(ent.at) <= c.ttl {
			c.touchLocked(symbol)
			res := ent.res
			c.mu.Unlock()
			return res, nil
		}
		delete(c.items, symbol)
		c.removeFromOrderLocked(symbol)
	}
	c.mu.Unlock()

	res, err := c.next.Evaluate(ctx, symbol)
	if err != nil {
		return res, err
	}

	c.mu.Lock()
	c.items[symbol] = cacheEntry{at: now, res: res}
	c.order = append(c.order, symbol)
	for len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
	c.mu.Unlock()
	return res, nil
}

func (c *CachedEvaluator) touchLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(append(c.order[:i], c.order[i+1:]...), k)
			return
		}
	}
	c.order = append(c.order, k)
}

func (c *CachedEvaluator) removeFromOrderLocked(k string) {
	for i, v := range c.order {
		if v == k {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
