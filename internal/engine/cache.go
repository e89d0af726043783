package engine

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/thesor/chesswatch/internal/stats"
)

// Cache memoizes evaluations in front of another Evaluator. A game
// review hits the same position twice (once as the post-move state,
// once as the next pre-move state), so even a small cache halves the
// engine traffic for a single game.
type Cache struct {
	inner     Evaluator
	entries   *lru.Cache[string, Evaluation]
	collector stats.Collector
}

var _ Evaluator = (*Cache)(nil)

// NewCache wraps inner with an LRU of the given size. Size must be
// positive; the constructor only fails on a non-positive size.
func NewCache(inner Evaluator, size int, collector stats.Collector) (*Cache, error) {
	entries, err := lru.New[string, Evaluation](size)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cache{inner: inner, entries: entries, collector: collector}, nil
}

func (c *Cache) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	key := opts.withDefaults().cacheKey(fen)

	if ev, ok := c.entries.Get(key); ok {
		c.collector.IncCounter(stats.MetricEvalCacheHits, 1)
		return ev, nil
	}
	c.collector.IncCounter(stats.MetricEvalCacheMisses, 1)

	ev, err := c.inner.Evaluate(ctx, fen, opts)
	if err != nil {
		return Evaluation{}, err
	}
	c.entries.Add(key, ev)
	return ev, nil
}

// TopMoves delegates to the inner evaluator. Multi-line results are
// not memoized; the review loop only repeats single evaluations.
func (c *Cache) TopMoves(ctx context.Context, fen string, k int, opts Options) ([]ScoredMove, error) {
	return TopMoves(ctx, c.inner, fen, k, opts)
}

// Len reports how many evaluations the cache currently holds.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Close() error {
	c.entries.Purge()
	return c.inner.Close()
}
