package engine

import (
	"context"
	"fmt"

	"github.com/thesor/chesswatch/internal/logger"
)

// Pool holds a fixed set of ready evaluators so concurrent reviews
// never share one. Local engine processes are stateful and
// mutex-serialized, so sharing a single instance would turn parallel
// reviews into a queue.
type Pool struct {
	evaluators chan Evaluator
	size       int
	log        *logger.Logger
}

// NewPool builds size evaluators up front using factory. If any
// construction fails the already-built ones are closed and the error
// is returned.
func NewPool(size int, factory Factory) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	log := logger.Default().WithPrefix("engine-pool")
	p := &Pool{
		evaluators: make(chan Evaluator, size),
		size:       size,
		log:        log,
	}

	for i := 0; i < size; i++ {
		ev, err := factory()
		if err != nil {
			log.Error("failed to build evaluator %d/%d: %v", i+1, size, err)
			p.Close()
			return nil, err
		}
		p.evaluators <- ev
	}

	log.Info("pool ready with %d evaluator(s)", size)
	return p, nil
}

// Acquire blocks until an evaluator is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (Evaluator, error) {
	select {
	case ev := <-p.evaluators:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns an evaluator to the pool. Only evaluators obtained
// from Acquire may be released.
func (p *Pool) Release(ev Evaluator) {
	select {
	case p.evaluators <- ev:
	default:
		// Pool is full, which means this evaluator was not ours.
		p.log.Warn("release on full pool, closing evaluator")
		_ = ev.Close()
	}
}

// Evaluate borrows an evaluator for a single position.
func (p *Pool) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	ev, err := p.Acquire(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	defer p.Release(ev)
	return ev.Evaluate(ctx, fen, opts)
}

// Available reports how many evaluators are currently idle.
func (p *Pool) Available() int {
	return len(p.evaluators)
}

// Close shuts down every evaluator currently in the pool. Borrowed
// evaluators are closed when released back.
func (p *Pool) Close() {
	p.log.Info("closing pool")
	for {
		select {
		case ev := <-p.evaluators:
			if err := ev.Close(); err != nil {
				p.log.Warn("evaluator close: %v", err)
			}
		default:
			return
		}
	}
}
