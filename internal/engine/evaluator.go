// Package engine normalizes heterogeneous evaluation backends (local
// UCI subprocess, HTTP cloud evaluator, remote cloud-eval service)
// behind one Evaluator contract. Scores are always centipawns from
// White's perspective; forced mates map to a large sentinel value with
// the exact distance carried separately.
package engine

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/stats"
)

// Backend names.
const (
	BackendUCI      = "uci"
	BackendChessAPI = "chessapi"
	BackendLichess  = "lichess"
)

const (
	defaultDepth   = 12
	defaultMaxTime = 10 * time.Second

	mateBase = 10000
	mateStep = 10
)

// Evaluation is a normalized engine verdict for one position.
type Evaluation struct {
	// CP is the score in centipawns from White's perspective. For
	// forced mates it holds the sentinel value from MateCP.
	CP int `json:"cp"`
	// Mate is the number of moves to forced mate, positive when White
	// delivers it. Nil when no mate was found.
	Mate *int `json:"mate,omitempty"`
	// BestMove is the engine's suggestion in UCI notation.
	BestMove string `json:"best_move,omitempty"`
	// PV is the principal variation in UCI notation.
	PV []string `json:"pv,omitempty"`
	// Depth is the search depth the verdict was produced at.
	Depth int `json:"depth,omitempty"`
}

// IsMate reports whether the evaluation is a forced mate.
func (e Evaluation) IsMate() bool {
	return e.Mate != nil
}

// ScoredMove pairs a candidate move with its evaluation.
type ScoredMove struct {
	Move string     `json:"move"`
	Eval Evaluation `json:"eval"`
}

// Options bound a single evaluation call.
type Options struct {
	// Depth limits the search depth.
	Depth int
	// MaxTime bounds the wall clock of one call. A call exceeding it
	// is cut short or reported unavailable, never left blocking.
	MaxTime time.Duration
}

func (o Options) withDefaults() Options {
	if o.Depth <= 0 {
		o.Depth = defaultDepth
	}
	if o.MaxTime <= 0 {
		o.MaxTime = defaultMaxTime
	}
	return o
}

func (o Options) cacheKey(fen string) string {
	o = o.withDefaults()
	return fmt.Sprintf("%s|d%d|t%d", fen, o.Depth, o.MaxTime.Milliseconds())
}

// MateCP converts a mate distance into the sentinel centipawn value
// used for classification. Closer mates score larger, so sentinel
// values stay monotonic: mate in 1 is 9990, mate in 2 is 9980. The
// sign follows the mate's sign.
func MateCP(mate int) int {
	if mate >= 0 {
		return mateBase - mate*mateStep
	}
	return -mateBase - mate*mateStep
}

// Evaluator scores positions given as FEN strings. Implementations
// report backend failures (unreachable, timeout, malformed response)
// as EVAL_UNAVAILABLE errors and propagate context cancellation as the
// context's own error, so callers can tell abort from degradation.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error)
	Close() error
}

// MultiPVEvaluator is the optional capability of producing the top k
// candidate moves for a position.
type MultiPVEvaluator interface {
	TopMoves(ctx context.Context, fen string, k int, opts Options) ([]ScoredMove, error)
}

// TopMoves asks e for its k best moves, degrading to a single-entry
// list built from Evaluate when the backend has no multi-PV support.
func TopMoves(ctx context.Context, e Evaluator, fen string, k int, opts Options) ([]ScoredMove, error) {
	if mpv, ok := e.(MultiPVEvaluator); ok {
		return mpv.TopMoves(ctx, fen, k, opts)
	}
	ev, err := e.Evaluate(ctx, fen, opts)
	if err != nil {
		return nil, err
	}
	return []ScoredMove{{Move: ev.BestMove, Eval: ev}}, nil
}

// Config selects and parameterizes a backend.
type Config struct {
	Backend       string
	StockfishPath string
	ChessAPIURL   string
	LichessURL    string
}

// Factory builds evaluator instances. UCI factories spawn a fresh
// subprocess per call; HTTP factories hand out cheap stateless
// clients.
type Factory func() (Evaluator, error)

// NewFactory validates the backend selection once and returns a
// factory for it. Every produced evaluator reports call counts and
// durations through the collector.
func NewFactory(cfg Config, collector stats.Collector) (Factory, error) {
	if collector == nil {
		collector = stats.NewNoop()
	}
	switch cfg.Backend {
	case BackendUCI:
		path := cfg.StockfishPath
		return func() (Evaluator, error) {
			e, err := NewUCIEngine(path)
			if err != nil {
				return nil, err
			}
			return WithMetrics(e, collector), nil
		}, nil
	case BackendChessAPI:
		url := cfg.ChessAPIURL
		return func() (Evaluator, error) {
			return WithMetrics(NewChessAPI(url), collector), nil
		}, nil
	case BackendLichess:
		url := cfg.LichessURL
		return func() (Evaluator, error) {
			return WithMetrics(NewLichessCloud(url), collector), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown engine backend %q", cfg.Backend)
	}
}

// WithMetrics wraps an evaluator with call, failure, and duration
// metrics. Context cancellation does not count as a failure.
func WithMetrics(inner Evaluator, collector stats.Collector) Evaluator {
	if collector == nil {
		return inner
	}
	return &instrumented{inner: inner, collector: collector}
}

type instrumented struct {
	inner     Evaluator
	collector stats.Collector
}

var _ Evaluator = (*instrumented)(nil)
var _ MultiPVEvaluator = (*instrumented)(nil)

func (m *instrumented) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	start := time.Now()
	ev, err := m.inner.Evaluate(ctx, fen, opts)
	m.collector.IncCounter(stats.MetricEvaluations, 1)
	m.collector.ObserveHistogram(stats.MetricEvalSeconds, time.Since(start).Seconds())
	if err != nil && apperrors.IsEvalUnavailable(err) {
		m.collector.IncCounter(stats.MetricEvalFailures, 1)
	}
	return ev, err
}

func (m *instrumented) TopMoves(ctx context.Context, fen string, k int, opts Options) ([]ScoredMove, error) {
	return TopMoves(ctx, m.inner, fen, k, opts)
}

func (m *instrumented) Close() error {
	return m.inner.Close()
}
