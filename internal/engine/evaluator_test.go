package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/stats"
)

// stubEvaluator is a scripted single-PV evaluator shared by the
// package tests.
type stubEvaluator struct {
	eval   Evaluation
	err    error
	calls  int
	closed bool
}

func (s *stubEvaluator) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	s.calls++
	if s.err != nil {
		return Evaluation{}, s.err
	}
	return s.eval, nil
}

func (s *stubEvaluator) Close() error {
	s.closed = true
	return nil
}

// stubMultiPV adds scripted multi-line output on top of stubEvaluator.
type stubMultiPV struct {
	stubEvaluator
	lines    []ScoredMove
	topCalls int
}

func (s *stubMultiPV) TopMoves(ctx context.Context, fen string, k int, opts Options) ([]ScoredMove, error) {
	s.topCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lines, nil
}

// recordingCollector captures metric calls for assertions.
type recordingCollector struct {
	counters     map[string]int64
	gauges       map[string]int64
	observations map[string][]float64
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{
		counters:     map[string]int64{},
		gauges:       map[string]int64{},
		observations: map[string][]float64{},
	}
}

func (r *recordingCollector) IncCounter(name string, delta int64) {
	r.counters[name] += delta
}

func (r *recordingCollector) SetGauge(name string, value int64) {
	r.gauges[name] = value
}

func (r *recordingCollector) ObserveHistogram(name string, value float64) {
	r.observations[name] = append(r.observations[name], value)
}

func TestMateCP(t *testing.T) {
	tests := []struct {
		name string
		mate int
		want int
	}{
		{name: "mate in one", mate: 1, want: 9990},
		{name: "mate in two", mate: 2, want: 9980},
		{name: "mate in five", mate: 5, want: 9950},
		{name: "mated in one", mate: -1, want: -9990},
		{name: "mated in three", mate: -3, want: -9970},
		{name: "checkmate on board", mate: 0, want: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MateCP(tt.mate))
		})
	}
}

func TestMateCP_Monotonic(t *testing.T) {
	// A faster mate must always score above a slower one, and any
	// mate must dominate plausible non-mate scores.
	for n := 1; n < 50; n++ {
		assert.Greater(t, MateCP(n), MateCP(n+1), "mate in %d should beat mate in %d", n, n+1)
		assert.Less(t, MateCP(-n), MateCP(-n-1), "mated in %d should be worse than mated in %d", n, n+1)
	}
	assert.Greater(t, MateCP(50), 2000)
	assert.Less(t, MateCP(-50), -2000)
}

func TestEvaluation_IsMate(t *testing.T) {
	two := 2
	assert.True(t, Evaluation{CP: 9980, Mate: &two}.IsMate())
	assert.False(t, Evaluation{CP: 35}.IsMate())
}

func TestOptions_WithDefaults(t *testing.T) {
	got := Options{}.withDefaults()
	assert.Equal(t, defaultDepth, got.Depth)
	assert.Equal(t, defaultMaxTime, got.MaxTime)

	got = Options{Depth: 20, MaxTime: time.Second}.withDefaults()
	assert.Equal(t, 20, got.Depth)
	assert.Equal(t, time.Second, got.MaxTime)
}

func TestOptions_CacheKey(t *testing.T) {
	fen := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	a := Options{Depth: 12, MaxTime: 10 * time.Second}.cacheKey(fen)
	b := Options{Depth: 12, MaxTime: 10 * time.Second}.cacheKey(fen)
	c := Options{Depth: 18, MaxTime: 10 * time.Second}.cacheKey(fen)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "depth must be part of the key")
	assert.Contains(t, a, fen)
}

func TestTopMoves_FallsBackToSingle(t *testing.T) {
	stub := &stubEvaluator{eval: Evaluation{CP: 34, BestMove: "e2e4"}}

	moves, err := TopMoves(context.Background(), stub, "fen", 3, Options{})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "e2e4", moves[0].Move)
	assert.Equal(t, 34, moves[0].Eval.CP)
}

func TestTopMoves_UsesMultiPV(t *testing.T) {
	stub := &stubMultiPV{
		lines: []ScoredMove{
			{Move: "e2e4", Eval: Evaluation{CP: 34}},
			{Move: "d2d4", Eval: Evaluation{CP: 30}},
			{Move: "g1f3", Eval: Evaluation{CP: 25}},
		},
	}

	moves, err := TopMoves(context.Background(), stub, "fen", 3, Options{})
	require.NoError(t, err)
	assert.Len(t, moves, 3)
	assert.Equal(t, 1, stub.topCalls)
	assert.Equal(t, 0, stub.calls, "multi-PV backends should not fall back to Evaluate")
}

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "chessapi", backend: BackendChessAPI},
		{name: "lichess", backend: BackendLichess},
		{name: "uci", backend: BackendUCI},
		{name: "unknown", backend: "leela", wantErr: true},
		{name: "empty", backend: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory, err := NewFactory(Config{Backend: tt.backend}, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, factory)
		})
	}
}

func TestNewFactory_HTTPBackendsBuild(t *testing.T) {
	factory, err := NewFactory(Config{Backend: BackendChessAPI, ChessAPIURL: "http://localhost:1"}, nil)
	require.NoError(t, err)

	ev, err := factory()
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.NoError(t, ev.Close())
}

func TestWithMetrics(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		collector := newRecordingCollector()
		stub := &stubEvaluator{eval: Evaluation{CP: 12}}

		wrapped := WithMetrics(stub, collector)
		_, err := wrapped.Evaluate(context.Background(), "fen", Options{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), collector.counters[stats.MetricEvaluations])
		assert.Len(t, collector.observations[stats.MetricEvalSeconds], 1)
		assert.Zero(t, collector.counters[stats.MetricEvalFailures])
	})

	t.Run("backend unavailable counts as failure", func(t *testing.T) {
		collector := newRecordingCollector()
		stub := &stubEvaluator{err: apperrors.NewEvalUnavailableError(BackendUCI, errors.New("gone"))}

		wrapped := WithMetrics(stub, collector)
		_, err := wrapped.Evaluate(context.Background(), "fen", Options{})

		require.Error(t, err)
		assert.Equal(t, int64(1), collector.counters[stats.MetricEvalFailures])
	})

	t.Run("cancellation is not a failure", func(t *testing.T) {
		collector := newRecordingCollector()
		stub := &stubEvaluator{err: context.Canceled}

		wrapped := WithMetrics(stub, collector)
		_, err := wrapped.Evaluate(context.Background(), "fen", Options{})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, int64(1), collector.counters[stats.MetricEvaluations])
		assert.Zero(t, collector.counters[stats.MetricEvalFailures])
	})

	t.Run("nil collector returns inner", func(t *testing.T) {
		stub := &stubEvaluator{}
		assert.Same(t, Evaluator(stub), WithMetrics(stub, nil))
	})
}
