package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thesor/chesswatch/internal/engine"
)

// MockEvaluator is a mock implementation of engine.Evaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, fen string, opts engine.Options) (engine.Evaluation, error) {
	args := m.Called(ctx, fen, opts)
	return args.Get(0).(engine.Evaluation), args.Error(1)
}

func (m *MockEvaluator) Close() error {
	args := m.Called()
	return args.Error(0)
}
