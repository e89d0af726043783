package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thesor/chesswatch/internal/models"
)

// MockReviewService is a mock implementation of services.ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitGame(ctx context.Context, pgnText string) (*models.Game, error) {
	args := m.Called(ctx, pgnText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockReviewService) ReviewGame(ctx context.Context, gameID int64) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockReviewService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockReviewService) GetReview(ctx context.Context, gameID int64) (*models.GameReview, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameReview), args.Error(1)
}

func (m *MockReviewService) ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Game), args.Int(1), args.Error(2)
}

func (m *MockReviewService) ResumePending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
