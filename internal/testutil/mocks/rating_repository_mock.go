package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thesor/chesswatch/internal/models"
)

// MockRatingRepository is a mock implementation of repository.RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) CurrentRatings(ctx context.Context) (map[string]map[models.Category]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[models.Category]int), args.Error(1)
}

func (m *MockRatingRepository) Snapshots(ctx context.Context) ([]models.RatingSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingSnapshot), args.Error(1)
}

func (m *MockRatingRepository) SaveCycle(ctx context.Context, current map[string]models.RatingSnapshot, history []models.RatingHistoryEntry) error {
	args := m.Called(ctx, current, history)
	return args.Error(0)
}

func (m *MockRatingRepository) EarliestRatings(ctx context.Context) (map[string]map[models.Category]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]map[models.Category]int), args.Error(1)
}

func (m *MockRatingRepository) History(ctx context.Context, filter models.HistoryFilter) ([]models.RatingHistoryEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingHistoryEntry), args.Error(1)
}
