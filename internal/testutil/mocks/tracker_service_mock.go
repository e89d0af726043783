package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thesor/chesswatch/internal/models"
)

// MockTrackerService is a mock implementation of services.TrackerService
type MockTrackerService struct {
	mock.Mock
}

func (m *MockTrackerService) RunUpdateCycle(ctx context.Context) (*models.UpdateReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UpdateReport), args.Error(1)
}

func (m *MockTrackerService) Snapshots(ctx context.Context) ([]models.RatingSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingSnapshot), args.Error(1)
}

func (m *MockTrackerService) History(ctx context.Context, filter models.HistoryFilter) ([]models.RatingHistoryEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RatingHistoryEntry), args.Error(1)
}

func (m *MockTrackerService) Players() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
