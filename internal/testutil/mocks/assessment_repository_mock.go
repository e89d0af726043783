package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thesor/chesswatch/internal/models"
)

// MockAssessmentRepository is a mock implementation of repository.AssessmentRepository
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) ReplaceForGame(ctx context.Context, gameID int64, assessments []models.MoveAssessment) error {
	args := m.Called(ctx, gameID, assessments)
	return args.Error(0)
}

func (m *MockAssessmentRepository) ListForGame(ctx context.Context, gameID int64) ([]models.MoveAssessment, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MoveAssessment), args.Error(1)
}

func (m *MockAssessmentRepository) SummaryForGame(ctx context.Context, gameID int64) (models.ReviewSummary, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(models.ReviewSummary), args.Error(1)
}
