package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockImportService is a mock implementation of services.ImportService
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportPlayer(ctx context.Context, player string) (int, error) {
	args := m.Called(ctx, player)
	return args.Int(0), args.Error(1)
}
