package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueReview(gameID int64) error {
	args := m.Called(gameID)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueImport(player string) error {
	args := m.Called(player)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueUpdate() error {
	args := m.Called()
	return args.Error(0)
}
