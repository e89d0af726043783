package worker

import (
	"context"

	"github.com/thesor/chesswatch/internal/models"
)

// Service interfaces consumed by jobs. Declared here rather than in
// the services package to avoid import cycles.

type ReviewServiceInterface interface {
	ReviewGame(ctx context.Context, gameID int64) error
}

type ImportServiceInterface interface {
	ImportPlayer(ctx context.Context, player string) (int, error)
}

type TrackerServiceInterface interface {
	RunUpdateCycle(ctx context.Context) (*models.UpdateReport, error)
}
