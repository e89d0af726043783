package repository

import (
	"context"
	"time"

	"github.com/thesor/chesswatch/internal/models"
)

// GameRepository handles game data access
type GameRepository interface {
	Get(ctx context.Context, id int64) (*models.Game, error)
	List(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	Count(ctx context.Context, filter models.GameFilter) (int, error)
	Insert(ctx context.Context, game models.Game) (int64, error)
	InsertBatch(ctx context.Context, games []models.Game) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	MarkDone(ctx context.Context, id int64, reviewedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, reviewError string) error
	UpdateOpening(ctx context.Context, id int64, ecoCode, openingName string) error
	ResetRunningToPending(ctx context.Context) error
	ExistingUUIDs(ctx context.Context) (map[string]bool, error)
}

// AssessmentRepository handles per-move review output data access
type AssessmentRepository interface {
	ReplaceForGame(ctx context.Context, gameID int64, assessments []models.MoveAssessment) error
	ListForGame(ctx context.Context, gameID int64) ([]models.MoveAssessment, error)
	SummaryForGame(ctx context.Context, gameID int64) (models.ReviewSummary, error)
}

// RatingRepository handles rating snapshot and history data access
type RatingRepository interface {
	CurrentRatings(ctx context.Context) (map[string]map[models.Category]int, error)
	Snapshots(ctx context.Context) ([]models.RatingSnapshot, error)
	SaveCycle(ctx context.Context, current map[string]models.RatingSnapshot, history []models.RatingHistoryEntry) error
	EarliestRatings(ctx context.Context) (map[string]map[models.Category]int, error)
	History(ctx context.Context, filter models.HistoryFilter) ([]models.RatingHistoryEntry, error)
}
