package worker

import (
	"context"

	"github.com/thesor/chesswatch/internal/logger"
)

// ReviewGameJob runs a full game review through the review service.
type ReviewGameJob struct {
	ReviewService ReviewServiceInterface
	GameID        int64
}

func (j *ReviewGameJob) Name() string { return "review_game" }

func (j *ReviewGameJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("game_id", j.GameID)
	return j.ReviewService.ReviewGame(logger.NewContext(ctx, log), j.GameID)
}

// ImportGamesJob imports recent chess.com games for one roster player.
type ImportGamesJob struct {
	ImportService ImportServiceInterface
	Player        string
}

func (j *ImportGamesJob) Name() string { return "import_games" }

func (j *ImportGamesJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("player", j.Player)
	count, err := j.ImportService.ImportPlayer(logger.NewContext(ctx, log), j.Player)
	if err != nil {
		return err
	}
	log.Info("import finished with %d new games", count)
	return nil
}

// UpdateRatingsJob runs one rating update cycle.
type UpdateRatingsJob struct {
	TrackerService TrackerServiceInterface
}

func (j *UpdateRatingsJob) Name() string { return "update_ratings" }

func (j *UpdateRatingsJob) Run(ctx context.Context) error {
	report, err := j.TrackerService.RunUpdateCycle(ctx)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	if report.Changed {
		log.Info("rating cycle wrote %d history rows", report.HistoryWritten)
	} else {
		log.Debug("rating cycle found no changes")
	}
	return nil
}
