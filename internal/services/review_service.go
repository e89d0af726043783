package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/thesor/chesswatch/internal/analysis"
	"github.com/thesor/chesswatch/internal/engine"
	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/jobs"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/pgn"
	"github.com/thesor/chesswatch/internal/replay"
	"github.com/thesor/chesswatch/internal/repository"
	"github.com/thesor/chesswatch/internal/stats"
)

// ReviewService handles game submission and review business logic
type ReviewService interface {
	SubmitGame(ctx context.Context, pgnText string) (*models.Game, error)
	ReviewGame(ctx context.Context, gameID int64) error
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	GetReview(ctx context.Context, gameID int64) (*models.GameReview, error)
	ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error)
	ResumePending(ctx context.Context) (int, error)
}

type reviewService struct {
	gameRepo       repository.GameRepository
	assessmentRepo repository.AssessmentRepository
	engines        *engine.Pool
	reviewer       *analysis.Reviewer
	queue          jobs.JobQueue
	collector      stats.Collector
	cacheSize      int
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	gameRepo repository.GameRepository,
	assessmentRepo repository.AssessmentRepository,
	engines *engine.Pool,
	reviewer *analysis.Reviewer,
	queue jobs.JobQueue,
	collector stats.Collector,
	cacheSize int,
) ReviewService {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &reviewService{
		gameRepo:       gameRepo,
		assessmentRepo: assessmentRepo,
		engines:        engines,
		reviewer:       reviewer,
		queue:          queue,
		collector:      collector,
		cacheSize:      cacheSize,
	}
}

func (s *reviewService) SubmitGame(ctx context.Context, pgnText string) (*models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting game for review")

	if strings.TrimSpace(pgnText) == "" {
		return nil, apperrors.NewValidationError("pgn", "cannot be empty")
	}

	// Reject unparseable games before anything is stored.
	parsed, err := replay.Parse(pgnText)
	if err != nil {
		log.Debug("submitted pgn rejected: %v", err)
		return nil, err
	}

	headers := parsed.Headers()
	game := models.Game{
		Source:       models.SourceManual,
		White:        parsed.White(),
		Black:        parsed.Black(),
		Result:       parsed.Result(),
		ECOCode:      headers["ECO"],
		OpeningName:  headers["Opening"],
		PGN:          pgnText,
		PlayedAt:     pgn.ParseDate(headers),
		ReviewStatus: models.ReviewStatusPending,
	}

	id, err := s.gameRepo.Insert(ctx, game)
	if err != nil {
		log.Error("failed to insert game: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	game.ID = id
	game.CreatedAt = time.Now()

	if err := s.queue.EnqueueReview(id); err != nil {
		// The game stays pending and is picked up by ResumePending.
		log.Warn("failed to enqueue review for game %d: %v", id, err)
	} else {
		log.Info("game %d submitted and queued for review (%d moves)", id, parsed.MoveCount())
	}
	return &game, nil
}

func (s *reviewService) ReviewGame(ctx context.Context, gameID int64) error {
	log := logger.FromContext(ctx).WithField("game_id", gameID)
	log.Info("starting game review")

	game, err := s.gameRepo.Get(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFoundError("game", gameID)
		}
		log.Error("failed to get game: %v", err)
		return apperrors.NewInternalError(err)
	}

	if game.ReviewStatus == models.ReviewStatusDone {
		log.Debug("game already reviewed, skipping")
		return nil
	}

	log = log.WithFields(map[string]any{
		"white": game.White,
		"black": game.Black,
	})

	if err := s.gameRepo.UpdateStatus(ctx, gameID, models.ReviewStatusRunning); err != nil {
		log.Error("failed to update game status: %v", err)
		return err
	}

	start := time.Now()

	ev, err := s.engines.Acquire(ctx)
	if err != nil {
		log.Error("failed to acquire evaluator: %v", err)
		s.collector.IncCounter(stats.MetricReviewFailures, 1)
		_ = s.gameRepo.MarkFailed(context.WithoutCancel(ctx), gameID, "no evaluator available")
		return err
	}
	defer s.engines.Release(ev)

	// The cache lives for this review only; the pooled engine must stay
	// open, so the cache is never closed here.
	evaluator := ev
	if s.cacheSize > 0 {
		if cached, cerr := engine.NewCache(ev, s.cacheSize, s.collector); cerr == nil {
			evaluator = cached
		} else {
			log.Warn("eval cache disabled: %v", cerr)
		}
	}

	review, err := s.reviewer.Review(ctx, evaluator, game.PGN)
	if err != nil {
		s.collector.IncCounter(stats.MetricReviewFailures, 1)

		// Persist whatever was produced even when the context is gone.
		pctx := context.WithoutCancel(ctx)
		if review != nil && len(review.Assessments) > 0 {
			if perr := s.assessmentRepo.ReplaceForGame(pctx, gameID, review.Assessments); perr != nil {
				log.Warn("failed to persist partial assessments: %v", perr)
			} else {
				log.Info("persisted %d partial assessments before abort", len(review.Assessments))
			}
		}
		_ = s.gameRepo.MarkFailed(pctx, gameID, err.Error())
		log.Error("review failed after %v: %v", time.Since(start), err)
		return err
	}

	if err := s.assessmentRepo.ReplaceForGame(ctx, gameID, review.Assessments); err != nil {
		log.Error("failed to persist assessments: %v", err)
		s.collector.IncCounter(stats.MetricReviewFailures, 1)
		_ = s.gameRepo.MarkFailed(ctx, gameID, "failed to persist assessments")
		return apperrors.NewInternalError(err)
	}

	if err := s.gameRepo.UpdateOpening(ctx, gameID, review.Opening.ECO, review.Opening.Name); err != nil {
		log.Warn("failed to update game opening: %v", err)
	}

	if err := s.gameRepo.MarkDone(ctx, gameID, time.Now()); err != nil {
		log.Error("failed to mark game done: %v", err)
		return err
	}

	s.collector.IncCounter(stats.MetricReviews, 1)
	s.collector.ObserveHistogram(stats.MetricReviewSeconds, time.Since(start).Seconds())

	log.Info("review completed in %v: %d moves, %d blunders, %d mistakes, %d inaccuracies, opening=%s",
		time.Since(start), len(review.Assessments), review.Summary.Blunders, review.Summary.Mistakes,
		review.Summary.Inaccuracies, review.Opening.Name)
	return nil
}

func (s *reviewService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting game: id=%d", id)

	game, err := s.gameRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("game", id)
		}
		log.Error("failed to get game: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return game, nil
}

func (s *reviewService) GetReview(ctx context.Context, gameID int64) (*models.GameReview, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting review: game_id=%d", gameID)

	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	assessments, err := s.assessmentRepo.ListForGame(ctx, gameID)
	if err != nil {
		log.Error("failed to list assessments: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	summary, err := s.assessmentRepo.SummaryForGame(ctx, gameID)
	if err != nil {
		log.Error("failed to summarize assessments: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	var positions []string
	if parsed, perr := replay.Parse(game.PGN); perr == nil {
		positions = parsed.Positions()
	} else {
		log.Warn("stored pgn no longer parses for game %d: %v", gameID, perr)
	}

	return &models.GameReview{
		Game:        *game,
		Opening:     game.OpeningName,
		Positions:   positions,
		Assessments: assessments,
		Summary:     summary,
	}, nil
}

func (s *reviewService) ListGames(ctx context.Context, filter models.GameFilter) ([]models.Game, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing games with filter: player=%s, review_status=%s", filter.Player, filter.ReviewStatus)

	games, err := s.gameRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, 0, apperrors.NewInternalError(err)
	}

	totalCount, err := s.gameRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count games: %v", err)
		return nil, 0, apperrors.NewInternalError(err)
	}

	return games, totalCount, nil
}

func (s *reviewService) ResumePending(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("resuming pending reviews")

	// Reviews interrupted by a crash are still marked running.
	if err := s.gameRepo.ResetRunningToPending(ctx); err != nil {
		log.Warn("failed to reset running games: %v", err)
	}

	games, err := s.gameRepo.List(ctx, models.GameFilter{ReviewStatus: models.ReviewStatusPending, Limit: 500})
	if err != nil {
		log.Error("failed to list pending games: %v", err)
		return 0, apperrors.NewInternalError(err)
	}

	queued := 0
	for _, g := range games {
		if err := s.queue.EnqueueReview(g.ID); err != nil {
			log.Warn("failed to enqueue review for game %d: %v", g.ID, err)
			continue
		}
		queued++
	}

	if queued > 0 {
		log.Info("queued %d pending reviews", queued)
	}
	return queued, nil
}
