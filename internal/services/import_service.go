package services

import (
	"context"
	"errors"
	"sync"

	"github.com/thesor/chesswatch/internal/chesscom"
	"github.com/thesor/chesswatch/internal/config"
	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/jobs"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/pgn"
	"github.com/thesor/chesswatch/internal/repository"
	"github.com/thesor/chesswatch/internal/worker"
)

// ImportService handles chess.com game import business logic
type ImportService interface {
	ImportPlayer(ctx context.Context, player string) (int, error)
}

type importService struct {
	gameRepo      repository.GameRepository
	client        chesscom.ClientInterface
	roster        *config.Roster
	queue         jobs.JobQueue
	months        int
	maxConcurrent int
}

// NewImportService creates a new ImportService
func NewImportService(
	gameRepo repository.GameRepository,
	client chesscom.ClientInterface,
	roster *config.Roster,
	queue jobs.JobQueue,
	months int,
	maxConcurrent int,
) ImportService {
	if months <= 0 {
		months = 4
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &importService{
		gameRepo:      gameRepo,
		client:        client,
		roster:        roster,
		queue:         queue,
		months:        months,
		maxConcurrent: maxConcurrent,
	}
}

func (s *importService) ImportPlayer(ctx context.Context, player string) (int, error) {
	log := logger.FromContext(ctx).WithField("player", player)
	log.Info("starting chess.com import")

	entry, ok := s.roster.Find(player)
	if !ok {
		return 0, apperrors.NewNotFoundError("player", player)
	}
	username := entry.ChessCom

	archives, err := s.client.FetchArchives(ctx, username)
	if err != nil {
		log.Error("failed to fetch archives: %v", err)
		return 0, err
	}

	if s.months > 0 && len(archives) > s.months {
		archives = archives[len(archives)-s.months:]
		log.Debug("limiting to last %d monthly archives", s.months)
	}
	log.Info("fetching %d archives in parallel", len(archives))

	monthlyGames, err := s.fetchArchives(ctx, log, archives)
	if err != nil {
		return 0, err
	}
	if len(monthlyGames) == 0 {
		log.Info("no monthly games fetched")
		return 0, nil
	}

	existing, err := s.gameRepo.ExistingUUIDs(ctx)
	if err != nil {
		log.Warn("failed to load existing game uuids: %v", err)
		existing = map[string]bool{}
	}

	var newGames []models.Game
	var wins, losses, draws int
	for _, mg := range monthlyGames {
		if !mg.IsStandard() {
			continue
		}
		uuid := mg.UUID
		if uuid == "" {
			uuid = pgn.ExtractGameID(mg.URL)
		}
		if uuid == "" || existing[uuid] {
			continue
		}
		existing[uuid] = true // avoid duplicates within the batch

		headers := pgn.ParseHeaders(mg.PGN)
		result := headers["Result"]
		if result == "" {
			result = "*"
		}

		switch _, _, outcome := chesscom.DeriveResult(username, mg); outcome {
		case "win":
			wins++
		case "loss":
			losses++
		case "draw":
			draws++
		}

		newGames = append(newGames, models.Game{
			Source:       models.SourceChessCom,
			ChessComUUID: uuid,
			White:        mg.White.Username,
			Black:        mg.Black.Username,
			Result:       result,
			ECOCode:      headers["ECO"],
			OpeningName:  headers["Opening"],
			PGN:          mg.PGN,
			PlayedAt:     mg.PlayedAt(),
			ReviewStatus: models.ReviewStatusPending,
		})
	}

	inserted, err := s.gameRepo.InsertBatch(ctx, newGames)
	if err != nil {
		log.Error("failed to batch insert games: %v", err)
		return 0, apperrors.NewInternalError(err)
	}
	log.Info("imported %d new games for %s (%d wins, %d losses, %d draws in batch)",
		len(inserted), entry.Name, wins, losses, draws)

	for _, id := range inserted {
		if err := s.queue.EnqueueReview(id); err != nil {
			if errors.Is(err, worker.ErrQueueFull) {
				// Remaining games stay pending for ResumePending.
				log.Warn("review queue full, stopped enqueueing at game %d", id)
				break
			}
			log.Warn("failed to enqueue review for game %d: %v", id, err)
		}
	}

	return len(inserted), nil
}

// fetchArchives downloads monthly archives with bounded concurrency.
// Individual archive failures are logged and skipped.
func (s *importService) fetchArchives(ctx context.Context, log *logger.Logger, archives []string) ([]chesscom.MonthlyGame, error) {
	type archiveResult struct {
		games []chesscom.MonthlyGame
		err   error
	}

	results := make(chan archiveResult, len(archives))
	sem := make(chan struct{}, s.maxConcurrent)

	var wg sync.WaitGroup
	for _, url := range archives {
		wg.Add(1)
		go func(archiveURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			monthly, err := s.client.FetchMonthly(ctx, archiveURL)
			results <- archiveResult{games: monthly, err: err}
		}(url)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var monthlyGames []chesscom.MonthlyGame
	for res := range results {
		if res.err != nil {
			log.Error("failed to fetch monthly games: %v", res.err)
			continue
		}
		monthlyGames = append(monthlyGames, res.games...)
	}
	if err := ctx.Err(); err != nil {
		log.Warn("import cancelled: %v", err)
		return nil, err
	}
	return monthlyGames, nil
}
