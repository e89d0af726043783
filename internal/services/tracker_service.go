package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thesor/chesswatch/internal/chesscom"
	"github.com/thesor/chesswatch/internal/config"
	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/repository"
	"github.com/thesor/chesswatch/internal/stats"
	"github.com/thesor/chesswatch/internal/tracker"
)

// TrackerService handles rating update cycles and snapshot queries
type TrackerService interface {
	RunUpdateCycle(ctx context.Context) (*models.UpdateReport, error)
	Snapshots(ctx context.Context) ([]models.RatingSnapshot, error)
	History(ctx context.Context, filter models.HistoryFilter) ([]models.RatingHistoryEntry, error)
	Players() []string
}

type trackerService struct {
	ratingRepo    repository.RatingRepository
	client        chesscom.ClientInterface
	roster        *config.Roster
	differ        *tracker.Differ
	maxConcurrent int
	collector     stats.Collector

	// Serializes whole cycles: compare and write must never interleave.
	mu sync.Mutex
}

// NewTrackerService creates a new TrackerService
func NewTrackerService(
	ratingRepo repository.RatingRepository,
	client chesscom.ClientInterface,
	roster *config.Roster,
	maxConcurrent int,
	collector stats.Collector,
) TrackerService {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &trackerService{
		ratingRepo:    ratingRepo,
		client:        client,
		roster:        roster,
		differ:        tracker.NewDiffer(roster.ManualBaselines()),
		maxConcurrent: maxConcurrent,
		collector:     collector,
	}
}

func (s *trackerService) RunUpdateCycle(ctx context.Context) (*models.UpdateReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("tracker")
	started := time.Now()
	log.Info("starting rating update cycle for %d players", len(s.roster.Players))

	fresh, failed := s.fetchAll(ctx, log)
	if err := ctx.Err(); err != nil {
		log.Warn("update cycle cancelled: %v", err)
		return nil, err
	}

	last, err := s.ratingRepo.CurrentRatings(ctx)
	if err != nil {
		log.Error("failed to load current ratings: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	earliest, err := s.ratingRepo.EarliestRatings(ctx)
	if err != nil {
		log.Error("failed to load earliest ratings: %v", err)
		return nil, apperrors.NewInternalError(err)
	}

	result := s.differ.Diff(tracker.Input{
		Last:            last,
		Fresh:           fresh,
		EarliestHistory: earliest,
		At:              time.Now().UTC(),
	})

	if result.Changed {
		if err := s.ratingRepo.SaveCycle(ctx, result.Current, result.History); err != nil {
			log.Error("failed to persist rating cycle: %v", err)
			return nil, apperrors.NewInternalError(err)
		}
		s.collector.IncCounter(stats.MetricUpdateCyclesChanged, 1)
		s.collector.IncCounter(stats.MetricHistoryRows, int64(len(result.History)))
	}
	s.collector.IncCounter(stats.MetricUpdateCycles, 1)

	report := &models.UpdateReport{
		StartedAt:      started,
		Duration:       time.Since(started),
		Changed:        result.Changed,
		PlayersFetched: len(fresh),
		PlayersFailed:  failed,
		HistoryWritten: len(result.History),
	}
	log.Info("update cycle finished: changed=%t, fetched=%d, failed=%d, history=%d, took=%v",
		report.Changed, report.PlayersFetched, len(report.PlayersFailed), report.HistoryWritten, report.Duration)
	return report, nil
}

// fetchAll fans provider fetches out with bounded concurrency. A
// failed player is reported but never aborts the cycle.
func (s *trackerService) fetchAll(ctx context.Context, log *logger.Logger) ([]models.PlayerRatings, []string) {
	type fetchResult struct {
		player  string
		ratings models.PlayerRatings
		err     error
	}

	results := make(chan fetchResult, len(s.roster.Players))
	sem := make(chan struct{}, s.maxConcurrent)

	var wg sync.WaitGroup
	for _, p := range s.roster.Players {
		wg.Add(1)
		go func(p config.PlayerConfig) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ratings, err := s.client.FetchStats(ctx, p.ChessCom)
			// Rows are keyed by display name, not provider username.
			ratings.Player = p.Name
			results <- fetchResult{player: p.Name, ratings: ratings, err: err}
		}(p)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var fresh []models.PlayerRatings
	var failed []string
	for res := range results {
		if res.err != nil {
			s.collector.IncCounter(stats.MetricProviderFailures, 1)
			log.Warn("fetch failed for %s: %v", res.player, res.err)
			failed = append(failed, res.player)
			continue
		}
		fresh = append(fresh, res.ratings)
	}

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Player < fresh[j].Player })
	sort.Strings(failed)
	return fresh, failed
}

func (s *trackerService) Snapshots(ctx context.Context) ([]models.RatingSnapshot, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting rating snapshots")

	snapshots, err := s.ratingRepo.Snapshots(ctx)
	if err != nil {
		log.Error("failed to load snapshots: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return snapshots, nil
}

func (s *trackerService) History(ctx context.Context, filter models.HistoryFilter) ([]models.RatingHistoryEntry, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting rating history: player=%s, category=%s", filter.Player, filter.Category)

	entries, err := s.ratingRepo.History(ctx, filter)
	if err != nil {
		log.Error("failed to load history: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (s *trackerService) Players() []string {
	return s.roster.Names()
}
