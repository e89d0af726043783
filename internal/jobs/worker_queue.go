package jobs

import (
	"errors"

	"github.com/thesor/chesswatch/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools. Services are
// attached with Bind after construction, which breaks the circular
// dependency between the queue and the services that enqueue into it.
type WorkerQueue struct {
	reviewPool     *worker.Pool
	backgroundPool *worker.Pool
	reviewService  worker.ReviewServiceInterface
	importService  worker.ImportServiceInterface
	trackerService worker.TrackerServiceInterface
}

var _ JobQueue = (*WorkerQueue)(nil)

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(reviewPool, backgroundPool *worker.Pool) *WorkerQueue {
	return &WorkerQueue{
		reviewPool:     reviewPool,
		backgroundPool: backgroundPool,
	}
}

// Bind attaches the services jobs dispatch to. Must be called before
// any worker pool starts.
func (q *WorkerQueue) Bind(
	reviewService worker.ReviewServiceInterface,
	importService worker.ImportServiceInterface,
	trackerService worker.TrackerServiceInterface,
) {
	q.reviewService = reviewService
	q.importService = importService
	q.trackerService = trackerService
}

func (q *WorkerQueue) EnqueueReview(gameID int64) error {
	if q.reviewService == nil {
		return errors.New("review service not bound")
	}
	return q.reviewPool.Submit(&worker.ReviewGameJob{
		ReviewService: q.reviewService,
		GameID:        gameID,
	})
}

func (q *WorkerQueue) EnqueueImport(player string) error {
	if q.importService == nil {
		return errors.New("import service not bound")
	}
	return q.backgroundPool.Submit(&worker.ImportGamesJob{
		ImportService: q.importService,
		Player:        player,
	})
}

func (q *WorkerQueue) EnqueueUpdate() error {
	if q.trackerService == nil {
		return errors.New("tracker service not bound")
	}
	return q.backgroundPool.Submit(&worker.UpdateRatingsJob{
		TrackerService: q.trackerService,
	})
}
