package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thesor/chesswatch/internal/analysis"
	"github.com/thesor/chesswatch/internal/engine"
	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/opening"
	"github.com/thesor/chesswatch/internal/services"
	"github.com/thesor/chesswatch/internal/testutil/mocks"
	"github.com/thesor/chesswatch/internal/worker"
)

const reviewPGN = `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.03.09"]
[White "hikaru"]
[Black "gothamchess"]
[Result "1-0"]

1. e4 e5 2. Nf3 1-0`

type reviewFixture struct {
	gameRepo   *mocks.MockGameRepository
	assessRepo *mocks.MockAssessmentRepository
	queue      *mocks.MockJobQueue
	evaluator  *mocks.MockEvaluator
	service    services.ReviewService
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	f := &reviewFixture{
		gameRepo:   new(mocks.MockGameRepository),
		assessRepo: new(mocks.MockAssessmentRepository),
		queue:      new(mocks.MockJobQueue),
		evaluator:  new(mocks.MockEvaluator),
	}

	pool, err := engine.NewPool(1, func() (engine.Evaluator, error) { return f.evaluator, nil })
	require.NoError(t, err)

	reviewer := analysis.NewReviewer(nil, engine.Options{Depth: 6})
	f.service = services.NewReviewService(f.gameRepo, f.assessRepo, pool, reviewer, f.queue, nil, 0)
	return f
}

func TestSubmitGame_QueuesForReview(t *testing.T) {
	f := newReviewFixture(t)

	var inserted models.Game
	f.gameRepo.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(models.Game)
	}).Return(int64(7), nil)
	f.queue.On("EnqueueReview", int64(7)).Return(nil)

	game, err := f.service.SubmitGame(context.Background(), reviewPGN)
	require.NoError(t, err)
	require.NotNil(t, game)

	assert.Equal(t, int64(7), game.ID)
	assert.Equal(t, models.SourceManual, game.Source)
	assert.Equal(t, "hikaru", game.White)
	assert.Equal(t, "gothamchess", game.Black)
	assert.Equal(t, "1-0", game.Result)
	assert.Equal(t, models.ReviewStatusPending, game.ReviewStatus)
	require.NotNil(t, game.PlayedAt)
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), *game.PlayedAt)

	assert.Equal(t, reviewPGN, inserted.PGN)
	f.gameRepo.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestSubmitGame_RejectsInvalidPGN(t *testing.T) {
	f := newReviewFixture(t)

	game, err := f.service.SubmitGame(context.Background(), "1. e4 e5 2. Ke3 1-0")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidGame(err))
	assert.Nil(t, game)

	f.gameRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "EnqueueReview", mock.Anything)
}

func TestSubmitGame_RejectsEmptyPGN(t *testing.T) {
	f := newReviewFixture(t)

	game, err := f.service.SubmitGame(context.Background(), "   \n")
	require.Error(t, err)
	assert.Nil(t, game)
	f.gameRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmitGame_QueueFullStillStores(t *testing.T) {
	f := newReviewFixture(t)

	f.gameRepo.On("Insert", mock.Anything, mock.Anything).Return(int64(9), nil)
	f.queue.On("EnqueueReview", int64(9)).Return(worker.ErrQueueFull)

	game, err := f.service.SubmitGame(context.Background(), reviewPGN)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, int64(9), game.ID)
	assert.Equal(t, models.ReviewStatusPending, game.ReviewStatus)
}

func TestReviewGame_CompletesAndPersists(t *testing.T) {
	f := newReviewFixture(t)

	game := &models.Game{
		ID:           3,
		White:        "hikaru",
		Black:        "gothamchess",
		PGN:          reviewPGN,
		ReviewStatus: models.ReviewStatusPending,
	}
	f.gameRepo.On("Get", mock.Anything, int64(3)).Return(game, nil)
	f.gameRepo.On("UpdateStatus", mock.Anything, int64(3), models.ReviewStatusRunning).Return(nil)
	f.evaluator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.Evaluation{CP: 25, BestMove: "e2e4", Depth: 6}, nil)

	var persisted []models.MoveAssessment
	f.assessRepo.On("ReplaceForGame", mock.Anything, int64(3), mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(2).([]models.MoveAssessment)
	}).Return(nil)
	f.gameRepo.On("UpdateOpening", mock.Anything, int64(3), "", opening.Unknown).Return(nil)
	f.gameRepo.On("MarkDone", mock.Anything, int64(3), mock.Anything).Return(nil)

	err := f.service.ReviewGame(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, persisted, 3)
	assert.Equal(t, 1, persisted[0].Ply)
	assert.Equal(t, models.ColorWhite, persisted[0].Color)
	assert.Equal(t, "e4", persisted[0].SAN)
	assert.Equal(t, "e2e4", persisted[0].BestMove)
	assert.Equal(t, models.ColorBlack, persisted[1].Color)
	// A flat evaluation on every position means nobody ever lost ground.
	for _, a := range persisted {
		assert.Equal(t, models.QualityExcellent, a.Quality)
		assert.Equal(t, 0, a.EvalLoss)
	}

	f.gameRepo.AssertExpectations(t)
	f.assessRepo.AssertExpectations(t)
}

func TestReviewGame_SkipsAlreadyReviewed(t *testing.T) {
	f := newReviewFixture(t)

	game := &models.Game{ID: 4, PGN: reviewPGN, ReviewStatus: models.ReviewStatusDone}
	f.gameRepo.On("Get", mock.Anything, int64(4)).Return(game, nil)

	err := f.service.ReviewGame(context.Background(), 4)
	require.NoError(t, err)

	f.gameRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.assessRepo.AssertNotCalled(t, "ReplaceForGame", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewGame_NotFound(t *testing.T) {
	f := newReviewFixture(t)

	f.gameRepo.On("Get", mock.Anything, int64(99)).Return(nil, sql.ErrNoRows)

	err := f.service.ReviewGame(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReviewGame_MarksFailedOnUnparseableGame(t *testing.T) {
	f := newReviewFixture(t)

	game := &models.Game{ID: 5, PGN: "1. e4 e5 2. Ke3 1-0", ReviewStatus: models.ReviewStatusPending}
	f.gameRepo.On("Get", mock.Anything, int64(5)).Return(game, nil)
	f.gameRepo.On("UpdateStatus", mock.Anything, int64(5), models.ReviewStatusRunning).Return(nil)
	f.gameRepo.On("MarkFailed", mock.Anything, int64(5), mock.Anything).Return(nil)

	err := f.service.ReviewGame(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidGame(err))

	f.gameRepo.AssertCalled(t, "MarkFailed", mock.Anything, int64(5), mock.Anything)
	f.gameRepo.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewGame_UnscoredPlyDoesNotAbort(t *testing.T) {
	f := newReviewFixture(t)

	game := &models.Game{ID: 6, PGN: reviewPGN, ReviewStatus: models.ReviewStatusPending}
	f.gameRepo.On("Get", mock.Anything, int64(6)).Return(game, nil)
	f.gameRepo.On("UpdateStatus", mock.Anything, int64(6), models.ReviewStatusRunning).Return(nil)

	// The starting position cannot be scored; everything after can.
	f.evaluator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.Evaluation{}, apperrors.NewEvalUnavailableError("stockfish", nil)).Once()
	f.evaluator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(engine.Evaluation{CP: 30}, nil)

	var persisted []models.MoveAssessment
	f.assessRepo.On("ReplaceForGame", mock.Anything, int64(6), mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(2).([]models.MoveAssessment)
	}).Return(nil)
	f.gameRepo.On("UpdateOpening", mock.Anything, int64(6), mock.Anything, mock.Anything).Return(nil)
	f.gameRepo.On("MarkDone", mock.Anything, int64(6), mock.Anything).Return(nil)

	err := f.service.ReviewGame(context.Background(), 6)
	require.NoError(t, err)

	require.Len(t, persisted, 3)
	assert.Equal(t, models.QualityUnknown, persisted[0].Quality)
	assert.Nil(t, persisted[0].EvalBefore)
	assert.NotNil(t, persisted[0].EvalAfter)
	assert.Equal(t, models.QualityExcellent, persisted[1].Quality)
	assert.Equal(t, models.QualityExcellent, persisted[2].Quality)
}

func TestReviewGame_CancellationKeepsPartialWork(t *testing.T) {
	f := newReviewFixture(t)

	game := &models.Game{ID: 8, PGN: reviewPGN, ReviewStatus: models.ReviewStatusPending}
	f.gameRepo.On("Get", mock.Anything, int64(8)).Return(game, nil)
	f.gameRepo.On("UpdateStatus", mock.Anything, int64(8), models.ReviewStatusRunning).Return(nil)

	// Cancel mid-review, after the first move is fully assessed.
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	f.evaluator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		calls++
		if calls == 3 {
			cancel()
		}
	}).Return(engine.Evaluation{CP: 10}, nil)

	var persisted []models.MoveAssessment
	f.assessRepo.On("ReplaceForGame", mock.Anything, int64(8), mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(2).([]models.MoveAssessment)
	}).Return(nil)
	f.gameRepo.On("MarkFailed", mock.Anything, int64(8), "context canceled").Return(nil)

	err := f.service.ReviewGame(ctx, 8)
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, persisted, 1)
	assert.Equal(t, "e4", persisted[0].SAN)
	f.gameRepo.AssertCalled(t, "MarkFailed", mock.Anything, int64(8), "context canceled")
	f.gameRepo.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetReview_AssemblesNavigableReview(t *testing.T) {
	f := newReviewFixture(t)

	game := &models.Game{
		ID:           11,
		PGN:          reviewPGN,
		OpeningName:  "King's Knight Opening",
		ReviewStatus: models.ReviewStatusDone,
	}
	assessments := []models.MoveAssessment{
		{GameID: 11, Ply: 1, SAN: "e4", Quality: models.QualityGood},
		{GameID: 11, Ply: 2, SAN: "e5", Quality: models.QualityExcellent},
		{GameID: 11, Ply: 3, SAN: "Nf3", Quality: models.QualityExcellent},
	}
	f.gameRepo.On("Get", mock.Anything, int64(11)).Return(game, nil)
	f.assessRepo.On("ListForGame", mock.Anything, int64(11)).Return(assessments, nil)
	f.assessRepo.On("SummaryForGame", mock.Anything, int64(11)).
		Return(models.ReviewSummary{Excellent: 2, Good: 1}, nil)

	review, err := f.service.GetReview(context.Background(), 11)
	require.NoError(t, err)

	assert.Equal(t, "King's Knight Opening", review.Opening)
	assert.Len(t, review.Positions, 4)
	assert.Equal(t, assessments, review.Assessments)
	assert.Equal(t, 3, review.Summary.Total())
}

func TestGetReview_GameNotFound(t *testing.T) {
	f := newReviewFixture(t)

	f.gameRepo.On("Get", mock.Anything, int64(404)).Return(nil, sql.ErrNoRows)

	review, err := f.service.GetReview(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Nil(t, review)
}

func TestResumePending_RequeuesInterruptedGames(t *testing.T) {
	f := newReviewFixture(t)

	f.gameRepo.On("ResetRunningToPending", mock.Anything).Return(nil)
	f.gameRepo.On("List", mock.Anything, mock.Anything).
		Return([]models.Game{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	f.queue.On("EnqueueReview", int64(1)).Return(nil)
	f.queue.On("EnqueueReview", int64(2)).Return(worker.ErrQueueFull)
	f.queue.On("EnqueueReview", int64(3)).Return(nil)

	queued, err := f.service.ResumePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, queued)
	f.gameRepo.AssertCalled(t, "ResetRunningToPending", mock.Anything)
}
