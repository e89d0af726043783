package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thesor/chesswatch/internal/chesscom"
	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/services"
	"github.com/thesor/chesswatch/internal/testutil/mocks"
	"github.com/thesor/chesswatch/internal/worker"
)

const importPGN = `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.02.11"]
[White "magnuscarlsen"]
[Black "fabianocaruana"]
[Result "1-0"]
[ECO "C65"]
[Opening "Ruy Lopez"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 Nf6 1-0`

func monthlyGame(uuid, timeClass string) chesscom.MonthlyGame {
	return chesscom.MonthlyGame{
		URL:       "https://www.chess.com/game/live/" + uuid,
		UUID:      uuid,
		PGN:       importPGN,
		TimeClass: timeClass,
		Rules:     "chess",
		Rated:     true,
		EndTime:   1707645600,
		White:     chesscom.Player{Username: "magnuscarlsen", Result: "win"},
		Black:     chesscom.Player{Username: "fabianocaruana", Result: "checkmated"},
	}
}

func TestImportPlayer_UnknownPlayer(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	client := new(mocks.MockChessClient)
	queue := new(mocks.MockJobQueue)

	svc := services.NewImportService(gameRepo, client, trackerRoster(), queue, 2, 2)
	count, err := svc.ImportPlayer(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Zero(t, count)

	client.AssertNotCalled(t, "FetchArchives", mock.Anything, mock.Anything)
}

func TestImportPlayer_ImportsOnlyNewStandardGames(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	client := new(mocks.MockChessClient)
	queue := new(mocks.MockJobQueue)

	archives := []string{
		"https://api.chess.com/pub/player/magnuscarlsen/games/2024/01",
		"https://api.chess.com/pub/player/magnuscarlsen/games/2024/02",
		"https://api.chess.com/pub/player/magnuscarlsen/games/2024/03",
	}
	client.On("FetchArchives", mock.Anything, "magnuscarlsen").Return(archives, nil)
	client.On("FetchMonthly", mock.Anything, archives[1]).Return([]chesscom.MonthlyGame{
		monthlyGame("feb-1", "rapid"),
		monthlyGame("feb-2", "rapid"),
	}, nil)

	variant := monthlyGame("mar-2", "blitz")
	variant.Rules = "chess960"
	daily := monthlyGame("mar-3", "daily")
	client.On("FetchMonthly", mock.Anything, archives[2]).Return([]chesscom.MonthlyGame{
		monthlyGame("mar-1", "blitz"),
		variant,
		daily,
	}, nil)

	gameRepo.On("ExistingUUIDs", mock.Anything).Return(map[string]bool{"feb-2": true}, nil)

	var batch []models.Game
	gameRepo.On("InsertBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		batch = args.Get(1).([]models.Game)
	}).Return([]int64{41, 42}, nil)
	queue.On("EnqueueReview", int64(41)).Return(nil)
	queue.On("EnqueueReview", int64(42)).Return(nil)

	svc := services.NewImportService(gameRepo, client, trackerRoster(), queue, 2, 2)
	count, err := svc.ImportPlayer(context.Background(), "Magnus")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Only the two months inside the import window are touched.
	client.AssertNotCalled(t, "FetchMonthly", mock.Anything, archives[0])

	require.Len(t, batch, 2)
	uuids := []string{batch[0].ChessComUUID, batch[1].ChessComUUID}
	assert.ElementsMatch(t, []string{"feb-1", "mar-1"}, uuids)
	for _, g := range batch {
		assert.Equal(t, models.SourceChessCom, g.Source)
		assert.Equal(t, models.ReviewStatusPending, g.ReviewStatus)
		assert.Equal(t, "magnuscarlsen", g.White)
		assert.Equal(t, "1-0", g.Result)
		assert.Equal(t, "C65", g.ECOCode)
		assert.Equal(t, "Ruy Lopez", g.OpeningName)
		require.NotNil(t, g.PlayedAt)
	}
	queue.AssertExpectations(t)
}

func TestImportPlayer_LookupByProviderUsername(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	client := new(mocks.MockChessClient)
	queue := new(mocks.MockJobQueue)

	client.On("FetchArchives", mock.Anything, "magnuscarlsen").Return([]string{}, nil)

	svc := services.NewImportService(gameRepo, client, trackerRoster(), queue, 2, 2)
	count, err := svc.ImportPlayer(context.Background(), "MAGNUSCARLSEN")
	require.NoError(t, err)
	assert.Zero(t, count)
	client.AssertCalled(t, "FetchArchives", mock.Anything, "magnuscarlsen")
}

func TestImportPlayer_ArchiveFailureSkipsThatMonth(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	client := new(mocks.MockChessClient)
	queue := new(mocks.MockJobQueue)

	archives := []string{
		"https://api.chess.com/pub/player/magnuscarlsen/games/2024/02",
		"https://api.chess.com/pub/player/magnuscarlsen/games/2024/03",
	}
	client.On("FetchArchives", mock.Anything, "magnuscarlsen").Return(archives, nil)
	client.On("FetchMonthly", mock.Anything, archives[0]).Return(nil, assert.AnError)
	client.On("FetchMonthly", mock.Anything, archives[1]).Return([]chesscom.MonthlyGame{
		monthlyGame("mar-1", "rapid"),
	}, nil)

	gameRepo.On("ExistingUUIDs", mock.Anything).Return(map[string]bool{}, nil)
	gameRepo.On("InsertBatch", mock.Anything, mock.Anything).Return([]int64{7}, nil)
	queue.On("EnqueueReview", int64(7)).Return(nil)

	svc := services.NewImportService(gameRepo, client, trackerRoster(), queue, 4, 2)
	count, err := svc.ImportPlayer(context.Background(), "Magnus")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestImportPlayer_ReviewQueueFullStopsEnqueueing(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	client := new(mocks.MockChessClient)
	queue := new(mocks.MockJobQueue)

	archives := []string{"https://api.chess.com/pub/player/magnuscarlsen/games/2024/03"}
	client.On("FetchArchives", mock.Anything, "magnuscarlsen").Return(archives, nil)
	client.On("FetchMonthly", mock.Anything, archives[0]).Return([]chesscom.MonthlyGame{
		monthlyGame("g-1", "rapid"),
		monthlyGame("g-2", "rapid"),
		monthlyGame("g-3", "rapid"),
	}, nil)

	gameRepo.On("ExistingUUIDs", mock.Anything).Return(map[string]bool{}, nil)
	gameRepo.On("InsertBatch", mock.Anything, mock.Anything).Return([]int64{1, 2, 3}, nil)
	queue.On("EnqueueReview", int64(1)).Return(nil)
	queue.On("EnqueueReview", int64(2)).Return(worker.ErrQueueFull)

	svc := services.NewImportService(gameRepo, client, trackerRoster(), queue, 1, 1)
	count, err := svc.ImportPlayer(context.Background(), "Magnus")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "games insert even when the review queue is saturated")

	queue.AssertNotCalled(t, "EnqueueReview", int64(3))
}

func TestImportPlayer_ProviderDown(t *testing.T) {
	gameRepo := new(mocks.MockGameRepository)
	client := new(mocks.MockChessClient)
	queue := new(mocks.MockJobQueue)

	client.On("FetchArchives", mock.Anything, "magnuscarlsen").
		Return(nil, apperrors.NewProviderFetchError("magnuscarlsen", assert.AnError))

	svc := services.NewImportService(gameRepo, client, trackerRoster(), queue, 2, 2)
	count, err := svc.ImportPlayer(context.Background(), "Magnus")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderFetch(err))
	assert.Zero(t, count)
	gameRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}
