package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/repository"
	"github.com/thesor/chesswatch/internal/repository/sqlite"
	"github.com/thesor/chesswatch/internal/testutil"
)

type AssessmentRepositorySuite struct {
	suite.Suite
	db     *sql.DB
	repo   repository.AssessmentRepository
	gameID int64
}

func (s *AssessmentRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewAssessmentRepository(s.db)

	games := sqlite.NewGameRepository(s.db)
	id, err := games.Insert(context.Background(), models.Game{
		Source: models.SourceManual,
		White:  "alice",
		Black:  "bob",
		PGN:    "1. e4 e5 *",
	})
	s.Require().NoError(err)
	s.gameID = id
}

func (s *AssessmentRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func intPtr(v int) *int { return &v }

func (s *AssessmentRepositorySuite) TestReplaceAndList() {
	ctx := context.Background()

	assessments := []models.MoveAssessment{
		{
			Ply: 1, MoveNumber: 1, Color: models.ColorWhite, SAN: "e4", BestMove: "e2e4",
			FENBefore: "startpos", FENAfter: "after-e4",
			EvalBefore: intPtr(20), EvalAfter: intPtr(25),
			EvalLoss: 0, Quality: models.QualityExcellent, Comment: "Excellent! You found the best move.",
		},
		{
			Ply: 2, MoveNumber: 1, Color: models.ColorBlack, SAN: "e5",
			FENBefore: "after-e4", FENAfter: "after-e5",
			Quality: models.QualityUnknown, Comment: "This move could not be evaluated.",
		},
	}

	err := s.repo.ReplaceForGame(ctx, s.gameID, assessments)
	s.Require().NoError(err)

	listed, err := s.repo.ListForGame(ctx, s.gameID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)

	first := listed[0]
	s.Assert().Equal(1, first.Ply)
	s.Assert().Equal(models.ColorWhite, first.Color)
	s.Assert().Equal("e4", first.SAN)
	s.Assert().Equal("e2e4", first.BestMove)
	s.Require().NotNil(first.EvalBefore)
	s.Assert().Equal(20, *first.EvalBefore)
	s.Assert().Equal(models.QualityExcellent, first.Quality)

	second := listed[1]
	s.Assert().Equal(2, second.Ply)
	s.Assert().Nil(second.EvalBefore)
	s.Assert().Nil(second.EvalAfter)
	s.Assert().Equal(models.QualityUnknown, second.Quality)
}

func (s *AssessmentRepositorySuite) TestReplaceForGame_Overwrites() {
	ctx := context.Background()

	first := []models.MoveAssessment{
		{Ply: 1, MoveNumber: 1, Color: models.ColorWhite, SAN: "e4", FENBefore: "f0", FENAfter: "f1", Quality: models.QualityGood},
		{Ply: 2, MoveNumber: 1, Color: models.ColorBlack, SAN: "e5", FENBefore: "f1", FENAfter: "f2", Quality: models.QualityGood},
	}
	s.Require().NoError(s.repo.ReplaceForGame(ctx, s.gameID, first))

	second := []models.MoveAssessment{
		{Ply: 1, MoveNumber: 1, Color: models.ColorWhite, SAN: "e4", FENBefore: "f0", FENAfter: "f1", Quality: models.QualityBlunder, EvalLoss: 300},
	}
	s.Require().NoError(s.repo.ReplaceForGame(ctx, s.gameID, second))

	listed, err := s.repo.ListForGame(ctx, s.gameID)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Assert().Equal(models.QualityBlunder, listed[0].Quality)
	s.Assert().Equal(300, listed[0].EvalLoss)
}

func (s *AssessmentRepositorySuite) TestSummaryForGame() {
	ctx := context.Background()

	assessments := []models.MoveAssessment{
		{Ply: 1, MoveNumber: 1, Color: models.ColorWhite, SAN: "e4", FENBefore: "a", FENAfter: "b", Quality: models.QualityExcellent},
		{Ply: 2, MoveNumber: 1, Color: models.ColorBlack, SAN: "e5", FENBefore: "b", FENAfter: "c", Quality: models.QualityExcellent},
		{Ply: 3, MoveNumber: 2, Color: models.ColorWhite, SAN: "Nf3", FENBefore: "c", FENAfter: "d", Quality: models.QualityMistake},
		{Ply: 4, MoveNumber: 2, Color: models.ColorBlack, SAN: "Nc6", FENBefore: "d", FENAfter: "e", Quality: models.QualityBlunder},
		{Ply: 5, MoveNumber: 3, Color: models.ColorWhite, SAN: "Bb5", FENBefore: "e", FENAfter: "f", Quality: models.QualityUnknown},
	}
	s.Require().NoError(s.repo.ReplaceForGame(ctx, s.gameID, assessments))

	summary, err := s.repo.SummaryForGame(ctx, s.gameID)
	s.Require().NoError(err)
	s.Assert().Equal(2, summary.Excellent)
	s.Assert().Equal(0, summary.Good)
	s.Assert().Equal(1, summary.Mistakes)
	s.Assert().Equal(1, summary.Blunders)
	s.Assert().Equal(1, summary.Unknown)
}

func (s *AssessmentRepositorySuite) TestDeleteGameCascades() {
	ctx := context.Background()

	assessments := []models.MoveAssessment{
		{Ply: 1, MoveNumber: 1, Color: models.ColorWhite, SAN: "e4", FENBefore: "a", FENAfter: "b", Quality: models.QualityGood},
	}
	s.Require().NoError(s.repo.ReplaceForGame(ctx, s.gameID, assessments))

	_, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, s.gameID)
	s.Require().NoError(err)

	listed, err := s.repo.ListForGame(ctx, s.gameID)
	s.Require().NoError(err)
	s.Assert().Empty(listed)
}

func TestAssessmentRepositorySuite(t *testing.T) {
	suite.Run(t, new(AssessmentRepositorySuite))
}
