package sqlite

import (
	"context"
	"database/sql"

	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/repository"
)

type assessmentRepository struct {
	db *sql.DB
}

// NewAssessmentRepository creates a new AssessmentRepository implementation
func NewAssessmentRepository(db *sql.DB) repository.AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) ReplaceForGame(ctx context.Context, gameID int64, assessments []models.MoveAssessment) error {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")
	log.Debug("replacing assessments: game_id=%d, count=%d", gameID, len(assessments))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM move_assessments WHERE game_id = ?`, gameID); err != nil {
			log.Error("failed to clear assessments: %v", err)
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO move_assessments (
    game_id, ply, move_number, color, san, best_move, fen_before, fen_after,
    eval_before, eval_after, mate_before, mate_after, eval_loss, quality, comment
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare assessment insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, a := range assessments {
			_, err := stmt.ExecContext(ctx, gameID, a.Ply, a.MoveNumber, a.Color, a.SAN, a.BestMove, a.FENBefore, a.FENAfter,
				a.EvalBefore, a.EvalAfter, a.MateBefore, a.MateAfter, a.EvalLoss, string(a.Quality), a.Comment)
			if err != nil {
				log.Error("failed to insert assessment ply=%d: %v", a.Ply, err)
				return err
			}
		}
		return nil
	})
}

func (r *assessmentRepository) ListForGame(ctx context.Context, gameID int64) ([]models.MoveAssessment, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")
	log.Debug("listing assessments: game_id=%d", gameID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, game_id, ply, move_number, color, san, best_move, fen_before, fen_after,
       eval_before, eval_after, mate_before, mate_after, eval_loss, quality, comment, created_at
FROM move_assessments
WHERE game_id = ?
ORDER BY ply ASC
`, gameID)
	if err != nil {
		log.Error("failed to list assessments: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.MoveAssessment
	for rows.Next() {
		var a models.MoveAssessment
		if err := rows.Scan(&a.ID, &a.GameID, &a.Ply, &a.MoveNumber, &a.Color, &a.SAN, &a.BestMove, &a.FENBefore, &a.FENAfter,
			&a.EvalBefore, &a.EvalAfter, &a.MateBefore, &a.MateAfter, &a.EvalLoss, &a.Quality, &a.Comment, &a.CreatedAt); err != nil {
			log.Error("failed to scan assessment row: %v", err)
			return nil, err
		}
		out = append(out, a)
	}
	log.Debug("found %d assessments", len(out))
	return out, rows.Err()
}

func (r *assessmentRepository) SummaryForGame(ctx context.Context, gameID int64) (models.ReviewSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("assessment_repo")
	log.Debug("summarizing assessments: game_id=%d", gameID)

	var summary models.ReviewSummary
	rows, err := r.db.QueryContext(ctx, `
SELECT quality, COUNT(*)
FROM move_assessments
WHERE game_id = ?
GROUP BY quality
`, gameID)
	if err != nil {
		log.Error("failed to summarize assessments: %v", err)
		return summary, err
	}
	defer rows.Close()

	for rows.Next() {
		var quality models.Quality
		var count int
		if err := rows.Scan(&quality, &count); err != nil {
			log.Error("failed to scan summary row: %v", err)
			return summary, err
		}
		switch quality {
		case models.QualityExcellent:
			summary.Excellent = count
		case models.QualityGood:
			summary.Good = count
		case models.QualityInaccuracy:
			summary.Inaccuracies = count
		case models.QualityMistake:
			summary.Mistakes = count
		case models.QualityBlunder:
			summary.Blunders = count
		case models.QualityUnknown:
			summary.Unknown = count
		}
	}
	return summary, rows.Err()
}
