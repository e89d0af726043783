package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

const gameColumns = `id, source, chess_com_uuid, white, black, result, eco_code, opening_name, pgn,
       played_at, review_status, review_error, reviewed_at, created_at`

func scanGame(scan func(dest ...any) error) (models.Game, error) {
	var g models.Game
	err := scan(&g.ID, &g.Source, &g.ChessComUUID, &g.White, &g.Black, &g.Result, &g.ECOCode, &g.OpeningName, &g.PGN,
		&g.PlayedAt, &g.ReviewStatus, &g.ReviewError, &g.ReviewedAt, &g.CreatedAt)
	return g, err
}

func (r *gameRepository) Get(ctx context.Context, id int64) (*models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("getting game: id=%d", id)

	row := r.db.QueryRowContext(ctx, `
SELECT `+gameColumns+`
FROM games
WHERE id = ?
`, id)
	g, err := scanGame(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("game not found: id=%d", id)
		} else {
			log.Error("failed to get game: %v", err)
		}
		return nil, err
	}
	log.Debug("game found: white=%s, black=%s, status=%s", g.White, g.Black, g.ReviewStatus)
	return &g, nil
}

func (r *gameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games with filter: player=%s, source=%s, review_status=%s",
		filter.Player, filter.Source, filter.ReviewStatus)

	query := sqlBuilder.Select(
		"id", "source", "chess_com_uuid", "white", "black", "result", "eco_code",
		"opening_name", "pgn", "played_at", "review_status", "review_error",
		"reviewed_at", "created_at",
	).From("games")

	// Dynamic WHERE clauses
	if filter.Player != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"white": filter.Player},
			squirrel.Eq{"black": filter.Player},
		})
	}
	if filter.Source != "" {
		query = query.Where(squirrel.Eq{"source": filter.Source})
	}
	if filter.ReviewStatus != "" {
		query = query.Where(squirrel.Eq{"review_status": filter.ReviewStatus})
	}

	query = query.OrderBy("played_at DESC", "id DESC")

	// Pagination
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()
	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		games = append(games, g)
	}
	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Count(ctx context.Context, filter models.GameFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("counting games with filter: player=%s, source=%s, review_status=%s",
		filter.Player, filter.Source, filter.ReviewStatus)

	query := sqlBuilder.Select("COUNT(*)").From("games")

	// Same WHERE logic as List()
	if filter.Player != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"white": filter.Player},
			squirrel.Eq{"black": filter.Player},
		})
	}
	if filter.Source != "" {
		query = query.Where(squirrel.Eq{"source": filter.Source})
	}
	if filter.ReviewStatus != "" {
		query = query.Where(squirrel.Eq{"review_status": filter.ReviewStatus})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	err = r.db.QueryRowContext(ctx, sql, args...).Scan(&count)
	if err != nil {
		log.Error("failed to count games: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *gameRepository) Insert(ctx context.Context, g models.Game) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("inserting game: source=%s, uuid=%s, white=%s, black=%s", g.Source, g.ChessComUUID, g.White, g.Black)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO games (
    source, chess_com_uuid, white, black, result, eco_code, opening_name, pgn, played_at, review_status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chess_com_uuid) WHERE chess_com_uuid != '' DO UPDATE SET
    result = excluded.result,
    pgn = excluded.pgn,
    played_at = excluded.played_at
`, g.Source, g.ChessComUUID, g.White, g.Black, g.Result, g.ECOCode, g.OpeningName, g.PGN, g.PlayedAt, statusOrPending(g.ReviewStatus))
	if err != nil {
		log.Error("failed to insert game: %v", err)
		return 0, err
	}
	if g.ChessComUUID == "" {
		id, err := res.LastInsertId()
		if err != nil {
			log.Error("failed to get game id: %v", err)
			return 0, err
		}
		log.Debug("game inserted: id=%d", id)
		return id, nil
	}
	// The upsert path leaves LastInsertId unreliable, resolve by uuid.
	var id int64
	err = r.db.QueryRowContext(ctx, `SELECT id FROM games WHERE chess_com_uuid = ?`, g.ChessComUUID).Scan(&id)
	if err != nil {
		log.Error("failed to get game id: %v", err)
	} else {
		log.Debug("game upserted: id=%d", id)
	}
	return id, err
}

func (r *gameRepository) InsertBatch(ctx context.Context, games []models.Game) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("batch inserting %d games", len(games))

	if len(games) == 0 {
		return nil, nil
	}

	var insertedIDs []int64
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO games (
    source, chess_com_uuid, white, black, result, eco_code, opening_name, pgn, played_at, review_status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chess_com_uuid) WHERE chess_com_uuid != '' DO NOTHING
`)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, g := range games {
			res, err := stmt.ExecContext(ctx, g.Source, g.ChessComUUID, g.White, g.Black, g.Result, g.ECOCode, g.OpeningName, g.PGN, g.PlayedAt, statusOrPending(g.ReviewStatus))
			if err != nil {
				log.Error("failed to insert game uuid=%s: %v", g.ChessComUUID, err)
				return err
			}
			if n, err := res.RowsAffected(); err != nil || n == 0 {
				continue // duplicate, left untouched
			}
			if id, err := res.LastInsertId(); err == nil && id != 0 {
				insertedIDs = append(insertedIDs, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("batch insert completed, %d new games inserted", len(insertedIDs))
	return insertedIDs, nil
}

func statusOrPending(status string) string {
	if status == "" {
		return models.ReviewStatusPending
	}
	return status
}

func (r *gameRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("updating game status: game_id=%d, status=%s", id, status)

	_, err := r.db.ExecContext(ctx, `UPDATE games SET review_status = ? WHERE id = ?`, status, id)
	if err != nil {
		log.Error("failed to update game status: %v", err)
	}
	return err
}

func (r *gameRepository) MarkDone(ctx context.Context, id int64, reviewedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("marking game reviewed: game_id=%d", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE games
SET review_status = ?, review_error = '', reviewed_at = ?
WHERE id = ?
`, models.ReviewStatusDone, reviewedAt, id)
	if err != nil {
		log.Error("failed to mark game done: %v", err)
	}
	return err
}

func (r *gameRepository) MarkFailed(ctx context.Context, id int64, reviewError string) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("marking game failed: game_id=%d, error=%s", id, reviewError)

	_, err := r.db.ExecContext(ctx, `
UPDATE games
SET review_status = ?, review_error = ?
WHERE id = ?
`, models.ReviewStatusFailed, reviewError, id)
	if err != nil {
		log.Error("failed to mark game failed: %v", err)
	}
	return err
}

func (r *gameRepository) UpdateOpening(ctx context.Context, id int64, ecoCode, openingName string) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("updating game opening: game_id=%d, eco=%s, opening=%s", id, ecoCode, openingName)

	_, err := r.db.ExecContext(ctx, `
UPDATE games
SET eco_code = ?, opening_name = ?
WHERE id = ?
`, ecoCode, openingName, id)
	if err != nil {
		log.Error("failed to update game opening: %v", err)
	}
	return err
}

func (r *gameRepository) ResetRunningToPending(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("resetting running games to pending")

	_, err := r.db.ExecContext(ctx, `
UPDATE games
SET review_status = 'pending'
WHERE review_status = 'running'
`)
	if err != nil {
		log.Error("failed to reset running games: %v", err)
	}
	return err
}

func (r *gameRepository) ExistingUUIDs(ctx context.Context) (map[string]bool, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("loading existing chess.com uuids")

	rows, err := r.db.QueryContext(ctx, `SELECT chess_com_uuid FROM games WHERE chess_com_uuid != ''`)
	if err != nil {
		log.Error("failed to list uuids: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan uuid: %v", err)
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
