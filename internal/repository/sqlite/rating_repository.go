package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/repository"
)

type ratingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a new RatingRepository implementation
func NewRatingRepository(db *sql.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) CurrentRatings(ctx context.Context) (map[string]map[models.Category]int, error) {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("loading current ratings")

	rows, err := r.db.QueryContext(ctx, `
SELECT player, category, rating
FROM current_ratings
WHERE rating IS NOT NULL
`)
	if err != nil {
		log.Error("failed to load current ratings: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[models.Category]int)
	for rows.Next() {
		var player string
		var category models.Category
		var rating int
		if err := rows.Scan(&player, &category, &rating); err != nil {
			log.Error("failed to scan current rating row: %v", err)
			return nil, err
		}
		if out[player] == nil {
			out[player] = make(map[models.Category]int)
		}
		out[player][category] = rating
	}
	log.Debug("loaded current ratings for %d players", len(out))
	return out, rows.Err()
}

func (r *ratingRepository) Snapshots(ctx context.Context) ([]models.RatingSnapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("loading rating snapshots")

	rows, err := r.db.QueryContext(ctx, `
SELECT player, category, rating, wld, change, updated_at
FROM current_ratings
ORDER BY player ASC, category ASC
`)
	if err != nil {
		log.Error("failed to load snapshots: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.RatingSnapshot
	byPlayer := make(map[string]int)
	for rows.Next() {
		var player, wld string
		var category models.Category
		var rating, change *int
		var updatedAt time.Time
		if err := rows.Scan(&player, &category, &rating, &wld, &change, &updatedAt); err != nil {
			log.Error("failed to scan snapshot row: %v", err)
			return nil, err
		}
		idx, ok := byPlayer[player]
		if !ok {
			out = append(out, models.RatingSnapshot{
				Player:     player,
				Categories: make(map[models.Category]models.CategorySnapshot),
				UpdatedAt:  updatedAt,
			})
			idx = len(out) - 1
			byPlayer[player] = idx
		}
		out[idx].Categories[category] = models.CategorySnapshot{Rating: rating, WLD: wld, Change: change}
		if updatedAt.After(out[idx].UpdatedAt) {
			out[idx].UpdatedAt = updatedAt
		}
	}
	log.Debug("loaded %d snapshots", len(out))
	return out, rows.Err()
}

func (r *ratingRepository) SaveCycle(ctx context.Context, current map[string]models.RatingSnapshot, history []models.RatingHistoryEntry) error {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("saving rating cycle: players=%d, history=%d", len(current), len(history))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO current_ratings (player, category, rating, wld, change, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(player, category) DO UPDATE SET
    rating = excluded.rating,
    wld = excluded.wld,
    change = excluded.change,
    updated_at = excluded.updated_at
`)
		if err != nil {
			log.Error("failed to prepare current upsert: %v", err)
			return err
		}
		defer stmt.Close()

		for player, snap := range current {
			for _, category := range models.Categories() {
				cs, ok := snap.Categories[category]
				if !ok {
					continue
				}
				if _, err := stmt.ExecContext(ctx, player, category, cs.Rating, cs.WLD, cs.Change, snap.UpdatedAt); err != nil {
					log.Error("failed to upsert current rating player=%s category=%s: %v", player, category, err)
					return err
				}
			}
		}

		if len(history) == 0 {
			return nil
		}
		hstmt, err := tx.PrepareContext(ctx, `
INSERT INTO rating_history (timestamp, player, category, rating)
VALUES (?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare history insert: %v", err)
			return err
		}
		defer hstmt.Close()

		for _, e := range history {
			if _, err := hstmt.ExecContext(ctx, e.Timestamp, e.Player, e.Category, e.Rating); err != nil {
				log.Error("failed to insert history player=%s category=%s: %v", e.Player, e.Category, err)
				return err
			}
		}
		return nil
	})
}

func (r *ratingRepository) EarliestRatings(ctx context.Context) (map[string]map[models.Category]int, error) {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("loading earliest history ratings")

	// SQLite resolves the bare rating column from the row holding MIN(timestamp).
	rows, err := r.db.QueryContext(ctx, `
SELECT player, category, rating, MIN(timestamp)
FROM rating_history
GROUP BY player, category
`)
	if err != nil {
		log.Error("failed to load earliest ratings: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[models.Category]int)
	for rows.Next() {
		var player string
		var category models.Category
		var rating int
		var ts time.Time
		if err := rows.Scan(&player, &category, &rating, &ts); err != nil {
			log.Error("failed to scan earliest rating row: %v", err)
			return nil, err
		}
		if out[player] == nil {
			out[player] = make(map[models.Category]int)
		}
		out[player][category] = rating
	}
	return out, rows.Err()
}

func (r *ratingRepository) History(ctx context.Context, filter models.HistoryFilter) ([]models.RatingHistoryEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("rating_repo")
	log.Debug("listing rating history: player=%s, category=%s", filter.Player, filter.Category)

	query := sqlBuilder.Select("id", "timestamp", "player", "category", "rating").
		From("rating_history")

	// Dynamic WHERE clauses
	if filter.Player != "" {
		query = query.Where(squirrel.Eq{"player": filter.Player})
	}
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"timestamp": *filter.Since})
	}

	query = query.OrderBy("timestamp ASC", "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	query = query.Limit(uint64(limit))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.RatingHistoryEntry
	for rows.Next() {
		var e models.RatingHistoryEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Player, &e.Category, &e.Rating); err != nil {
			log.Error("failed to scan history row: %v", err)
			return nil, err
		}
		out = append(out, e)
	}
	log.Debug("found %d history entries", len(out))
	return out, rows.Err()
}
