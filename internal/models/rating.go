package models

import (
	"fmt"
	"time"
)

// CategoryRating is one category's slice of a fresh provider fetch.
// Rating is nil when the player has no games in the category.
type CategoryRating struct {
	Rating *int `json:"rating"`
	Wins   int  `json:"wins"`
	Losses int  `json:"losses"`
	Draws  int  `json:"draws"`
}

// WLD renders the win/loss/draw record as "w/l/d", empty when the
// category is absent for the player.
func (r CategoryRating) WLD() string {
	if r.Rating == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d/%d", r.Wins, r.Losses, r.Draws)
}

// PlayerRatings is the fresh fetch result for one roster player.
// A category missing from the map means the provider reported nothing
// for it (or the fetch failed for the player).
type PlayerRatings struct {
	Player     string                      `json:"player"`
	FetchedAt  time.Time                   `json:"fetched_at"`
	Categories map[Category]CategoryRating `json:"categories"`
}

// Rating returns the fetched rating for a category, nil when absent.
func (p PlayerRatings) Rating(c Category) *int {
	if cr, ok := p.Categories[c]; ok {
		return cr.Rating
	}
	return nil
}

// CategorySnapshot is one category's persisted current state for a
// player. Change is nil when no baseline exists for the pair.
type CategorySnapshot struct {
	Rating *int   `json:"rating"`
	WLD    string `json:"wld"`
	Change *int   `json:"change"`
}

// RatingSnapshot is one row of the current-ratings table.
type RatingSnapshot struct {
	Player     string                        `json:"player"`
	Categories map[Category]CategorySnapshot `json:"categories"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// RatingHistoryEntry is one append-only rating sample.
type RatingHistoryEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Player    string    `json:"player"`
	Category  Category  `json:"category"`
	Rating    int       `json:"rating"`
}

// HistoryFilter narrows rating-history queries.
type HistoryFilter struct {
	Player   string
	Category Category
	Since    *time.Time
	Limit    int
}

// UpdateReport summarizes one rating update cycle.
type UpdateReport struct {
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Changed        bool          `json:"changed"`
	PlayersFetched int           `json:"players_fetched"`
	PlayersFailed  []string      `json:"players_failed,omitempty"`
	HistoryWritten int           `json:"history_written"`
}
