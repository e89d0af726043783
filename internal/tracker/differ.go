// Package tracker maintains rating snapshots over time: it compares
// freshly fetched ratings against the last persisted state and
// produces the minimal set of writes, plus the cron scheduling that
// drives periodic update cycles.
package tracker

import (
	"time"

	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
)

// Baselines holds manually configured starting ratings keyed by
// player then category. A manual baseline always wins over anything
// derived from history.
type Baselines map[string]map[models.Category]int

// Input bundles the state one diff needs.
type Input struct {
	// Last is the previously persisted rating per player and
	// category. Categories never persisted are absent.
	Last map[string]map[models.Category]int

	// Fresh holds this cycle's fetched snapshots, one per player
	// whose fetch succeeded. Failed players are simply not listed
	// and keep their persisted state untouched.
	Fresh []models.PlayerRatings

	// EarliestHistory is the first recorded history rating per
	// player and category, the fallback baseline.
	EarliestHistory map[string]map[models.Category]int

	// At is the shared cycle timestamp stamped on every produced
	// history entry.
	At time.Time
}

// Result is the write set of one cycle. When Changed is false both
// collections are empty and nothing must be persisted.
type Result struct {
	Changed bool
	History []models.RatingHistoryEntry
	Current map[string]models.RatingSnapshot
}

// Differ decides what a fetch cycle writes. It is a pure comparison,
// persistence stays with the caller.
type Differ struct {
	baselines Baselines
	log       *logger.Logger
}

func NewDiffer(baselines Baselines) *Differ {
	return &Differ{
		baselines: baselines,
		log:       logger.Default().WithPrefix("differ"),
	}
}

// Diff gates on per-category rating values alone: win/loss/draw
// movement without a rating change produces no writes, which keeps
// repeated cycles idempotent. Once any rating changed, every fetched
// player's current row is rebuilt and one history entry is appended
// per non-null fresh rating, all sharing the cycle timestamp.
func (d *Differ) Diff(in Input) Result {
	if !d.anyRatingChanged(in) {
		d.log.Debug("no rating changes across %d player(s)", len(in.Fresh))
		return Result{Current: map[string]models.RatingSnapshot{}}
	}

	res := Result{
		Changed: true,
		Current: make(map[string]models.RatingSnapshot, len(in.Fresh)),
	}

	for _, pr := range in.Fresh {
		snap := models.RatingSnapshot{
			Player:     pr.Player,
			UpdatedAt:  in.At,
			Categories: make(map[models.Category]models.CategorySnapshot, len(pr.Categories)),
		}
		for _, cat := range models.Categories() {
			cr, ok := pr.Categories[cat]
			if !ok {
				continue
			}
			cs := models.CategorySnapshot{Rating: cr.Rating, WLD: cr.WLD()}
			if cr.Rating != nil {
				if base, ok := d.baseline(pr.Player, cat, in.EarliestHistory); ok {
					delta := *cr.Rating - base
					cs.Change = &delta
				}
				res.History = append(res.History, models.RatingHistoryEntry{
					Timestamp: in.At,
					Player:    pr.Player,
					Category:  cat,
					Rating:    *cr.Rating,
				})
			}
			snap.Categories[cat] = cs
		}
		res.Current[pr.Player] = snap
	}

	d.log.Info("ratings changed: rewriting %d player(s), appending %d history row(s)",
		len(res.Current), len(res.History))
	return res
}

// anyRatingChanged reports whether any non-null fresh rating differs
// from its persisted value. A null fresh rating never gates: fetch
// gaps must not look like rating movement.
func (d *Differ) anyRatingChanged(in Input) bool {
	for _, pr := range in.Fresh {
		for _, cat := range models.Categories() {
			fresh := pr.Rating(cat)
			if fresh == nil {
				continue
			}
			last, ok := in.Last[pr.Player][cat]
			if !ok || last != *fresh {
				return true
			}
		}
	}
	return false
}

// baseline resolves the reference rating a delta is computed
// against: manual configuration first, earliest history second,
// otherwise none and the delta stays unavailable.
func (d *Differ) baseline(player string, cat models.Category, earliest map[string]map[models.Category]int) (int, bool) {
	if m, ok := d.baselines[player]; ok {
		if b, ok := m[cat]; ok {
			return b, true
		}
	}
	if m, ok := earliest[player]; ok {
		if b, ok := m[cat]; ok {
			return b, true
		}
	}
	return 0, false
}
