package api

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
)

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.TrackerService.Snapshots(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"ratings": snapshots,
		"count":   len(snapshots),
	})
}

func (s *Server) handleRatingHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.HistoryFilter{Player: q.Get("player")}

	if raw := q.Get("category"); raw != "" {
		cat, ok := models.ParseCategory(raw)
		if !ok {
			handleError(w, r, apperrors.NewValidationError("category", "must be rapid, blitz or bullet"))
			return
		}
		filter.Category = cat
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			handleError(w, r, apperrors.NewValidationError("since", "must be an RFC 3339 timestamp"))
			return
		}
		filter.Since = &since
	}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			filter.Limit = v
		}
	}

	entries, err := s.TrackerService.History(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleUpdateRatings runs one update cycle on the request and
// returns its report. Scheduled cycles go through the job queue;
// this endpoint forces one now.
func (s *Server) handleUpdateRatings(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("manual rating update requested")

	report, err := s.TrackerService.RunUpdateCycle(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, report)
}
