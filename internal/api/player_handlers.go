package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/worker"
)

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	players := s.TrackerService.Players()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"players": players,
		"count":   len(players),
	})
}

// handleImportPlayer queues a background archive import. The heavy
// fetching happens on the worker pool, not on this request.
func (s *Server) handleImportPlayer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	name := chi.URLParam(r, "name")

	entry, ok := s.Roster.Find(name)
	if !ok {
		handleError(w, r, apperrors.NewNotFoundError("player", name))
		return
	}

	if err := s.Queue.EnqueueImport(entry.Name); err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			handleError(w, r, apperrors.NewConflictError("import queue is full, try again later"))
			return
		}
		handleError(w, r, err)
		return
	}

	log.Info("import queued for %s", entry.Name)
	writeJSON(w, r, http.StatusAccepted, map[string]any{
		"player": entry.Name,
		"status": "queued",
	})
}
