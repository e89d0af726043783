package api

import (
	"net/http"

	"github.com/thesor/chesswatch/internal/models"
)

type submitReviewRequest struct {
	PGN string `json:"pgn"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	game, err := s.ReviewService.SubmitGame(r.Context(), req.PGN)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, game)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r, 50, 200)
	filter := models.GameFilter{
		Player:       r.URL.Query().Get("player"),
		Source:       r.URL.Query().Get("source"),
		ReviewStatus: r.URL.Query().Get("status"),
		Limit:        limit,
		Offset:       offset,
	}

	games, total, err := s.ReviewService.ListGames(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"games":  games,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	review, err := s.ReviewService.GetReview(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, review)
}

func (s *Server) handleGetReviewMoves(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	review, err := s.ReviewService.GetReview(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"game_id": id,
		"moves":   review.Assessments,
		"summary": review.Summary,
	})
}
