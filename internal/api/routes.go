package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.MetricsHandler != nil {
		r.Handle("/metrics", s.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ratings", s.handleRatings)
		r.Get("/ratings/history", s.handleRatingHistory)
		r.Post("/ratings/update", s.handleUpdateRatings)

		r.Get("/players", s.handlePlayers)
		r.Post("/players/{name}/import", s.handleImportPlayer)

		r.Post("/reviews", s.handleSubmitReview)
		r.Get("/reviews", s.handleListReviews)
		r.Get("/reviews/{id}", s.handleGetReview)
		r.Get("/reviews/{id}/moves", s.handleGetReviewMoves)
	})

	return r
}
