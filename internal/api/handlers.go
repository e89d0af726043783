// Package api exposes the review engine and the rating tracker over
// a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/thesor/chesswatch/internal/config"
	"github.com/thesor/chesswatch/internal/db"
	"github.com/thesor/chesswatch/internal/jobs"
	"github.com/thesor/chesswatch/internal/services"
)

// Server holds the dependencies the HTTP handlers need. Long-running
// work (imports, reviews) goes through Queue; only rating update
// cycles run on the request itself.
type Server struct {
	ReviewService  services.ReviewService
	TrackerService services.TrackerService
	Queue          jobs.JobQueue
	Roster         *config.Roster
	DB             *db.DB
	MetricsHandler http.Handler
}
