package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thesor/chesswatch/internal/analysis"
	"github.com/thesor/chesswatch/internal/api"
	"github.com/thesor/chesswatch/internal/chesscom"
	"github.com/thesor/chesswatch/internal/config"
	"github.com/thesor/chesswatch/internal/db"
	"github.com/thesor/chesswatch/internal/engine"
	"github.com/thesor/chesswatch/internal/jobs"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/opening"
	"github.com/thesor/chesswatch/internal/repository/sqlite"
	"github.com/thesor/chesswatch/internal/services"
	"github.com/thesor/chesswatch/internal/stats"
	statsprom "github.com/thesor/chesswatch/internal/stats/prometheus"
	"github.com/thesor/chesswatch/internal/tracker"
	"github.com/thesor/chesswatch/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("ChessWatch Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("engine_backend=%s", cfg.EngineBackend)
	log.Debug("engine_depth=%d", cfg.EngineDepth)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("review_worker_count=%d", cfg.ReviewWorkerCount)
	log.Debug("review_queue_size=%d", cfg.ReviewQueueSize)
	log.Debug("update_schedule=%s", cfg.UpdateSchedule)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Metrics
	var collector stats.Collector = stats.NewNoop()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		collector = statsprom.New(nil)
		metricsHandler = promhttp.Handler()
	}

	// Roster of tracked players
	roster, err := config.LoadRoster(cfg.RosterPath)
	if err != nil {
		log.Error("failed to load roster: %v", err)
		os.Exit(1)
	}
	log.Info("tracking %d player(s)", len(roster.Players))

	// Evaluation backend
	factory, err := engine.NewFactory(engine.Config{
		Backend:       cfg.EngineBackend,
		StockfishPath: cfg.StockfishPath,
		ChessAPIURL:   cfg.ChessAPIURL,
		LichessURL:    cfg.LichessURL,
	}, collector)
	if err != nil {
		log.Error("failed to configure evaluation backend: %v", err)
		os.Exit(1)
	}
	enginePool, err := engine.NewPool(cfg.ReviewWorkerCount, factory)
	if err != nil {
		log.Error("failed to build engine pool: %v", err)
		os.Exit(1)
	}
	defer enginePool.Close()

	// Opening dataset; the resolver still works without it.
	var dataset *opening.Dataset
	if cfg.OpeningsPath != "" {
		dataset, err = opening.Load(cfg.OpeningsPath)
		if err != nil {
			log.Warn("opening dataset unavailable, resolver degraded: %v", err)
			dataset = nil
		} else {
			log.Info("opening dataset loaded from %s", cfg.OpeningsPath)
		}
	}
	resolver := opening.NewResolver(dataset)
	reviewer := analysis.NewReviewer(resolver, engine.Options{
		Depth:   cfg.EngineDepth,
		MaxTime: cfg.EngineMaxTime,
	})

	// Repositories
	gameRepo := sqlite.NewGameRepository(database.DB)
	assessmentRepo := sqlite.NewAssessmentRepository(database.DB)
	ratingRepo := sqlite.NewRatingRepository(database.DB)

	// Worker pools and the job queue facade
	reviewPool := worker.NewPool(cfg.ReviewWorkerCount, cfg.ReviewQueueSize, collector)
	backgroundPool := worker.NewPool(2, 16, collector)
	queue := jobs.NewWorkerQueue(reviewPool, backgroundPool)

	// Services
	chessClient := chesscom.New()
	reviewService := services.NewReviewService(gameRepo, assessmentRepo, enginePool, reviewer, queue, collector, cfg.EvalCacheSize)
	importService := services.NewImportService(gameRepo, chessClient, roster, queue, cfg.ImportMonths, cfg.MaxConcurrentFetch)
	trackerService := services.NewTrackerService(ratingRepo, chessClient, roster, cfg.MaxConcurrentFetch, collector)
	queue.Bind(reviewService, importService, trackerService)

	ctx, cancel := context.WithCancel(context.Background())
	reviewPool.Start(ctx)
	backgroundPool.Start(ctx)

	// Pick up reviews left pending or interrupted by the last shutdown.
	if n, err := reviewService.ResumePending(ctx); err != nil {
		log.Warn("failed to resume pending reviews: %v", err)
	} else if n > 0 {
		log.Info("resumed %d pending review(s)", n)
	}

	// Scheduled rating update cycles
	var scheduler *tracker.Scheduler
	if cfg.UpdateSchedule != "" {
		scheduler, err = tracker.NewScheduler(cfg.UpdateSchedule, func(context.Context) error {
			return queue.EnqueueUpdate()
		})
		if err != nil {
			log.Error("invalid update schedule: %v", err)
			os.Exit(1)
		}
		scheduler.Start(ctx)
	} else {
		log.Info("update scheduler disabled")
	}

	srv := &api.Server{
		ReviewService:  reviewService,
		TrackerService: trackerService,
		Queue:          queue,
		Roster:         roster,
		DB:             database,
		MetricsHandler: metricsHandler,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	if scheduler != nil {
		log.Debug("stopping scheduler")
		scheduler.Stop()
	}

	// Cancel worker context and drain the pools
	cancel()
	log.Debug("stopping review pool")
	reviewPool.Stop()
	log.Debug("stopping background pool")
	backgroundPool.Stop()

	log.Info("===========================================")
	log.Info("ChessWatch Server Stopped")
	log.Info("===========================================")
}
