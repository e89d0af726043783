package config

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Engine backend names accepted by ENGINE_BACKEND.
const (
	BackendUCI      = "uci"
	BackendChessAPI = "chessapi"
	BackendLichess  = "lichess"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	EngineBackend string
	StockfishPath string
	EngineDepth   int
	EngineMaxTime time.Duration
	EvalCacheSize int
	ChessAPIURL   string
	LichessURL    string

	OpeningsPath string
	RosterPath   string

	// Cron expression for automatic rating update cycles. Empty disables
	// the scheduler.
	UpdateSchedule string

	ReviewWorkerCount  int
	ReviewQueueSize    int
	ImportMonths       int
	MaxConcurrentFetch int

	MetricsEnabled bool
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "chesswatch.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		EngineBackend: envOr("ENGINE_BACKEND", BackendUCI),
		StockfishPath: envOr("STOCKFISH_PATH", "stockfish"),
		EngineDepth:   envIntOr("ENGINE_DEPTH", 12),
		EngineMaxTime: time.Duration(envIntOr("ENGINE_MAX_TIME_MS", 10000)) * time.Millisecond,
		EvalCacheSize: envIntOr("EVAL_CACHE_SIZE", 512),
		ChessAPIURL:   envOr("CHESS_API_URL", "https://chess-api.com/v1"),
		LichessURL:    envOr("LICHESS_URL", "https://lichess.org"),

		OpeningsPath: envOr("OPENINGS_PATH", ""),
		RosterPath:   envOr("ROSTER_PATH", "roster.yaml"),

		UpdateSchedule: envOr("UPDATE_SCHEDULE", "0 * * * *"),

		ReviewWorkerCount:  envIntOr("REVIEW_WORKER_COUNT", 2),
		ReviewQueueSize:    envIntOr("REVIEW_QUEUE_SIZE", 64),
		ImportMonths:       envIntOr("IMPORT_MONTHS", 4),
		MaxConcurrentFetch: envIntOr("MAX_CONCURRENT_FETCH", 3),

		MetricsEnabled: envBoolOr("METRICS_ENABLED", true),
	}
}

// Validate checks the configuration for values that would prevent the
// service from running, collecting every problem into one error.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}

	switch c.EngineBackend {
	case BackendUCI:
		// An empty path falls back to "stockfish" on PATH at startup.
		if c.StockfishPath != "" {
			if _, err := exec.LookPath(c.StockfishPath); err != nil {
				problems = append(problems, fmt.Sprintf("STOCKFISH_PATH %q not found: %v", c.StockfishPath, err))
			}
		}
	case BackendChessAPI:
		if c.ChessAPIURL == "" {
			problems = append(problems, "CHESS_API_URL cannot be empty for the chessapi backend")
		}
	case BackendLichess:
		if c.LichessURL == "" {
			problems = append(problems, "LICHESS_URL cannot be empty for the lichess backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("ENGINE_BACKEND %q is not one of uci, chessapi, lichess", c.EngineBackend))
	}

	if c.EngineDepth < 1 || c.EngineDepth > 30 {
		problems = append(problems, fmt.Sprintf("ENGINE_DEPTH must be between 1 and 30, got %d", c.EngineDepth))
	}
	if c.EngineMaxTime <= 0 {
		problems = append(problems, "ENGINE_MAX_TIME_MS must be positive")
	}
	if c.EvalCacheSize < 0 {
		problems = append(problems, "EVAL_CACHE_SIZE cannot be negative")
	}

	if c.ReviewWorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("REVIEW_WORKER_COUNT must be at least 1, got %d", c.ReviewWorkerCount))
	}
	if c.ReviewQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("REVIEW_QUEUE_SIZE must be at least 1, got %d", c.ReviewQueueSize))
	}
	if c.ImportMonths < 1 {
		problems = append(problems, fmt.Sprintf("IMPORT_MONTHS must be at least 1, got %d", c.ImportMonths))
	}
	if c.MaxConcurrentFetch < 1 {
		problems = append(problems, fmt.Sprintf("MAX_CONCURRENT_FETCH must be at least 1, got %d", c.MaxConcurrentFetch))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
