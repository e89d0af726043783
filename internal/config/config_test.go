package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesor/chesswatch/internal/config"
	"github.com/thesor/chesswatch/internal/models"
)

func validConfig() config.Config {
	return config.Config{
		Addr:     ":8080",
		DBPath:   "test.db",
		LogLevel: "INFO",

		EngineBackend: config.BackendChessAPI,
		StockfishPath: "",
		EngineDepth:   12,
		EngineMaxTime: 10 * time.Second,
		EvalCacheSize: 512,
		ChessAPIURL:   "https://chess-api.com/v1",
		LichessURL:    "https://lichess.org",

		RosterPath:     "roster.yaml",
		UpdateSchedule: "0 * * * *",

		ReviewWorkerCount:  2,
		ReviewQueueSize:    64,
		ImportMonths:       4,
		MaxConcurrentFetch: 3,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_EngineBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr string
	}{
		{name: "chessapi ok", backend: config.BackendChessAPI},
		{name: "lichess ok", backend: config.BackendLichess},
		{name: "unknown backend", backend: "gnuchess", wantErr: "ENGINE_BACKEND"},
		{name: "empty backend", backend: "", wantErr: "ENGINE_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.EngineBackend = tt.backend

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_UCIBackendPathMissing(t *testing.T) {
	cfg := validConfig()
	cfg.EngineBackend = config.BackendUCI
	cfg.StockfishPath = "nonexistent-stockfish-binary-12345"

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "STOCKFISH_PATH")
}

func TestValidate_UCIBackendEmptyPathAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.EngineBackend = config.BackendUCI
	cfg.StockfishPath = ""

	// Empty path means "stockfish" from PATH is resolved at startup.
	assert.NoError(t, cfg.Validate())
}

func TestValidate_EngineDepth(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		ok    bool
	}{
		{name: "minimum", depth: 1, ok: true},
		{name: "maximum", depth: 30, ok: true},
		{name: "zero", depth: 0, ok: false},
		{name: "negative", depth: -1, ok: false},
		{name: "too high", depth: 31, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.EngineDepth = tt.depth

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "ENGINE_DEPTH")
			}
		})
	}
}

func TestValidate_WorkerAndQueueBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "zero workers", mutate: func(c *config.Config) { c.ReviewWorkerCount = 0 }, wantErr: "REVIEW_WORKER_COUNT"},
		{name: "zero queue", mutate: func(c *config.Config) { c.ReviewQueueSize = 0 }, wantErr: "REVIEW_QUEUE_SIZE"},
		{name: "zero import months", mutate: func(c *config.Config) { c.ImportMonths = 0 }, wantErr: "IMPORT_MONTHS"},
		{name: "zero fetch bound", mutate: func(c *config.Config) { c.MaxConcurrentFetch = 0 }, wantErr: "MAX_CONCURRENT_FETCH"},
		{name: "negative cache", mutate: func(c *config.Config) { c.EvalCacheSize = -1 }, wantErr: "EVAL_CACHE_SIZE"},
		{name: "zero max time", mutate: func(c *config.Config) { c.EngineMaxTime = 0 }, wantErr: "ENGINE_MAX_TIME_MS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR", "debug"} {
		t.Run(level, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = level
			assert.NoError(t, cfg.Validate())
		})
	}

	cfg := validConfig()
	cfg.LogLevel = "LOUD"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""
	cfg.DBPath = ""
	cfg.EngineDepth = 50
	cfg.ReviewWorkerCount = 0

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "ENGINE_DEPTH")
	assert.Contains(t, errStr, "REVIEW_WORKER_COUNT")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("ENGINE_BACKEND", "lichess")
	t.Setenv("ENGINE_MAX_TIME_MS", "2500")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, config.BackendLichess, cfg.EngineBackend)
	assert.Equal(t, 2500*time.Millisecond, cfg.EngineMaxTime)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("ENGINE_DEPTH", "deep")

	cfg := config.Load()
	assert.Equal(t, 12, cfg.EngineDepth)
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	content := `players:
  - name: Ulysse
    chesscom: realulysse
    baselines:
      rapid: 1971
      blitz: 1491
  - name: Tigran
    chesscom: tigranc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	roster, err := config.LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster.Players, 2)

	assert.Equal(t, "Ulysse", roster.Players[0].Name)
	assert.Equal(t, "realulysse", roster.Players[0].ChessCom)
	assert.Equal(t, []string{"Ulysse", "Tigran"}, roster.Names())

	baselines := roster.ManualBaselines()
	require.Contains(t, baselines, "Ulysse")
	assert.Equal(t, 1971, baselines["Ulysse"][models.CategoryRapid])
	assert.Equal(t, 1491, baselines["Ulysse"][models.CategoryBlitz])
	assert.NotContains(t, baselines, "Tigran")
}

func TestLoadRoster_Invalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing username",
			content: "players:\n  - name: Solo\n",
			wantErr: "chesscom username",
		},
		{
			name:    "duplicate player",
			content: "players:\n  - name: Twin\n    chesscom: a\n  - name: Twin\n    chesscom: b\n",
			wantErr: "appears more than once",
		},
		{
			name:    "unknown category",
			content: "players:\n  - name: Odd\n    chesscom: odd\n    baselines:\n      classical: 1500\n",
			wantErr: "unknown baseline category",
		},
		{
			name:    "not yaml",
			content: "{{{",
			wantErr: "parse roster",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := config.LoadRoster(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRoster_MissingFile(t *testing.T) {
	_, err := config.LoadRoster(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
