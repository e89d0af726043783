package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thesor/chesswatch/internal/config"
	"github.com/thesor/chesswatch/internal/logger"
)

var (
	// Global flags.
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "chesswatch",
	Short: "Track chess.com ratings and review games from the command line",
	Long: `chesswatch is the companion CLI for the chesswatch server.

It runs one-shot versions of the server's background work: a rating
update cycle for the tracked roster, a full review of a single game,
or a chess.com archive import. Configuration comes from the
environment (and .env), exactly as the server reads it.

Examples:
  # Run one rating update cycle for the whole roster
  chesswatch update

  # Review a game from a PGN file
  chesswatch review game.pgn

  # Import recent chess.com archives for a tracked player
  chesswatch import magnus`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logger.WARN
		if verbose {
			level = logger.DEBUG
		}
		logger.SetDefault(logger.New(
			logger.WithLevel(level),
			logger.WithColors(true),
		))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// loadConfig reads and validates the shared service configuration.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// interruptibleContext returns a context that is cancelled on the
// first SIGINT or SIGTERM.
func interruptibleContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()
	return ctx, cancel
}
