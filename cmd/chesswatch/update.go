package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thesor/chesswatch/internal/chesscom"
	"github.com/thesor/chesswatch/internal/config"
	"github.com/thesor/chesswatch/internal/db"
	"github.com/thesor/chesswatch/internal/repository/sqlite"
	"github.com/thesor/chesswatch/internal/services"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run one rating update cycle for the tracked roster",
	Long: `Fetch current chess.com ratings for every tracked player, compare them
against the last stored snapshot, and persist the changes.

This is the same cycle the server runs on its schedule. History rows
are only written when at least one rating actually changed.

Examples:
  # Run a cycle and print the report
  chesswatch update

  # Machine-readable report
  chesswatch update --json`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var updateJSON bool

func init() {
	updateCmd.Flags().BoolVar(&updateJSON, "json", false, "output the cycle report as JSON")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	roster, err := config.LoadRoster(cfg.RosterPath)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	svc := services.NewTrackerService(
		sqlite.NewRatingRepository(database.DB),
		chesscom.New(),
		roster,
		cfg.MaxConcurrentFetch,
		nil,
	)

	ctx, cancel := interruptibleContext()
	defer cancel()

	report, err := svc.RunUpdateCycle(ctx)
	if err != nil {
		return fmt.Errorf("update cycle failed: %w", err)
	}

	if updateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Update cycle finished in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Printf("  Players fetched: %d\n", report.PlayersFetched)
	if len(report.PlayersFailed) > 0 {
		fmt.Printf("  Players failed:  %s\n", strings.Join(report.PlayersFailed, ", "))
	}
	if report.Changed {
		fmt.Printf("  History rows:    %d\n", report.HistoryWritten)
	} else {
		fmt.Println("  No rating changes; nothing written.")
	}
	return nil
}
