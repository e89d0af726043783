package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesor/chesswatch/internal/chesscom"
	"github.com/thesor/chesswatch/internal/config"
	"github.com/thesor/chesswatch/internal/db"
	"github.com/thesor/chesswatch/internal/jobs"
	"github.com/thesor/chesswatch/internal/repository/sqlite"
	"github.com/thesor/chesswatch/internal/services"
)

var importCmd = &cobra.Command{
	Use:   "import [PLAYER]",
	Short: "Import recent chess.com archives for a tracked player",
	Long: `Fetch the most recent monthly game archives for a player on the
tracked roster and store every new standard game.

Games already in the database are skipped (matched by chess.com game
id). Imported games are stored pending review; the server picks them
up on its next start.

Examples:
  # Import with the configured archive window
  chesswatch import magnus

  # Import the last 12 monthly archives
  chesswatch import magnus --months 12`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importMonths int

func init() {
	importCmd.Flags().IntVar(&importMonths, "months", 0, "number of recent monthly archives (default from configuration)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	months := cfg.ImportMonths
	if importMonths > 0 {
		months = importMonths
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

	svc := services.NewImportService(
		sqlite.NewGameRepository(database.DB),
		chesscom.New(),
		roster,
		jobs.NewNoop(),
		months,
		cfg.MaxConcurrentFetch,
	)

	ctx, cancel := interruptibleContext()
	defer cancel()

	n, err := svc.ImportPlayer(ctx, args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if n == 0 {
		fmt.Println("No new games to import.")
		return nil
	}
	fmt.Printf("Imported %d new game(s); reviews stay pending until the server runs.\n", n)
	return nil
}
