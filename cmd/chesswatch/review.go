package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thesor/chesswatch/internal/analysis"
	"github.com/thesor/chesswatch/internal/engine"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/opening"
	"github.com/thesor/chesswatch/internal/replay"
)

var reviewCmd = &cobra.Command{
	Use:   "review [FILE]",
	Short: "Review every move of a game from a PGN file",
	Long: `Replay the game in FILE, score each position with the configured
evaluation backend, and classify every move by how much evaluation
it gave up.

The file must contain a single PGN game. Evaluations are shown in
pawns from White's perspective; forced mates as #N.

Examples:
  # Review with table output
  chesswatch review game.pgn

  # Machine-readable review at a higher depth
  chesswatch review game.pgn --json --depth 18`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

var (
	reviewJSON  bool
	reviewDepth int
)

func init() {
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "output the review as JSON")
	reviewCmd.Flags().IntVar(&reviewDepth, "depth", 0, "search depth (default from configuration)")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	pgnBytes, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading PGN file: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	depth := cfg.EngineDepth
	if reviewDepth > 0 {
		depth = reviewDepth
	}

	g, err := replay.Parse(string(pgnBytes))
	if err != nil {
		return fmt.Errorf("parsing game: %w", err)
	}

	factory, err := engine.NewFactory(engine.Config{
		Backend:       cfg.EngineBackend,
		StockfishPath: cfg.StockfishPath,
		ChessAPIURL:   cfg.ChessAPIURL,
		LichessURL:    cfg.LichessURL,
	}, nil)
	if err != nil {
		return fmt.Errorf("configuring evaluation backend: %w", err)
	}
	evaluator, err := factory()
	if err != nil {
		return fmt.Errorf("starting evaluator: %w", err)
	}
	if cfg.EvalCacheSize > 0 {
		// Interior positions are scored twice per game; the cache
		// halves the engine work.
		cached, err := engine.NewCache(evaluator, cfg.EvalCacheSize, nil)
		if err != nil {
			evaluator.Close()
			return fmt.Errorf("building evaluation cache: %w", err)
		}
		evaluator = cached
	}
	defer evaluator.Close()

	var dataset *opening.Dataset
	if cfg.OpeningsPath != "" {
		dataset, err = opening.Load(cfg.OpeningsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: opening dataset unavailable: %v\n", err)
			dataset = nil
		}
	}
	reviewer := analysis.NewReviewer(opening.NewResolver(dataset), engine.Options{
		Depth:   depth,
		MaxTime: cfg.EngineMaxTime,
	})

	ctx, cancel := interruptibleContext()
	defer cancel()

	review, err := reviewer.ReviewGame(ctx, evaluator, g)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	if reviewJSON {
		return printReviewJSON(g, review)
	}
	printReviewTable(g, review)
	return nil
}

func printReviewTable(g *replay.Game, review *analysis.Review) {
	fmt.Printf("%s vs %s  %s\n", g.White(), g.Black(), g.Result())
	if review.Opening.ECO != "" {
		fmt.Printf("Opening: %s (%s)\n", review.Opening.Name, review.Opening.ECO)
	} else {
		fmt.Printf("Opening: %s\n", review.Opening.Name)
	}
	fmt.Println()

	fmt.Printf("%7s  %-9s %7s %5s  %s\n", "#", "Move", "Eval", "Loss", "Quality")
	for _, a := range review.Assessments {
		num := fmt.Sprintf("%d.", a.MoveNumber)
		if a.Color == models.ColorBlack {
			num = fmt.Sprintf("%d...", a.MoveNumber)
		}
		fmt.Printf("%7s  %-9s %7s %5s  %s\n",
			num, a.SAN, formatEval(a.EvalAfter, a.MateAfter), formatLoss(a), a.Quality)
	}

	s := review.Summary
	fmt.Println()
	fmt.Printf("Summary: %d excellent, %d good, %d inaccuracies, %d mistakes, %d blunders",
		s.Excellent, s.Good, s.Inaccuracies, s.Mistakes, s.Blunders)
	if s.Unknown > 0 {
		fmt.Printf(", %d unscored", s.Unknown)
	}
	fmt.Println()
}

func printReviewJSON(g *replay.Game, review *analysis.Review) error {
	out := struct {
		White       string                  `json:"white"`
		Black       string                  `json:"black"`
		Result      string                  `json:"result"`
		Opening     opening.Opening         `json:"opening"`
		Assessments []models.MoveAssessment `json:"assessments"`
		Summary     models.ReviewSummary    `json:"summary"`
	}{
		White:       g.White(),
		Black:       g.Black(),
		Result:      g.Result(),
		Opening:     review.Opening,
		Assessments: review.Assessments,
		Summary:     review.Summary,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// formatEval renders a centipawn or mate score for display. Scores
// are from White's perspective.
func formatEval(cp, mate *int) string {
	switch {
	case mate != nil:
		return fmt.Sprintf("#%d", *mate)
	case cp != nil:
		return fmt.Sprintf("%+.2f", float64(*cp)/100)
	default:
		return "-"
	}
}

func formatLoss(a models.MoveAssessment) string {
	if a.Quality == models.QualityUnknown {
		return "-"
	}
	return strconv.Itoa(a.EvalLoss)
}
