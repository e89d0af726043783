package analysis

import (
	"fmt"

	"github.com/thesor/chesswatch/internal/models"
)

// comment renders the fixed template for a quality label. Best-move
// suggestions are included when the engine produced one, and the
// loss magnitude is spelled out for mistakes and blunders.
func comment(q models.Quality, bestMove, playedUCI string, loss int) string {
	switch q {
	case models.QualityExcellent:
		if bestMove != "" && bestMove == playedUCI {
			return "Excellent! You found the best move."
		}
		return "An excellent move, keeping the evaluation steady."
	case models.QualityGood:
		return "A good move."
	case models.QualityInaccuracy:
		if bestMove != "" {
			return fmt.Sprintf("An inaccuracy. %s was more precise.", bestMove)
		}
		return "An inaccuracy."
	case models.QualityMistake:
		if bestMove != "" {
			return fmt.Sprintf("A mistake, giving up %.2f pawns. %s was better.", pawns(loss), bestMove)
		}
		return fmt.Sprintf("A mistake, giving up %.2f pawns.", pawns(loss))
	case models.QualityBlunder:
		if bestMove != "" {
			return fmt.Sprintf("A blunder, throwing away %.2f pawns. %s was the move.", pawns(loss), bestMove)
		}
		return fmt.Sprintf("A blunder, throwing away %.2f pawns.", pawns(loss))
	default:
		return "This move could not be evaluated."
	}
}

func pawns(loss int) float64 {
	return float64(loss) / 100
}
