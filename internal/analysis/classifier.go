package analysis

import (
	"github.com/thesor/chesswatch/internal/engine"
	"github.com/thesor/chesswatch/internal/models"
)

// Centipawn-loss ceilings for the quality bands. A loss strictly
// below a ceiling falls in that band.
const (
	excellentCeiling  = 20
	goodCeiling       = 50
	inaccuracyCeiling = 100
	mistakeCeiling    = 200
)

// Judgment is the graded outcome of a single move.
type Judgment struct {
	EvalLoss int
	Quality  models.Quality
	Comment  string
}

// Classify grades one move by comparing the evaluations before and
// after it was played. Both evaluations are centipawns from White's
// perspective; whiteMove says who moved. Loss is clamped at zero, a
// move is never rewarded for the opponent's later mistakes.
func Classify(before, after engine.Evaluation, playedUCI string, whiteMove bool) Judgment {
	loss := EvalLoss(before.CP, after.CP, whiteMove)
	quality := QualityForLoss(loss)
	return Judgment{
		EvalLoss: loss,
		Quality:  quality,
		Comment:  comment(quality, before.BestMove, playedUCI, loss),
	}
}

// EvalLoss converts two White-perspective scores into the mover's
// centipawn loss.
func EvalLoss(beforeCP, afterCP int, whiteMove bool) int {
	loss := beforeCP - afterCP
	if !whiteMove {
		loss = -loss
	}
	if loss < 0 {
		return 0
	}
	return loss
}

// QualityForLoss maps a centipawn loss onto its band. Bands are
// contiguous and checked in ascending order, so every loss lands in
// exactly one.
func QualityForLoss(loss int) models.Quality {
	switch {
	case loss < excellentCeiling:
		return models.QualityExcellent
	case loss < goodCeiling:
		return models.QualityGood
	case loss < inaccuracyCeiling:
		return models.QualityInaccuracy
	case loss < mistakeCeiling:
		return models.QualityMistake
	default:
		return models.QualityBlunder
	}
}
