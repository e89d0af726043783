package models

import "time"

// Mover colors as stored on assessments.
const (
	ColorWhite = "white"
	ColorBlack = "black"
)

// MoveAssessment is the judgment of one played half-move. Ply is
// 1-based and matches play order. Evaluations are centipawns from
// White's perspective; nil when the engine could not score the ply.
type MoveAssessment struct {
	ID         int64     `json:"id"`
	GameID     int64     `json:"game_id"`
	Ply        int       `json:"ply"`
	MoveNumber int       `json:"move_number"`
	Color      string    `json:"color"`
	SAN        string    `json:"san"`
	BestMove   string    `json:"best_move,omitempty"`
	FENBefore  string    `json:"fen_before"`
	FENAfter   string    `json:"fen_after"`
	EvalBefore *int      `json:"eval_before"`
	EvalAfter  *int      `json:"eval_after"`
	MateBefore *int      `json:"mate_before,omitempty"`
	MateAfter  *int      `json:"mate_after,omitempty"`
	EvalLoss   int       `json:"eval_loss"`
	Quality    Quality   `json:"quality"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewSummary counts assessments per quality label.
type ReviewSummary struct {
	Excellent    int `json:"excellent"`
	Good         int `json:"good"`
	Inaccuracies int `json:"inaccuracies"`
	Mistakes     int `json:"mistakes"`
	Blunders     int `json:"blunders"`
	Unknown      int `json:"unknown"`
}

// Count adds one assessment with the given quality to the summary.
func (s *ReviewSummary) Count(q Quality) {
	switch q {
	case QualityExcellent:
		s.Excellent++
	case QualityGood:
		s.Good++
	case QualityInaccuracy:
		s.Inaccuracies++
	case QualityMistake:
		s.Mistakes++
	case QualityBlunder:
		s.Blunders++
	case QualityUnknown:
		s.Unknown++
	}
}

// Total returns the number of counted assessments.
func (s ReviewSummary) Total() int {
	return s.Excellent + s.Good + s.Inaccuracies + s.Mistakes + s.Blunders + s.Unknown
}

// GameReview is a complete navigable review: the game, its resolved
// opening, the full position list (ply 0 first), and one assessment
// per played move.
type GameReview struct {
	Game        Game             `json:"game"`
	Opening     string           `json:"opening"`
	Positions   []string         `json:"positions"`
	Assessments []MoveAssessment `json:"assessments"`
	Summary     ReviewSummary    `json:"summary"`
}
