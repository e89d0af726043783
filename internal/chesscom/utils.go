package chesscom

import (
	"strings"
	"time"

	"github.com/thesor/chesswatch/internal/models"
)

// DeriveResult determines which color the user played, their opponent, and the result
func DeriveResult(username string, mg MonthlyGame) (playedAs, opponent, result string) {
	if strings.EqualFold(mg.White.Username, username) {
		playedAs = "white"
		opponent = mg.Black.Username
		result = NormalizeResult(mg.White.Result)
		return
	}
	playedAs = "black"
	opponent = mg.White.Username
	result = NormalizeResult(mg.Black.Result)
	return
}

// NormalizeResult converts chess.com result strings to standardized values
func NormalizeResult(res string) string {
	res = strings.ToLower(res)
	switch res {
	case "win":
		return "win"
	case "stalemate", "agreed", "repetition", "timevsinsufficient", "insufficient", "fiftymove", "draw":
		return "draw"
	case "checkmated", "resigned", "timeout", "abandoned", "kingofthehill", "threecheck", "bughousepartnerlose":
		return "loss"
	default:
		return "loss"
	}
}

// CategoryFor maps a chess.com time class onto a tracked category.
// Daily and other non-live classes are not tracked.
func CategoryFor(timeClass string) (models.Category, bool) {
	switch strings.ToLower(timeClass) {
	case "rapid":
		return models.CategoryRapid, true
	case "blitz":
		return models.CategoryBlitz, true
	case "bullet":
		return models.CategoryBullet, true
	}
	return "", false
}

// PlayedAt converts the archive's end_time into a timestamp, nil
// when the field is absent.
func (mg MonthlyGame) PlayedAt() *time.Time {
	if mg.EndTime == 0 {
		return nil
	}
	t := time.Unix(mg.EndTime, 0).UTC()
	return &t
}

// IsStandard reports whether the game is plain chess (not a variant)
// with a tracked time class.
func (mg MonthlyGame) IsStandard() bool {
	if mg.Rules != "" && mg.Rules != "chess" {
		return false
	}
	_, ok := CategoryFor(mg.TimeClass)
	return ok
}
