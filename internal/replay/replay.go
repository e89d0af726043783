// Package replay turns recorded game notation into the exact sequence
// of positions visited, validating every move along the way.
package replay

import (
	"strings"

	"github.com/corentings/chess/v2"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/pgn"
)

// Game is an immutable parsed game: header tags plus the move list in
// SAN and UCI forms and the FEN of every position visited. The FEN
// slice is always one longer than the move list, with the starting
// position first.
type Game struct {
	headers map[string]string
	san     []string
	uci     []string
	fens    []string
}

// Parse replays the given PGN movetext. Any malformed or illegal move
// fails the whole parse with an INVALID_GAME error; a partial Game is
// never returned.
func Parse(pgnText string) (*Game, error) {
	if strings.TrimSpace(pgnText) == "" {
		return nil, apperrors.NewValidationError("pgn", "cannot be empty")
	}

	opt, err := chess.PGN(strings.NewReader(pgnText))
	if err != nil {
		return nil, apperrors.NewInvalidGameError(err)
	}
	chessGame := chess.NewGame(opt)

	positions := chessGame.Positions()
	moves := chessGame.Moves()
	if len(positions) != len(moves)+1 {
		return nil, apperrors.NewInvalidGameError(nil)
	}

	g := &Game{
		headers: pgn.ParseHeaders(pgnText),
		san:     make([]string, len(moves)),
		uci:     make([]string, len(moves)),
		fens:    make([]string, len(positions)),
	}
	notation := chess.AlgebraicNotation{}
	for i, move := range moves {
		g.san[i] = notation.Encode(positions[i], move)
		g.uci[i] = MoveToUCI(move)
	}
	for i, pos := range positions {
		g.fens[i] = pos.String()
	}
	return g, nil
}

// MoveCount returns the number of plies played.
func (g *Game) MoveCount() int {
	return len(g.san)
}

// Positions returns the FEN of every position visited, starting
// position included. Treat as read-only.
func (g *Game) Positions() []string {
	return g.fens
}

// SANMoves returns the played moves in standard algebraic notation.
func (g *Game) SANMoves() []string {
	return g.san
}

// UCIMoves returns the played moves in UCI long algebraic notation.
func (g *Game) UCIMoves() []string {
	return g.uci
}

// Header returns a PGN tag value, empty when absent.
func (g *Game) Header(key string) string {
	return g.headers[key]
}

// Headers returns all PGN tags. Treat as read-only.
func (g *Game) Headers() map[string]string {
	return g.headers
}

func (g *Game) White() string  { return g.headers["White"] }
func (g *Game) Black() string  { return g.headers["Black"] }
func (g *Game) Result() string { return g.headers["Result"] }

// MoverColor returns who played the move at the given 0-based index.
func MoverColor(index int) string {
	if index%2 == 0 {
		return models.ColorWhite
	}
	return models.ColorBlack
}

// MoveToUCI converts a chess move to UCI form (e.g. "e2e4", "e7e8q").
func MoveToUCI(move *chess.Move) string {
	if move == nil {
		return ""
	}

	uci := squareToString(move.S1()) + squareToString(move.S2())
	switch move.Promo() {
	case chess.Queen:
		uci += "q"
	case chess.Rook:
		uci += "r"
	case chess.Bishop:
		uci += "b"
	case chess.Knight:
		uci += "n"
	}
	return uci
}

func squareToString(sq chess.Square) string {
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}
