package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
)

// chess-api.com caps search depth at 18.
const chessAPIMaxDepth = 18

// ChessAPI evaluates positions through the chess-api.com REST
// service, a hosted Stockfish.
type ChessAPI struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

var _ Evaluator = (*ChessAPI)(nil)

// NewChessAPI returns a client for the given base URL, e.g.
// "https://chess-api.com/v1".
func NewChessAPI(baseURL string) *ChessAPI {
	return &ChessAPI{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Default().WithPrefix("chessapi"),
	}
}

type chessAPIRequest struct {
	FEN   string `json:"fen"`
	Depth int    `json:"depth"`
}

type chessAPIResponse struct {
	Eval            float64  `json:"eval"`
	Mate            *int     `json:"mate"`
	Move            string   `json:"move"`
	BestMove        string   `json:"bestmove"`
	Depth           int      `json:"depth"`
	ContinuationArr []string `json:"continuationArr"`
	Text            string   `json:"text"`
}

// Evaluate posts the position and maps the response into a
// White-perspective Evaluation. The service reports eval in pawns
// from White's point of view, so only unit conversion happens here.
func (c *ChessAPI) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	opts = opts.withDefaults()

	depth := opts.Depth
	if depth > chessAPIMaxDepth {
		depth = chessAPIMaxDepth
	}

	body, err := json.Marshal(chessAPIRequest{FEN: fen, Depth: depth})
	if err != nil {
		return Evaluation{}, apperrors.NewEvalUnavailableError(BackendChessAPI, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, opts.MaxTime)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return Evaluation{}, apperrors.NewEvalUnavailableError(BackendChessAPI, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Evaluation{}, ctxErr
		}
		c.log.Error("request failed: %v", err)
		return Evaluation{}, apperrors.NewEvalUnavailableError(BackendChessAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("unexpected status %d for fen %q", resp.StatusCode, fen)
		return Evaluation{}, apperrors.NewEvalUnavailableError(BackendChessAPI, fmt.Errorf("status %d", resp.StatusCode))
	}

	var out chessAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Evaluation{}, apperrors.NewEvalUnavailableError(BackendChessAPI, err)
	}

	ev := Evaluation{
		Depth: out.Depth,
		PV:    out.ContinuationArr,
	}
	if out.Mate != nil {
		m := *out.Mate
		ev.Mate = &m
		ev.CP = MateCP(m)
	} else {
		ev.CP = int(math.Round(out.Eval * 100))
	}
	ev.BestMove = out.Move
	if ev.BestMove == "" {
		ev.BestMove = out.BestMove
	}

	c.log.Debug("evaluated depth %d in %v: cp=%d", ev.Depth, time.Since(start), ev.CP)
	return ev, nil
}

// Close is a no-op; the client holds no resources beyond the HTTP
// transport.
func (c *ChessAPI) Close() error {
	return nil
}
