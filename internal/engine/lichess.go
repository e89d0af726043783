package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
)

// LichessCloud reads evaluations from the lichess.org cloud-eval
// database. Positions the cloud has never analyzed come back 404,
// which surfaces as an unavailability rather than a hard failure.
type LichessCloud struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

var _ Evaluator = (*LichessCloud)(nil)
var _ MultiPVEvaluator = (*LichessCloud)(nil)

// NewLichessCloud returns a client for the given base URL, e.g.
// "https://lichess.org".
func NewLichessCloud(baseURL string) *LichessCloud {
	return &LichessCloud{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger.Default().WithPrefix("lichess"),
	}
}

type lichessPV struct {
	Moves string `json:"moves"`
	CP    *int   `json:"cp"`
	Mate  *int   `json:"mate"`
}

type lichessResponse struct {
	Depth int         `json:"depth"`
	PVs   []lichessPV `json:"pvs"`
}

func (c *LichessCloud) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	moves, err := c.fetch(ctx, fen, 1, opts)
	if err != nil {
		return Evaluation{}, err
	}
	return moves[0].Eval, nil
}

func (c *LichessCloud) TopMoves(ctx context.Context, fen string, k int, opts Options) ([]ScoredMove, error) {
	if k < 1 {
		k = 1
	}
	return c.fetch(ctx, fen, k, opts)
}

func (c *LichessCloud) fetch(ctx context.Context, fen string, multiPV int, opts Options) ([]ScoredMove, error) {
	opts = opts.withDefaults()

	q := url.Values{}
	q.Set("fen", fen)
	if multiPV > 1 {
		q.Set("multiPv", strconv.Itoa(multiPV))
	}
	endpoint := c.baseURL + "/api/cloud-eval?" + q.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, opts.MaxTime)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Error("request failed: %v", err)
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Debug("position not in cloud: %s", fen)
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, fmt.Errorf("position not in cloud database"))
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error("unexpected status %d", resp.StatusCode)
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, fmt.Errorf("status %d", resp.StatusCode))
	}

	var out lichessResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, err)
	}
	if len(out.PVs) == 0 {
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, fmt.Errorf("response carried no lines"))
	}

	// Cloud scores are already from White's perspective.
	results := make([]ScoredMove, 0, len(out.PVs))
	for _, pv := range out.PVs {
		ev := Evaluation{Depth: out.Depth}
		if pv.Moves != "" {
			ev.PV = strings.Fields(pv.Moves)
			ev.BestMove = ev.PV[0]
		}
		switch {
		case pv.Mate != nil:
			m := *pv.Mate
			ev.Mate = &m
			ev.CP = MateCP(m)
		case pv.CP != nil:
			ev.CP = *pv.CP
		default:
			continue
		}
		results = append(results, ScoredMove{Move: ev.BestMove, Eval: ev})
	}
	if len(results) == 0 {
		return nil, apperrors.NewEvalUnavailableError(BackendLichess, fmt.Errorf("response carried no scores"))
	}

	return results, nil
}

// Close is a no-op.
func (c *LichessCloud) Close() error {
	return nil
}
