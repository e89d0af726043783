// Package analysis grades played chess games. It walks every ply of
// a replayed game, asks the evaluation oracle for the score before
// and after the move, and classifies the difference into quality
// bands with generated commentary.
package analysis

import (
	"context"

	"github.com/thesor/chesswatch/internal/engine"
	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
	"github.com/thesor/chesswatch/internal/opening"
	"github.com/thesor/chesswatch/internal/replay"
)

// Review is the outcome of reviewing one game: its resolved opening,
// the full position list (starting position first), and one
// assessment per played move in play order.
type Review struct {
	Opening     opening.Opening
	Positions   []string
	Assessments []models.MoveAssessment
	Summary     models.ReviewSummary
}

// Reviewer drives game reviews. The evaluate-classify cycle per ply
// runs as an explicit state machine so cancellation and per-ply
// failures have exactly one handling point each.
type Reviewer struct {
	resolver *opening.Resolver
	opts     engine.Options
	log      *logger.Logger
}

// NewReviewer builds a reviewer. The resolver may be nil, in which
// case every opening resolves to Unknown.
func NewReviewer(resolver *opening.Resolver, opts engine.Options) *Reviewer {
	return &Reviewer{
		resolver: resolver,
		opts:     opts,
		log:      logger.Default().WithPrefix("reviewer"),
	}
}

// Review parses and grades a game in one call. Parse failures are
// returned as-is; see ReviewGame for the grading contract.
func (r *Reviewer) Review(ctx context.Context, evaluator engine.Evaluator, pgnText string) (*Review, error) {
	g, err := replay.Parse(pgnText)
	if err != nil {
		return nil, err
	}
	return r.ReviewGame(ctx, evaluator, g)
}

// Phases of the per-ply cycle. Scoring the position after a move is
// a strict sequential dependency on having scored the one before it,
// not a concurrency opportunity.
type phase int

const (
	phaseEvalBefore phase = iota
	phaseEvalAfter
	phaseClassify
	phaseAdvance
)

// ReviewGame grades an already replayed game. A ply whose evaluation
// is unavailable is marked unknown and the review continues. When
// ctx is cancelled the review built so far is returned together with
// the context's error, so callers keep the completed assessments.
func (r *Reviewer) ReviewGame(ctx context.Context, evaluator engine.Evaluator, g *replay.Game) (*Review, error) {
	review := &Review{
		Opening:   r.resolveOpening(g),
		Positions: g.Positions(),
	}

	fens := g.Positions()
	san := g.SANMoves()
	uci := g.UCIMoves()

	log := r.log.WithField("moves", len(san))
	log.Debug("reviewing %s vs %s", g.White(), g.Black())

	var (
		ply           int
		ph            = phaseEvalBefore
		before, after engine.Evaluation
		beforeOK      bool
		afterOK       bool
	)
	for ply < len(san) {
		if err := ctx.Err(); err != nil {
			log.Warn("review cancelled after %d of %d plies", ply, len(san))
			return review, err
		}

		switch ph {
		case phaseEvalBefore:
			ev, ok, err := r.evaluate(ctx, evaluator, fens[ply])
			if err != nil {
				return review, err
			}
			before, beforeOK = ev, ok
			ph = phaseEvalAfter

		case phaseEvalAfter:
			ev, ok, err := r.evaluate(ctx, evaluator, fens[ply+1])
			if err != nil {
				return review, err
			}
			after, afterOK = ev, ok
			ph = phaseClassify

		case phaseClassify:
			a := r.assess(ply, san[ply], uci[ply], fens, before, beforeOK, after, afterOK)
			review.Assessments = append(review.Assessments, a)
			review.Summary.Count(a.Quality)
			ph = phaseAdvance

		case phaseAdvance:
			ply++
			ph = phaseEvalBefore
		}
	}

	log.Debug("review done: %d excellent, %d good, %d inaccuracies, %d mistakes, %d blunders, %d unknown",
		review.Summary.Excellent, review.Summary.Good, review.Summary.Inaccuracies,
		review.Summary.Mistakes, review.Summary.Blunders, review.Summary.Unknown)
	return review, nil
}

// evaluate scores a single position. Oracle unavailability is
// reported through ok=false and the review proceeds; only context
// cancellation comes back as an error.
func (r *Reviewer) evaluate(ctx context.Context, evaluator engine.Evaluator, fen string) (engine.Evaluation, bool, error) {
	ev, err := evaluator.Evaluate(ctx, fen, r.opts)
	if err == nil {
		return ev, true, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return engine.Evaluation{}, false, ctxErr
	}
	if !apperrors.IsEvalUnavailable(err) {
		r.log.Warn("unexpected evaluator error, treating ply as unscored: %v", err)
	} else {
		r.log.Warn("evaluation unavailable: %v", err)
	}
	return engine.Evaluation{}, false, nil
}

func (r *Reviewer) assess(ply int, sanMove, uciMove string, fens []string, before engine.Evaluation, beforeOK bool, after engine.Evaluation, afterOK bool) models.MoveAssessment {
	a := models.MoveAssessment{
		Ply:        ply + 1,
		MoveNumber: ply/2 + 1,
		Color:      replay.MoverColor(ply),
		SAN:        sanMove,
		FENBefore:  fens[ply],
		FENAfter:   fens[ply+1],
	}

	if beforeOK {
		cp := before.CP
		a.EvalBefore = &cp
		a.MateBefore = before.Mate
		a.BestMove = before.BestMove
	}
	if afterOK {
		cp := after.CP
		a.EvalAfter = &cp
		a.MateAfter = after.Mate
	}

	if !beforeOK || !afterOK {
		a.Quality = models.QualityUnknown
		a.Comment = comment(models.QualityUnknown, "", "", 0)
		return a
	}

	j := Classify(before, after, uciMove, ply%2 == 0)
	a.EvalLoss = j.EvalLoss
	a.Quality = j.Quality
	a.Comment = j.Comment
	return a
}

func (r *Reviewer) resolveOpening(g *replay.Game) opening.Opening {
	if r.resolver == nil {
		return opening.Opening{ECO: g.Header("ECO"), Name: opening.Unknown}
	}
	return r.resolver.ResolveGame(g)
}
