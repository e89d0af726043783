package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
)

// UCIEngine drives a local chess engine subprocess over the UCI
// protocol. All calls are serialized by a mutex: a stateful engine
// process can only search one position at a time.
type UCIEngine struct {
	path string
	log  *logger.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

var _ Evaluator = (*UCIEngine)(nil)
var _ MultiPVEvaluator = (*UCIEngine)(nil)

// NewUCIEngine starts the engine binary and completes the UCI
// handshake. An empty path falls back to "stockfish" on PATH.
func NewUCIEngine(path string) (*UCIEngine, error) {
	log := logger.Default().WithPrefix("uci")

	if path == "" {
		path = "stockfish"
	}

	log.Info("starting engine: %s", path)
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}

	e := &UCIEngine{
		path:   path,
		log:    log,
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if err := cmd.Start(); err != nil {
		log.Error("failed to start engine: %v", err)
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}

	if err := e.handshake(); err != nil {
		log.Error("UCI handshake failed: %v", err)
		_ = cmd.Process.Kill()
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}

	log.Info("engine ready")
	return e, nil
}

func (e *UCIEngine) handshake() error {
	if err := e.sendLocked("uci"); err != nil {
		return err
	}
	if err := e.waitFor("uciok", 5*time.Second); err != nil {
		return err
	}
	if err := e.sendLocked("isready"); err != nil {
		return err
	}
	return e.waitFor("readyok", 5*time.Second)
}

// Close asks the engine to quit and reaps the process.
func (e *UCIEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return nil
	}

	e.log.Debug("closing engine")
	_ = e.sendLocked("quit")
	err := e.cmd.Wait()
	e.cmd = nil
	if err != nil {
		e.log.Debug("engine process exited: %v", err)
	}
	return err
}

// Evaluate scores one position, bounded by opts.Depth and
// opts.MaxTime. When the time budget runs out the search is stopped
// and the best verdict so far is returned; only a search that ignores
// the stop is reported unavailable.
func (e *UCIEngine) Evaluate(ctx context.Context, fen string, opts Options) (Evaluation, error) {
	results, err := e.search(ctx, fen, opts, 1)
	if err != nil {
		return Evaluation{}, err
	}
	return results[0].Eval, nil
}

// TopMoves runs a MultiPV search and returns the best k lines in
// order.
func (e *UCIEngine) TopMoves(ctx context.Context, fen string, k int, opts Options) ([]ScoredMove, error) {
	if k < 1 {
		k = 1
	}
	return e.search(ctx, fen, opts, k)
}

type pvLine struct {
	cp    int
	mate  *int
	depth int
	moves []string
}

func (e *UCIEngine) search(ctx context.Context, fen string, opts Options, multiPV int) ([]ScoredMove, error) {
	opts = opts.withDefaults()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, fmt.Errorf("engine closed"))
	}

	log := e.log.WithField("depth", opts.Depth)
	start := time.Now()

	// Resync first: a previous timed-out search may have left output
	// buffered, and waiting for readyok drains it.
	if err := e.sendLocked("isready"); err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}
	if err := e.waitFor("readyok", 5*time.Second); err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}

	if multiPV > 1 {
		if err := e.sendLocked(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
			return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
		}
		defer func() { _ = e.sendLocked("setoption name MultiPV value 1") }()
	}

	if err := e.sendLocked("ucinewgame"); err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}
	if err := e.sendLocked("position fen " + fen); err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}
	if err := e.sendLocked(fmt.Sprintf("go depth %d", opts.Depth)); err != nil {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
	}

	blackToMove := fenSideToMove(fen) == "b"
	lines := map[int]pvLine{}
	deadline := time.Now().Add(opts.MaxTime)
	stopped := false

	var bestMoveToken string
	for {
		if err := ctx.Err(); err != nil {
			_ = e.sendLocked("stop")
			e.drainUntilBestmove(2 * time.Second)
			log.Warn("evaluation cancelled: %v", err)
			return nil, err
		}
		if !stopped && time.Now().After(deadline) {
			// Budget spent. Stop the search and take what it found.
			stopped = true
			if err := e.sendLocked("stop"); err != nil {
				return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
			}
		}
		if stopped && time.Now().After(deadline.Add(2*time.Second)) {
			log.Error("engine ignored stop after %v", opts.MaxTime)
			return nil, apperrors.NewEvalUnavailableError(BackendUCI, fmt.Errorf("search exceeded %v", opts.MaxTime))
		}

		line, err := e.stdout.ReadString('\n')
		if err != nil {
			log.Error("failed to read from engine: %v", err)
			return nil, apperrors.NewEvalUnavailableError(BackendUCI, err)
		}
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "info ") {
			if pl, idx, ok := parseInfoLine(line); ok {
				lines[idx] = pl
			}
			continue
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				bestMoveToken = fields[1]
			}
			break
		}
	}

	if len(lines) == 0 {
		return nil, apperrors.NewEvalUnavailableError(BackendUCI, fmt.Errorf("no score before bestmove"))
	}

	idxs := make([]int, 0, len(lines))
	for idx := range lines {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)

	out := make([]ScoredMove, 0, len(idxs))
	for _, idx := range idxs {
		pl := lines[idx]
		ev := normalize(pl, blackToMove)
		if len(pl.moves) > 0 {
			ev.BestMove = pl.moves[0]
		}
		if idx == 1 && bestMoveToken != "" && bestMoveToken != "(none)" {
			ev.BestMove = bestMoveToken
		}
		out = append(out, ScoredMove{Move: ev.BestMove, Eval: ev})
	}

	log.Debug("search done in %v: %d line(s), best=%s", time.Since(start), len(out), out[0].Move)
	return out, nil
}

// normalize converts a side-to-move relative line into a
// White-perspective Evaluation.
func normalize(pl pvLine, blackToMove bool) Evaluation {
	ev := Evaluation{Depth: pl.depth, PV: pl.moves}
	if pl.mate != nil {
		m := *pl.mate
		if blackToMove {
			m = -m
		}
		ev.Mate = &m
		ev.CP = MateCP(m)
		return ev
	}
	cp := pl.cp
	if blackToMove {
		cp = -cp
	}
	ev.CP = cp
	return ev
}

// parseInfoLine extracts score, depth, and pv from one "info" line.
// Returns the MultiPV index (1 when absent).
func parseInfoLine(line string) (pvLine, int, bool) {
	fields := strings.Fields(line)
	pl := pvLine{}
	idx := 1
	seenScore := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					pl.depth = v
				}
			}
		case "multipv":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					idx = v
				}
			}
		case "score":
			if i+2 >= len(fields) {
				return pl, idx, false
			}
			switch fields[i+1] {
			case "cp":
				if v, err := strconv.Atoi(fields[i+2]); err == nil {
					pl.cp = v
					seenScore = true
				}
			case "mate":
				if v, err := strconv.Atoi(fields[i+2]); err == nil {
					pl.mate = &v
					seenScore = true
				}
			}
			i += 2
		case "pv":
			pl.moves = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		}
	}

	return pl, idx, seenScore
}

func fenSideToMove(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) > 1 {
		return parts[1]
	}
	return "w"
}

// drainUntilBestmove swallows leftover search output after a stop so
// the next command starts from a clean stream.
func (e *UCIEngine) drainUntilBestmove(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return
		}
		if strings.HasPrefix(strings.TrimSpace(line), "bestmove") {
			return
		}
	}
}

func (e *UCIEngine) sendLocked(cmd string) error {
	_, err := e.stdin.Write([]byte(cmd + "\n"))
	return err
}

func (e *UCIEngine) waitFor(marker string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %s", marker)
		}
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.Contains(line, marker) {
			return nil
		}
	}
}
