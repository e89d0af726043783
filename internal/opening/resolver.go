package opening

import (
	"strings"

	"github.com/thesor/chesswatch/internal/replay"
)

// Unknown is the name reported when no layer can identify the
// opening. An unresolved opening is an expected outcome, never an
// error.
const Unknown = "Unknown"

// maxPrefixPlies bounds the move-prefix scan. Openings are decided
// well before the middlegame, so deeper matching only wastes lookups.
const maxPrefixPlies = 15

// Opening is a resolved label. ECO carries the game's declared code
// when present, whether or not it produced the name.
type Opening struct {
	ECO  string `json:"eco,omitempty"`
	Name string `json:"name"`
}

// Resolver names the opening of a game through layered lookups:
// declared ECO code against the table, then the declared opening
// name verbatim, then the longest matching move prefix, then
// Unknown. A nil dataset skips the table layers and still resolves.
type Resolver struct {
	ds *Dataset
}

func NewResolver(ds *Dataset) *Resolver {
	return &Resolver{ds: ds}
}

// Resolve applies the fallback layers to a game's header tags and
// SAN move list.
func (r *Resolver) Resolve(headers map[string]string, sanMoves []string) Opening {
	out := Opening{ECO: headers["ECO"]}

	if r.ds != nil && out.ECO != "" {
		if name, ok := r.ds.ECOName(out.ECO); ok {
			out.Name = name
			return out
		}
	}

	if declared := headers["Opening"]; declared != "" {
		out.Name = declared
		return out
	}

	if r.ds != nil {
		if name, ok := r.longestPrefix(sanMoves); ok {
			out.Name = name
			return out
		}
	}

	out.Name = Unknown
	return out
}

// ResolveGame resolves a replayed game.
func (r *Resolver) ResolveGame(g *replay.Game) Opening {
	return r.Resolve(g.Headers(), g.SANMoves())
}

// longestPrefix grows the SAN prefix one ply at a time and keeps the
// deepest table hit. A shallow match must never shadow a deeper one
// found later in the same scan.
func (r *Resolver) longestPrefix(san []string) (string, bool) {
	bound := maxPrefixPlies
	if len(san) < bound {
		bound = len(san)
	}

	var (
		b     strings.Builder
		name  string
		found bool
	)
	for i := 0; i < bound; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(san[i])
		if n, ok := r.ds.PrefixName(b.String()); ok {
			name = n
			found = true
		}
	}
	return name, found
}
