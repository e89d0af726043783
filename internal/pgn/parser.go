package pgn

import (
	"regexp"
	"strings"
	"time"
)

var headerRe = regexp.MustCompile(`\[(\w+)\s+"([^"]+)"\]`)

// ParseHeaders extracts PGN header tags into a map. Malformed header
// lines are skipped. This is a cheap scan for listings and imports;
// full movetext validation happens in the replay package.
func ParseHeaders(pgn string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(pgn, "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}
		m := headerRe.FindStringSubmatch(line)
		if len(m) == 3 {
			out[m[1]] = m[2]
		}
	}
	return out
}

// ParseDate derives the game's end time from header tags, preferring
// UTCDate/UTCTime (chess.com exports both) over the bare Date tag.
// Returns nil when no tag parses.
func ParseDate(headers map[string]string) *time.Time {
	if d, ok := headers["UTCDate"]; ok {
		layout := "2006.01.02"
		value := d
		if t, ok := headers["UTCTime"]; ok {
			layout = "2006.01.02 15:04:05"
			value = d + " " + t
		}
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts
		}
	}
	if d, ok := headers["Date"]; ok {
		if ts, err := time.Parse("2006.01.02", d); err == nil {
			return &ts
		}
	}
	return nil
}

var gameIDRe = regexp.MustCompile(`.*/game/[^/]+/([0-9]+)`)

// ExtractGameID pulls the numeric game ID out of a chess.com game URL,
// returning the input unchanged when it does not match. Used as a
// dedupe key fallback for archive entries without a UUID.
func ExtractGameID(url string) string {
	m := gameIDRe.FindStringSubmatch(url)
	if len(m) == 2 {
		return m[1]
	}
	return url
}
