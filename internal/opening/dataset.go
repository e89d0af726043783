// Package opening names chess openings from reference data. The
// reference table is the lichess chess-openings format: one
// tab-separated line per opening with ECO code, name, and movetext.
package opening

import (
	"bufio"
	"io"
	"os"
	"strings"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
)

// Dataset is the loaded opening book: ECO code to name, and
// space-joined SAN prefix to name. Read-only after loading.
type Dataset struct {
	byECO    map[string]string
	byPrefix map[string]string
	maxPlies int
}

// Load reads the dataset from a TSV file. A missing or unreadable
// file returns a DATASET_UNAVAILABLE error; callers are expected to
// continue without the dataset rather than abort.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDatasetUnavailableError(path, err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, apperrors.NewDatasetUnavailableError(path, err)
	}

	logger.Default().WithPrefix("opening").Info("loaded %d ECO codes, %d move prefixes from %s",
		len(ds.byECO), len(ds.byPrefix), path)
	return ds, nil
}

// Parse reads TSV lines of the form "eco<TAB>name<TAB>movetext".
// The movetext column is optional. Blank lines, comment lines, and a
// leading column-header line are skipped.
func Parse(r io.Reader) (*Dataset, error) {
	ds := &Dataset{
		byECO:    map[string]string{},
		byPrefix: map[string]string{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		eco, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if eco == "" || name == "" || (eco == "eco" && name == "name") {
			continue
		}

		// Many lines share one ECO code; the first is the family
		// name and wins the code lookup.
		if _, ok := ds.byECO[eco]; !ok {
			ds.byECO[eco] = name
		}

		if len(parts) >= 3 {
			prefix := normalizeMovetext(parts[2])
			if prefix != "" {
				ds.byPrefix[prefix] = name
				if n := strings.Count(prefix, " ") + 1; n > ds.maxPlies {
					ds.maxPlies = n
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

// ECOName looks up the name registered for an ECO code.
func (d *Dataset) ECOName(code string) (string, bool) {
	name, ok := d.byECO[code]
	return name, ok
}

// PrefixName looks up the name registered for a space-joined SAN
// prefix.
func (d *Dataset) PrefixName(prefix string) (string, bool) {
	name, ok := d.byPrefix[prefix]
	return name, ok
}

// MaxPlies returns the length of the longest move prefix in the
// table.
func (d *Dataset) MaxPlies() int {
	return d.maxPlies
}

// normalizeMovetext strips move numbers and result tokens so that
// "1. e4 e5 2. Nf3" becomes "e4 e5 Nf3".
func normalizeMovetext(text string) string {
	fields := strings.Fields(text)
	moves := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "*", "1-0", "0-1", "1/2-1/2":
			continue
		}
		// SAN never contains a dot, so anything before one is a
		// move number ("1." standalone or "1.e4" glued).
		if idx := strings.LastIndexByte(f, '.'); idx >= 0 {
			f = f[idx+1:]
			if f == "" {
				continue
			}
		}
		moves = append(moves, f)
	}
	return strings.Join(moves, " ")
}
