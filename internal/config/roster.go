package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thesor/chesswatch/internal/models"
)

// PlayerConfig is one tracked player: a display name, the chess.com
// username to fetch, and optional manually fixed baseline ratings that
// take precedence over history-derived baselines.
type PlayerConfig struct {
	Name      string         `yaml:"name"`
	ChessCom  string         `yaml:"chesscom"`
	Baselines map[string]int `yaml:"baselines,omitempty"`
}

// Roster is the tracked player list, loaded from a YAML file:
//
//	players:
//	  - name: Ulysse
//	    chesscom: realulysse
//	    baselines:
//	      rapid: 1971
//	      blitz: 1491
type Roster struct {
	Players []PlayerConfig `yaml:"players"`
}

// LoadRoster reads and validates the roster file.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	seen := make(map[string]bool, len(roster.Players))
	for i, p := range roster.Players {
		if p.Name == "" {
			return nil, fmt.Errorf("roster player %d: name cannot be empty", i+1)
		}
		if p.ChessCom == "" {
			return nil, fmt.Errorf("roster player %q: chesscom username cannot be empty", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("roster player %q appears more than once", p.Name)
		}
		seen[p.Name] = true
		for cat := range p.Baselines {
			if _, ok := models.ParseCategory(cat); !ok {
				return nil, fmt.Errorf("roster player %q: unknown baseline category %q", p.Name, cat)
			}
		}
	}
	return &roster, nil
}

// ManualBaselines flattens the per-player baseline maps into
// (player, category) keyed form for the differ.
func (r *Roster) ManualBaselines() map[string]map[models.Category]int {
	out := make(map[string]map[models.Category]int)
	for _, p := range r.Players {
		if len(p.Baselines) == 0 {
			continue
		}
		m := make(map[models.Category]int, len(p.Baselines))
		for cat, rating := range p.Baselines {
			c, ok := models.ParseCategory(cat)
			if !ok {
				continue
			}
			m[c] = rating
		}
		out[p.Name] = m
	}
	return out
}

// Names returns player display names in roster order.
func (r *Roster) Names() []string {
	names := make([]string, len(r.Players))
	for i, p := range r.Players {
		names[i] = p.Name
	}
	return names
}

// Find looks a player up by display name or chess.com username,
// case-insensitively.
func (r *Roster) Find(name string) (PlayerConfig, bool) {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.ChessCom, name) {
			return p, true
		}
	}
	return PlayerConfig{}, false
}
