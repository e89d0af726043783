package pgn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesor/chesswatch/internal/pgn"
)

func TestParseHeaders_ValidHeaders(t *testing.T) {
	pgnText := `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.01.15"]
[Round "-"]
[White "Player1"]
[Black "Player2"]
[Result "1-0"]
[WhiteElo "1500"]
[BlackElo "1600"]
[TimeControl "600+0"]
[ECO "B20"]
[Opening "Sicilian Defense"]

1. e4 c5 2. Nf3 d6`

	headers := pgn.ParseHeaders(pgnText)

	assert.Equal(t, "Live Chess", headers["Event"])
	assert.Equal(t, "Chess.com", headers["Site"])
	assert.Equal(t, "2024.01.15", headers["Date"])
	assert.Equal(t, "Player1", headers["White"])
	assert.Equal(t, "Player2", headers["Black"])
	assert.Equal(t, "1-0", headers["Result"])
	assert.Equal(t, "B20", headers["ECO"])
	assert.Equal(t, "Sicilian Defense", headers["Opening"])
}

func TestParseHeaders_EmptyPGN(t *testing.T) {
	assert.Empty(t, pgn.ParseHeaders(""))
}

func TestParseHeaders_NoHeaders(t *testing.T) {
	assert.Empty(t, pgn.ParseHeaders(`1. e4 e5 2. Nf3 Nc6`))
}

func TestParseHeaders_MalformedHeaders(t *testing.T) {
	pgnText := `[Event Live Chess]
[Site Chess.com]
[Invalid header]
1. e4 e5`

	headers := pgn.ParseHeaders(pgnText)
	assert.Empty(t, headers, "malformed headers should be ignored")
}

func TestParseHeaders_ValuesWithApostrophes(t *testing.T) {
	pgnText := `[Event "Live Chess Tournament"]
[Opening "King's Gambit"]`

	headers := pgn.ParseHeaders(pgnText)
	assert.Equal(t, "Live Chess Tournament", headers["Event"])
	assert.Equal(t, "King's Gambit", headers["Opening"])
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    *time.Time
	}{
		{
			name:    "utc date and time preferred",
			headers: map[string]string{"UTCDate": "2024.01.15", "UTCTime": "18:30:00", "Date": "2023.01.01"},
			want:    timePtr(time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)),
		},
		{
			name:    "utc date only",
			headers: map[string]string{"UTCDate": "2024.01.15"},
			want:    timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "date fallback",
			headers: map[string]string{"Date": "2023.11.02"},
			want:    timePtr(time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:    "unparseable date",
			headers: map[string]string{"Date": "????.??.??"},
			want:    nil,
		},
		{
			name:    "no date tags",
			headers: map[string]string{"Event": "Live Chess"},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pgn.ParseDate(tt.headers)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestExtractGameID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "standard chess.com URL",
			url:      "https://www.chess.com/game/live/12345678",
			expected: "12345678",
		},
		{
			name:     "URL with trailing path",
			url:      "https://www.chess.com/game/live/98765432/analysis",
			expected: "98765432",
		},
		{
			name:     "non-matching URL returns input",
			url:      "https://example.com/game/123abc",
			expected: "https://example.com/game/123abc",
		},
		{
			name:     "empty string",
			url:      "",
			expected: "",
		},
		{
			name:     "leading zeros preserved",
			url:      "https://www.chess.com/game/live/00012345",
			expected: "00012345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pgn.ExtractGameID(tt.url))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
