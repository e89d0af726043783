package models

import "time"

// Game sources.
const (
	SourceManual   = "manual"
	SourceChessCom = "chesscom"
)

// Review statuses, in lifecycle order.
const (
	ReviewStatusPending = "pending"
	ReviewStatusRunning = "running"
	ReviewStatusDone    = "done"
	ReviewStatusFailed  = "failed"
)

type Game struct {
	ID           int64      `json:"id"`
	Source       string     `json:"source"`
	ChessComUUID string     `json:"chess_com_uuid,omitempty"`
	White        string     `json:"white"`
	Black        string     `json:"black"`
	Result       string     `json:"result"`
	ECOCode      string     `json:"eco_code"`
	OpeningName  string     `json:"opening_name"`
	PGN          string     `json:"pgn"`
	PlayedAt     *time.Time `json:"played_at,omitempty"`
	ReviewStatus string     `json:"review_status"`
	ReviewError  string     `json:"review_error,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type GameFilter struct {
	Player       string // matches white or black
	Source       string
	ReviewStatus string
	Limit        int
	Offset       int
}
