// Package chesscom is a client for the chess.com public API: player
// stats for the rating tracker and monthly game archives for the
// importer.
package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/thesor/chesswatch/internal/errors"
	"github.com/thesor/chesswatch/internal/logger"
	"github.com/thesor/chesswatch/internal/models"
)

const defaultBaseURL = "https://api.chess.com/pub"

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

func New() *Client {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL points the client at a different API root, used by
// tests.
func NewWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		log:        logger.Default().WithPrefix("chesscom"),
	}
}

type archivesResp struct {
	Archives []string `json:"archives"`
}

type MonthlyGame struct {
	URL       string `json:"url"`
	UUID      string `json:"uuid"`
	PGN       string `json:"pgn"`
	TimeClass string `json:"time_class"`
	Rules     string `json:"rules"`
	Rated     bool   `json:"rated"`
	EndTime   int64  `json:"end_time"`
	White     Player `json:"white"`
	Black     Player `json:"black"`
}

type Player struct {
	Username string `json:"username"`
	Result   string `json:"result"`
}

type categoryStats struct {
	Last struct {
		Rating int `json:"rating"`
	} `json:"last"`
	Record struct {
		Win  int `json:"win"`
		Loss int `json:"loss"`
		Draw int `json:"draw"`
	} `json:"record"`
}

type statsResp struct {
	ChessRapid  *categoryStats `json:"chess_rapid"`
	ChessBlitz  *categoryStats `json:"chess_blitz"`
	ChessBullet *categoryStats `json:"chess_bullet"`
}

// FetchStats retrieves the current per-category ratings and records
// of one player. Categories the player never played come back with a
// null rating, not an error.
func (c *Client) FetchStats(ctx context.Context, username string) (models.PlayerRatings, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)
	url := fmt.Sprintf("%s/player/%s/stats", c.baseURL, username)

	log.Debug("fetching stats from: %s", url)
	start := time.Now()

	var out statsResp
	if err := c.getJSON(ctx, log, url, &out); err != nil {
		return models.PlayerRatings{}, apperrors.NewProviderFetchError(username, err)
	}

	ratings := models.PlayerRatings{
		Player:    username,
		FetchedAt: time.Now(),
		Categories: map[models.Category]models.CategoryRating{
			models.CategoryRapid:  toCategoryRating(out.ChessRapid),
			models.CategoryBlitz:  toCategoryRating(out.ChessBlitz),
			models.CategoryBullet: toCategoryRating(out.ChessBullet),
		},
	}

	log.Info("fetched stats in %v", time.Since(start))
	return ratings, nil
}

func toCategoryRating(cs *categoryStats) models.CategoryRating {
	if cs == nil {
		return models.CategoryRating{}
	}
	rating := cs.Last.Rating
	return models.CategoryRating{
		Rating: &rating,
		Wins:   cs.Record.Win,
		Losses: cs.Record.Loss,
		Draws:  cs.Record.Draw,
	}
}

// FetchArchives lists the monthly archive URLs of one player, oldest
// first as the API returns them.
func (c *Client) FetchArchives(ctx context.Context, username string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)
	url := fmt.Sprintf("%s/player/%s/games/archives", c.baseURL, username)

	log.Debug("fetching archives from: %s", url)
	start := time.Now()

	var out archivesResp
	if err := c.getJSON(ctx, log, url, &out); err != nil {
		return nil, apperrors.NewProviderFetchError(username, err)
	}

	log.Info("fetched %d archives in %v", len(out.Archives), time.Since(start))
	return out.Archives, nil
}

// FetchMonthly retrieves every game of one monthly archive.
func (c *Client) FetchMonthly(ctx context.Context, archiveURL string) ([]MonthlyGame, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("archive_url", archiveURL)

	log.Debug("fetching monthly games")
	start := time.Now()

	var payload struct {
		Games []MonthlyGame `json:"games"`
	}
	if err := c.getJSON(ctx, log, archiveURL, &payload); err != nil {
		return nil, apperrors.NewProviderFetchError(archiveURL, err)
	}

	log.Info("fetched %d games in %v", len(payload.Games), time.Since(start))
	return payload.Games, nil
}

func (c *Client) getJSON(ctx context.Context, log *logger.Logger, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return err
	}
	return nil
}
