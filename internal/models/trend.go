// Package models defines the core domain entities for the memebet engine.
// These models represent trend items, bets placed against them, synthetic
// activity events, and derived leaderboard projections.
// All models include built-in validation to ensure data integrity throughout the application.
//
// Lifecycle summary:
//   - TrendItem and ActivityEvent are ephemeral: replaced wholesale on refresh
//     or evicted from a bounded buffer.
//   - BetRecord is durable for the session and append-only.
//   - LeaderboardEntry is a pure projection, recomputed wholesale, never the
//     source of truth.
package models

import (
	"errors"
	"time"
)

// TrendItem represents a single trending meme "coin" a user can bet on.
// BaseOdds is the undirected payout multiplier derived from upstream
// popularity. Items are immutable within a refresh cycle; the next fetch
// replaces the whole set.
type TrendItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Symbol     string    `json:"symbol"`
	BaseOdds   float64   `json:"base_odds"`  // Undirected multiplier, >= 1.0
	Popularity float64   `json:"popularity"` // Upstream popularity score
	FetchedAt  time.Time `json:"fetched_at"`
}

// Validate checks that all trend item fields are valid.
func (t *TrendItem) Validate() error {
	if t.ID == "" {
		return errors.New("trend item ID must not be empty")
	}
	if t.Name == "" {
		return errors.New("trend item name must not be empty")
	}
	if t.Symbol == "" {
		return errors.New("trend item symbol must not be empty")
	}
	if t.BaseOdds < 1.0 {
		return errors.New("base odds must be at least 1.0")
	}
	if t.Popularity < 0 {
		return errors.New("popularity must not be negative")
	}
	return nil
}
