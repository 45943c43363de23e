package models

import (
	"errors"
	"fmt"
)

// Window is the time range over which leaderboard statistics are computed.
// The window is an opaque filter applied by the leaderboard data provider;
// it is never recomputed locally.
type Window string

const (
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
	WindowAllTime Window = "all-time"
)

// Validate checks that the window is one of the supported ranges.
func (w Window) Validate() error {
	if w != WindowDaily && w != WindowWeekly && w != WindowAllTime {
		return fmt.Errorf("window must be one of %q, %q, %q", WindowDaily, WindowWeekly, WindowAllTime)
	}
	return nil
}

// Outcome is a single settled bet result.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Standing is one user's raw settled-bet outcomes for a window, as returned
// by the leaderboard data provider. Outcomes are ordered by settlement,
// oldest first.
type Standing struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarRef   string    `json:"avatar_ref"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Validate checks that all standing fields are valid.
func (s *Standing) Validate() error {
	if s.UserID == "" {
		return errors.New("standing user ID must not be empty")
	}
	if s.DisplayName == "" {
		return errors.New("standing display name must not be empty")
	}
	for _, o := range s.Outcomes {
		if o != OutcomeWon && o != OutcomeLost {
			return fmt.Errorf("standing outcome %q must be 'won' or 'lost'", o)
		}
	}
	return nil
}

// LeaderboardEntry is one ranked row of the leaderboard. Entries are a pure
// projection over standings: recomputed wholesale on every aggregation pass
// and never patched incrementally.
//
// Streak is signed: consecutive wins are positive, consecutive losses
// negative, no settled bets zero.
type LeaderboardEntry struct {
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	AvatarRef   string  `json:"avatar_ref"`
	Rank        int     `json:"rank"`
	WinRate     float64 `json:"win_rate"` // 0-100
	TotalBets   int     `json:"total_bets"`
	Streak      int     `json:"streak"`
}

// Validate checks that all leaderboard entry fields are valid.
func (e *LeaderboardEntry) Validate() error {
	if e.UserID == "" {
		return errors.New("leaderboard entry user ID must not be empty")
	}
	if e.Rank < 1 {
		return errors.New("leaderboard rank must be at least 1")
	}
	if e.WinRate < 0.0 || e.WinRate > 100.0 {
		return errors.New("win rate must be between 0 and 100")
	}
	if e.TotalBets < 0 {
		return errors.New("total bets must not be negative")
	}
	return nil
}

// Summary holds the derived statistics displayed alongside the ranking.
// All three reductions reflect the same window as the ranked entries.
type Summary struct {
	AverageWinRate float64 `json:"average_win_rate"`
	TotalBets      int     `json:"total_bets"`
	MaxStreak      int     `json:"max_streak"`
}
