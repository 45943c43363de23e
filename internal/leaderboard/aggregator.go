// Package leaderboard reduces raw per-user bet outcomes into ranked entries
// and summary statistics for a selected time window.
//
// Aggregation is wholesale and idempotent: every pass recomputes the full
// ranking from the provider's standings, and identical input always yields
// an identical ranked sequence. Entries are never patched incrementally.
//
// The sort is a multi-key comparator chain applied in priority order, so the
// ordering contract stays auditable and testable key by key: win rate
// descending, then total bets descending, then streak descending, with user
// ID ascending as the stable final key. Ranks are contiguous from 1 and
// never shared.
package leaderboard

import (
	"sort"

	"github.com/atarjan/memebet/internal/models"
)

// comparator reports the ordering of two entries for one key: negative when
// a ranks before b, positive when after, zero when the key ties.
type comparator func(a, b *models.LeaderboardEntry) int

// rankOrder is the comparator chain, highest priority first.
var rankOrder = []comparator{
	func(a, b *models.LeaderboardEntry) int { return compareFloat(b.WinRate, a.WinRate) },
	func(a, b *models.LeaderboardEntry) int { return b.TotalBets - a.TotalBets },
	func(a, b *models.LeaderboardEntry) int { return b.Streak - a.Streak },
	func(a, b *models.LeaderboardEntry) int { return compareString(a.UserID, b.UserID) },
}

// Aggregate reduces standings into the ranked leaderboard.
func Aggregate(standings []models.Standing) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(standings))
	for _, s := range standings {
		total := len(s.Outcomes)
		won := 0
		for _, o := range s.Outcomes {
			if o == models.OutcomeWon {
				won++
			}
		}

		winRate := 0.0
		if total > 0 {
			winRate = float64(won) / float64(total) * 100
		}

		entries = append(entries, models.LeaderboardEntry{
			UserID:      s.UserID,
			DisplayName: s.DisplayName,
			AvatarRef:   s.AvatarRef,
			WinRate:     winRate,
			TotalBets:   total,
			Streak:      Streak(s.Outcomes),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		for _, cmp := range rankOrder {
			if c := cmp(&entries[i], &entries[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Streak returns the signed length of the most recent run of identical
// outcomes: consecutive wins positive, consecutive losses negative, no
// settled bets zero. Outcomes arrive in settlement order, oldest first.
func Streak(outcomes []models.Outcome) int {
	if len(outcomes) == 0 {
		return 0
	}

	latest := outcomes[len(outcomes)-1]
	run := 0
	for i := len(outcomes) - 1; i >= 0 && outcomes[i] == latest; i-- {
		run++
	}
	if latest == models.OutcomeLost {
		return -run
	}
	return run
}

// Summarize computes the derived statistics over a ranked sequence. All
// reductions reflect the same window as the ranking they are computed from.
func Summarize(entries []models.LeaderboardEntry) models.Summary {
	if len(entries) == 0 {
		return models.Summary{}
	}

	var rateSum float64
	var totalBets int
	maxStreak := entries[0].Streak
	for _, e := range entries {
		rateSum += e.WinRate
		totalBets += e.TotalBets
		if e.Streak > maxStreak {
			maxStreak = e.Streak
		}
	}
	return models.Summary{
		AverageWinRate: rateSum / float64(len(entries)),
		TotalBets:      totalBets,
		MaxStreak:      maxStreak,
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
