// Package odds provides bet pricing and stake validation.
//
// Direction-adjusted odds implement the house-edge rule: betting "up" skews
// odds 10% in the bettor's favor, betting "down" skews them 10% against.
// The asymmetry is deliberate, not a bug.
//
// All functions are pure and safe for concurrent use without coordination.
package odds

import (
	"errors"

	"github.com/atarjan/memebet/internal/models"
)

const (
	// UpFactor is applied to base odds for an "up" prediction.
	UpFactor = 1.10
	// DownFactor is applied to base odds for a "down" prediction.
	DownFactor = 0.90
	// MaxBetAmount is the hard cap on a single stake, in points.
	MaxBetAmount int64 = 1_000_000
)

// Validation failures, ordered by check priority. The order is significant
// for user-facing messaging: amount sanity before balance, balance before
// the hard cap. These are detected locally and never reach the acceptance
// collaborator.
var (
	// ErrInvalidAmount rejects non-positive stakes.
	ErrInvalidAmount = errors.New("bet amount must be greater than 0")
	// ErrInsufficientBalance rejects stakes above the user's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrAmountExceedsLimit rejects stakes above MaxBetAmount.
	ErrAmountExceedsLimit = errors.New("maximum bet amount is 1,000,000 points")
)

// PriceDirection returns the direction-adjusted odds for a base odds value.
// Unknown directions fall back to the base odds unchanged; Direction values
// are validated upstream by the lifecycle engine.
func PriceDirection(baseOdds float64, direction models.Direction) float64 {
	switch direction {
	case models.DirectionUp:
		return baseOdds * UpFactor
	case models.DirectionDown:
		return baseOdds * DownFactor
	default:
		return baseOdds
	}
}

// PotentialPayout returns the payout for a stake at the given odds.
// The result stays float64; rounding happens only at display time.
func PotentialPayout(amount int64, odds float64) float64 {
	return float64(amount) * odds
}

// ValidateAmount checks a stake against the user's balance and the hard cap.
// Checks run in a fixed order: ErrInvalidAmount, then ErrInsufficientBalance,
// then ErrAmountExceedsLimit. Returns nil when the stake is acceptable.
func ValidateAmount(amount, balance int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > balance {
		return ErrInsufficientBalance
	}
	if amount > MaxBetAmount {
		return ErrAmountExceedsLimit
	}
	return nil
}
