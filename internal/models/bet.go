package models

import (
	"errors"
	"time"
)

// Direction is the bettor's prediction for an item's popularity movement.
type Direction string

const (
	// DirectionUp predicts rising popularity.
	DirectionUp Direction = "up"
	// DirectionDown predicts falling popularity.
	DirectionDown Direction = "down"
)

// Validate checks that the direction is one of the two permitted values.
func (d Direction) Validate() error {
	if d != DirectionUp && d != DirectionDown {
		return errors.New("direction must be 'up' or 'down'")
	}
	return nil
}

// BetStatus is the settlement state of a recorded bet.
type BetStatus string

const (
	// BetPending means the bet is placed but not yet settled.
	BetPending BetStatus = "pending"
	// BetWon is the terminal winning state.
	BetWon BetStatus = "won"
	// BetLost is the terminal losing state.
	BetLost BetStatus = "lost"
)

// Validate checks that the status is a known settlement state.
func (s BetStatus) Validate() error {
	if s != BetPending && s != BetWon && s != BetLost {
		return errors.New("status must be 'pending', 'won' or 'lost'")
	}
	return nil
}

// BetRequest is a single bet intent from the UI. It is consumed once by the
// lifecycle engine and never persisted directly.
type BetRequest struct {
	ItemID    string    `json:"item_id"`
	Amount    int64     `json:"amount"` // Points staked, positive
	Direction Direction `json:"direction"`
}

// Validate checks the structural fields of the request. Balance and limit
// checks are the odds package's responsibility, not the model's.
func (r *BetRequest) Validate() error {
	if r.ItemID == "" {
		return errors.New("bet item ID must not be empty")
	}
	if r.Amount <= 0 {
		return errors.New("bet amount must be positive")
	}
	return r.Direction.Validate()
}

// PricedBet is a bet request after direction-adjusted odds have been
// computed. Odds stays float64 internally; rounding happens only at
// display time.
type PricedBet struct {
	BetRequest
	Odds float64 `json:"odds"`
}

// Validate checks the priced bet, including the underlying request.
func (p *PricedBet) Validate() error {
	if err := p.BetRequest.Validate(); err != nil {
		return err
	}
	if p.Odds <= 0 {
		return errors.New("odds must be positive")
	}
	return nil
}

// BetRecord is a priced bet as accepted and recorded for one user. Records
// are append-only: after creation the only legal mutation is the status
// transition pending -> won|lost, owned by the history store.
type BetRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Symbol    string    `json:"symbol"`
	Amount    int64     `json:"amount"`
	Direction Direction `json:"direction"`
	Odds      float64   `json:"odds"`
	Status    BetStatus `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks that all bet record fields are valid.
func (b *BetRecord) Validate() error {
	if b.ID == "" {
		return errors.New("bet record ID must not be empty")
	}
	if b.UserID == "" {
		return errors.New("bet record user ID must not be empty")
	}
	if b.ItemID == "" {
		return errors.New("bet record item ID must not be empty")
	}
	if b.Amount <= 0 {
		return errors.New("bet record amount must be positive")
	}
	if b.Odds <= 0 {
		return errors.New("bet record odds must be positive")
	}
	if err := b.Direction.Validate(); err != nil {
		return err
	}
	if err := b.Status.Validate(); err != nil {
		return err
	}
	if b.Timestamp.IsZero() {
		return errors.New("bet record timestamp must be set")
	}
	return nil
}
