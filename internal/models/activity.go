package models

import (
	"errors"
	"time"
)

// ActivityEvent is one entry in the synthetic live activity feed. Events are
// generated, never derived from real bet records; the two streams are kept
// deliberately decoupled so the feed's statistical shape stays independent
// of actual user behavior.
type ActivityEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarRef   string    `json:"avatar_ref"`
	Symbol      string    `json:"symbol"`
	Amount      int64     `json:"amount"`
	Direction   Direction `json:"direction"`
	Timestamp   time.Time `json:"timestamp"`
}

// Validate checks that all activity event fields are valid.
func (e *ActivityEvent) Validate() error {
	if e.ID == "" {
		return errors.New("activity event ID must not be empty")
	}
	if e.UserID == "" {
		return errors.New("activity event user ID must not be empty")
	}
	if e.DisplayName == "" {
		return errors.New("activity event display name must not be empty")
	}
	if e.Symbol == "" {
		return errors.New("activity event symbol must not be empty")
	}
	if e.Amount <= 0 {
		return errors.New("activity event amount must be positive")
	}
	if err := e.Direction.Validate(); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		return errors.New("activity event timestamp must be set")
	}
	return nil
}
