// Package betting drives a bet request through its lifecycle:
// validate -> price -> submit -> record, ending in a terminal result.
//
// Each Engine owns its own mutable state (in-flight flag, last result), so
// independent lifecycles can run in one process without interference.
// Placements are serialized: transitions for one bet never interleave with
// another's on the same engine. The in-flight flag is advisory — callers
// (typically the UI) check IsPlacingBet before submitting a new request;
// the engine does not queue concurrent requests.
package betting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atarjan/memebet/internal/acceptance"
	"github.com/atarjan/memebet/internal/history"
	"github.com/atarjan/memebet/internal/logger"
	"github.com/atarjan/memebet/internal/metrics"
	"github.com/atarjan/memebet/internal/models"
	"github.com/atarjan/memebet/internal/odds"
)

// Lifecycle stages used for failure accounting.
const (
	stageValidation = "validation"
	stageAcceptance = "acceptance"
	stageRecording  = "recording"
)

// Result is the terminal outcome of one placement. Every placement, failed
// or successful, leaves a populated Result behind; no path exits in an
// ambiguous pending state.
type Result struct {
	Success bool
	Message string
	BetID   string
}

// Notifier announces notable bets out of band. Delivery failures are logged
// and never fail a placement.
type Notifier interface {
	SendBigBet(record models.BetRecord, potentialPayout float64) error
}

// Engine orchestrates bet placement against the history store and the
// external acceptance collaborator.
type Engine struct {
	store    *history.Store
	acceptor acceptance.Acceptor

	notifier        Notifier
	bigBetThreshold int64

	// runMu serializes placements so lifecycle transitions of one bet never
	// interleave with another's.
	runMu sync.Mutex

	// stateMu guards the externally observable state below.
	stateMu    sync.Mutex
	placing    bool
	lastResult *Result
}

// New creates a lifecycle engine over the given store and acceptor.
func New(store *history.Store, acceptor acceptance.Acceptor) *Engine {
	return &Engine{store: store, acceptor: acceptor}
}

// SetNotifier enables out-of-band alerts for bets at or above threshold.
func (e *Engine) SetNotifier(n Notifier, threshold int64) {
	e.notifier = n
	e.bigBetThreshold = threshold
}

// IsPlacingBet reports whether a placement is currently in flight. Callers
// use this to block re-entry; invoking PlaceBet without checking it is a
// caller error, not one the engine detects.
func (e *Engine) IsPlacingBet() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.placing
}

// LastResult returns a copy of the most recent terminal result, or nil when
// no placement has completed yet.
func (e *Engine) LastResult() *Result {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.lastResult == nil {
		return nil
	}
	r := *e.lastResult
	return &r
}

// PlaceBet runs one bet through the full lifecycle. Validation failures are
// reported without contacting the acceptance collaborator; acceptance
// failures surface the collaborator's message verbatim and leave history
// untouched. Nothing is retried here — retry is a caller policy.
//
// On success the returned Result carries a confirmation message and the
// acceptance identifier, and exactly one record has been appended to the
// history store.
func (e *Engine) PlaceBet(
	ctx context.Context,
	userID string,
	item models.TrendItem,
	amount int64,
	direction models.Direction,
	balance int64,
) (*Result, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.setPlacing(true)
	// The in-flight flag is cleared on every exit path.
	defer e.setPlacing(false)

	// Validating
	if err := direction.Validate(); err != nil {
		return e.fail(stageValidation, err)
	}
	if err := odds.ValidateAmount(amount, balance); err != nil {
		return e.fail(stageValidation, err)
	}

	// Pricing
	priced := models.PricedBet{
		BetRequest: models.BetRequest{
			ItemID:    item.ID,
			Amount:    amount,
			Direction: direction,
		},
		Odds: odds.PriceDirection(item.BaseOdds, direction),
	}

	// Submitting
	acc, err := e.acceptor.Accept(ctx, userID, priced)
	if err != nil {
		return e.fail(stageAcceptance, err)
	}

	// Recording. The acceptance identifier becomes the record ID; the status
	// is whatever the collaborator resolved (pending unless it settled
	// synchronously).
	record := models.BetRecord{
		ID:        acc.BetID,
		UserID:    userID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Symbol:    item.Symbol,
		Amount:    amount,
		Direction: direction,
		Odds:      priced.Odds,
		Status:    acc.Status,
		Timestamp: time.Now(),
	}
	if err := e.store.Append(ctx, &record); err != nil {
		return e.fail(stageRecording, err)
	}

	metrics.BetsPlaced.Inc()

	payout := odds.PotentialPayout(amount, priced.Odds)
	if e.notifier != nil && amount >= e.bigBetThreshold {
		go func() {
			if err := e.notifier.SendBigBet(record, payout); err != nil {
				logger.Warn("Failed to send big bet alert for %s: %v", record.ID, err)
			}
		}()
	}

	result := &Result{
		Success: true,
		Message: fmt.Sprintf("Successfully placed %d point bet on %s going %s!", amount, item.Name, direction),
		BetID:   acc.BetID,
	}
	e.setLastResult(result)
	logger.Info("Placed bet %s: %d points on %s (%s) at odds %.4f", acc.BetID, amount, item.Name, direction, priced.Odds)
	return result, nil
}

// fail records a terminal failure result and propagates the error.
func (e *Engine) fail(stage string, err error) (*Result, error) {
	metrics.BetFailures.WithLabelValues(stage).Inc()
	result := &Result{Success: false, Message: err.Error()}
	e.setLastResult(result)
	logger.Debug("Bet placement failed at %s: %v", stage, err)
	return result, err
}

func (e *Engine) setPlacing(v bool) {
	e.stateMu.Lock()
	e.placing = v
	e.stateMu.Unlock()
}

func (e *Engine) setLastResult(r *Result) {
	e.stateMu.Lock()
	e.lastResult = r
	e.stateMu.Unlock()
}
