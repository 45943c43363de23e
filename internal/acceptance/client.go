// Package acceptance provides the client for the external bet-acceptance
// collaborator. The collaborator receives a priced bet plus requester
// identity and answers with an acceptance identifier, optionally resolving
// settlement synchronously.
//
// Failures are never retried here: the lifecycle engine surfaces them
// verbatim and retry stays a caller policy. Timeouts are reported as a
// distinguishable failure kind.
package acceptance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/atarjan/memebet/internal/models"
)

// AcceptanceError reports a rejected or failed bet submission. Timeout marks
// deadline expiry on the collaborator call; StatusCode is zero for transport
// failures.
type AcceptanceError struct {
	StatusCode int
	Message    string
	Timeout    bool
}

func (e *AcceptanceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("bet acceptance timed out: %s", e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("bet acceptance failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bet acceptance failed: %s", e.Message)
}

// Acceptance is the collaborator's answer to a submitted bet. Status may be
// terminal when the collaborator settles synchronously; it defaults to
// pending otherwise.
type Acceptance struct {
	BetID  string           `json:"bet_id"`
	Status models.BetStatus `json:"status"`
}

// Acceptor is the interface consumed by the lifecycle engine. The HTTP
// client below is the production implementation; tests substitute fakes.
type Acceptor interface {
	Accept(ctx context.Context, userID string, bet models.PricedBet) (*Acceptance, error)
}

// Client submits priced bets to the acceptance collaborator over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates an acceptance client. Every submission is bounded by
// timeout; expiry surfaces as an AcceptanceError with Timeout set.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// acceptRequest is the wire format for a bet submission.
type acceptRequest struct {
	UserID    string  `json:"user_id"`
	ItemID    string  `json:"item_id"`
	Amount    int64   `json:"amount"`
	Direction string  `json:"direction"`
	Odds      float64 `json:"odds"`
}

// Accept submits a priced bet and returns the collaborator's acceptance.
func (c *Client) Accept(ctx context.Context, userID string, bet models.PricedBet) (*Acceptance, error) {
	payload, err := json.Marshal(acceptRequest{
		UserID:    userID,
		ItemID:    bet.ItemID,
		Amount:    bet.Amount,
		Direction: string(bet.Direction),
		Odds:      bet.Odds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode bet submission: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bets", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build bet submission: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &AcceptanceError{Message: err.Error(), Timeout: true}
		}
		return nil, &AcceptanceError{Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var body struct {
			Error string `json:"error"`
		}
		msg := "bet rejected"
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil && body.Error != "" {
			msg = body.Error
		}
		return nil, &AcceptanceError{StatusCode: resp.StatusCode, Message: msg}
	}

	var acc Acceptance
	if err := json.NewDecoder(resp.Body).Decode(&acc); err != nil {
		return nil, &AcceptanceError{Message: fmt.Sprintf("failed to decode acceptance: %v", err)}
	}
	if acc.BetID == "" {
		return nil, &AcceptanceError{Message: "acceptance missing bet ID"}
	}
	if acc.Status == "" {
		acc.Status = models.BetPending
	}
	if err := acc.Status.Validate(); err != nil {
		return nil, &AcceptanceError{Message: fmt.Sprintf("acceptance carries invalid status %q", acc.Status)}
	}
	return &acc, nil
}

// isTimeout reports whether err represents deadline expiry, either from the
// context or from the transport.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
