package acceptance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atarjan/memebet/internal/models"
)

func pricedBet() models.PricedBet {
	return models.PricedBet{
		BetRequest: models.BetRequest{
			ItemID:    "meme-1",
			Amount:    100,
			Direction: models.DirectionUp,
		},
		Odds: 2.2,
	}
}

func TestAccept(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/bets" {
			t.Errorf("Expected path /bets, got %s", r.URL.Path)
		}

		var req acceptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.UserID != "user-1" || req.Amount != 100 || req.Direction != "up" {
			t.Errorf("Unexpected request payload: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Acceptance{BetID: "accepted-1"})
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second)
	acc, err := client.Accept(context.Background(), "user-1", pricedBet())
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if acc.BetID != "accepted-1" {
		t.Errorf("Expected bet ID accepted-1, got %s", acc.BetID)
	}
	// Status defaults to pending when the collaborator omits it.
	if acc.Status != models.BetPending {
		t.Errorf("Expected pending status, got %s", acc.Status)
	}
}

func TestAcceptSynchronousSettlement(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Acceptance{BetID: "accepted-2", Status: models.BetWon})
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second)
	acc, err := client.Accept(context.Background(), "user-1", pricedBet())
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if acc.Status != models.BetWon {
		t.Errorf("Expected won status from synchronous settlement, got %s", acc.Status)
	}
}

func TestAcceptRejection(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "odds changed"}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second)
	_, err := client.Accept(context.Background(), "user-1", pricedBet())

	var accErr *AcceptanceError
	if !errors.As(err, &accErr) {
		t.Fatalf("Expected AcceptanceError, got %v", err)
	}
	if accErr.StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", accErr.StatusCode)
	}
	// Business error message passes through verbatim.
	if accErr.Message != "odds changed" {
		t.Errorf("Expected message 'odds changed', got %q", accErr.Message)
	}
	if accErr.Timeout {
		t.Error("Rejection must not be classified as timeout")
	}
}

func TestAcceptTimeout(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(Acceptance{BetID: "late"})
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 20*time.Millisecond)
	_, err := client.Accept(context.Background(), "user-1", pricedBet())

	var accErr *AcceptanceError
	if !errors.As(err, &accErr) {
		t.Fatalf("Expected AcceptanceError, got %v", err)
	}
	if !accErr.Timeout {
		t.Errorf("Expected timeout classification, got %+v", accErr)
	}
}

func TestAcceptMissingBetID(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second)
	if _, err := client.Accept(context.Background(), "user-1", pricedBet()); err == nil {
		t.Error("Expected error for acceptance without bet ID")
	}
}
