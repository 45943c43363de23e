package history

import (
	"context"
	"testing"
	"time"

	"github.com/atarjan/memebet/internal/models"
)

func mustStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(id, userID string, amount int64, ts time.Time) *models.BetRecord {
	return &models.BetRecord{
		ID:        id,
		UserID:    userID,
		ItemID:    "meme-1",
		ItemName:  "Much Wow!",
		Symbol:    "DOGE",
		Amount:    amount,
		Direction: models.DirectionUp,
		Odds:      2.2,
		Status:    models.BetPending,
		Timestamp: ts,
	}
}

func TestStoreAppendAndList(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := s.Append(ctx, record("bet-1", "user-1", 100, now.Add(-2*time.Minute))); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(ctx, record("bet-2", "user-1", 200, now.Add(-1*time.Minute))); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(ctx, record("bet-3", "user-2", 300, now)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	bets, err := s.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(bets) != 2 {
		t.Fatalf("expected 2 bets for user-1, got %d", len(bets))
	}
	// Chronological, oldest first, for replay correctness.
	if bets[0].ID != "bet-1" || bets[1].ID != "bet-2" {
		t.Errorf("expected order [bet-1 bet-2], got [%s %s]", bets[0].ID, bets[1].ID)
	}
	if bets[0].Odds != 2.2 {
		t.Errorf("expected odds 2.2, got %v", bets[0].Odds)
	}
	if bets[0].Direction != models.DirectionUp {
		t.Errorf("expected direction up, got %v", bets[0].Direction)
	}
}

func TestStoreListSubsecondOrdering(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	// Same-second timestamps whose fraction strings differ in length. With
	// trailing-zero-trimmed encoding, ".5" sorts after ".55" and a whole
	// second sorts after any fractional sibling; the fixed-width layout keeps
	// string order chronological.
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	whole := base                                 // 12:00:00
	quarter := base.Add(250 * time.Millisecond)   // 12:00:00.25
	half := base.Add(500 * time.Millisecond)      // 12:00:00.5
	fiftyFive := base.Add(550 * time.Millisecond) // 12:00:00.55

	if err := s.Append(ctx, record("bet-half", "user-1", 100, half)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(ctx, record("bet-55", "user-1", 100, fiftyFive)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(ctx, record("bet-whole", "user-1", 100, whole)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(ctx, record("bet-quarter", "user-1", 100, quarter)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	bets, err := s.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	want := []string{"bet-whole", "bet-quarter", "bet-half", "bet-55"}
	if len(bets) != len(want) {
		t.Fatalf("expected %d bets, got %d", len(want), len(bets))
	}
	for i, id := range want {
		if bets[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, bets[i].ID)
		}
	}
	for i := 1; i < len(bets); i++ {
		if bets[i].Timestamp.Before(bets[i-1].Timestamp) {
			t.Errorf("timestamps out of chronological order at position %d", i)
		}
	}
}

func TestStoreListUnknownUser(t *testing.T) {
	s := mustStore(t)

	bets, err := s.ListForUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(bets) != 0 {
		t.Errorf("expected empty list for unknown user, got %d records", len(bets))
	}
}

func TestStoreRejectsInvalidRecord(t *testing.T) {
	s := mustStore(t)

	bad := record("bet-1", "user-1", 0, time.Now()) // zero amount
	if err := s.Append(context.Background(), bad); err == nil {
		t.Error("expected invalid record to be rejected")
	}
}

func TestStoreCountForUser(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()
	now := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		if err := s.Append(ctx, record(id, "user-1", 100, now.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	n, err := s.CountForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("CountForUser failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 bets, got %d", n)
	}
}

func TestStoreSettleBet(t *testing.T) {
	s := mustStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, record("bet-1", "user-1", 100, time.Now())); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := s.SettleBet(ctx, "bet-1", models.BetWon); err != nil {
		t.Fatalf("SettleBet failed: %v", err)
	}

	bets, err := s.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if bets[0].Status != models.BetWon {
		t.Errorf("expected status won, got %v", bets[0].Status)
	}

	// Terminal bets cannot be settled again.
	if err := s.SettleBet(ctx, "bet-1", models.BetLost); err == nil {
		t.Error("expected re-settlement of a terminal bet to fail")
	}

	// Settlement target must be terminal.
	if err := s.SettleBet(ctx, "bet-1", models.BetPending); err == nil {
		t.Error("expected settlement to pending to be rejected")
	}

	// Unknown bet IDs fail loudly, never silently.
	if err := s.SettleBet(ctx, "missing", models.BetWon); err == nil {
		t.Error("expected settlement of unknown bet to fail")
	}
}
