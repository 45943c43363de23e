// Package history provides the session-scoped, append-only bet log.
//
// Records are owned by the store once appended: the only mutation it exposes
// is the pending -> won|lost status transition. Balance conservation is
// enforced upstream by validation and is not re-checked here.
//
// The store is backed by SQLite so history survives within a session and can
// be inspected with ordinary tooling. Tests use the ":memory:" DSN.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/atarjan/memebet/internal/models"
)

// timeLayout is RFC 3339 with a fixed-width nanosecond fraction. RFC3339Nano
// trims trailing zeros, which breaks lexicographic ordering of the stored
// strings; a fixed width keeps string order identical to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS bets (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	item_id    TEXT NOT NULL,
	item_name  TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	amount     INTEGER NOT NULL,
	direction  TEXT NOT NULL,
	odds       REAL NOT NULL,
	status     TEXT NOT NULL,
	placed_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bets_user ON bets(user_id, placed_at);
`

// Store is the append-only bet history log.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the bet log at dbPath. Pass ":memory:" for an
// ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bet log: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and gives the
	// single-writer discipline the log relies on.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize bet log schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append inserts a bet record at the tail of the log (chronological order,
// newest last). Records are validated before insertion and never removed
// within a session.
func (s *Store) Append(ctx context.Context, record *models.BetRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid bet record: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bets (id, user_id, item_id, item_name, symbol, amount, direction, odds, status, placed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.ItemID, record.ItemName, record.Symbol,
		record.Amount, string(record.Direction), record.Odds, string(record.Status),
		record.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to append bet record: %w", err)
	}
	return nil
}

// ListForUser returns the user's bet records in replay order, oldest first.
// The returned slice is a read-only view; mutating it does not affect the log.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]models.BetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, item_id, item_name, symbol, amount, direction, odds, status, placed_at
		 FROM bets WHERE user_id = ? ORDER BY placed_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	records := make([]models.BetRecord, 0)
	for rows.Next() {
		var rec models.BetRecord
		var direction, status, placedAt string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ItemID, &rec.ItemName, &rec.Symbol,
			&rec.Amount, &direction, &rec.Odds, &status, &placedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bet record: %w", err)
		}
		rec.Direction = models.Direction(direction)
		rec.Status = models.BetStatus(status)
		ts, err := time.Parse(timeLayout, placedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bet timestamp: %w", err)
		}
		rec.Timestamp = ts
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bet records: %w", err)
	}
	return records, nil
}

// CountForUser returns the number of bets the user has placed this session.
func (s *Store) CountForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count bets: %w", err)
	}
	return n, nil
}

// SettleBet transitions a pending bet to a terminal status. The transition
// pending -> won|lost is the only mutation the log permits; settling an
// already-terminal bet or targeting a non-terminal status is an error.
func (s *Store) SettleBet(ctx context.Context, betID string, status models.BetStatus) error {
	if status != models.BetWon && status != models.BetLost {
		return fmt.Errorf("settlement status must be 'won' or 'lost', got %q", status)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE bets SET status = ? WHERE id = ? AND status = ?`,
		string(status), betID, string(models.BetPending),
	)
	if err != nil {
		return fmt.Errorf("failed to settle bet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to settle bet: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bet %s not found or not pending", betID)
	}
	return nil
}
