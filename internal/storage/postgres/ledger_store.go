package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"poker-platform/internal/engine"
)

// LedgerStore implements engine.LedgerStore as a strictly append-only
// table: every buy-in and cash-out is an INSERT, never an UPDATE, and a
// player's current balance is simply the most recent row for that
// player. This is what "append-only ledger" in spec §4.9 buys you: the
// audit trail is the table itself, not a side log next to a mutable
// balance column.
type LedgerStore struct {
	db *sql.DB
}

// NewLedgerStore wraps an open *sql.DB. Call EnsureSchema once at startup.
func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// EnsureSchema creates the backing table if it doesn't already exist.
func (s *LedgerStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ledger_entries (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			table_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount BIGINT NOT NULL,
			balance BIGINT NOT NULL,
			at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS ledger_entries_player_idx ON ledger_entries (player_id, seq DESC)
	`)
	return err
}

func (s *LedgerStore) Balance(ctx context.Context, playerID string) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM ledger_entries WHERE player_id = $1 ORDER BY seq DESC LIMIT 1`,
		playerID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query ledger balance: %w", err)
	}
	return balance, nil
}

func (s *LedgerStore) Append(ctx context.Context, entry engine.LedgerEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, player_id, table_id, kind, amount, balance, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.PlayerID, entry.TableID, string(entry.Kind), entry.Amount, entry.Balance, entry.At)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}
