package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"poker-platform/internal/metrics"
)

// LedgerEntryKind distinguishes chip movements into and out of a table.
type LedgerEntryKind string

const (
	LedgerBuyIn   LedgerEntryKind = "buyin"
	LedgerCashOut LedgerEntryKind = "cashout"
)

// LedgerEntry is one append-only record of a player's chip movement
// against a table. Balance is the player's running debt after this entry
// — positive means the house has extended that many chips of credit,
// never yet cashed back in (spec §4.9).
type LedgerEntry struct {
	ID       string          `json:"id"`
	PlayerID string          `json:"playerId"`
	TableID  string          `json:"tableId"`
	Kind     LedgerEntryKind `json:"kind"`
	Amount   int64           `json:"amount"`
	Balance  int64           `json:"balance"`
	At       time.Time       `json:"at"`
}

// LedgerStore persists the append-only ledger. Implementations must
// guarantee Append is atomic with respect to concurrent Balance reads for
// the same player (see internal/storage for the Postgres-backed one).
type LedgerStore interface {
	Balance(ctx context.Context, playerID string) (int64, error)
	Append(ctx context.Context, entry LedgerEntry) error
}

// RecordBuyIn appends a buy-in entry after checking it would not push the
// player's debt past maxDebt. maxDebt <= 0 means no ceiling.
func RecordBuyIn(ctx context.Context, store LedgerStore, playerID, tableID string, amount int64, maxDebt int64, now time.Time) error {
	if amount <= 0 {
		return NewError(InvalidArgument, "buy-in amount must be positive")
	}
	balance, err := store.Balance(ctx, playerID)
	if err != nil {
		return NewError(Internal, "read ledger balance: %v", err)
	}
	newBalance := balance + amount
	if maxDebt > 0 && newBalance > maxDebt {
		metrics.LedgerDebtCeilingRejections.Inc()
		return ErrDebtCeilingExceeded
	}
	return store.Append(ctx, LedgerEntry{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		TableID:  tableID,
		Kind:     LedgerBuyIn,
		Amount:   amount,
		Balance:  newBalance,
		At:       now,
	})
}

// RecordCashOut appends a cash-out entry, reducing the player's debt.
func RecordCashOut(ctx context.Context, store LedgerStore, playerID, tableID string, amount int64, now time.Time) error {
	if amount < 0 {
		return NewError(InvalidArgument, "cash-out amount cannot be negative")
	}
	balance, err := store.Balance(ctx, playerID)
	if err != nil {
		return NewError(Internal, "read ledger balance: %v", err)
	}
	return store.Append(ctx, LedgerEntry{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		TableID:  tableID,
		Kind:     LedgerCashOut,
		Amount:   amount,
		Balance:  balance - amount,
		At:       now,
	})
}
