package engine

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/coder/quartz"

	"poker-platform/internal/metrics"
	"poker-platform/pkg/poker"
)

// Engine is the entry point for every table lifecycle and in-hand
// operation (spec §4.10, §6.1). It holds no table state itself — every
// operation opens a Gateway transaction, mutates a working Document, and
// commits. Concurrent callers racing for the same table serialize
// through the Gateway's optimistic retry loop rather than through any
// lock held here.
type Engine struct {
	Gateway *Gateway
	Ledger  LedgerStore
	// Shuffler is shared across every table; poker.Shuffler holds no
	// mutable state beyond its Source reader (crypto/rand.Reader by
	// default, or a mutex-guarded *rng.System), so sharing it is safe.
	Shuffler *poker.Shuffler
	// Clock is the source of "now" for ledger timestamps and action
	// deadlines. Tests swap in a quartz.NewMock so the deadline-expiry
	// auto-fold path can be exercised without sleeping in real time.
	Clock quartz.Clock
}

// NewEngine wires a Gateway and ledger store into a ready-to-use Engine,
// shuffling with crypto/rand.Reader directly. Use NewEngineWithShuffler to
// plug in an audited source such as *rng.System.
func NewEngine(gateway *Gateway, ledger LedgerStore) *Engine {
	return &Engine{Gateway: gateway, Ledger: ledger, Shuffler: &poker.Shuffler{}, Clock: quartz.NewReal()}
}

// NewEngineWithShuffler wires a Gateway and ledger store with a caller-
// supplied Shuffler, letting deployments plug in an audited randomness
// source (e.g. one backed by *rng.System) instead of the zero-value
// default which reads crypto/rand.Reader.
func NewEngineWithShuffler(gateway *Gateway, ledger LedgerStore, shuffler *poker.Shuffler) *Engine {
	return &Engine{Gateway: gateway, Ledger: ledger, Shuffler: shuffler, Clock: quartz.NewReal()}
}

// CreateTable allocates a fresh 4-digit table ID, retrying on collision,
// and persists a new table owned by hostID, with the host seated at
// position 0 and bought in for settings.MinBuyIn (spec §4.10).
func (e *Engine) CreateTable(ctx context.Context, hostID string, settings TableSettings) (string, error) {
	if hostID == "" {
		return "", NewError(InvalidArgument, "hostID is required")
	}
	if err := settings.Validate(); err != nil {
		return "", err
	}

	const maxAttempts = 20
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := generateTableID()
		if err != nil {
			return "", NewError(Internal, "generate table id: %v", err)
		}

		table := &Table{
			ID:                 id,
			HostID:             hostID,
			Status:             TableWaiting,
			Settings:           settings,
			Seats:              make([]*Seat, settings.MaxPlayers),
			LastDealerPosition: -1,
			CreatedAt:          e.Clock.Now(),
		}
		table.Seats[0] = &Seat{
			PlayerID: hostID,
			Position: 0,
			Chips:    settings.MinBuyIn,
			Status:   SeatSitting,
		}
		doc := &Document{Table: table, HoleCards: make(map[string][]poker.Card)}

		if err := RecordBuyIn(ctx, e.Ledger, hostID, id, settings.MinBuyIn, settings.MaxDebtPerPlayer, e.Clock.Now()); err != nil {
			return "", err
		}

		err = e.Gateway.Store.Create(ctx, doc)
		if err == nil {
			return id, nil
		}
		if !IsKind(err, AlreadyExists) {
			return "", err
		}
	}
	return "", NewError(ResourceExhausted, "could not allocate a free table id after %d attempts", maxAttempts)
}

// generateTableID draws a random 4-digit table ID in [1000, 9999].
func generateTableID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

// JoinTable seats playerID at tableID with the given buy-in, recording it
// in the ledger against the table's debt ceiling (spec §4.9, §4.10).
// Joining mid-session marks the seat AwaitingDeal so it sits out until
// the hand in which the big blind falls on its position.
func (e *Engine) JoinTable(ctx context.Context, tableID, playerID string, buyIn int64) (int, error) {
	var seatedAt int = -1
	_, err := e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		if t.Status == TableEnded {
			return NewError(FailedPrecondition, "table has ended")
		}
		if t.SeatOf(playerID) != nil {
			return ErrAlreadySeated
		}
		if buyIn < t.Settings.MinBuyIn || buyIn > t.Settings.MaxBuyIn {
			return NewError(InvalidArgument, "buy-in must be between %d and %d", t.Settings.MinBuyIn, t.Settings.MaxBuyIn)
		}
		pos := findEmptySeat(t)
		if pos == -1 {
			return ErrTableFull
		}

		if err := RecordBuyIn(ctx, e.Ledger, playerID, tableID, buyIn, t.Settings.MaxDebtPerPlayer, e.Clock.Now()); err != nil {
			return err
		}

		t.Seats[pos] = &Seat{
			PlayerID:     playerID,
			Position:     pos,
			Chips:        buyIn,
			Status:       SeatSitting,
			AwaitingDeal: t.HandCount > 0 || t.Status == TablePlaying,
		}
		seatedAt = pos
		return nil
	})
	if err != nil {
		return -1, err
	}
	return seatedAt, nil
}

// LeaveTable removes playerID from tableID, cashing out their remaining
// chips through the ledger. A player who leaves while the action is on
// them is auto-folded first so the hand isn't stuck waiting on a player
// who is no longer there (spec §4.10 Open Question: auto-fold on leave).
func (e *Engine) LeaveTable(ctx context.Context, tableID, playerID string) (int64, error) {
	var cashedOut int64
	_, err := e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		seat := t.SeatOf(playerID)
		if seat == nil {
			return ErrPlayerNotSeated
		}

		if t.Hand != nil && t.Hand.CurrentPlayerPosition == seat.Position && seat.canAct() {
			if err := applyAction(t, playerID, ActionFold, 0, e.Clock.Now()); err != nil {
				return err
			}
			if t.Hand != nil && t.Hand.Phase == PhaseShowdown {
				if _, err := resolveShowdown(t, doc.HoleCards); err != nil {
					return err
				}
			}
		} else if t.Hand != nil && seat.Status == SeatPlaying {
			seat.Status = SeatFolded
		}

		cashedOut = seat.Chips
		if err := RecordCashOut(ctx, e.Ledger, playerID, tableID, cashedOut, e.Clock.Now()); err != nil {
			return err
		}

		t.Seats[seat.Position] = nil
		if t.HostID == playerID {
			reassignHost(t)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return cashedOut, nil
}

// reassignHost hands the host role to the lowest-position occupied seat,
// or leaves the table hostless if it is now empty (supplemented feature:
// host transfer on departure).
func reassignHost(t *Table) {
	occupied := t.OccupiedSeats()
	if len(occupied) == 0 {
		t.HostID = ""
		return
	}
	t.HostID = occupied[0].PlayerID
}

// TransferHost hands host privileges to another seated player.
func (e *Engine) TransferHost(ctx context.Context, tableID, callerID, newHostID string) error {
	_, err := e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		if t.HostID != callerID {
			return NewError(PermissionDenied, "only the current host can transfer host privileges")
		}
		if t.SeatOf(newHostID) == nil {
			return NewError(FailedPrecondition, "new host must be seated at the table")
		}
		t.HostID = newHostID
		return nil
	})
	return err
}

// TerminateTable ends a table, refunding every remaining seat's chips to
// the ledger as a cash-out and marking it TableEnded rather than deleting
// the document outright, so late readers still find a record of it
// (supplemented feature: table termination).
func (e *Engine) TerminateTable(ctx context.Context, tableID, callerID string) error {
	_, err := e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		if t.HostID != callerID {
			return NewError(PermissionDenied, "only the host can terminate the table")
		}
		for _, s := range t.Seats {
			if s == nil {
				continue
			}
			if err := RecordCashOut(ctx, e.Ledger, s.PlayerID, tableID, s.Chips, e.Clock.Now()); err != nil {
				return err
			}
		}
		t.Seats = make([]*Seat, len(t.Seats))
		t.Hand = nil
		t.Status = TableEnded
		return nil
	})
	return err
}

// StartGame deals the first (or next) hand. Any caller seated at the
// table may request it; the engine itself decides whether enough players
// are ready (spec §4.10, §4.4).
func (e *Engine) StartGame(ctx context.Context, tableID, callerID string) (*Document, error) {
	return e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		if t.SeatOf(callerID) == nil {
			return ErrPlayerNotSeated
		}
		if t.Status == TablePlaying {
			return ErrHandInProgress
		}
		if t.Status == TableEnded {
			return NewError(FailedPrecondition, "table has ended")
		}
		if err := startHand(t, doc.HoleCards, e.Shuffler, e.Clock.Now()); err != nil {
			return err
		}
		metrics.HandsStarted.Inc()
		return nil
	})
}

// PlayerAction validates and applies one action, automatically resolving
// the showdown and starting the ledger-free chip payout in the same
// transaction if the action concludes the hand (spec §4.6, §4.7).
func (e *Engine) PlayerAction(ctx context.Context, tableID, playerID string, kind ActionKind, raiseTo int64) (*HandResult, error) {
	var result *HandResult
	_, err := e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		if t.Hand == nil {
			return ErrNoHandInProgress
		}
		deadline := t.Hand.ActionDeadline
		appliedKind := kind
		if !deadline.IsZero() && e.Clock.Now().After(deadline) {
			appliedKind = ActionFold
			if err := applyAction(t, playerID, ActionFold, 0, e.Clock.Now()); err != nil {
				metrics.RecordActionError(string(KindOf(err)))
				return err
			}
		} else if err := applyAction(t, playerID, kind, raiseTo, e.Clock.Now()); err != nil {
			metrics.RecordActionError(string(KindOf(err)))
			return err
		}
		metrics.RecordAction(string(appliedKind))

		if t.Hand != nil && t.Hand.Phase == PhaseShowdown {
			t.Hand.Pots = computePots(t)
			res, err := resolveShowdown(t, doc.HoleCards)
			if err != nil {
				return err
			}
			result = res
			metrics.RecordHandCompleted(res.Uncontested, 0)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// EndHand resolves a hand that has reached showdown, crediting chip
// payouts and clearing hand state (spec §6.1, §6.5). It is the entry
// point a showdown scheduler calls explicitly rather than relying on
// resolution happening as a side effect of the last PlayerAction, and it
// is idempotent: once a hand resolves, t.Hand is cleared, so a second
// call finds no hand awaiting resolution and returns failed-precondition
// instead of paying out twice.
func (e *Engine) EndHand(ctx context.Context, tableID string) (*HandResult, error) {
	var result *HandResult
	_, err := e.Gateway.Transact(ctx, tableID, func(doc *Document) error {
		t := doc.Table
		if t.Hand == nil {
			return NewError(FailedPrecondition, "no hand awaiting resolution")
		}
		if t.Hand.Phase != PhaseShowdown {
			return NewError(FailedPrecondition, "hand has not reached showdown")
		}
		t.Hand.Pots = computePots(t)
		res, err := resolveShowdown(t, doc.HoleCards)
		if err != nil {
			return err
		}
		result = res
		metrics.RecordHandCompleted(res.Uncontested, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TableSnapshot is the client-safe, read-only view of a table: Table
// itself, plus the requesting player's own hole cards if any (never
// anyone else's).
type TableSnapshot struct {
	Table        *Table        `json:"table"`
	YourHoleCards []poker.Card `json:"yourHoleCards,omitempty"`
}

// GetSnapshot reads the current table state for playerID without
// opening a write transaction.
func (e *Engine) GetSnapshot(ctx context.Context, tableID, playerID string) (*TableSnapshot, error) {
	doc, _, err := e.Gateway.Store.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	// The undealt deck is server-private: it would reveal the coming
	// community cards and, by elimination, the other seats' hole cards.
	if doc.Table.Hand != nil {
		doc.Table.Hand.Deck = nil
	}
	return &TableSnapshot{Table: doc.Table, YourHoleCards: doc.HoleCards[playerID]}, nil
}
