package engine

import (
	"context"
	"errors"

	"poker-platform/internal/metrics"
	"poker-platform/pkg/poker"
)

// Document is the full persisted aggregate for one table: the public
// Table plus its server-private hole cards, which are never serialized
// into the same snapshot a client-facing read can see (spec §4.8, §5
// privacy requirement).
type Document struct {
	Table     *Table
	HoleCards map[string][]poker.Card
}

// Clone deep-copies a Document for a transaction's working copy.
func (d *Document) Clone() *Document {
	clone := &Document{
		Table:     d.Table.Clone(),
		HoleCards: make(map[string][]poker.Card, len(d.HoleCards)),
	}
	for playerID, cards := range d.HoleCards {
		clone.HoleCards[playerID] = append([]poker.Card(nil), cards...)
	}
	return clone
}

// ErrConflict is returned by Store.CompareAndSwap when revision no longer
// matches the stored document — another transaction committed first.
var ErrConflict = errors.New("engine: table document revision conflict")

// Store is the Table Transaction Gateway's backing document store (spec
// §4.8). A table document is versioned by an opaque revision; writers
// must present the revision they read to commit, giving the gateway
// optimistic concurrency without a single global lock.
type Store interface {
	Get(ctx context.Context, tableID string) (doc *Document, revision int64, err error)
	Create(ctx context.Context, doc *Document) error
	CompareAndSwap(ctx context.Context, tableID string, revision int64, doc *Document) error
	Delete(ctx context.Context, tableID string) error
}

// Gateway wraps a Store with bounded-retry optimistic transactions: every
// table mutation reads the current document, runs fn against a private
// working copy, and commits with CompareAndSwap, retrying from a fresh
// read on conflict up to MaxAttempts times. This is the single choke
// point every table mutation passes through, so it is also where the
// "one in-flight mutation per table" serializability spec §4.8 asks for
// is actually enforced, regardless of how many callers race to reach it.
type Gateway struct {
	Store       Store
	MaxAttempts int
}

// NewGateway builds a Gateway with a sane default retry budget.
func NewGateway(store Store) *Gateway {
	return &Gateway{Store: store, MaxAttempts: 8}
}

// Transact runs fn against tableID's document, retrying on optimistic
// conflicts. fn mutates doc in place; returning an error aborts the
// transaction without retrying and without committing anything, since a
// validation failure wouldn't look any different on the next attempt.
func (g *Gateway) Transact(ctx context.Context, tableID string, fn func(doc *Document) error) (*Document, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = 8
	}

	for attempt := 0; attempt < attempts; attempt++ {
		doc, revision, err := g.Store.Get(ctx, tableID)
		if err != nil {
			return nil, err
		}
		working := doc.Clone()

		if err := fn(working); err != nil {
			return nil, err
		}

		if err := g.Store.CompareAndSwap(ctx, tableID, revision, working); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		metrics.RecordGatewayTransaction(attempt + 1)
		return working, nil
	}
	metrics.RecordGatewayTransaction(attempts)
	return nil, NewError(Aborted, "too much contention committing table %s after %d attempts", tableID, attempts)
}
