package postgres

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"poker-platform/internal/engine"
)

// CachedTableStore wraps a *TableStore with a bounded in-process cache of
// recently-read documents, for the non-transactional "render state" path
// (spec §5: reads outside a transaction may observe any committed
// snapshot, so serving a slightly-stale cached copy is within spec).
// Writes always go straight to Postgres and refresh the cache entry
// afterward; the cache is never the source of truth for a
// CompareAndSwap, which always re-reads through on a miss.
type CachedTableStore struct {
	inner *TableStore
	cache *lru.Cache[string, cachedDocument]
	group singleflight.Group
}

type cachedDocument struct {
	doc      *engine.Document
	revision int64
}

// NewCachedTableStore wraps inner with an LRU of the given size.
func NewCachedTableStore(inner *TableStore, size int) (*CachedTableStore, error) {
	cache, err := lru.New[string, cachedDocument](size)
	if err != nil {
		return nil, fmt.Errorf("create table document cache: %w", err)
	}
	return &CachedTableStore{inner: inner, cache: cache}, nil
}

// Get serves from cache when present; otherwise it collapses concurrent
// misses for the same table into a single Postgres query via singleflight
// before populating the cache.
func (s *CachedTableStore) Get(ctx context.Context, tableID string) (*engine.Document, int64, error) {
	if cached, ok := s.cache.Get(tableID); ok {
		return cached.doc.Clone(), cached.revision, nil
	}

	v, err, _ := s.group.Do(tableID, func() (any, error) {
		doc, revision, err := s.inner.Get(ctx, tableID)
		if err != nil {
			return nil, err
		}
		s.cache.Add(tableID, cachedDocument{doc: doc, revision: revision})
		return cachedDocument{doc: doc, revision: revision}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	cd := v.(cachedDocument)
	return cd.doc.Clone(), cd.revision, nil
}

func (s *CachedTableStore) Create(ctx context.Context, doc *engine.Document) error {
	if err := s.inner.Create(ctx, doc); err != nil {
		return err
	}
	s.cache.Add(doc.Table.ID, cachedDocument{doc: doc.Clone(), revision: 1})
	return nil
}

func (s *CachedTableStore) CompareAndSwap(ctx context.Context, tableID string, revision int64, doc *engine.Document) error {
	if err := s.inner.CompareAndSwap(ctx, tableID, revision, doc); err != nil {
		s.cache.Remove(tableID)
		return err
	}
	s.cache.Add(tableID, cachedDocument{doc: doc.Clone(), revision: revision + 1})
	return nil
}

func (s *CachedTableStore) Delete(ctx context.Context, tableID string) error {
	s.cache.Remove(tableID)
	return s.inner.Delete(ctx, tableID)
}
