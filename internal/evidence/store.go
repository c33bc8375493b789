// Package evidence provides the retrieval surface over the vector index:
// per-collection and cross-collection similarity/diversity search with
// identity de-duplication, a short-lived result cache, and the book title
// catalog derived from stored metadata.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pustakabot/pustaka/internal/log"
)

// ErrNoCollections indicates the index holds no collections at all.
var ErrNoCollections = errors.New("no collections in index")

// catalogPageSize is the metadata batch size used when scanning for titles.
const catalogPageSize = 1000

// Backend is the search primitive the Store wraps. Implementations search a
// single named collection; cross-collection merging, de-duplication and
// caching live in the Store.
//
// The interface is defined here, by the consumer, so tests can substitute a
// mock without touching the PostgreSQL implementation.
type Backend interface {
	// Search returns up to k documents from one collection, best first.
	Search(ctx context.Context, collection, question string, k int, mode Mode) ([]Document, error)

	// ListCollections returns the known collection names in registration
	// (first-indexed) order.
	ListCollections(ctx context.Context) ([]string, error)

	// ListMetadataPage returns one page of stored document metadata for a
	// collection, in stable order.
	ListMetadataPage(ctx context.Context, collection string, offset, limit int) ([]map[string]string, error)
}

// Store is the evidence retrieval façade used by the answer pipeline.
//
// Per-collection search failures are isolated: a failing collection
// contributes an empty result and the merge continues, so callers see a
// possibly shorter list, never an error. The retrieval cache and the title
// catalog are process-wide mutable state shared by concurrent requests;
// both store immutable snapshots, so stale reads are bounded and harmless.
type Store struct {
	backend Backend
	logger  log.Logger
	cache   *retrievalCache

	collections []string // registration order, fixed at construction

	catalogMu sync.Mutex
	catalog   map[string][]string // nil until first build
}

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	ttl time.Duration
	now func() time.Time
}

// WithCacheTTL overrides the retrieval cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *storeConfig) { c.ttl = ttl }
}

// WithClock injects the cache clock. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(c *storeConfig) { c.now = now }
}

// New creates a Store over the given backend and loads the collection list.
// Returns ErrNoCollections when the index is empty.
func New(ctx context.Context, backend Backend, logger log.Logger, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := storeConfig{ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(&cfg)
	}

	collections, err := backend.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	if len(collections) == 0 {
		return nil, ErrNoCollections
	}

	return &Store{
		backend:     backend,
		logger:      logger,
		cache:       newRetrievalCache(cfg.ttl, cfg.now),
		collections: collections,
	}, nil
}

// Collections returns the known collection names in registration order.
func (s *Store) Collections() []string {
	out := make([]string, len(s.collections))
	copy(out, s.collections)
	return out
}

// Search runs one retrieval request through the cache.
//
// With a collection set, only that collection is searched. Without one,
// every known collection is searched sequentially in registration order and
// the merged list is de-duplicated by document identity before truncating
// to q.K. The merge order is deterministic regardless of timing: collection
// order first, then backend rank within each collection.
func (s *Store) Search(ctx context.Context, q Query) ([]Document, error) {
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", q.K)
	}
	if q.Mode == "" {
		q.Mode = ModeSimilarity
	}

	key := q.cacheKey()
	if docs, ok := s.cache.get(key); ok {
		s.logger.Debug("retrieval cache hit", "collection", q.Collection, "k", q.K)
		return docs, nil
	}

	var merged []Document
	if q.Collection != "" {
		merged = s.searchOne(ctx, q.Collection, q)
	} else {
		for _, coll := range s.collections {
			merged = append(merged, s.searchOne(ctx, coll, q)...)
		}
	}

	docs := Dedupe(merged)
	if len(docs) > q.K {
		docs = docs[:q.K]
	}

	s.cache.put(key, docs)
	return docs, nil
}

// searchOne searches a single collection. Failures are logged and reported
// as an empty contribution; partial cross-collection results are expected
// and not an error.
func (s *Store) searchOne(ctx context.Context, collection string, q Query) []Document {
	docs, err := s.backend.Search(ctx, collection, q.Question, q.K, q.Mode)
	if err != nil {
		s.logger.Warn("collection search failed, contributing empty result",
			"collection", collection, "error", err)
		return nil
	}
	return docs
}

// ListTitles pages through all stored metadata of one collection and
// returns the distinct book titles, sorted case-insensitively.
func (s *Store) ListTitles(ctx context.Context, collection string) ([]string, error) {
	titles := make(map[string]struct{})
	for offset := 0; ; offset += catalogPageSize {
		page, err := s.backend.ListMetadataPage(ctx, collection, offset, catalogPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing metadata for %q: %w", collection, err)
		}
		for _, md := range page {
			title := md[MetaBookTitle]
			if title == "" {
				title = md[MetaBook]
			}
			if t := strings.TrimSpace(title); t != "" {
				titles[t] = struct{}{}
			}
		}
		if len(page) < catalogPageSize {
			break
		}
	}

	out := make([]string, 0, len(titles))
	for t := range titles {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}

// Catalog returns the mapping of collection to sorted title list, one entry
// per known collection. The catalog is built once and cached in memory until
// InvalidateCatalog is called; iteration order for matching purposes is
// Collections() order.
func (s *Store) Catalog(ctx context.Context) (map[string][]string, error) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	if s.catalog != nil {
		return s.catalog, nil
	}

	catalog := make(map[string][]string, len(s.collections))
	for _, coll := range s.collections {
		titles, err := s.ListTitles(ctx, coll)
		if err != nil {
			return nil, err
		}
		catalog[coll] = titles
	}
	s.catalog = catalog
	return catalog, nil
}

// InvalidateCatalog drops the cached title catalog so the next Catalog call
// rebuilds it from the index.
func (s *Store) InvalidateCatalog() {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.catalog = nil
}
