// Package retrieval decides how a question is turned into evidence: book
// focus detection against the title catalog, title-scoped or general
// search, and the recall-widening retry when evidence is scant.
package retrieval

import (
	"context"
	"regexp"
	"strings"

	"github.com/pustakabot/pustaka/internal/evidence"
)

// EvidenceStore is the slice of the evidence façade this package consumes.
type EvidenceStore interface {
	Search(ctx context.Context, q evidence.Query) ([]evidence.Document, error)
	Collections() []string
	Catalog(ctx context.Context) (map[string][]string, error)
}

// Focus is a detected intent to restrict retrieval to one known book title
// within one collection.
type Focus struct {
	Collection string
	Title      string
}

// nonAlnum strips everything outside [a-z0-9] during title normalization.
var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeTitle lowercases s and removes every character outside [a-z0-9].
func NormalizeTitle(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// Resolver matches a query against the book title catalog.
type Resolver struct {
	store EvidenceStore
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store EvidenceStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve detects whether the query names a known book title.
//
// Matching is two-pass over the full catalog, collections in registration
// order and titles in sorted order:
//  1. case-insensitive substring: the title appears inside the query;
//  2. normalized equality: query and title are equal after stripping
//     everything outside [a-z0-9].
//
// First match wins. Empty or whitespace-only titles never match. A nil
// result means no focus; the caller falls back to general retrieval.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Focus, error) {
	catalog, err := r.store.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	for _, coll := range r.store.Collections() {
		for _, title := range catalog[coll] {
			if strings.TrimSpace(title) == "" {
				continue
			}
			if strings.Contains(q, strings.ToLower(title)) {
				return &Focus{Collection: coll, Title: title}, nil
			}
		}
	}

	qNorm := NormalizeTitle(query)
	if qNorm == "" {
		return nil, nil
	}
	for _, coll := range r.store.Collections() {
		for _, title := range catalog[coll] {
			if strings.TrimSpace(title) == "" {
				continue
			}
			if NormalizeTitle(title) == qNorm {
				return &Focus{Collection: coll, Title: title}, nil
			}
		}
	}

	return nil, nil
}
