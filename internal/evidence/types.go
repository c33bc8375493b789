package evidence

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Metadata keys recognized on retrieved documents.
const (
	MetaSource     = "source"
	MetaPage       = "page"
	MetaBookTitle  = "book_title"
	MetaBook       = "book"
	MetaChunkIndex = "chunk_index"
)

// UnknownValue is returned by accessors when a metadata field is absent.
const UnknownValue = "unknown"

// Document is a retrieved evidence unit: a text chunk plus provenance
// metadata. Documents are immutable once returned from a search; downstream
// stages reference them, never copy or mutate them.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Key identifies a document for de-duplication purposes.
type Key struct {
	Source     string
	Page       string
	ChunkIndex string
}

// Key returns the de-duplication identity (source, page, chunk_index).
func (d Document) Key() Key {
	return Key{
		Source:     d.Metadata[MetaSource],
		Page:       d.Metadata[MetaPage],
		ChunkIndex: d.Metadata[MetaChunkIndex],
	}
}

// Source returns the source file path, or "unknown" if absent.
func (d Document) Source() string {
	if s := d.Metadata[MetaSource]; s != "" {
		return s
	}
	return UnknownValue
}

// SourceBase returns the basename of the source file.
func (d Document) SourceBase() string {
	return filepath.Base(d.Source())
}

// Page returns the page label, or empty string if absent.
func (d Document) Page() string {
	return d.Metadata[MetaPage]
}

// HasPage reports whether the document carries page provenance.
func (d Document) HasPage() bool {
	return strings.TrimSpace(d.Metadata[MetaPage]) != ""
}

// BookTitle returns the book title from either recognized metadata key,
// or "unknown" if absent.
func (d Document) BookTitle() string {
	if t := d.Metadata[MetaBookTitle]; t != "" {
		return t
	}
	if t := d.Metadata[MetaBook]; t != "" {
		return t
	}
	return UnknownValue
}

// Dedupe removes duplicate documents by identity, preserving first-seen
// order. Returned lists from any Store search hold no two documents with an
// equal (source, page, chunk_index) triple.
func Dedupe(docs []Document) []Document {
	seen := make(map[Key]struct{}, len(docs))
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		k := d.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

// Mode selects the vector search strategy.
type Mode string

const (
	// ModeSimilarity ranks purely by cosine similarity to the query.
	ModeSimilarity Mode = "similarity"

	// ModeDiversity applies maximal marginal relevance re-ranking over a
	// larger candidate pool to reduce near-duplicate results.
	ModeDiversity Mode = "diversity"
)

// Query describes one retrieval request. It doubles as the cache key input;
// it is never persisted.
type Query struct {
	Question   string
	Collection string // empty = search every known collection
	K          int
	Mode       Mode
}

// cacheKey returns the normalized cache key tuple for this query.
func (q Query) cacheKey() string {
	coll := q.Collection
	if coll == "" {
		coll = "*"
	}
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(q.Question)),
		coll,
		strconv.Itoa(q.K),
		string(q.Mode),
	}, "\x1f")
}
