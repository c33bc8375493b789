package evidence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pustakabot/pustaka/internal/log"
)

// mockBackend implements Backend for testing.
type mockBackend struct {
	collections []string
	docs        map[string][]Document            // per collection, returned in order
	metadata    map[string][]map[string]string   // per collection
	failing     map[string]error                 // collection -> search error
	searchCalls int
}

func (m *mockBackend) Search(_ context.Context, collection, _ string, k int, _ Mode) ([]Document, error) {
	m.searchCalls++
	if err := m.failing[collection]; err != nil {
		return nil, err
	}
	docs := m.docs[collection]
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

func (m *mockBackend) ListCollections(_ context.Context) ([]string, error) {
	return m.collections, nil
}

func (m *mockBackend) ListMetadataPage(_ context.Context, collection string, offset, limit int) ([]map[string]string, error) {
	all := m.metadata[collection]
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func doc(source, page, chunk, content string) Document {
	return Document{
		Content: content,
		Metadata: map[string]string{
			MetaSource:     source,
			MetaPage:       page,
			MetaChunkIndex: chunk,
		},
	}
}

func TestNew_NoCollections(t *testing.T) {
	_, err := New(context.Background(), &mockBackend{}, log.NewNop())
	if !errors.Is(err, ErrNoCollections) {
		t.Fatalf("expected ErrNoCollections, got %v", err)
	}
}

func TestSearch_CrossCollectionDedupe(t *testing.T) {
	shared := doc("a.pdf", "1", "0", "shared chunk")
	backend := &mockBackend{
		collections: []string{"psy", "phil"},
		docs: map[string][]Document{
			"psy":  {shared, doc("a.pdf", "2", "0", "psy only")},
			"phil": {shared, doc("b.pdf", "9", "3", "phil only")},
		},
	}
	store, err := New(context.Background(), backend, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	docs, err := store.Search(context.Background(), Query{Question: "q", K: 10})
	if err != nil {
		t.Fatal(err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents after dedupe, got %d", len(docs))
	}
	seen := make(map[Key]bool)
	for _, d := range docs {
		if seen[d.Key()] {
			t.Fatalf("duplicate identity in result: %+v", d.Key())
		}
		seen[d.Key()] = true
	}
	// collection registration order preserved: psy docs first
	if docs[0].Content != "shared chunk" || docs[1].Content != "psy only" {
		t.Fatalf("unexpected merge order: %q, %q", docs[0].Content, docs[1].Content)
	}
}

func TestSearch_FailingCollectionIsIsolated(t *testing.T) {
	backend := &mockBackend{
		collections: []string{"bad", "good"},
		docs: map[string][]Document{
			"good": {doc("g.pdf", "1", "0", "ok")},
		},
		failing: map[string]error{"bad": errors.New("index offline")},
	}
	store, err := New(context.Background(), backend, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	docs, err := store.Search(context.Background(), Query{Question: "q", K: 5})
	if err != nil {
		t.Fatalf("cross-collection search must not fail on one bad collection: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != "ok" {
		t.Fatalf("expected the healthy collection's results, got %+v", docs)
	}
}

func TestSearch_TruncatesToK(t *testing.T) {
	var docs []Document
	for i := 0; i < 8; i++ {
		docs = append(docs, doc("a.pdf", fmt.Sprintf("%d", i), "0", "c"))
	}
	backend := &mockBackend{
		collections: []string{"psy"},
		docs:        map[string][]Document{"psy": docs},
	}
	store, err := New(context.Background(), backend, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.Search(context.Background(), Query{Question: "q", Collection: "psy", K: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected truncation to k=3, got %d", len(got))
	}
}

func TestSearch_CachedWithinTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	backend := &mockBackend{
		collections: []string{"psy"},
		docs:        map[string][]Document{"psy": {doc("a.pdf", "1", "0", "cached")}},
	}
	store, err := New(context.Background(), backend, log.NewNop(),
		WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatal(err)
	}

	q := Query{Question: "Apa itu makna?", Collection: "psy", K: 5, Mode: ModeSimilarity}
	first, err := store.Search(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := backend.searchCalls

	// identical query inside the TTL window must not hit the backend again
	second, err := store.Search(context.Background(), Query{
		Question: "  apa itu makna? ", Collection: "psy", K: 5, Mode: ModeSimilarity,
	})
	if err != nil {
		t.Fatal(err)
	}
	if backend.searchCalls != callsAfterFirst {
		t.Fatalf("expected no new backend call, got %d extra", backend.searchCalls-callsAfterFirst)
	}
	if len(second) != len(first) || second[0].Content != first[0].Content {
		t.Fatalf("cached result differs: %+v vs %+v", second, first)
	}

	// after the TTL the backend is consulted again
	now = now.Add(DefaultCacheTTL + time.Second)
	if _, err := store.Search(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if backend.searchCalls == callsAfterFirst {
		t.Fatal("expected a fresh backend call after TTL expiry")
	}
}

func TestListTitles_PagesAndSorts(t *testing.T) {
	var pages []map[string]string
	// two full batches worth of metadata plus a remainder, mixed title keys
	for i := 0; i < catalogPageSize+5; i++ {
		pages = append(pages, map[string]string{MetaBookTitle: "Zebra Book"})
	}
	pages = append(pages,
		map[string]string{MetaBook: "apple notes"},
		map[string]string{MetaBookTitle: "  "},
		map[string]string{},
	)

	backend := &mockBackend{
		collections: []string{"psy"},
		metadata:    map[string][]map[string]string{"psy": pages},
	}
	store, err := New(context.Background(), backend, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	titles, err := store.ListTitles(context.Background(), "psy")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"apple notes", "Zebra Book"}
	if len(titles) != len(want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("expected case-insensitive sort %v, got %v", want, titles)
		}
	}
}

func TestCatalog_BuiltOnceUntilInvalidated(t *testing.T) {
	backend := &mockBackend{
		collections: []string{"psy"},
		metadata: map[string][]map[string]string{
			"psy": {{MetaBookTitle: "Man's Search for Meaning"}},
		},
	}
	store, err := New(context.Background(), backend, log.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	first, err := store.Catalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	backend.metadata["psy"] = append(backend.metadata["psy"],
		map[string]string{MetaBookTitle: "New Arrival"})

	second, err := store.Catalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(second["psy"]) != len(first["psy"]) {
		t.Fatal("catalog must stay cached until invalidated")
	}

	store.InvalidateCatalog()
	third, err := store.Catalog(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(third["psy"]) != 2 {
		t.Fatalf("expected rebuilt catalog with 2 titles, got %v", third["psy"])
	}
}

func TestDocumentAccessors_Defaults(t *testing.T) {
	d := Document{Content: "x", Metadata: map[string]string{}}
	if d.Source() != UnknownValue {
		t.Errorf("Source() = %q, want %q", d.Source(), UnknownValue)
	}
	if d.BookTitle() != UnknownValue {
		t.Errorf("BookTitle() = %q, want %q", d.BookTitle(), UnknownValue)
	}
	if d.HasPage() {
		t.Error("HasPage() = true for missing page")
	}

	d2 := Document{Metadata: map[string]string{
		MetaSource: "/data/books/meaning.pdf",
		MetaBook:   "Man's Search for Meaning",
		MetaPage:   "12",
	}}
	if d2.SourceBase() != "meaning.pdf" {
		t.Errorf("SourceBase() = %q", d2.SourceBase())
	}
	if d2.BookTitle() != "Man's Search for Meaning" {
		t.Errorf("BookTitle() = %q", d2.BookTitle())
	}
	if !d2.HasPage() {
		t.Error("HasPage() = false for present page")
	}
}
