package retrieval

import (
	"context"

	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/log"
)

// retryKeywords is appended to the question verbatim on the recall-widening
// retry. The vocabulary is fixed to the corpus domain.
const retryKeywords = " parasosial identifikasi pembaca empati narrative transportation attachment media psikologi"

const (
	// pinnedK is the fetch size when the caller pins a collection.
	pinnedK = 5
	// titleK is the over-fetch size for title-scoped retrieval, trimmed
	// back to the default k after filtering.
	titleK = 12
	// lowEvidenceThreshold triggers the widened retry.
	lowEvidenceThreshold = 3
	// retryK is the fetch size of the widened retry.
	retryK = 12
)

// Policy routes a question to the right retrieval strategy and widens
// recall when the first pass comes back scant.
type Policy struct {
	store    EvidenceStore
	resolver *Resolver
	defaultK int
	mode     evidence.Mode
	logger   log.Logger
}

// NewPolicy creates a Policy. defaultK is the general-search fetch size and
// the post-filter budget for title-scoped retrieval. mode is used for
// general search only; pinned, title-scoped, and retry passes always use
// plain similarity.
func NewPolicy(store EvidenceStore, defaultK int, mode evidence.Mode, logger log.Logger) *Policy {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Policy{
		store:    store,
		resolver: NewResolver(store),
		defaultK: defaultK,
		mode:     mode,
		logger:   logger,
	}
}

// Retrieve fetches evidence for the question.
//
// When collection is non-empty the search is pinned to it and title
// detection is skipped. Otherwise the question is checked for a book focus
// first; a hit scopes retrieval to that title, a miss falls through to
// general cross-collection search.
//
// Whenever the chosen strategy yields fewer than three documents, one
// retry runs with the domain keywords appended and a wider fetch. The
// retry keeps the caller's collection pin but drops any title scope.
// Retry results are merged after the originals, so the first pass is
// always a prefix of the final answer set.
func (p *Policy) Retrieve(ctx context.Context, question, collection string) ([]evidence.Document, *Focus, error) {
	var (
		docs  []evidence.Document
		focus *Focus
		err   error
	)

	switch {
	case collection != "":
		docs, err = p.store.Search(ctx, evidence.Query{
			Question:   question,
			Collection: collection,
			K:          pinnedK,
			Mode:       evidence.ModeSimilarity,
		})
	default:
		focus, err = p.resolver.Resolve(ctx, question)
		if err != nil {
			return nil, nil, err
		}
		if focus != nil {
			p.logger.Debug("book focus detected",
				"collection", focus.Collection,
				"title", focus.Title)
			docs, err = p.retrieveByTitle(ctx, question, focus)
		} else {
			docs, err = p.store.Search(ctx, evidence.Query{
				Question: question,
				K:        p.defaultK,
				Mode:     p.mode,
			})
		}
	}
	if err != nil {
		return nil, nil, err
	}

	if len(docs) < lowEvidenceThreshold {
		docs, err = p.retryWiden(ctx, question, collection, docs)
		if err != nil {
			return nil, nil, err
		}
	}

	return docs, focus, nil
}

// retrieveByTitle over-fetches from the focused collection, keeps the
// documents whose book title matches, and trims to the default k. When the
// title filter removes everything, the unfiltered over-fetch stands in so
// a near-miss focus still produces evidence.
func (p *Policy) retrieveByTitle(ctx context.Context, question string, focus *Focus) ([]evidence.Document, error) {
	docs, err := p.store.Search(ctx, evidence.Query{
		Question:   question,
		Collection: focus.Collection,
		K:          titleK,
		Mode:       evidence.ModeSimilarity,
	})
	if err != nil {
		return nil, err
	}

	want := NormalizeTitle(focus.Title)
	filtered := make([]evidence.Document, 0, len(docs))
	for _, d := range docs {
		if NormalizeTitle(d.BookTitle()) == want {
			filtered = append(filtered, d)
		}
	}
	if len(filtered) == 0 {
		filtered = docs
	}
	if len(filtered) > p.defaultK {
		filtered = filtered[:p.defaultK]
	}
	return filtered, nil
}

// retryWiden runs the recall-widening pass and merges its results after
// the originals, deduplicating by document identity.
func (p *Policy) retryWiden(ctx context.Context, question, collection string, docs []evidence.Document) ([]evidence.Document, error) {
	p.logger.Debug("widening recall", "found", len(docs))

	extra, err := p.store.Search(ctx, evidence.Query{
		Question:   question + retryKeywords,
		Collection: collection,
		K:          retryK,
		Mode:       evidence.ModeSimilarity,
	})
	if err != nil {
		return nil, err
	}

	merged := evidence.Dedupe(append(docs[:len(docs):len(docs)], extra...))
	limit := p.defaultK
	if limit < retryK {
		limit = retryK
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
