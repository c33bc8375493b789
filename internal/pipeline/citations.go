package pipeline

import (
	"sort"

	"github.com/pustakabot/pustaka/internal/evidence"
)

// citationDensityCap is the content length beyond which density stops
// increasing the citation score.
const citationDensityCap = 800

// PickCitations selects the documents most worth citing: page-bearing
// documents above pageless ones, denser content above sparse. Ties keep
// input order.
func PickCitations(docs []evidence.Document, maxItems int) []evidence.Document {
	if maxItems <= 0 || len(docs) == 0 {
		return nil
	}

	scored := make([]struct {
		score float64
		doc   evidence.Document
	}, 0, len(docs))
	for _, d := range docs {
		var score float64
		if d.HasPage() {
			score = 1
		}
		n := len(d.Content)
		if n > citationDensityCap {
			n = citationDensityCap
		}
		score += float64(n) / citationDensityCap
		scored = append(scored, struct {
			score float64
			doc   evidence.Document
		}{score, d})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if maxItems > len(scored) {
		maxItems = len(scored)
	}
	out := make([]evidence.Document, 0, maxItems)
	for _, s := range scored[:maxItems] {
		out = append(out, s.doc)
	}
	return out
}
