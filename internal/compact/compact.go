// Package compact renders retrieved evidence into a bounded prompt context.
// The first few documents are carried verbatim, trimmed at sentence
// boundaries, and the rest are collapsed into one-line summaries so the
// prompt stays within budget regardless of chunk sizes in the index.
package compact

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pustakabot/pustaka/internal/evidence"
)

// Default budgets for the two tiers.
const (
	DefaultFullTopN      = 3
	DefaultFullCharLimit = 1200
	DefaultTailMax       = 3
	DefaultTailCharLimit = 280
)

// blockSeparator joins rendered blocks.
const blockSeparator = "\n\n---\n\n"

// tailHeader introduces the one-line summary tier.
const tailHeader = "\nCatatan ringkas tambahan:"

// Compactor turns a document list into a single context block.
type Compactor struct {
	FullTopN      int
	FullCharLimit int
	TailMax       int
	TailCharLimit int
}

// New returns a Compactor with the given budgets. Non-positive values fall
// back to the defaults.
func New(fullTopN, fullCharLimit, tailMax, tailCharLimit int) *Compactor {
	c := &Compactor{
		FullTopN:      fullTopN,
		FullCharLimit: fullCharLimit,
		TailMax:       tailMax,
		TailCharLimit: tailCharLimit,
	}
	if c.FullTopN <= 0 {
		c.FullTopN = DefaultFullTopN
	}
	if c.FullCharLimit <= 0 {
		c.FullCharLimit = DefaultFullCharLimit
	}
	if c.TailMax <= 0 {
		c.TailMax = DefaultTailMax
	}
	if c.TailCharLimit <= 0 {
		c.TailCharLimit = DefaultTailCharLimit
	}
	return c
}

// Compact renders docs into the two-tier context block. The first FullTopN
// documents appear verbatim with a citation tag, the next TailMax as
// one-line summaries under a header, and anything beyond is dropped.
// Empty input yields an empty string.
func (c *Compactor) Compact(docs []evidence.Document) string {
	if len(docs) == 0 {
		return ""
	}

	var blocks []string
	n := c.FullTopN
	if n > len(docs) {
		n = len(docs)
	}
	for _, d := range docs[:n] {
		blocks = append(blocks, c.fullBlock(d))
	}

	tailEnd := c.FullTopN + c.TailMax
	if tailEnd > len(docs) {
		tailEnd = len(docs)
	}
	if tailEnd > n {
		blocks = append(blocks, tailHeader)
		for _, d := range docs[n:tailEnd] {
			blocks = append(blocks, c.summaryLine(d))
		}
	}

	return strings.TrimSpace(strings.Join(blocks, blockSeparator))
}

func (c *Compactor) fullBlock(d evidence.Document) string {
	content := strings.TrimSpace(d.Content)
	return TrimToSentences(content, c.FullCharLimit) + "\n" + CiteTag(d)
}

func (c *Compactor) summaryLine(d evidence.Document) string {
	text := strings.ReplaceAll(strings.TrimSpace(d.Content), "\n", " ")
	if len(text) > c.TailCharLimit {
		text = cutWithEllipsis(text, c.TailCharLimit)
	}
	return "- " + text + " " + CiteTag(d)
}

// CiteTag formats the provenance tag attached to every rendered block.
func CiteTag(d evidence.Document) string {
	page := d.Page()
	if page == "" {
		page = "-"
	}
	return fmt.Sprintf("[book:%s, source:%s, page:%s]", d.BookTitle(), d.SourceBase(), page)
}

// FormatCitations renders a numbered source listing, one line per document,
// with the content snippet cut to maxLen.
func FormatCitations(docs []evidence.Document, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = 220
	}
	lines := make([]string, 0, len(docs))
	for i, d := range docs {
		content := strings.ReplaceAll(strings.TrimSpace(d.Content), "\n", " ")
		if len(content) > maxLen {
			content = cutWithEllipsis(content, maxLen)
		}
		page := d.Page()
		if page == "" {
			page = "-"
		}
		lines = append(lines, fmt.Sprintf("%d. [book:%s, file:%s, page:%s] %s",
			i+1, d.BookTitle(), d.SourceBase(), page, content))
	}
	return lines
}

// TrimToSentences cuts text to at most maxChars bytes without breaking a
// sentence. Whole sentences are accumulated until the budget is exhausted;
// if not even the first sentence fits, the text is cut at a word boundary
// with an ellipsis instead.
func TrimToSentences(text string, maxChars int) string {
	if text == "" || len(text) <= maxChars {
		return text
	}

	var (
		out   []string
		total int
	)
	for _, s := range splitSentences(text) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sep := 0
		if len(out) > 0 {
			sep = 1
		}
		if total+len(s)+sep > maxChars {
			break
		}
		out = append(out, s)
		total += len(s) + sep
	}
	if len(out) > 0 {
		return strings.Join(out, " ")
	}
	return wordCut(text, maxChars) + "..."
}

// splitSentences splits after each run of '.', '!' or '?' that is followed
// by whitespace.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var (
		sents []string
		start int
	)
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' || text[i+1] == '\r' {
				sents = append(sents, text[start:i+1])
				j := i + 1
				for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
					j++
				}
				start = j
				i = j - 1
			}
		}
	}
	if start < len(text) {
		sents = append(sents, text[start:])
	}
	return sents
}

// wordCut cuts text to at most maxChars bytes, backing up to the previous
// space when one exists so no word is split.
func wordCut(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	prefix := text[:cut]
	if idx := strings.LastIndexByte(prefix, ' '); idx > 0 {
		prefix = prefix[:idx]
	}
	return strings.TrimRight(prefix, " ")
}

func cutWithEllipsis(text string, maxChars int) string {
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimRight(text[:cut], " ") + "..."
}
