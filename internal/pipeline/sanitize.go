package pipeline

import (
	"regexp"
	"strings"

	"github.com/pustakabot/pustaka/internal/i18n"
)

// metaPatterns match editorial and meta lines that leak from the refine
// pass (acknowledging the critic, announcing a revision) plus stray book
// scaffolding copied from the context (part/chapter headers, numbered
// scan artifacts). Matching lines are dropped wholesale.
var metaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*terima kasih atas masukan pemeriksa.*`),
	regexp.MustCompile(`(?i)^\s*saya.*model bahasa.*`),
	regexp.MustCompile(`(?i)^\s*namun, saya dapat memperbaiki jawaban.*`),
	regexp.MustCompile(`(?i)^\s*berikut adalah perbaikan.*`),
	regexp.MustCompile(`(?i)^\s*berikut.*perbaikan jawaban.*`),
	regexp.MustCompile(`(?i)^\s*mari kita (perbaiki|rapikan).*`),
	regexp.MustCompile(`(?i)^\s*tentu[, ]+ini perbaikan.*`),
	regexp.MustCompile(`(?i)^\s*berdasarkan masukan pemeriksa.*`),
	regexp.MustCompile(`(?i)^\s*PART\s+[IVXLC]+\b`),
	regexp.MustCompile(`(?i)^\s*BAB\s+\d+\b`),
	regexp.MustCompile(`(?i)^\s*CHAPTER\s+\d+\b`),
	regexp.MustCompile(`(?i)^\s*\d+\s*[•\-]\s+.*$`),
}

// StripMeta removes meta and editorial lines from an answer. If stripping
// would delete everything, the original answer is returned unchanged.
func StripMeta(answer string) string {
	if answer == "" {
		return answer
	}

	var clean []string
	for _, line := range strings.Split(answer, "\n") {
		drop := false
		for _, p := range metaPatterns {
			if p.MatchString(line) {
				drop = true
				break
			}
		}
		if !drop {
			clean = append(clean, line)
		}
	}

	out := strings.TrimSpace(strings.Join(clean, "\n"))
	if out == "" {
		return answer
	}
	return out
}

// EnsureGrounding prepends the soft preamble when the answer carries no
// citation block, so an ungrounded answer is always announced as such.
func EnsureGrounding(answer string) string {
	if strings.Contains(answer, citationMarker) {
		return answer
	}
	return i18n.T("answer.no_citation_preamble") + answer
}
