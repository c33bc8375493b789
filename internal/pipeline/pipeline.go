// Package pipeline turns retrieved evidence into a finished answer: a
// grounded draft, a style rewrite, an optional critique and refine pass,
// and a final sanitation step that strips editorial meta language.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pustakabot/pustaka/internal/compact"
	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/log"
)

// Generator produces text from a prompt at a given temperature.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Temperatures per pass. The draft stays close to the evidence, the
// rewrite gets slight freedom of phrasing, and the control passes
// (critique, refine, plan, summarize) are deterministic.
const (
	draftTemperature   float32 = 0.2
	rewriteTemperature float32 = 0.3
	controlTemperature float32 = 0.0
)

// citationMarker is the block label the draft prompt asks for. Its absence
// in a finished answer means the answer is not grounded.
const citationMarker = "Rujukan:"

// maxPlanSteps caps the planner output.
const maxPlanSteps = 5

// Request carries everything one answer generation needs.
type Request struct {
	Question      string
	Style         string
	Mode          string
	History       []HistoryPair
	MemorySummary string
}

// Pipeline runs the generation passes over compacted evidence.
type Pipeline struct {
	gen       Generator
	compactor *compact.Compactor
	logger    log.Logger
}

// New creates a Pipeline.
func New(gen Generator, compactor *compact.Compactor, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	if compactor == nil {
		compactor = compact.New(0, 0, 0, 0)
	}
	return &Pipeline{gen: gen, compactor: compactor, logger: logger}
}

// Generate produces the styled answer text for the request: a grounded
// draft over the compacted evidence followed by a style rewrite. Empty
// evidence short-circuits to the canned not-found answer without any model
// call; the caller must treat that as a terminal result.
func (p *Pipeline) Generate(ctx context.Context, docs []evidence.Document, req Request) (string, error) {
	if len(docs) == 0 {
		return i18n.T("answer.not_found"), nil
	}

	prompt := fmt.Sprintf(promptRAG,
		historyBlock(req.History, req.MemorySummary),
		p.compactor.Compact(docs),
		req.Question,
		formatHint(req.Mode),
	)
	draft, err := p.gen.Generate(ctx, prompt, draftTemperature)
	if err != nil {
		return "", fmt.Errorf("drafting answer: %w", err)
	}

	rewritten, err := p.gen.Generate(ctx,
		fmt.Sprintf(promptRewrite, styleHint(req.Style), draft),
		rewriteTemperature)
	if err != nil {
		return "", fmt.Errorf("rewriting answer: %w", err)
	}
	return rewritten, nil
}

// Plan asks for a short bullet plan for the question. Bullet markers and
// blank lines are stripped; at most five steps are returned.
func (p *Pipeline) Plan(ctx context.Context, question, mode string) ([]string, error) {
	out, err := p.gen.Generate(ctx, fmt.Sprintf(promptPlanner, question, mode), controlTemperature)
	if err != nil {
		return nil, fmt.Errorf("planning answer: %w", err)
	}

	var steps []string
	for _, line := range strings.Split(out, "\n") {
		step := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if step == "" {
			continue
		}
		steps = append(steps, step)
		if len(steps) == maxPlanSteps {
			break
		}
	}
	return steps, nil
}

// SummarizeHistory condenses past exchanges into a short contextual note
// for the prompt. Empty history yields an empty summary without a model
// call.
func (p *Pipeline) SummarizeHistory(ctx context.Context, pairs []HistoryPair) (string, error) {
	if len(pairs) == 0 {
		return "", nil
	}

	var lines []string
	for _, pr := range pairs {
		if pr.Question == "" && pr.Answer == "" {
			continue
		}
		lines = append(lines, "User: "+pr.Question+"\nBot: "+pr.Answer)
	}
	if len(lines) == 0 {
		return "", nil
	}

	out, err := p.gen.Generate(ctx,
		fmt.Sprintf(promptSummarize, strings.Join(lines, "\n")),
		rewriteTemperature)
	if err != nil {
		return "", fmt.Errorf("summarizing history: %w", err)
	}
	return out, nil
}
