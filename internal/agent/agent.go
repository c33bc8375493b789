// Package agent orchestrates one question end to end: plan, retrieve,
// generate, critique, refine, sanitize.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/i18n"
	"github.com/pustakabot/pustaka/internal/log"
	"github.com/pustakabot/pustaka/internal/pipeline"
	"github.com/pustakabot/pustaka/internal/retrieval"
)

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("empty question")

// planModes lists the answer modes that get a planning pass before
// retrieval.
var planModes = map[string]bool{
	"panjang":  true,
	"banding":  true,
	"langkah":  true,
	"definisi": true,
}

// Retriever fetches evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question, collection string) ([]evidence.Document, *retrieval.Focus, error)
}

// Request is one question with its conversational context.
type Request struct {
	UserID        string
	Question      string
	Collection    string // pins retrieval to one collection when set
	Style         string
	Mode          string
	History       []pipeline.HistoryPair
	MemorySummary string
}

// Meta carries the side outputs of a run.
type Meta struct {
	PlanSteps []string
	Critique  string
}

// Result is a finished answer. FinalText is never empty.
type Result struct {
	FinalText string
	Documents []evidence.Document
	Meta      Meta
}

// Agent wires retrieval and the generation pipeline together.
type Agent struct {
	retriever Retriever
	pipe      *pipeline.Pipeline
	logger    log.Logger
}

// New creates an Agent.
func New(retriever Retriever, pipe *pipeline.Pipeline, logger log.Logger) *Agent {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Agent{retriever: retriever, pipe: pipe, logger: logger}
}

// Answer runs the full pipeline for one question. Generation failures
// propagate; the caller presents a generic error and must not record the
// turn. A successful result always carries non-empty text, even when no
// evidence was found.
func (a *Agent) Answer(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	logger := a.logger.With("request_id", uuid.NewString(), "user", req.UserID)

	var (
		planSteps []string
		err       error
	)
	if planModes[strings.ToLower(req.Mode)] {
		planSteps, err = a.pipe.Plan(ctx, req.Question, req.Mode)
		if err != nil {
			return nil, err
		}
	}

	docs, focus, err := a.retriever.Retrieve(ctx, req.Question, req.Collection)
	if err != nil {
		return nil, err
	}
	logger.Debug("evidence retrieved",
		"documents", len(docs),
		"focused", focus != nil)

	if len(docs) == 0 {
		return &Result{
			FinalText: i18n.T("answer.not_found"),
			Meta:      Meta{PlanSteps: planSteps},
		}, nil
	}

	answer, err := a.pipe.Generate(ctx, docs, pipeline.Request{
		Question:      req.Question,
		Style:         req.Style,
		Mode:          req.Mode,
		History:       req.History,
		MemorySummary: req.MemorySummary,
	})
	if err != nil {
		return nil, err
	}

	critique, err := a.pipe.Critique(ctx, answer)
	if err != nil {
		return nil, err
	}
	if pipeline.NeedsRefine(answer, critique) {
		logger.Debug("refining answer")
		answer, err = a.pipe.Refine(ctx, answer, critique)
		if err != nil {
			return nil, err
		}
	}

	answer = pipeline.EnsureGrounding(pipeline.StripMeta(answer))

	flags := pipeline.Guardrail(answer)
	logger.Debug("answer finished",
		"has_references", flags.HasReferences,
		"too_general", flags.TooGeneral)

	return &Result{
		FinalText: answer,
		Documents: docs,
		Meta: Meta{
			PlanSteps: planSteps,
			Critique:  critique,
		},
	}, nil
}
