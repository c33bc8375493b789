// Package testutil holds shared test doubles.
package testutil

import (
	"context"
	"strings"
	"sync"
)

// GenRule maps a prompt substring to a scripted response.
type GenRule struct {
	Contains string
	Response string
}

// GenCall records one Generate invocation.
type GenCall struct {
	Prompt      string
	Temperature float32
}

// ScriptedGenerator fakes an LLM for tests. Responses are chosen by the
// first rule whose substring appears in the prompt; Default answers
// everything else. Err, when set, fails every call.
type ScriptedGenerator struct {
	Rules   []GenRule
	Default string
	Err     error

	mu    sync.Mutex
	calls []GenCall
}

func (g *ScriptedGenerator) Generate(_ context.Context, prompt string, temperature float32) (string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, GenCall{Prompt: prompt, Temperature: temperature})
	g.mu.Unlock()

	if g.Err != nil {
		return "", g.Err
	}
	for _, r := range g.Rules {
		if r.Contains != "" && strings.Contains(prompt, r.Contains) {
			return r.Response, nil
		}
	}
	return g.Default, nil
}

// Calls returns a copy of the recorded invocations.
func (g *ScriptedGenerator) Calls() []GenCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]GenCall, len(g.calls))
	copy(out, g.calls)
	return out
}
