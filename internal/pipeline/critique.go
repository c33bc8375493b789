package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Critique judges a drafted answer against its citations. The critic
// answers three YA/TIDAK questions; any TIDAK marks the draft as needing
// refinement.
func (p *Pipeline) Critique(ctx context.Context, answer string) (string, error) {
	out, err := p.gen.Generate(ctx, fmt.Sprintf(promptCritic, answer), controlTemperature)
	if err != nil {
		return "", fmt.Errorf("critiquing answer: %w", err)
	}
	return out, nil
}

// NeedsRefine reports whether the answer has to go through the refine
// pass: either the critic flagged a problem or the answer carries no
// citation block at all.
func NeedsRefine(answer, critique string) bool {
	return strings.Contains(critique, "TIDAK") || !strings.Contains(answer, citationMarker)
}

// Refine rewrites the answer under the critic's remarks into a final,
// user-ready version.
func (p *Pipeline) Refine(ctx context.Context, answer, critique string) (string, error) {
	out, err := p.gen.Generate(ctx, fmt.Sprintf(promptRefine, answer, critique), controlTemperature)
	if err != nil {
		return "", fmt.Errorf("refining answer: %w", err)
	}
	return out, nil
}
