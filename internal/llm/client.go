// Package llm wraps the Genkit text generation entry point behind a small
// client with a fixed model and an optional request rate limit.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/pustakabot/pustaka/internal/log"
)

// Client issues generation requests against one configured model. Each
// pipeline stage picks its own temperature; everything else is fixed here.
type Client struct {
	g       *genkit.Genkit
	model   string
	limiter *rate.Limiter
	logger  log.Logger
}

// New creates a Client. model is the full Genkit model name (for example
// "googleai/gemini-2.5-flash"). rps limits outgoing requests per second;
// zero or negative disables limiting.
func New(g *genkit.Genkit, model string, rps float64, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNop()
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{g: g, model: model, limiter: limiter, logger: logger}
}

// Generate runs one prompt at the given temperature and returns the
// trimmed response text. Failures are returned to the caller unretried;
// the pipeline decides what a failed pass means.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.model),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature: genai.Ptr(temperature),
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}

	c.logger.Debug("generation complete",
		"model", c.model,
		"temperature", temperature,
		"duration", time.Since(start))

	return strings.TrimSpace(resp.Text()), nil
}
