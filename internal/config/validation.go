package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	// API key (required for all generation and embedding calls)
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	// Model configuration
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}

	// Answer defaults
	if !slices.Contains(KnownStyles, c.DefaultStyle) {
		return fmt.Errorf("%w: %q is not one of %v", ErrInvalidStyle, c.DefaultStyle, KnownStyles)
	}
	if !slices.Contains(KnownModes, c.DefaultMode) {
		return fmt.Errorf("%w: %q is not one of %v", ErrInvalidMode, c.DefaultMode, KnownModes)
	}

	// Retrieval configuration
	if c.RetrievalK < 1 || c.RetrievalK > 50 {
		return fmt.Errorf("%w: must be between 1 and 50, got %d", ErrInvalidRetrievalK, c.RetrievalK)
	}
	if c.CacheTTLSeconds < 0 || c.CacheTTLSeconds > 86400 {
		return fmt.Errorf("%w: must be between 0 and 86400 seconds, got %d", ErrInvalidCacheTTL, c.CacheTTLSeconds)
	}

	// Compaction budgets
	if c.FullTopN < 0 || c.TailSummariesMax < 0 {
		return fmt.Errorf("%w: tier sizes cannot be negative", ErrInvalidCompactionBudget)
	}
	if c.FullCharLimit < 100 || c.FullCharLimit > 20000 {
		return fmt.Errorf("%w: full_char_limit must be between 100 and 20000, got %d",
			ErrInvalidCompactionBudget, c.FullCharLimit)
	}
	if c.TailCharLimit < 40 || c.TailCharLimit > 2000 {
		return fmt.Errorf("%w: tail_char_limit must be between 40 and 2000, got %d",
			ErrInvalidCompactionBudget, c.TailCharLimit)
	}

	// Memory configuration
	if c.HistoryWindow < 1 || c.HistoryWindow > 50 {
		return fmt.Errorf("%w: must be between 1 and 50, got %d", ErrInvalidHistoryWindow, c.HistoryWindow)
	}

	// PostgreSQL configuration
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	return nil
}
