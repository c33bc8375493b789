// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.pustaka/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: model selection, embedder, language
//   - Storage: PostgreSQL connection for the vector index
//   - Retrieval: result counts, cache TTL, diversity search
//   - Compaction: prompt context budgets
//   - Memory: conversation memory directory, history window, summary trigger
//
// Sensitive data (the PostgreSQL password) is masked in MarshalJSON/String.
// Validation is fail-fast: Load returns an error before any component sees
// an invalid value.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidRetrievalK indicates the retrieval result count is out of range.
	ErrInvalidRetrievalK = errors.New("invalid retrieval k")

	// ErrInvalidCacheTTL indicates the retrieval cache TTL is out of range.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl")

	// ErrInvalidCompactionBudget indicates a compaction character budget is out of range.
	ErrInvalidCompactionBudget = errors.New("invalid compaction budget")

	// ErrInvalidStyle indicates the answer style is not a known label.
	ErrInvalidStyle = errors.New("invalid style")

	// ErrInvalidMode indicates the answer mode is not a known label.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidHistoryWindow indicates the history window size is out of range.
	ErrInvalidHistoryWindow = errors.New("invalid history window")
)

const (
	// DefaultModelName is the default generation model.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultEmbedderModel is the default Gemini embedder model.
	// Output is truncated to 768 dimensions to match the pgvector schema;
	// see evidence.VectorDimension.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultRetrievalK is the default number of documents per retrieval.
	DefaultRetrievalK = 5

	// DefaultCacheTTLSeconds is the retrieval cache lifetime.
	DefaultCacheTTLSeconds = 300

	// DefaultHistoryWindow is how many recent turns feed the prompt.
	DefaultHistoryWindow = 3

	// DefaultSummaryTriggerTurns is when the rolling summary is refreshed.
	DefaultSummaryTriggerTurns = 8
)

// Known style and mode labels. Unknown styles are rejected at the boundary;
// unknown modes default to a generic format hint inside the pipeline.
var (
	KnownStyles = []string{"netral", "hangat", "terapis", "pengajar", "rekan"}
	KnownModes  = []string{"ringkas", "panjang", "bullet", "banding", "definisi", "langkah"}
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// AI configuration
	ModelName     string `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	Language      string `mapstructure:"language" json:"language"`

	// Answer defaults
	DefaultStyle string `mapstructure:"default_style" json:"default_style"`
	DefaultMode  string `mapstructure:"default_mode" json:"default_mode"`

	// Retrieval configuration
	RetrievalK      int     `mapstructure:"retrieval_k" json:"retrieval_k"`
	UseDiversity    bool    `mapstructure:"use_diversity" json:"use_diversity"`
	DiversityLambda float32 `mapstructure:"diversity_lambda" json:"diversity_lambda"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	// Compaction configuration
	FullTopN         int `mapstructure:"full_top_n" json:"full_top_n"`
	FullCharLimit    int `mapstructure:"full_char_limit" json:"full_char_limit"`
	TailSummariesMax int `mapstructure:"tail_summaries_max" json:"tail_summaries_max"`
	TailCharLimit    int `mapstructure:"tail_char_limit" json:"tail_char_limit"`

	// Memory configuration
	MemoryDir           string `mapstructure:"memory_dir" json:"memory_dir"`
	HistoryWindow       int    `mapstructure:"history_window" json:"history_window"`
	SummaryTriggerTurns int    `mapstructure:"summary_trigger_turns" json:"summary_trigger_turns"`

	// Rate limiting for generation calls (requests per second; 0 disables)
	GenerateRPS float64 `mapstructure:"generate_rps" json:"generate_rps"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".pustaka")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("language", "id")

	viper.SetDefault("default_style", "terapis")
	viper.SetDefault("default_mode", "ringkas")

	viper.SetDefault("retrieval_k", DefaultRetrievalK)
	viper.SetDefault("use_diversity", false)
	viper.SetDefault("diversity_lambda", 0.5)
	viper.SetDefault("cache_ttl_seconds", DefaultCacheTTLSeconds)

	viper.SetDefault("full_top_n", 3)
	viper.SetDefault("full_char_limit", 1200)
	viper.SetDefault("tail_summaries_max", 3)
	viper.SetDefault("tail_char_limit", 280)

	viper.SetDefault("memory_dir", filepath.Join("storage", "memory"))
	viper.SetDefault("history_window", DefaultHistoryWindow)
	viper.SetDefault("summary_trigger_turns", DefaultSummaryTriggerTurns)

	viper.SetDefault("generate_rps", 1.0)

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "pustaka")
	viper.SetDefault("postgres_password", "pustaka_dev_password")
	viper.SetDefault("postgres_db_name", "pustaka")
	viper.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment variable overrides explicitly.
// GEMINI_API_KEY is read directly by Genkit, not via viper; Validate()
// only checks its presence.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_name", "PUSTAKA_MODEL_NAME")
	mustBind("embedder_model", "PUSTAKA_EMBEDDER_MODEL")
	mustBind("language", "PUSTAKA_LANG")
	mustBind("memory_dir", "PUSTAKA_MEMORY_DIR")
	mustBind("postgres_password", "PUSTAKA_POSTGRES_PASSWORD")
}

// parseDatabaseURL overrides PostgreSQL settings from DATABASE_URL when set.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if u.Hostname() != "" {
		c.PostgresHost = u.Hostname()
	}
	if u.Port() != "" {
		var port int
		if _, err := fmt.Sscanf(u.Port(), "%d", &port); err != nil {
			return fmt.Errorf("parsing port: %w", err)
		}
		c.PostgresPort = port
	}
	if u.User != nil {
		c.PostgresUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		c.PostgresDBName = name
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}
	return nil
}

// PostgresURL returns the postgres:// URL form of the storage configuration.
// Used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.PostgresUser),
		url.QueryEscape(c.PostgresPassword),
		c.PostgresHost, c.PostgresPort, c.PostgresDBName, c.PostgresSSLMode)
}

// PostgresConnectionString returns the keyword/value form for pgxpool.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword,
		c.PostgresDBName, c.PostgresSSLMode)
}

// FullModelName returns the provider-qualified model name for Genkit.
// If ModelName already contains a "/", it is returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	return "googleai/" + c.ModelName
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 chars or
// fewer are fully masked; longer secrets keep the first and last 2 chars.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
