package config

import (
	"time"

	"github.com/LeonFTWANG/AIKG/internal/answer"
	"github.com/LeonFTWANG/AIKG/internal/graph"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/observability"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Config is the root configuration for AIKG.
type Config struct {
	Graph   GraphConfig   `mapstructure:"graph" yaml:"graph" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Answer  AnswerConfig  `mapstructure:"answer" yaml:"answer"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// ApplyDefaults fills unset fields with defaults so partial config files
// stay loadable. Required fields such as the graph password are left to
// validation.
func (c *Config) ApplyDefaults() {
	c.Graph.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Answer.ApplyDefaults()
	c.Logging.ApplyDefaults()
}

// GraphConfig contains Neo4j connection settings.
type GraphConfig struct {
	URI               string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username          string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password          string        `mapstructure:"password" yaml:"password"`
	Database          string        `mapstructure:"database" yaml:"database"`
	MaxConnections    int           `mapstructure:"max_connections" yaml:"max_connections" validate:"min=1,max=500"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout" validate:"min=1s"`
}

// ApplyDefaults applies default values to the GraphConfig.
func (g *GraphConfig) ApplyDefaults() {
	if g.URI == "" {
		g.URI = "bolt://localhost:7687"
	}
	if g.Username == "" {
		g.Username = "neo4j"
	}
	if g.Database == "" {
		g.Database = "neo4j"
	}
	if g.MaxConnections == 0 {
		g.MaxConnections = 50
	}
	if g.ConnectionTimeout == 0 {
		g.ConnectionTimeout = 30 * time.Second
	}
}

// ClientConfig converts the section into the graph client's config shape.
func (g GraphConfig) ClientConfig() graph.GraphClientConfig {
	cfg := graph.DefaultConfig()
	cfg.URI = g.URI
	cfg.Username = g.Username
	cfg.Password = g.Password
	cfg.Database = g.Database
	if g.MaxConnections > 0 {
		cfg.MaxConnectionPoolSize = g.MaxConnections
	}
	if g.ConnectionTimeout > 0 {
		cfg.ConnectionTimeout = g.ConnectionTimeout
	}
	return cfg
}

// ProviderConfig describes one LLM provider entry. API keys support
// ${VAR_NAME} interpolation so they never have to live in the file.
type ProviderConfig struct {
	Type        string  `mapstructure:"type" yaml:"type" validate:"required,oneof=openai anthropic ollama"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Model       string  `mapstructure:"model" yaml:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens" validate:"min=0"`
}

// GeneratorConfig converts the section into the generator's config shape.
func (p ProviderConfig) GeneratorConfig() llm.ProviderConfig {
	return llm.ProviderConfig{
		Type:        llm.ProviderType(p.Type),
		APIKey:      p.APIKey,
		BaseURL:     p.BaseURL,
		Model:       p.Model,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
}

// LLMConfig contains generation provider configuration.
type LLMConfig struct {
	DefaultProvider string                    `mapstructure:"default_provider" yaml:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers" yaml:"providers" validate:"dive"`
}

// DefaultProviderConfig resolves the configured default provider.
func (l LLMConfig) DefaultProviderConfig() (llm.ProviderConfig, error) {
	p, ok := l.Providers[l.DefaultProvider]
	if !ok {
		return llm.ProviderConfig{}, types.NewError(types.PROVIDER_NOT_FOUND,
			"no provider configured under name "+l.DefaultProvider)
	}
	return p.GeneratorConfig(), nil
}

// ApplyDefaults applies default values to the LLMConfig. A single
// configured provider becomes the default without naming it twice.
func (l *LLMConfig) ApplyDefaults() {
	for name, p := range l.Providers {
		if p.Temperature == 0 {
			p.Temperature = 0.7
		}
		if p.MaxTokens == 0 {
			p.MaxTokens = 2000
		}
		l.Providers[name] = p
	}
	if l.DefaultProvider == "" && len(l.Providers) == 1 {
		for name := range l.Providers {
			l.DefaultProvider = name
		}
	}
}

// AnswerConfig tunes the answer pipeline.
type AnswerConfig struct {
	HistoryWindow     int           `mapstructure:"history_window" yaml:"history_window" validate:"min=1,max=50"`
	SearchLimit       int           `mapstructure:"search_limit" yaml:"search_limit" validate:"min=1,max=50"`
	MaxContextItems   int           `mapstructure:"max_context_items" yaml:"max_context_items" validate:"min=1,max=100"`
	FallbackItems     int           `mapstructure:"fallback_items" yaml:"fallback_items" validate:"min=1,max=10"`
	GenerationTimeout time.Duration `mapstructure:"generation_timeout" yaml:"generation_timeout" validate:"min=1s"`
}

// PipelineConfig converts the section into the answer pipeline's own
// configuration type.
func (a AnswerConfig) PipelineConfig() answer.Config {
	return answer.Config{
		HistoryWindow:     a.HistoryWindow,
		SearchLimit:       a.SearchLimit,
		MaxContextItems:   a.MaxContextItems,
		FallbackItems:     a.FallbackItems,
		GenerationTimeout: a.GenerationTimeout,
	}
}

// ApplyDefaults applies default values to the AnswerConfig.
func (a *AnswerConfig) ApplyDefaults() {
	if a.HistoryWindow == 0 {
		a.HistoryWindow = 6
	}
	if a.SearchLimit == 0 {
		a.SearchLimit = 5
	}
	if a.MaxContextItems == 0 {
		a.MaxContextItems = 10
	}
	if a.FallbackItems == 0 {
		a.FallbackItems = 3
	}
	if a.GenerationTimeout == 0 {
		a.GenerationTimeout = 30 * time.Second
	}
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// ApplyDefaults applies default values to the LoggingConfig.
func (l *LoggingConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
}

// TracerConfig converts the section into the observability package's own
// configuration type. Service name, sampling, and batching keep their
// defaults.
func (t TracingConfig) TracerConfig() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:  t.Enabled,
		Endpoint: t.Endpoint,
		Insecure: t.Insecure,
	}
}
