package config

import (
	"os"
	"time"
)

// DefaultConfig returns a Config with sensible default values. The OpenAI
// key is taken from the environment so the zero-config path works when
// OPENAI_API_KEY is exported.
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			URI:               "bolt://localhost:7687",
			Username:          "neo4j",
			Password:          "password",
			Database:          "neo4j",
			MaxConnections:    50,
			ConnectionTimeout: 30 * time.Second,
		},
		LLM: LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]ProviderConfig{
				"openai": {
					Type:        "openai",
					APIKey:      os.Getenv("OPENAI_API_KEY"),
					Model:       "gpt-4o-mini",
					Temperature: 0.7,
					MaxTokens:   2000,
				},
			},
		},
		Answer: AnswerConfig{
			HistoryWindow:     6,
			SearchLimit:       5,
			MaxContextItems:   10,
			FallbackItems:     3,
			GenerationTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}
