package llm

import (
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// ProviderType identifies a generation backend.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
	ProviderMock      ProviderType = "mock"
)

// Default call parameters applied when the config leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// ProviderConfig holds the settings needed to construct one Generator.
type ProviderConfig struct {
	Type        ProviderType
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// ApplyDefaults fills unset call parameters.
func (c *ProviderConfig) ApplyDefaults() {
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
}

// Validate checks that the config can produce a working generator.
func (c ProviderConfig) Validate() error {
	if c.Type == "" {
		return types.NewError(types.INVALID_ARGUMENT, "provider type is required")
	}
	if c.Model == "" {
		return types.NewError(types.INVALID_ARGUMENT, "model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return types.NewError(types.INVALID_ARGUMENT, "temperature must be between 0 and 2")
	}
	if c.MaxTokens < 0 {
		return types.NewError(types.INVALID_ARGUMENT, "max tokens must not be negative")
	}
	return nil
}
