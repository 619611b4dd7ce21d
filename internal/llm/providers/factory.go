package providers

import (
	"context"
	"fmt"

	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// NewGenerator constructs the Generator matching the provider type.
func NewGenerator(cfg llm.ProviderConfig) (llm.Generator, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case llm.ProviderOpenAI:
		return NewOpenAIGenerator(cfg)

	case llm.ProviderAnthropic:
		return NewAnthropicGenerator(cfg)

	case llm.ProviderOllama:
		return NewOllamaGenerator(cfg)

	case llm.ProviderMock:
		return NewMockGenerator("mock response"), nil

	default:
		return nil, llm.NewProviderNotFoundError(string(cfg.Type))
	}
}

// probeHealth checks a generator by requesting a single-token completion.
func probeHealth(ctx context.Context, g llm.Generator) types.HealthStatus {
	_, err := g.Generate(ctx, llm.GenerationRequest{
		Prompt:    "ping",
		Mode:      llm.ModeFreeform,
		MaxTokens: 1,
	})
	if err != nil {
		return types.Unhealthy(fmt.Sprintf("%s: %v", g.Name(), err))
	}
	return types.Healthy("")
}
