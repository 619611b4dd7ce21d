package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// AnthropicGenerator implements Generator for Anthropic Claude models.
type AnthropicGenerator struct {
	client *anthropic.LLM
	config llm.ProviderConfig
}

// NewAnthropicGenerator creates a generator backed by the Anthropic API.
func NewAnthropicGenerator(cfg llm.ProviderConfig) (*AnthropicGenerator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewAuthError("anthropic", nil)
	}

	opts := []anthropic.Option{
		anthropic.WithToken(apiKey),
	}
	if cfg.Model != "" {
		opts = append(opts, anthropic.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("anthropic", err)
	}

	return &AnthropicGenerator{client: client, config: cfg}, nil
}

// Name returns the provider name.
func (g *AnthropicGenerator) Name() string {
	return "anthropic"
}

// Generate sends the request and returns the response text.
func (g *AnthropicGenerator) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	resp, err := g.client.GenerateContent(ctx, requestMessages(req), callOptions(g.config, req)...)
	if err != nil {
		return "", llm.TranslateError("anthropic", err)
	}

	content, err := firstChoice(resp)
	if err != nil {
		return "", llm.TranslateError("anthropic", err)
	}
	return content, nil
}

// Health checks connectivity with a one-token completion.
func (g *AnthropicGenerator) Health(ctx context.Context) types.HealthStatus {
	return probeHealth(ctx, g)
}
