package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// OpenAIGenerator implements Generator over OpenAI-compatible endpoints.
// A custom BaseURL points it at proxies or self-hosted gateways.
type OpenAIGenerator struct {
	client *openai.LLM
	config llm.ProviderConfig
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API.
func NewOpenAIGenerator(cfg llm.ProviderConfig) (*OpenAIGenerator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewAuthError("openai", nil)
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
	}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("openai", err)
	}

	return &OpenAIGenerator{client: client, config: cfg}, nil
}

// Name returns the provider name.
func (g *OpenAIGenerator) Name() string {
	return "openai"
}

// Generate sends the request and returns the response text.
func (g *OpenAIGenerator) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	resp, err := g.client.GenerateContent(ctx, requestMessages(req), callOptions(g.config, req)...)
	if err != nil {
		return "", llm.TranslateError("openai", err)
	}

	content, err := firstChoice(resp)
	if err != nil {
		return "", llm.TranslateError("openai", err)
	}
	return content, nil
}

// Health checks connectivity with a one-token completion.
func (g *OpenAIGenerator) Health(ctx context.Context) types.HealthStatus {
	return probeHealth(ctx, g)
}
