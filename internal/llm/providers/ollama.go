package providers

import (
	"context"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// OllamaGenerator implements Generator for local Ollama models. Structured
// answers rely on the prompt alone; Ollama has no JSON response mode the
// client can request per call.
type OllamaGenerator struct {
	client *ollama.LLM
	config llm.ProviderConfig
}

// NewOllamaGenerator creates a generator backed by a local Ollama server.
func NewOllamaGenerator(cfg llm.ProviderConfig) (*OllamaGenerator, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	opts := []ollama.Option{
		ollama.WithServerURL(serverURL),
	}
	if cfg.Model != "" {
		opts = append(opts, ollama.WithModel(cfg.Model))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}

	return &OllamaGenerator{client: client, config: cfg}, nil
}

// Name returns the provider name.
func (g *OllamaGenerator) Name() string {
	return "ollama"
}

// Generate sends the request and returns the response text.
func (g *OllamaGenerator) Generate(ctx context.Context, req llm.GenerationRequest) (string, error) {
	resp, err := g.client.GenerateContent(ctx, requestMessages(req), callOptions(g.config, req)...)
	if err != nil {
		return "", llm.TranslateError("ollama", err)
	}

	content, err := firstChoice(resp)
	if err != nil {
		return "", llm.TranslateError("ollama", err)
	}
	return content, nil
}

// Health checks connectivity with a one-token completion.
func (g *OllamaGenerator) Health(ctx context.Context) types.HealthStatus {
	return probeHealth(ctx, g)
}
