package providers

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/LeonFTWANG/AIKG/internal/llm"
)

// requestMessages converts a generation request to langchaingo messages.
func requestMessages(req llm.GenerationRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, 2)

	if req.System != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}

	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	return messages
}

// callOptions builds langchaingo call options from the provider config,
// letting per-request values override it.
func callOptions(cfg llm.ProviderConfig, req llm.GenerationRequest) []llms.CallOption {
	temperature := cfg.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	maxTokens := cfg.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	opts := make([]llms.CallOption, 0, 2)
	if temperature > 0 {
		opts = append(opts, llms.WithTemperature(temperature))
	}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	return opts
}

// firstChoice returns the text of the first completion choice.
func firstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Content, nil
}
