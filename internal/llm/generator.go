package llm

import (
	"context"
	"strings"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Mode selects the answer shape a generation request asks for.
type Mode string

const (
	// ModeUnknown marks messages persisted before mode tagging existed.
	ModeUnknown Mode = ""

	// ModeStructured requests the sectioned JSON answer layout.
	ModeStructured Mode = "structured"

	// ModeFreeform requests a plain prose answer.
	ModeFreeform Mode = "text"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// IsStructured reports whether the mode requests the JSON answer layout.
func (m Mode) IsStructured() bool {
	return m == ModeStructured
}

// ParseMode maps a persisted mode value back to a Mode. Values written by
// earlier deployments ("JSON"/"TEXT") are accepted; anything unrecognized
// maps to ModeUnknown so callers can fall back to content inspection.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "json":
		return ModeStructured
	case "text", "freeform":
		return ModeFreeform
	default:
		return ModeUnknown
	}
}

// GenerationRequest carries one prompt to a Generator. Temperature and
// MaxTokens override the provider defaults when non-zero.
type GenerationRequest struct {
	System      string
	Prompt      string
	Mode        Mode
	Temperature float64
	MaxTokens   int
}

// Generator produces answer text from a prompt. Implementations wrap a
// single model endpoint; selection between providers happens in the
// providers factory.
type Generator interface {
	// Name returns the provider name (e.g. "openai", "ollama").
	Name() string

	// Generate sends the request and returns the full response text.
	// Errors carry GENERATION_* codes; callers decide whether to retry
	// or degrade.
	Generate(ctx context.Context, req GenerationRequest) (string, error)

	// Health checks connectivity to the model endpoint.
	Health(ctx context.Context) types.HealthStatus
}
