package providers

import (
	"context"
	"sync"

	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// MockGenerator implements Generator for testing. Responses are served in
// rotation; a configured error takes precedence over responses. All
// requests are recorded for inspection.
type MockGenerator struct {
	mu        sync.Mutex
	responses []string
	next      int
	err       error
	health    types.HealthStatus
	requests  []llm.GenerationRequest
}

// NewMockGenerator creates a mock that cycles through the given responses.
func NewMockGenerator(responses ...string) *MockGenerator {
	return &MockGenerator{
		responses: responses,
		health:    types.Healthy("mock"),
	}
}

// Name returns the provider name.
func (g *MockGenerator) Name() string {
	return "mock"
}

// Generate records the request and returns the next scripted response.
func (g *MockGenerator) Generate(_ context.Context, req llm.GenerationRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)

	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "", llm.NewUnavailableError("mock", nil)
	}

	response := g.responses[g.next%len(g.responses)]
	g.next++
	return response, nil
}

// Health returns the configured health status.
func (g *MockGenerator) Health(_ context.Context) types.HealthStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.health
}

// SetError makes subsequent Generate calls fail with err. Pass nil to
// restore scripted responses.
func (g *MockGenerator) SetError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// SetHealth overrides the reported health status.
func (g *MockGenerator) SetHealth(status types.HealthStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.health = status
}

// Requests returns a copy of all recorded requests.
func (g *MockGenerator) Requests() []llm.GenerationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]llm.GenerationRequest, len(g.requests))
	copy(out, g.requests)
	return out
}

// LastRequest returns the most recent request, or nil if none were made.
func (g *MockGenerator) LastRequest() *llm.GenerationRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	req := g.requests[len(g.requests)-1]
	return &req
}

// CallCount returns how many Generate calls were made.
func (g *MockGenerator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// Reset clears recorded requests, the error, and the response cursor.
func (g *MockGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = nil
	g.err = nil
	g.next = 0
	g.health = types.Healthy("mock")
}
