package answer

import "time"

// Pipeline defaults.
const (
	DefaultHistoryWindow     = 6
	DefaultSearchLimit       = 5
	DefaultMaxContextItems   = 10
	DefaultFallbackItems     = 3
	DefaultGenerationTimeout = 30 * time.Second
)

// Config tunes the answer pipeline.
type Config struct {
	// HistoryWindow bounds how many prior exchanges enter the prompt.
	// Topic coverage always reads the full history.
	HistoryWindow int

	// SearchLimit caps graph results fetched per extracted keyword.
	SearchLimit int

	// MaxContextItems caps the deduplicated supporting items overall.
	MaxContextItems int

	// FallbackItems caps how many items a degraded answer quotes.
	FallbackItems int

	// GenerationTimeout bounds a single generator call.
	GenerationTimeout time.Duration
}

// ApplyDefaults fills unset fields with the pipeline defaults.
func (c *Config) ApplyDefaults() {
	if c.HistoryWindow == 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.MaxContextItems == 0 {
		c.MaxContextItems = DefaultMaxContextItems
	}
	if c.FallbackItems == 0 {
		c.FallbackItems = DefaultFallbackItems
	}
	if c.GenerationTimeout == 0 {
		c.GenerationTimeout = DefaultGenerationTimeout
	}
}
