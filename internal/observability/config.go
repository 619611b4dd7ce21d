package observability

import (
	"time"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Tracing defaults.
const (
	DefaultServiceName  = "aikg"
	DefaultSampleRate   = 1.0
	DefaultBatchTimeout = 5 * time.Second
)

// TracingConfig configures span export over OTLP gRPC.
type TracingConfig struct {
	// Enabled turns exporting on. When false a no-op provider is
	// installed and spans cost nothing.
	Enabled bool

	// Endpoint is the OTLP gRPC collector address, host:port.
	Endpoint string

	// ServiceName labels exported spans.
	ServiceName string

	// SampleRate is the trace-id ratio in [0, 1].
	SampleRate float64

	// Insecure disables transport security toward the collector. Off by
	// default; local collectors usually need it.
	Insecure bool

	// BatchTimeout bounds how long finished spans wait for export.
	BatchTimeout time.Duration
}

// ApplyDefaults fills unset fields.
func (c *TracingConfig) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.BatchTimeout == 0 {
		c.BatchTimeout = DefaultBatchTimeout
	}
}

// Validate checks an enabled configuration for exportability.
func (c TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return types.NewError(types.INVALID_ARGUMENT, "tracing endpoint must be set when tracing is enabled")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return types.NewError(types.INVALID_ARGUMENT, "tracing sample rate must be within [0, 1]")
	}
	return nil
}
