package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

func TestTracingConfigApplyDefaults(t *testing.T) {
	cfg := TracingConfig{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultServiceName, cfg.ServiceName)
	assert.InDelta(t, DefaultSampleRate, cfg.SampleRate, 0.001)
	assert.Equal(t, DefaultBatchTimeout, cfg.BatchTimeout)
}

func TestTracingConfigApplyDefaults_KeepsSetValues(t *testing.T) {
	cfg := TracingConfig{
		ServiceName:  "aikg-staging",
		SampleRate:   0.25,
		BatchTimeout: time.Second,
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "aikg-staging", cfg.ServiceName)
	assert.InDelta(t, 0.25, cfg.SampleRate, 0.001)
	assert.Equal(t, time.Second, cfg.BatchTimeout)
}

func TestTracingConfigValidate_DisabledSkipsChecks(t *testing.T) {
	assert.NoError(t, TracingConfig{Enabled: false}.Validate())
}

func TestTracingConfigValidate_MissingEndpoint(t *testing.T) {
	err := TracingConfig{Enabled: true, SampleRate: 1}.Validate()

	assert.True(t, types.IsCode(err, types.INVALID_ARGUMENT))
}

func TestTracingConfigValidate_SampleRateRange(t *testing.T) {
	err := TracingConfig{Enabled: true, Endpoint: "localhost:4317", SampleRate: -0.5}.Validate()

	assert.True(t, types.IsCode(err, types.INVALID_ARGUMENT))
}
