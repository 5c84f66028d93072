package observability

import (
	"testing"

	"github.com/smallbiznis/innledger/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigFallsBackToAppSettings(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppVersion:  "1.4.0",
		Environment: "staging",
		Telemetry:   config.TelemetryConfig{LogLevel: "info", OtelSamplingRatio: 3},
	})

	assert.Equal(t, "innledger", cfg.ServiceName)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "1.4.0", cfg.Version)
	assert.Equal(t, 0.1, cfg.OtelSamplingRatio)
	assert.False(t, cfg.Debug())
}

func TestDebug(t *testing.T) {
	assert.True(t, Config{Environment: "Local"}.Debug())
	assert.True(t, Config{Environment: "production", LogLevel: "DEBUG"}.Debug())
	assert.False(t, Config{Environment: "production"}.Debug())
}
