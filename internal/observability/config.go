package observability

import (
	"strings"

	"github.com/smallbiznis/innledger/internal/config"
)

// Config is the telemetry view of the application config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// localEnvironments get stack traces on errors and verbose request logs.
var localEnvironments = map[string]struct{}{
	"dev":         {},
	"development": {},
	"local":       {},
	"test":        {},
}

func LoadConfig(cfg config.Config) Config {
	t := cfg.Telemetry

	out := Config{
		ServiceName:          strings.TrimSpace(cfg.AppName),
		Environment:          t.DeploymentEnv,
		Version:              t.ServiceVersion,
		LogLevel:             t.LogLevel,
		LogFormat:            t.LogFormat,
		OtelEnabled:          t.OtelEnabled,
		OtelExporterEndpoint: t.OtelEndpoint,
		OtelExporterProtocol: t.OtelProtocol,
		OtelSamplingRatio:    t.OtelSamplingRatio,
	}
	if out.ServiceName == "" {
		out.ServiceName = "innledger"
	}
	if out.Environment == "" {
		out.Environment = strings.TrimSpace(cfg.Environment)
	}
	if out.Version == "" {
		out.Version = strings.TrimSpace(cfg.AppVersion)
	}
	if out.OtelSamplingRatio < 0 || out.OtelSamplingRatio > 1 {
		out.OtelSamplingRatio = 0.1
	}
	return out
}

// Debug reports a local or test build, or an explicit debug log level.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	_, ok := localEnvironments[strings.ToLower(strings.TrimSpace(c.Environment))]
	return ok
}
