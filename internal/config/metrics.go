package config

import "fmt"

// MetricsConfig controls telemetry export. The Prometheus scrape endpoint is
// served on its own port, apart from the status API.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

func loadMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, true),
		Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
		OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
		ServiceName:  envOrDefault(envOtelService, defaultServiceName),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
	}
}

func (m MetricsConfig) problems(apiPort string) []string {
	if !m.Enabled {
		return nil
	}
	var out []string
	if m.Port == "" {
		out = append(out, envMetricsPort+" is required when metrics are enabled")
	} else if m.Port == apiPort {
		out = append(out, fmt.Sprintf("%s %s clashes with %s", envMetricsPort, m.Port, envPort))
	}
	return out
}
