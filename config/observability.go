package config

import "strings"

// ObservabilityConfig contains observability configuration.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig `envPrefix:"METRICS_"`
}

// ObservabilityMetricsConfig contains statsd metrics configuration.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"ENABLED" envDefault:"false"`
	StatsdAddress string `env:"STATSD_ADDRESS" envDefault:"localhost:8125"`
	Prefix        string `env:"PREFIX" envDefault:"draftforge"`
}

// Sanitize applies guardrails to observability configuration values.
func (o *ObservabilityConfig) Sanitize() {
	o.Metrics.Sanitize()
}

// Sanitize trims the statsd address and disables metrics when no address
// is configured.
func (m *ObservabilityMetricsConfig) Sanitize() {
	m.StatsdAddress = strings.TrimSpace(m.StatsdAddress)
	if m.StatsdAddress == "" {
		m.Enabled = false
	}
}

// IsEnabled reports whether metrics emission is turned on.
func (m ObservabilityMetricsConfig) IsEnabled() bool {
	return m.Enabled && m.StatsdAddress != ""
}
