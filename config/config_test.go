package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
			expectError: false,
		},
		{
			name:  "single service - poller",
			input: "poller",
			expected: map[ServiceMode]bool{
				ServiceModePoller: true,
			},
			expectError: false,
		},
		{
			name:  "single service - reaper",
			input: "reaper",
			expected: map[ServiceMode]bool{
				ServiceModeReaper: true,
			},
			expectError: false,
		},
		{
			name:  "all services",
			input: "http,poller,reaper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModePoller: true,
				ServiceModeReaper: true,
			},
			expectError: false,
		},
		{
			name:  "services with spaces",
			input: " http , poller , reaper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModePoller: true,
				ServiceModeReaper: true,
			},
			expectError: false,
		},
		{
			name:  "duplicate services",
			input: "http,http,poller",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:   true,
				ServiceModePoller: true,
			},
			expectError: false,
		},
		{
			name:        "empty string",
			input:       "",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "only spaces and commas",
			input:       " , , ",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "invalid service name",
			input:       "http,invalid-service",
			expected:    nil,
			expectError: true,
		},
		{
			name:        "mixed valid and invalid",
			input:       "http,poller,invalid",
			expected:    nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseServices(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d services, got %d", len(tt.expected), len(result))
				return
			}

			for service, expected := range tt.expected {
				if result[service] != expected {
					t.Errorf("expected service %s to be %v, got %v", service, expected, result[service])
				}
			}
		})
	}
}

func TestConfig_ServiceEnabledMethods(t *testing.T) {
	tests := []struct {
		name           string
		services       string
		expectedHTTP   bool
		expectedPoller bool
		expectedReaper bool
	}{
		{
			name:           "http only",
			services:       "http",
			expectedHTTP:   true,
			expectedPoller: false,
			expectedReaper: false,
		},
		{
			name:           "http and poller",
			services:       "http,poller",
			expectedHTTP:   true,
			expectedPoller: true,
			expectedReaper: false,
		},
		{
			name:           "all services",
			services:       "http,poller,reaper",
			expectedHTTP:   true,
			expectedPoller: true,
			expectedReaper: true,
		},
		{
			name:           "reaper only",
			services:       "reaper",
			expectedHTTP:   false,
			expectedPoller: false,
			expectedReaper: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Services: tt.services}

			if cfg.IsHTTPServerEnabled() != tt.expectedHTTP {
				t.Errorf("IsHTTPServerEnabled(): expected %v, got %v", tt.expectedHTTP, cfg.IsHTTPServerEnabled())
			}

			if cfg.IsPollerEnabled() != tt.expectedPoller {
				t.Errorf("IsPollerEnabled(): expected %v, got %v", tt.expectedPoller, cfg.IsPollerEnabled())
			}

			if cfg.IsReaperEnabled() != tt.expectedReaper {
				t.Errorf("IsReaperEnabled(): expected %v, got %v", tt.expectedReaper, cfg.IsReaperEnabled())
			}
		})
	}
}

func TestConfig_ServiceEnabledMethodsWithInvalidConfig(t *testing.T) {
	cfg := AppConfig{Services: "invalid-service"}

	// All methods should return false when configuration is invalid
	if cfg.IsHTTPServerEnabled() {
		t.Errorf("IsHTTPServerEnabled() with invalid config: expected false, got true")
	}

	if cfg.IsPollerEnabled() {
		t.Errorf("IsPollerEnabled() with invalid config: expected false, got true")
	}

	if cfg.IsReaperEnabled() {
		t.Errorf("IsReaperEnabled() with invalid config: expected false, got true")
	}
}

func TestAppConfig_ParseProviderEnv(t *testing.T) {
	t.Setenv("PROVIDER_BASE_URL", "https://generation.example.com")
	t.Setenv("PROVIDER_API_KEY", "secret-key")
	t.Setenv("PROVIDER_MODEL", "report-large")
	t.Setenv("PROVIDER_QUESTION_COUNT", "7")
	t.Setenv("PROVIDER_HIGHLIGHTS", "goals,constraints")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Provider.BaseURL != "https://generation.example.com" {
		t.Errorf("unexpected base url: %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.APIKey != "secret-key" {
		t.Errorf("unexpected api key: %q", cfg.Provider.APIKey)
	}
	if cfg.Provider.QuestionCount != 7 {
		t.Errorf("unexpected question count: %d", cfg.Provider.QuestionCount)
	}
	// QuestionModel falls back to the report model when unset.
	if cfg.Provider.QuestionModel != "report-large" {
		t.Errorf("unexpected question model: %q", cfg.Provider.QuestionModel)
	}
	if len(cfg.Provider.Highlights) != 2 || cfg.Provider.Highlights[0] != "goals" {
		t.Errorf("unexpected highlights: %v", cfg.Provider.Highlights)
	}
}

func TestJobsConfig_Sanitize(t *testing.T) {
	cfg := JobsConfig{
		DefaultEditQuota:       -1,
		PollInterval:           50 * time.Millisecond,
		SessionSaveQuietPeriod: 0,
	}

	cfg.Sanitize()

	if cfg.DefaultEditQuota != 0 {
		t.Errorf("expected edit quota clamped to 0, got %d", cfg.DefaultEditQuota)
	}
	if cfg.PollInterval < time.Second {
		t.Errorf("expected poll interval clamped to >= 1s, got %v", cfg.PollInterval)
	}
	if cfg.SessionSaveQuietPeriod < 100*time.Millisecond {
		t.Errorf("expected quiet period clamped to >= 100ms, got %v", cfg.SessionSaveQuietPeriod)
	}
}

func TestReaperConfig_Sanitize(t *testing.T) {
	cfg := ReaperConfig{
		Interval:        time.Second,
		MaxPollDuration: time.Second,
		BatchSize:       0,
	}

	cfg.Sanitize()

	if cfg.Interval < 10*time.Second {
		t.Errorf("expected interval clamped to >= 10s, got %v", cfg.Interval)
	}
	if cfg.MaxPollDuration < time.Minute {
		t.Errorf("expected max poll duration clamped to >= 1m, got %v", cfg.MaxPollDuration)
	}
	if cfg.BatchSize != 1 {
		t.Errorf("expected batch size clamped to 1, got %d", cfg.BatchSize)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
}
