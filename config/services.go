package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModePoller runs the background poll loops for submitted jobs.
	ServiceModePoller ServiceMode = "poller"
	// ServiceModeReaper runs the poll-timeout reaper.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModePoller, ServiceModeReaper}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModePoller, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, poller, reaper)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// JobsConfig contains job lifecycle configuration.
type JobsConfig struct {
	// DefaultEditQuota is the edit allowance for new jobs that do not
	// specify one.
	DefaultEditQuota int `env:"JOBS_DEFAULT_EDIT_QUOTA" envDefault:"3"`

	// PollInterval is the cadence of the background status poll loops.
	PollInterval time.Duration `env:"JOBS_POLL_INTERVAL" envDefault:"3s"`

	// SessionSaveQuietPeriod is how long session-state saves are debounced
	// before the durable write.
	SessionSaveQuietPeriod time.Duration `env:"JOBS_SESSION_SAVE_QUIET_PERIOD" envDefault:"1500ms"`
}

// Sanitize applies guardrails to job lifecycle configuration values.
func (j *JobsConfig) Sanitize() {
	if j.DefaultEditQuota < 0 {
		j.DefaultEditQuota = 0
	}
	if j.PollInterval < time.Second {
		j.PollInterval = time.Second
	}
	if j.SessionSaveQuietPeriod < 100*time.Millisecond {
		j.SessionSaveQuietPeriod = 100 * time.Millisecond
	}
}

// ReaperConfig contains poll-timeout reaper configuration.
type ReaperConfig struct {
	// Interval is the reaper sweep interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1m"`

	// MaxPollDuration is how long after submission an in-flight job may go
	// unanswered before it is failed as timed out.
	MaxPollDuration time.Duration `env:"REAPER_MAX_POLL_DURATION" envDefault:"30m"`

	// BatchSize is the maximum number of jobs to fail per sweep.
	// Batching prevents long locks and I/O spikes on large tables.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"100"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	if r.Interval < 10*time.Second {
		r.Interval = 10 * time.Second
	}
	if r.MaxPollDuration < time.Minute {
		r.MaxPollDuration = time.Minute
	}
	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
	if r.BatchSize > 10000 {
		r.BatchSize = 10000
	}
}
