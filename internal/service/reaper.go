package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	"github.com/draftforge/discovery-engine/internal/observability/metrics"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// ReaperConfig bounds how long a submission may stay in flight.
type ReaperConfig struct {
	// Interval is the sweep cadence. Defaults to 1m.
	Interval time.Duration
	// MaxPollDuration is how long after submission an unanswered job is
	// declared timed out. Defaults to 30m.
	MaxPollDuration time.Duration
	// BatchSize caps how many jobs one sweep fails. Defaults to 100.
	BatchSize int
}

func (c *ReaperConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.MaxPollDuration <= 0 {
		c.MaxPollDuration = 30 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
}

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository
	Activities core.ActivityRepository // Required: audit trail
	Poller     PollStarter             // Optional: poll loops to stop for timed-out jobs
	Config     ReaperConfig            // Reaper timing configuration
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: metrics sink (StatsD-compatible)
}

// ReaperService is the poll-timeout backstop: a provider that never reaches a
// terminal state cannot pin jobs in flight forever. Jobs submitted longer ago
// than MaxPollDuration are failed in batches.
type ReaperService struct {
	repo       core.JobRepository
	activities core.ActivityRepository
	poller     PollStarter
	config     ReaperConfig
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewReaperService constructs a new ReaperService.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Activities == nil {
		return nil, errors.New("ActivityRepository is required")
	}
	opts.Config.applyDefaults()

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reaper_service")
		logger.Debug("ReaperService initialized",
			"interval", opts.Config.Interval,
			"max_poll_duration", opts.Config.MaxPollDuration,
			"batch_size", opts.Config.BatchSize,
		)
	}

	return &ReaperService{
		repo:       opts.Repo,
		activities: opts.Activities,
		poller:     opts.Poller,
		config:     opts.Config,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewReaperService constructs a new ReaperService and panics on error.
func MustNewReaperService(opts ReaperServiceOptions) *ReaperService {
	svc, err := NewReaperService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ReaperService: %v", err))
	}
	return svc
}

// Run sweeps at the configured interval until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReaperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reaper service", "interval", s.config.Interval)
	}

	// Stagger instances that start together.
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if err := s.Sweep(ctx); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "initial sweep failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil && s.logger != nil {
				s.logger.ErrorContext(ctx, "sweep failed", "error", err)
			}
		}
	}
}

// Sweep fails every in-flight job whose submission predates the timeout
// cutoff and stops their poll loops.
func (s *ReaperService) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.config.MaxPollDuration)
	ids, err := s.repo.FailStaleSubmissions(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("fail stale submissions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	for _, id := range ids {
		if s.poller != nil {
			s.poller.Stop(id)
		}
		if aerr := s.activities.Append(ctx, model.NewActivity(id, model.ActivityTimedOut, map[string]any{
			"max_poll_duration": s.config.MaxPollDuration.String(),
		})); aerr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to append timeout activity", "job_id", id, "error", aerr)
		}
		metrics.EmitLifecycle(s.metrics, metrics.LifecycleMetric{
			Transition: metrics.TransitionTimedOut,
			Result:     metrics.ResultSuccess,
		})
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "timed out stale submissions",
			"count", len(ids), "cutoff", cutoff)
	}
	return nil
}

// waitWithJitter delays up to 10% of the interval.
func (s *ReaperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
