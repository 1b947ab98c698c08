// Package reaper provides the adapter for running the poll-timeout reaper.
package reaper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/data"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
	"github.com/draftforge/discovery-engine/internal/service"
)

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB     *sql.DB
	Config service.ReaperConfig
	Logger *slog.Logger

	// Optional dependency injection for testing/decoupling
	Repo       core.JobRepository
	Activities core.ActivityRepository
	Poller     service.PollStarter
	Metrics    statsd.Sink
}

// Runner wires and runs the reaper sweep loop.
type Runner struct {
	reaper *service.ReaperService
	logger *slog.Logger
}

// NewRunner creates a new reaper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	repo := opts.Repo
	activities := opts.Activities
	if repo == nil || activities == nil {
		if opts.DB == nil {
			return nil, errors.New("database connection is required")
		}
		if repo == nil {
			repo = data.NewJobRepo(opts.DB, data.RepoConfig{Logger: opts.Logger})
		}
		if activities == nil {
			activities = data.NewActivityRepo(opts.DB, data.RepoConfig{Logger: opts.Logger})
		}
	}

	reaperSvc, err := service.NewReaperService(service.ReaperServiceOptions{
		Repo:       repo,
		Activities: activities,
		Poller:     opts.Poller,
		Config:     opts.Config,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("wire reaper service: %w", err)
	}

	return &Runner{reaper: reaperSvc, logger: opts.Logger}, nil
}

// Run starts the reaper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting reaper runner")
	return r.reaper.Run(ctx)
}
