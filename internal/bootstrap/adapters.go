package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/draftforge/discovery-engine/config"
	"github.com/draftforge/discovery-engine/internal/adapters/reaper"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
	"github.com/draftforge/discovery-engine/internal/service"
)

// ReaperRunnerConfig contains configuration for the reaper runner.
type ReaperRunnerConfig struct {
	DB      *sql.DB
	Config  config.ReaperConfig
	Logger  *slog.Logger
	Poller  service.PollStarter
	Metrics statsd.Sink
}

// RunReaper starts the poll-timeout reaper and blocks until the context is
// cancelled.
func RunReaper(ctx context.Context, cfg ReaperRunnerConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		DB: cfg.DB,
		Config: service.ReaperConfig{
			Interval:        cfg.Config.Interval,
			MaxPollDuration: cfg.Config.MaxPollDuration,
			BatchSize:       cfg.Config.BatchSize,
		},
		Logger:  cfg.Logger,
		Poller:  cfg.Poller,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}

	return runner.Run(ctx)
}
