package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/draftforge/discovery-engine/config"
	"github.com/draftforge/discovery-engine/internal/adapters/poller"
	redisadapter "github.com/draftforge/discovery-engine/internal/adapters/redis"
	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/data"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
	"github.com/draftforge/discovery-engine/internal/provider"
	"github.com/draftforge/discovery-engine/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.JobService
	Questions     *service.QuestionService
	Submissions   *service.SubmissionService
	Edits         *service.EditService
	Resume        *service.ResumeService
	Poller        *poller.Manager
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB         *sql.DB
	Redis      redis.UniversalClient
	JobRepo    *data.JobRepo
	ReportRepo *data.ReportRepo
	EditRepo   *data.EditRepo
	Activities *data.ActivityRepo
	Drafts     *redisadapter.DraftStore
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(deps *ServiceDeps) *serviceRepositories {
	repoCfg := data.RepoConfig{Logger: deps.Logger}
	if deps.Config != nil {
		repoCfg.DefaultEditQuota = deps.Config.Jobs.DefaultEditQuota
	}

	var drafts *redisadapter.DraftStore
	if deps.RedisClient != nil {
		ttl := time.Duration(0)
		if deps.Config != nil {
			ttl = deps.Config.Redis.DraftTTL
		}
		drafts = redisadapter.NewDraftStoreWithOptions(deps.RedisClient, redisadapter.DraftStoreOptions{TTL: ttl})
	}

	return &serviceRepositories{
		DB:         deps.DB,
		Redis:      deps.RedisClient,
		JobRepo:    data.NewJobRepo(deps.DB, repoCfg),
		ReportRepo: data.NewReportRepo(deps.DB, repoCfg),
		EditRepo:   data.NewEditRepo(deps.DB, repoCfg),
		Activities: data.NewActivityRepo(deps.DB, repoCfg),
		Drafts:     drafts,
	}
}

// NewServices wires the full service graph for the enabled process modes.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service deps are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := deps.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	observability := buildObservability(logger, appCfg.Observability)
	repos := buildRepositories(deps)

	providerClient, err := provider.NewClient(provider.Config{
		BaseURL: appCfg.Provider.BaseURL,
		APIKey:  appCfg.Provider.APIKey,
		Timeout: appCfg.Provider.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire provider client: %w", err)
	}

	// The poll manager ticks the submission service, and the submission
	// service starts loops on the manager. The tick closure breaks the cycle.
	var submissions *service.SubmissionService
	pollManager, err := poller.NewManager(poller.Options{
		Tick: func(ctx context.Context, jobID, externalID string) (bool, error) {
			return submissions.PollTick(ctx, jobID, externalID)
		},
		Resumer:  repos.JobRepo,
		Interval: appCfg.Jobs.PollInterval,
		Logger:   logger,
		Metrics:  observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire poll manager: %w", err)
	}

	submissions = service.MustNewSubmissionService(service.SubmissionServiceOptions{
		Repo:       repos.JobRepo,
		Provider:   providerClient,
		Activities: repos.Activities,
		Poller:     pollManager,
		Logger:     logger,
		Metrics:    observability.MetricsSink,
		Model:      appCfg.Provider.Model,
		Highlights: appCfg.Provider.Highlights,
	})

	jobs := service.MustNewJobService(service.JobServiceOptions{
		Repo:       repos.JobRepo,
		Activities: repos.Activities,
		Reports:    repos.ReportRepo,
		Edits:      repos.EditRepo,
		Drafts:     draftStoreOrNil(repos.Drafts),
		Logger:     logger,
		Metrics:    observability.MetricsSink,
	})

	questions := service.MustNewQuestionService(service.QuestionServiceOptions{
		Repo:          repos.JobRepo,
		Provider:      providerClient,
		Activities:    repos.Activities,
		Logger:        logger,
		Metrics:       observability.MetricsSink,
		Model:         appCfg.Provider.QuestionModel,
		QuestionCount: appCfg.Provider.QuestionCount,
		PollInterval:  appCfg.Jobs.PollInterval,
		MaxWait:       appCfg.Provider.QuestionMaxWait,
	})

	edits := service.MustNewEditService(service.EditServiceOptions{
		Repo:       repos.JobRepo,
		Edits:      repos.EditRepo,
		Reports:    repos.ReportRepo,
		Activities: repos.Activities,
		Logger:     logger,
		Metrics:    observability.MetricsSink,
	})

	var resume *service.ResumeService
	if repos.Drafts != nil {
		resume = service.MustNewResumeService(service.ResumeServiceOptions{
			Repo:            repos.JobRepo,
			Drafts:          repos.Drafts,
			Activities:      repos.Activities,
			Poller:          pollManager,
			Logger:          logger,
			Metrics:         observability.MetricsSink,
			SaveQuietPeriod: appCfg.Jobs.SessionSaveQuietPeriod,
		})
	}

	return ServiceContainer{
		Jobs:          jobs,
		Questions:     questions,
		Submissions:   submissions,
		Edits:         edits,
		Resume:        resume,
		Poller:        pollManager,
		Observability: observability,
	}, nil
}

// draftStoreOrNil keeps a typed-nil *DraftStore out of the core.DraftStore
// interface value.
func draftStoreOrNil(s *redisadapter.DraftStore) core.DraftStore {
	if s == nil {
		return nil
	}
	return s
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. Blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	var server *http.Server
	if enabled[config.ServiceModeHTTP] {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	if enabled[config.ServiceModePoller] && cfg.Services.Poller != nil {
		logger.Info("background service started", "service", "poller")
		group.Go(func() error {
			if err := cfg.Services.Poller.Run(groupCtx); err != nil {
				return fmt.Errorf("poller failed: %w", err)
			}
			return nil
		})
	}

	if enabled[config.ServiceModeReaper] {
		logger.Info("background service started", "service", "reaper")
		group.Go(func() error {
			if err := RunReaper(groupCtx, ReaperRunnerConfig{
				DB:      cfg.DB,
				Config:  cfg.Config.Reaper,
				Logger:  logger,
				Poller:  cfg.Services.Poller,
				Metrics: cfg.Services.Observability.MetricsSink,
			}); err != nil {
				return fmt.Errorf("reaper failed: %w", err)
			}
			return nil
		})
	}

	<-groupCtx.Done()
	logger.Info("shutting down services...")

	if server != nil {
		if err := ShutdownHTTPServer(ShutdownConfig{
			Context:       context.Background(),
			Server:        server,
			ResumeService: cfg.Services.Resume,
			Timeout:       cfg.Config.HTTP.ShutdownTimeout,
			Logger:        logger,
		}); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	if err := group.Wait(); err != nil {
		logger.Error("service error", "error", err)
		return err
	}
	return nil
}
