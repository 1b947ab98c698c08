package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/data"
	"github.com/draftforge/discovery-engine/internal/domain/generation"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/observability/metrics"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
	"github.com/draftforge/discovery-engine/internal/provider"
)

// QuestionServiceOptions groups dependencies for QuestionService.
type QuestionServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository
	Provider   core.Provider           // Required: generation provider
	Activities core.ActivityRepository // Required: audit trail
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: metrics sink (StatsD-compatible)

	// Model names the provider model for question generation.
	Model string
	// QuestionCount is how many follow-up questions to request. Defaults to 5.
	QuestionCount int
	// PollInterval is the synchronous wait poll cadence. Defaults to 1s.
	PollInterval time.Duration
	// MaxWait bounds the synchronous round trip. Defaults to 2m.
	MaxWait time.Duration
}

// QuestionService generates the dynamic follow-up questions from the
// consolidated stage answers. Generation blocks the caller: questions gate
// the next step of the flow, so there is no value in handing back a handle.
type QuestionService struct {
	repo       core.JobRepository
	provider   core.Provider
	activities core.ActivityRepository
	logger     *slog.Logger
	metrics    statsd.Sink

	model         string
	questionCount int
	pollInterval  time.Duration
	maxWait       time.Duration
}

// NewQuestionService constructs a new QuestionService.
func NewQuestionService(opts QuestionServiceOptions) (*QuestionService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("Provider is required")
	}
	if opts.Activities == nil {
		return nil, errors.New("ActivityRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "question_service")
	}

	return &QuestionService{
		repo:          opts.Repo,
		provider:      opts.Provider,
		activities:    opts.Activities,
		logger:        logger,
		metrics:       opts.Metrics,
		model:         opts.Model,
		questionCount: opts.QuestionCount,
		pollInterval:  opts.PollInterval,
		maxWait:       opts.MaxWait,
	}, nil
}

// MustNewQuestionService constructs a new QuestionService and panics on error.
func MustNewQuestionService(opts QuestionServiceOptions) *QuestionService {
	svc, err := NewQuestionService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create QuestionService: %v", err))
	}
	return svc
}

// Generate produces the follow-up question list for a job. Questions are
// immutable once stored: repeat calls return the stored list without another
// provider round trip, and a concurrent generation losing the store race
// falls back to the winner's list.
func (s *QuestionService) Generate(ctx context.Context, ownerID, jobID string) ([]model.DynamicQuestion, error) {
	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if len(job.Questions) > 0 {
		return job.Questions, nil
	}
	if job.Status != model.JobStatusDraft {
		return nil, apperrors.Conflict(
			fmt.Sprintf("job %s is %s; questions are generated while draft", jobID, job.Status))
	}

	answers := job.ConsolidatedAnswers()
	if len(answers) == 0 {
		return nil, apperrors.Validation("complete at least one stage before generating questions")
	}

	prompt := generation.BuildQuestionPrompt(generation.QuestionPromptInput{
		Answers: answers,
		Count:   s.questionCount,
	})

	raw, err := provider.RunSync(ctx, s.provider, core.SubmitRequest{
		Prompt: prompt,
		Model:  s.model,
		Metadata: map[string]string{
			"job_id":  jobID,
			"purpose": "follow_up_questions",
		},
	}, provider.RunSyncOptions{
		PollInterval: s.pollInterval,
		MaxWait:      s.maxWait,
	})
	if err != nil {
		metrics.EmitQuestionGeneration(s.metrics, 0, err)
		return nil, err
	}

	questions, err := generation.ParseQuestionSchema(raw)
	if err != nil {
		metrics.EmitQuestionGeneration(s.metrics, 0, err)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "question generation returned unusable output",
				"job_id", jobID, "error", err, "snippet", apperrors.GetSnippet(err))
		}
		return nil, err
	}

	if err := s.repo.SaveQuestions(ctx, jobID, questions); err != nil {
		if errors.Is(err, data.ErrQuestionsAlreadySet) {
			stored, getErr := s.repo.GetByID(ctx, jobID)
			if getErr != nil {
				return nil, getErr
			}
			return stored.Questions, nil
		}
		return nil, err
	}

	metrics.EmitQuestionGeneration(s.metrics, len(questions), nil)
	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityQuestionsGenerated, map[string]any{
		"question_count": len(questions),
	}))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "follow-up questions generated",
			"job_id", jobID, "count", len(questions))
	}
	return questions, nil
}

func (s *QuestionService) ownedJob(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthenticated("owner identity is required")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		return nil, apperrors.NotFoundf("job %s not found", jobID)
	}
	return job, nil
}

func (s *QuestionService) appendActivity(ctx context.Context, activity *model.JobActivity) {
	if err := s.activities.Append(ctx, activity); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to append activity",
			"job_id", activity.JobID, "action", activity.Action, "error", err)
	}
}
