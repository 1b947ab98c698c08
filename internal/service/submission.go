package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/generation"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/observability/metrics"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// PollStarter controls the background poll loop for a submitted job.
type PollStarter interface {
	Start(jobID, externalID string)
	Stop(jobID string)
}

// SubmissionServiceOptions groups dependencies for SubmissionService.
type SubmissionServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository
	Provider   core.Provider           // Required: generation provider
	Activities core.ActivityRepository // Required: audit trail
	Poller     PollStarter             // Optional: background poll loops
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: metrics sink (StatsD-compatible)

	// Model names the provider model for report generation.
	Model string
	// Highlights are selector expressions pulled out of the consolidated
	// answers and emphasised in the report prompt.
	Highlights []string
}

// SubmissionService owns the submit-and-poll half of the job lifecycle:
// handing the consolidated answers to the generation provider, folding poll
// observations back onto the job, and applying the terminal transitions.
type SubmissionService struct {
	repo       core.JobRepository
	provider   core.Provider
	activities core.ActivityRepository
	poller     PollStarter
	logger     *slog.Logger
	metrics    statsd.Sink

	model      string
	highlights []string
}

// NewSubmissionService constructs a new SubmissionService.
func NewSubmissionService(opts SubmissionServiceOptions) (*SubmissionService, error) {
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
		logger = opts.Logger.With("component", "submission_service")
	}

	return &SubmissionService{
		repo:       opts.Repo,
		provider:   opts.Provider,
		activities: opts.Activities,
		poller:     opts.Poller,
		logger:     logger,
		metrics:    opts.Metrics,
		model:      opts.Model,
		highlights: opts.Highlights,
	}, nil
}

// MustNewSubmissionService constructs a new SubmissionService and panics on error.
func MustNewSubmissionService(opts SubmissionServiceOptions) *SubmissionService {
	svc, err := NewSubmissionService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create SubmissionService: %v", err))
	}
	return svc
}

// SubmitParams carries the caller-controlled submission inputs.
type SubmitParams struct {
	ReportKind model.ReportKind
	// RenderedPrompt, when set, replaces the assembled prompt preamble. The
	// client owns the template catalog and renders it before submitting.
	RenderedPrompt string
	// Model overrides the configured provider model for this submission.
	Model string
}

// Submit hands the job's consolidated answers to the provider and moves the
// job to queued. The stored provider handle survives restarts, so a crashed
// process can re-attach its poll loop later.
func (s *SubmissionService) Submit(ctx context.Context, ownerID, jobID string, params SubmitParams) (*model.Job, error) {
	kind := params.ReportKind
	if !kind.Valid() {
		return nil, apperrors.ValidationField("report_kind", fmt.Sprintf("invalid report kind %q", kind))
	}

	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusDraft {
		return nil, apperrors.Conflict(
			fmt.Sprintf("job %s is %s and cannot be submitted", jobID, job.Status))
	}

	answers := job.ConsolidatedAnswers()
	if len(answers) == 0 {
		return nil, apperrors.Validation("complete at least one stage before submitting")
	}

	prompt := generation.BuildReportPrompt(generation.ReportPromptInput{
		Title:     job.Title,
		Kind:      kind,
		Answers:   answers,
		Rendered:  params.RenderedPrompt,
		Highlight: s.highlights,
	})

	providerModel := s.model
	if params.Model != "" {
		providerModel = params.Model
	}

	result, err := s.provider.Submit(ctx, core.SubmitRequest{
		Prompt: prompt,
		Model:  providerModel,
		Metadata: map[string]string{
			"job_id":      jobID,
			"report_kind": string(kind),
		},
	})
	if err != nil {
		metrics.EmitLifecycle(s.metrics, metrics.LifecycleMetric{
			Transition: metrics.TransitionSubmitted,
			Result:     metrics.ResultError,
			Err:        err,
		})
		return nil, err
	}

	if err := s.repo.MarkSubmitted(ctx, core.MarkSubmittedParams{
		JobID:      jobID,
		ExternalID: result.JobID,
		ReportKind: kind,
	}); err != nil {
		// The provider accepted work we cannot track. Log loudly; the orphan
		// generation finishes on the provider side and is never collected.
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "submission accepted but could not be recorded",
				"job_id", jobID, "external_id", result.JobID, "error", err)
		}
		return nil, err
	}

	if s.poller != nil {
		s.poller.Start(jobID, result.JobID)
	}

	metrics.EmitLifecycle(s.metrics, metrics.LifecycleMetric{
		Transition: metrics.TransitionSubmitted,
		Result:     metrics.ResultSuccess,
	})
	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivitySubmitted, map[string]any{
		"external_id": result.JobID,
		"report_kind": string(kind),
	}))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job submitted",
			"job_id", jobID, "external_id", result.JobID, "report_kind", kind)
	}

	return s.repo.GetByID(ctx, jobID)
}

// Cancel stops an in-flight submission. The provider keeps generating; its
// late result is dropped by the terminal-transition guard.
func (s *SubmissionService) Cancel(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}

	applied, err := s.repo.CancelGeneration(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.Conflict(fmt.Sprintf("job %s is not in flight", jobID))
	}

	if s.poller != nil {
		s.poller.Stop(jobID)
	}
	metrics.EmitLifecycle(s.metrics, metrics.LifecycleMetric{
		Transition: metrics.TransitionCancelled,
		Result:     metrics.ResultSuccess,
	})
	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityCancelled, nil))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job cancelled", "job_id", jobID)
	}
	return s.repo.GetByID(ctx, jobID)
}

// PollTick performs one poll round trip for an in-flight job. Returns true
// when the loop should stop: the job reached a terminal state here or was
// already finished by someone else. Provider errors of any kind keep the loop
// alive; the reaper is the backstop for a provider that never answers.
func (s *SubmissionService) PollTick(ctx context.Context, jobID, externalID string) (bool, error) {
	status, err := s.provider.GetStatus(ctx, externalID)
	if err != nil {
		// Poll failures never fail the job, whatever their shape: a handle
		// the provider claims not to know may still be an eventually
		// consistent lookup. The reaper fails jobs that stay stuck.
		result := "permanent_error"
		if apperrors.IsProviderTransient(err) {
			result = "transient_error"
		}
		metrics.EmitPoll(s.metrics, result)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "poll failed, will retry",
				"job_id", jobID, "external_id", externalID, "error", err)
		}
		return false, nil
	}

	switch status.Status {
	case model.ExternalCompleted:
		metrics.EmitPoll(s.metrics, "completed")
		return s.completeJob(ctx, jobID, status.Result)
	case model.ExternalFailed:
		metrics.EmitPoll(s.metrics, "failed")
		msg := status.Error
		if msg == "" {
			msg = "generation failed"
		}
		return s.failJob(ctx, jobID, msg, time.Duration(0))
	default:
		metrics.EmitPoll(s.metrics, "in_flight")
		if err := s.repo.UpdateExternalProgress(ctx, core.ExternalProgressParams{
			JobID:    jobID,
			Status:   status.Status,
			Progress: status.Progress,
		}); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to record poll progress", "job_id", jobID, "error", err)
		}
		return false, nil
	}
}

// completeJob parses the provider result and applies the succeeded terminal
// transition. An unusable result still completes the job, with placeholder
// content and a degraded marker, so a finished generation is never lost to a
// formatting problem.
func (s *SubmissionService) completeJob(ctx context.Context, jobID, rawResult string) (bool, error) {
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Deleted while in flight; nothing left to finish.
			return true, nil
		}
		return false, err
	}

	kind := model.ReportKindPreliminary
	if job.ExternalReportKind != nil {
		kind = *job.ExternalReportKind
	}

	content, degraded := generation.ParseReportResult(rawResult)
	generatedBy := model.GeneratedByProvider
	if degraded {
		generatedBy = model.GeneratedByFallback
		if s.logger != nil {
			s.logger.WarnContext(ctx, "provider result unusable, storing placeholder",
				"job_id", jobID, "snippet", generation.Snippet(rawResult))
		}
	}

	applied, err := s.repo.CompleteGeneration(ctx, core.CompleteGenerationParams{
		JobID:       jobID,
		ReportKind:  kind,
		Content:     content,
		GeneratedBy: generatedBy,
		Degraded:    degraded,
	})
	if err != nil {
		return false, err
	}
	if !applied {
		// Lost the race against a cancel, a timeout, or another poller.
		return true, nil
	}

	metrics.EmitLifecycle(s.metrics, metrics.LifecycleMetric{
		Transition: metrics.TransitionCompleted,
		Result:     metrics.ResultSuccess,
		Duration:   sinceSubmission(job),
		Degraded:   degraded,
	})
	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityCompleted, map[string]any{
		"report_kind": string(kind),
		"degraded":    degraded,
	}))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job completed",
			"job_id", jobID, "report_kind", kind, "degraded", degraded)
	}
	return true, nil
}

func (s *SubmissionService) failJob(ctx context.Context, jobID, errMsg string, elapsed time.Duration) (bool, error) {
	applied, err := s.repo.FailGeneration(ctx, jobID, errMsg)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return true, nil
		}
		return false, err
	}
	if !applied {
		return true, nil
	}

	metrics.EmitLifecycle(s.metrics, metrics.LifecycleMetric{
		Transition: metrics.TransitionFailed,
		Result:     metrics.ResultSuccess,
		Duration:   elapsed,
	})
	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityFailed, map[string]any{
		"error": errMsg,
	}))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job failed", "job_id", jobID, "error", errMsg)
	}
	return true, nil
}

func sinceSubmission(job *model.Job) time.Duration {
	if job.SubmittedAt == nil {
		return 0
	}
	return time.Since(*job.SubmittedAt)
}

func (s *SubmissionService) ownedJob(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
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

func (s *SubmissionService) appendActivity(ctx context.Context, activity *model.JobActivity) {
	if err := s.activities.Append(ctx, activity); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to append activity",
			"job_id", activity.JobID, "action", activity.Action, "error", err)
	}
}
