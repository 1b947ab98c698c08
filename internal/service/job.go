package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository
	Activities core.ActivityRepository // Required: audit trail
	Reports    core.ReportRepository   // Required: report versions, used by export
	Edits      core.EditRepository     // Required: edit history, used by export
	Drafts     core.DraftStore         // Optional: client snapshot store, cleaned on delete
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: metrics sink (StatsD-compatible)
}

// JobService provides business logic for the job aggregate.
//
// This service manages:
// - CRUD operations for discovery jobs, scoped to the owner
// - Stage answer capture with monotonic completion
// - Dynamic answer capture
// - The full-history export bundle.
type JobService struct {
	repo       core.JobRepository
	activities core.ActivityRepository
	reports    core.ReportRepository
	edits      core.EditRepository
	drafts     core.DraftStore
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Activities == nil {
		return nil, errors.New("ActivityRepository is required")
	}
	if opts.Reports == nil {
		return nil, errors.New("ReportRepository is required")
	}
	if opts.Edits == nil {
		return nil, errors.New("EditRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	return &JobService{
		repo:       opts.Repo,
		activities: opts.Activities,
		reports:    opts.Reports,
		edits:      opts.Edits,
		drafts:     opts.Drafts,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// Create starts a new draft job for the owner.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	job, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.appendActivity(ctx, model.NewActivity(job.ID, model.ActivityJobCreated, map[string]any{
		"title":      job.Title,
		"edit_quota": job.EditsRemaining,
	}))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "owner_id", job.OwnerID)
	}
	return job, nil
}

// Get returns a job owned by the caller.
func (s *JobService) Get(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	return s.ownedJob(ctx, ownerID, jobID)
}

// List returns the caller's jobs, newest first.
func (s *JobService) List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	return s.repo.List(ctx, opts)
}

// Status returns the lightweight polling view of a job.
func (s *JobService) Status(ctx context.Context, ownerID, jobID string) (*model.JobStatusSnapshot, error) {
	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	return job.StatusSnapshot(), nil
}

// Delete removes a job and everything hanging off it. The client draft
// snapshot is cleaned up best effort; Redis keys expire on their own.
func (s *JobService) Delete(ctx context.Context, ownerID, jobID string) error {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, jobID); err != nil {
		return err
	}
	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, jobID); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to delete draft snapshot", "job_id", jobID, "error", err)
		}
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job deleted", "job_id", jobID, "owner_id", ownerID)
	}
	return nil
}

// SaveStage replaces a stage's answers and marks the stage complete. Stages
// only accept writes while the job is still collecting input.
func (s *JobService) SaveStage(ctx context.Context, ownerID, jobID, stageKey string, answers model.AnswerMap) (*model.Job, error) {
	stageKey = strings.TrimSpace(stageKey)
	if stageKey == "" {
		return nil, apperrors.ValidationField("stage", "stage key is required")
	}
	if len(answers) == 0 {
		return nil, apperrors.ValidationField("answers", "stage answers are required")
	}

	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusDraft {
		return nil, apperrors.Conflict(
			fmt.Sprintf("job %s is %s; stages only accept input while draft", jobID, job.Status))
	}

	updated, err := s.repo.WriteStage(ctx, core.WriteStageParams{
		JobID:    jobID,
		StageKey: stageKey,
		Answers:  answers,
	})
	if err != nil {
		return nil, err
	}

	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityStageSaved, map[string]any{
		"answer_count": len(answers),
	}).WithStage(stageKey))
	return updated, nil
}

// SaveDynamicAnswers records the owner's answers to the generated follow-up
// questions. Unknown question ids are rejected.
func (s *JobService) SaveDynamicAnswers(ctx context.Context, ownerID, jobID string, answers model.AnswerMap) (*model.Job, error) {
	if len(answers) == 0 {
		return nil, apperrors.ValidationField("answers", "answers are required")
	}

	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusDraft {
		return nil, apperrors.Conflict(
			fmt.Sprintf("job %s is %s; answers only accept input while draft", jobID, job.Status))
	}
	if len(job.Questions) == 0 {
		return nil, apperrors.Conflict("no follow-up questions have been generated yet")
	}

	known := make(map[string]struct{}, len(job.Questions))
	for _, q := range job.Questions {
		known[q.ID] = struct{}{}
	}
	for id := range answers {
		if _, ok := known[id]; !ok {
			return nil, apperrors.ValidationField("answers", fmt.Sprintf("unknown question id %q", id))
		}
	}

	if err := s.repo.SaveDynamicAnswers(ctx, jobID, answers); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityQuestionsSaved, map[string]any{
		"answer_count": len(answers),
	}))
	return s.repo.GetByID(ctx, jobID)
}

// Export assembles the full job history bundle: the aggregate, every report
// version, every edit, and the audit trail.
func (s *JobService) Export(ctx context.Context, ownerID, jobID string) (*model.ExportBundle, error) {
	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	reports, err := s.reports.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	edits, err := s.edits.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityExported, nil))
	return &model.ExportBundle{
		Job:        job,
		Reports:    reports,
		Edits:      edits,
		Activities: activities,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// Activities returns the job's audit trail.
func (s *JobService) Activities(ctx context.Context, ownerID, jobID string) ([]*model.JobActivity, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	return s.activities.ListByJob(ctx, jobID)
}

// ownedJob loads a job and verifies the caller owns it. A mismatched owner
// gets the same answer as a missing job so job ids cannot be probed.
func (s *JobService) ownedJob(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
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

// appendActivity records an audit entry without letting audit failures block
// the action they describe.
func (s *JobService) appendActivity(ctx context.Context, activity *model.JobActivity) {
	if err := s.activities.Append(ctx, activity); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to append activity",
			"job_id", activity.JobID, "action", activity.Action, "error", err)
	}
}
