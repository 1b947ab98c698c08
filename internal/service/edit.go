package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// EditServiceOptions groups dependencies for EditService.
type EditServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository, for ownership checks
	Edits      core.EditRepository     // Required: quota-enforced edit persistence
	Reports    core.ReportRepository   // Required: version reads
	Activities core.ActivityRepository // Required: audit trail
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: metrics sink (StatsD-compatible)
}

// EditService applies owner edits to generated reports under the per-job
// quota and exposes the edit and version history.
type EditService struct {
	repo       core.JobRepository
	edits      core.EditRepository
	reports    core.ReportRepository
	activities core.ActivityRepository
	logger     *slog.Logger
	metrics    statsd.Sink
}

// NewEditService constructs a new EditService.
func NewEditService(opts EditServiceOptions) (*EditService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Edits == nil {
		return nil, errors.New("EditRepository is required")
	}
	if opts.Reports == nil {
		return nil, errors.New("ReportRepository is required")
	}
	if opts.Activities == nil {
		return nil, errors.New("ActivityRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "edit_service")
	}

	return &EditService{
		repo:       opts.Repo,
		edits:      opts.Edits,
		reports:    opts.Reports,
		activities: opts.Activities,
		logger:     logger,
		metrics:    opts.Metrics,
	}, nil
}

// MustNewEditService constructs a new EditService and panics on error.
func MustNewEditService(opts EditServiceOptions) *EditService {
	svc, err := NewEditService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create EditService: %v", err))
	}
	return svc
}

// Edit applies one owner edit to a report. The quota check, the edit record,
// the overlay, and the new report version commit atomically; a rejected edit
// leaves no trace and burns no quota.
func (s *EditService) Edit(ctx context.Context, ownerID, jobID string, req *model.EditReportRequest) (*model.JobEdit, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}

	edit, err := s.edits.ApplyEdit(ctx, jobID, req)
	if err != nil {
		if apperrors.IsEditQuotaExceeded(err) && s.metrics != nil {
			s.metrics.Count("job.edit_quota_exceeded", 1, nil)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Count("job.report_edited", 1, map[string]string{
			"report_kind": string(edit.ReportKind),
		})
	}
	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityReportEdited, map[string]any{
		"report_kind": string(edit.ReportKind),
		"edit_number": edit.EditNumber,
		"ai_assisted": edit.AIAssisted,
	}))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "report edited",
			"job_id", jobID, "report_kind", edit.ReportKind, "edit_number", edit.EditNumber)
	}
	return edit, nil
}

// ListEdits returns the job's edit history in edit order.
func (s *EditService) ListEdits(ctx context.Context, ownerID, jobID string) ([]*model.JobEdit, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	return s.edits.ListByJob(ctx, jobID)
}

// ListReports returns every stored report version for the job.
func (s *EditService) ListReports(ctx context.Context, ownerID, jobID string) ([]*model.JobReport, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	return s.reports.ListByJob(ctx, jobID)
}

// CurrentReport returns the authoritative version for a report kind.
func (s *EditService) CurrentReport(ctx context.Context, ownerID, jobID string, kind model.ReportKind) (*model.JobReport, error) {
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	return s.reports.Current(ctx, jobID, kind)
}

func (s *EditService) ownedJob(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
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

func (s *EditService) appendActivity(ctx context.Context, activity *model.JobActivity) {
	if err := s.activities.Append(ctx, activity); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to append activity",
			"job_id", activity.JobID, "action", activity.Action, "error", err)
	}
}
