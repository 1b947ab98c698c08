package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/data/pgxutil"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// MarkSubmitted records the provider handle and moves the job to queued.
// Guarded on draft so a double submission surfaces as a conflict.
func (r *JobRepo) MarkSubmitted(ctx context.Context, p core.MarkSubmittedParams) error {
	if p.JobID == "" {
		return ErrJobIDRequired
	}
	if !p.ReportKind.Valid() {
		return apperrors.Validationf("invalid report kind %q", p.ReportKind)
	}

	now := r.now()
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs SET
			status = 'queued',
			external_id = $2,
			external_status = 'queued',
			external_progress = 0,
			external_error = NULL,
			external_report_kind = $3,
			submitted_at = $4,
			updated_at = $4
		WHERE id = $1 AND status = 'draft'`,
		p.JobID, p.ExternalID, p.ReportKind, now,
	)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("mark submitted: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark submitted rows affected: %w", err)
	}
	if affected == 0 {
		job, gerr := r.GetByID(ctx, p.JobID)
		if gerr != nil {
			return gerr
		}
		return apperrors.Conflict(fmt.Sprintf("job %s is %s, not draft", p.JobID, job.Status))
	}
	return nil
}

// UpdateExternalProgress records a non-terminal poll observation. The guard on
// in-flight statuses keeps a late observation from reviving a finished job.
func (r *JobRepo) UpdateExternalProgress(ctx context.Context, p core.ExternalProgressParams) error {
	if p.JobID == "" {
		return ErrJobIDRequired
	}

	status := model.JobStatusQueued
	if p.Status == model.ExternalProcessing {
		status = model.JobStatusProcessing
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE jobs SET
			status = $2,
			external_status = $3,
			external_progress = COALESCE($4, external_progress),
			updated_at = $5
		WHERE id = $1 AND status IN ('queued', 'processing')`,
		p.JobID, status, p.Status, p.Progress, r.now(),
	)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("update external progress: %w", err))
	}
	return nil
}

// CompleteGeneration applies the succeeded terminal transition and appends the
// report version in one transaction. Returns false when the job was no longer
// in flight, which makes retried poll observations no-ops.
func (r *JobRepo) CompleteGeneration(ctx context.Context, p core.CompleteGenerationParams) (bool, error) {
	if p.JobID == "" {
		return false, ErrJobIDRequired
	}
	column, err := reportColumn(p.ReportKind)
	if err != nil {
		return false, err
	}

	now := r.now()
	applied := false
	err = pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		res, execErr := tx.ExecContext(ctx, `
			UPDATE jobs SET
				status = 'completed',
				`+column+` = $2,
				external_status = 'completed',
				external_progress = 100,
				metadata = CASE WHEN $3 THEN COALESCE(metadata, '{}'::jsonb) || '{"degraded_report": true}'::jsonb ELSE metadata END,
				completed_at = $4,
				updated_at = $4
			WHERE id = $1 AND status IN ('queued', 'processing')`,
			p.JobID, p.Content, p.Degraded, now,
		)
		if execErr != nil {
			return fmt.Errorf("complete generation: %w", execErr)
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			return raErr
		}
		if affected == 0 {
			return nil
		}
		applied = true

		_, verr := insertReportVersionTx(ctx, tx, reportVersionParams{
			JobID:       p.JobID,
			Kind:        p.ReportKind,
			Content:     p.Content,
			GeneratedBy: p.GeneratedBy,
			Now:         now,
		})
		return verr
	}})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return applied, nil
}

// FailGeneration applies the failed terminal transition with the provider's
// error text. Stage answers and any prior reports are left untouched.
func (r *JobRepo) FailGeneration(ctx context.Context, jobID, errMsg string) (bool, error) {
	return r.exitInFlight(ctx, jobID, `
		UPDATE jobs SET
			status = 'failed',
			external_status = 'failed',
			external_error = $2,
			completed_at = $3,
			updated_at = $3
		WHERE id = $1 AND status IN ('queued', 'processing')`,
		errMsg, r.now(),
	)
}

// CancelGeneration exits queued/processing to cancelled.
func (r *JobRepo) CancelGeneration(ctx context.Context, jobID string) (bool, error) {
	return r.exitInFlight(ctx, jobID, `
		UPDATE jobs SET
			status = 'cancelled',
			external_status = CASE WHEN external_id IS NULL THEN external_status ELSE 'cancelled' END,
			completed_at = $2,
			updated_at = $2
		WHERE id = $1 AND status IN ('queued', 'processing')`,
		r.now(),
	)
}

func (r *JobRepo) exitInFlight(ctx context.Context, jobID, query string, args ...any) (bool, error) {
	if jobID == "" {
		return false, ErrJobIDRequired
	}
	all := append([]any{jobID}, args...)
	res, err := r.DB.ExecContext(ctx, query, all...)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListInFlight returns queued/processing jobs that hold a provider handle,
// oldest submission first.
func (r *JobRepo) ListInFlight(ctx context.Context) ([]*model.Job, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status IN ('queued', 'processing') AND external_id IS NOT NULL
		ORDER BY submitted_at ASC NULLS LAST`,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list in-flight jobs: %w", err))
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan in-flight job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return jobs, nil
}

// FailStaleSubmissions fails in-flight jobs whose submission predates the
// cutoff and returns their ids so running poll loops can be stopped.
func (r *JobRepo) FailStaleSubmissions(ctx context.Context, cutoff time.Time, batchSize int) ([]string, error) {
	if batchSize <= 0 {
		batchSize = 100
	}

	rows, err := r.DB.QueryContext(ctx, `
		UPDATE jobs SET
			status = 'failed',
			external_status = 'failed',
			external_error = 'generation timed out',
			completed_at = $2,
			updated_at = $2
		WHERE id IN (
			SELECT id FROM jobs
			WHERE status IN ('queued', 'processing') AND submitted_at < $1
			ORDER BY submitted_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id`,
		cutoff.UTC(), r.now(), batchSize,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("fail stale submissions: %w", err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("scan stale job id: %w", scanErr)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return ids, nil
}

func reportColumn(kind model.ReportKind) (string, error) {
	switch kind {
	case model.ReportKindPreliminary:
		return "preliminary_report", nil
	case model.ReportKindFinal:
		return "final_report", nil
	default:
		return "", apperrors.Validationf("invalid report kind %q", kind)
	}
}
