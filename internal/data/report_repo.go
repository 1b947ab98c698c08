package data

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// ReportRepo provides read access to the versioned report snapshots.
type ReportRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewReportRepo creates a new ReportRepo instance.
func NewReportRepo(db *sql.DB, cfg RepoConfig) *ReportRepo {
	return &ReportRepo{DB: db, logger: cfg.Logger}
}

const reportColumns = `
  id,
  job_id,
  kind,
  version,
  content,
  is_current,
  generated_by,
  created_at
`

// ListByJob returns all report versions for a job, newest first within kind.
func (r *ReportRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobReport, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM job_reports
		WHERE job_id = $1
		ORDER BY kind ASC, version DESC`,
		jobID,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list reports: %w", err))
	}
	defer rows.Close()

	var reports []*model.JobReport
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan report row: %w", scanErr)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return reports, nil
}

// Current returns the single current version for a kind. Finding more than
// one current row means the version chain is corrupt and is reported as such
// rather than silently picking one.
func (r *ReportRepo) Current(ctx context.Context, jobID string, kind model.ReportKind) (*model.JobReport, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}
	if !kind.Valid() {
		return nil, apperrors.Validationf("invalid report kind %q", kind)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM job_reports
		WHERE job_id = $1 AND kind = $2 AND is_current
		LIMIT 2`,
		jobID, kind,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("get current report: %w", err))
	}
	defer rows.Close()

	var reports []*model.JobReport
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan current report: %w", scanErr)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	switch len(reports) {
	case 0:
		return nil, apperrors.NotFoundf("no current %s report for job %s", kind, jobID)
	case 1:
		return reports[0], nil
	default:
		return nil, apperrors.InconsistentVersionState(
			fmt.Sprintf("job %s has multiple current %s reports", jobID, kind))
	}
}

func scanReport(s rowScanner) (*model.JobReport, error) {
	var report model.JobReport
	err := s.Scan(
		&report.ID,
		&report.JobID,
		&report.Kind,
		&report.Version,
		&report.Content,
		&report.IsCurrent,
		&report.GeneratedBy,
		&report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// reportVersionParams groups parameters for insertReportVersionTx.
type reportVersionParams struct {
	JobID       string
	Kind        model.ReportKind
	Content     string
	GeneratedBy string
	Now         time.Time
}

// insertReportVersionTx retires the current version for the kind and appends
// the next one inside the caller's transaction. More than one retired row
// means the chain was already corrupt; the transaction is aborted so the
// inconsistency stays visible instead of compounding.
func insertReportVersionTx(ctx context.Context, tx *sql.Tx, p reportVersionParams) (*model.JobReport, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE job_reports SET is_current = FALSE
		WHERE job_id = $1 AND kind = $2 AND is_current`,
		p.JobID, p.Kind,
	)
	if err != nil {
		return nil, fmt.Errorf("retire current report: %w", err)
	}
	retired, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("retire current report rows affected: %w", err)
	}
	if retired > 1 {
		return nil, apperrors.InconsistentVersionState(
			fmt.Sprintf("job %s had %d current %s reports", p.JobID, retired, p.Kind))
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO job_reports (id, job_id, kind, version, content, is_current, generated_by, created_at)
		SELECT $1, $2, $3, COALESCE(MAX(version), 0) + 1, $4, TRUE, $5, $6
		FROM job_reports WHERE job_id = $2 AND kind = $3
		RETURNING `+reportColumns,
		uuid.NewString(), p.JobID, p.Kind, p.Content, p.GeneratedBy, p.Now,
	)
	report, err := scanReport(row)
	if err != nil {
		return nil, fmt.Errorf("insert report version: %w", err)
	}
	return report, nil
}
