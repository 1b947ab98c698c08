package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/draftforge/discovery-engine/internal/data/pgxutil"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// EditRepo provides quota-enforced report edit persistence.
type EditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewEditRepo creates a new EditRepo instance.
func NewEditRepo(db *sql.DB, cfg RepoConfig) *EditRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &EditRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

const editColumns = `
  id,
  job_id,
  report_kind,
  edit_number,
  original_content,
  edited_content,
  ai_assisted,
  ai_model,
  created_at
`

// ApplyEdit records one owner edit in a single transaction: the edit row, the
// quota counters, the edited overlay on the job, and the next report version
// all move together or not at all. The job row is locked for the duration so
// concurrent edits serialize and the quota cannot go negative.
func (r *EditRepo) ApplyEdit(ctx context.Context, jobID string, req *model.EditReportRequest) (*model.JobEdit, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid edit request")
	}
	overlayColumn, err := editedColumn(req.ReportKind)
	if err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	var edit *model.JobEdit
	err = pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		var (
			editsRemaining int
			editsUsed      int
			original       sql.NullString
			edited         sql.NullString
		)
		originalColumn, _ := reportColumn(req.ReportKind)
		lockErr := tx.QueryRowContext(ctx, `
			SELECT edits_remaining, edits_used, `+originalColumn+`, `+overlayColumn+`
			FROM jobs WHERE id = $1
			FOR UPDATE`,
			jobID,
		).Scan(&editsRemaining, &editsUsed, &original, &edited)
		if lockErr != nil {
			if errors.Is(lockErr, sql.ErrNoRows) {
				return apperrors.NotFoundf("job %s not found", jobID)
			}
			return fmt.Errorf("lock job for edit: %w", lockErr)
		}

		// Edits layer on top of the latest text, edited overlay first.
		baseline := original
		if edited.Valid {
			baseline = edited
		}
		if !baseline.Valid || baseline.String == "" {
			return apperrors.Validationf("job %s has no %s report to edit", jobID, req.ReportKind)
		}
		if req.OriginalContent != "" && req.OriginalContent != baseline.String {
			return apperrors.Conflict("report changed since the edit was drafted")
		}
		if editsRemaining <= 0 {
			return apperrors.EditQuotaExceeded(
				fmt.Sprintf("job %s has no edits remaining (%d used)", jobID, editsUsed))
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO job_edits (id, job_id, report_kind, edit_number, original_content, edited_content, ai_assisted, ai_model, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+editColumns,
			uuid.NewString(), jobID, req.ReportKind, editsUsed+1,
			baseline.String, req.NewContent, req.AIAssisted, req.AIModel, now,
		)
		var scanErr error
		edit, scanErr = scanEdit(row)
		if scanErr != nil {
			return fmt.Errorf("insert edit: %w", scanErr)
		}

		if _, execErr := tx.ExecContext(ctx, `
			UPDATE jobs SET
				edits_remaining = edits_remaining - 1,
				edits_used = edits_used + 1,
				`+overlayColumn+` = $2,
				updated_at = $3
			WHERE id = $1`,
			jobID, req.NewContent, now,
		); execErr != nil {
			return fmt.Errorf("apply edit counters: %w", execErr)
		}

		_, verr := insertReportVersionTx(ctx, tx, reportVersionParams{
			JobID:       jobID,
			Kind:        req.ReportKind,
			Content:     req.NewContent,
			GeneratedBy: model.GeneratedByEditor,
			Now:         now,
		})
		return verr
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return edit, nil
}

// ListByJob returns a job's edits in edit order.
func (r *EditRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobEdit, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+editColumns+`
		FROM job_edits
		WHERE job_id = $1
		ORDER BY edit_number ASC`,
		jobID,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list edits: %w", err))
	}
	defer rows.Close()

	var edits []*model.JobEdit
	for rows.Next() {
		edit, scanErr := scanEdit(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan edit row: %w", scanErr)
		}
		edits = append(edits, edit)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return edits, nil
}

func scanEdit(s rowScanner) (*model.JobEdit, error) {
	var edit model.JobEdit
	err := s.Scan(
		&edit.ID,
		&edit.JobID,
		&edit.ReportKind,
		&edit.EditNumber,
		&edit.OriginalContent,
		&edit.EditedContent,
		&edit.AIAssisted,
		&edit.AIModel,
		&edit.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &edit, nil
}

func editedColumn(kind model.ReportKind) (string, error) {
	switch kind {
	case model.ReportKindPreliminary:
		return "preliminary_edited", nil
	case model.ReportKindFinal:
		return "final_edited", nil
	default:
		return "", apperrors.Validationf("invalid report kind %q", kind)
	}
}
