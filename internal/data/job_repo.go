package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/draftforge/discovery-engine/internal/data/pgxutil"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// RepoConfig holds configuration options for the job repository.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider

	// DefaultEditQuota is applied to jobs created without an explicit quota.
	// Zero falls back to model.DefaultEditQuota.
	DefaultEditQuota int
}

// JobRepo provides database operations for the job aggregate and its children.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
	defaultQuota int
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	quota := cfg.DefaultEditQuota
	if quota <= 0 {
		quota = model.DefaultEditQuota
	}
	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
		defaultQuota: quota,
	}
}

const jobColumns = `
  id,
  owner_id,
  title,
  status,
  stage_data,
  stage_complete,
  questions,
  dynamic_answers,
  preliminary_report,
  preliminary_edited,
  final_report,
  final_edited,
  external_id,
  external_status,
  external_progress,
  external_error,
  external_report_kind,
  session_state,
  session_saved_at,
  edits_remaining,
  edits_used,
  metadata,
  legacy_import_id,
  submitted_at,
  completed_at,
  created_at,
  updated_at
`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob scans one row in jobColumns order, decoding the JSONB documents.
func scanJob(s rowScanner) (*model.Job, error) {
	var (
		job                model.Job
		stageData          []byte
		stageComplete      []byte
		questions          []byte
		dynamicAnswers     []byte
		sessionState       []byte
		metadata           []byte
		externalStatus     sql.NullString
		externalReportKind sql.NullString
	)

	err := s.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Title,
		&job.Status,
		&stageData,
		&stageComplete,
		&questions,
		&dynamicAnswers,
		&job.PreliminaryReport,
		&job.PreliminaryEdited,
		&job.FinalReport,
		&job.FinalEdited,
		&job.ExternalID,
		&externalStatus,
		&job.ExternalProgress,
		&job.ExternalError,
		&externalReportKind,
		&sessionState,
		&job.SessionSavedAt,
		&job.EditsRemaining,
		&job.EditsUsed,
		&metadata,
		&job.LegacyImportID,
		&job.SubmittedAt,
		&job.CompletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalStatus.Valid {
		es := model.ExternalStatus(externalStatus.String)
		job.ExternalStatus = &es
	}
	if externalReportKind.Valid {
		rk := model.ReportKind(externalReportKind.String)
		job.ExternalReportKind = &rk
	}
	if len(sessionState) > 0 {
		job.SessionState = json.RawMessage(sessionState)
	}
	if len(metadata) > 0 {
		job.Metadata = json.RawMessage(metadata)
	}

	if err := decodeJSONColumn(stageData, &job.StageData); err != nil {
		return nil, fmt.Errorf("decode stage_data: %w", err)
	}
	if err := decodeJSONColumn(stageComplete, &job.StageComplete); err != nil {
		return nil, fmt.Errorf("decode stage_complete: %w", err)
	}
	if err := decodeJSONColumn(questions, &job.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := decodeJSONColumn(dynamicAnswers, &job.DynamicAnswers); err != nil {
		return nil, fmt.Errorf("decode dynamic_answers: %w", err)
	}
	if job.StageData == nil {
		job.StageData = map[string]model.AnswerMap{}
	}
	if job.StageComplete == nil {
		job.StageComplete = map[string]bool{}
	}
	return &job, nil
}

func decodeJSONColumn(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// encodeJSONColumn marshals a document for a JSONB parameter; nil stays NULL.
func encodeJSONColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Create inserts a new draft job. Legacy imports that carry a final report
// also get an initial current report version attributed to the import.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid create job request")
	}

	quota := req.EditQuota
	if quota == 0 {
		quota = r.defaultQuota
	}

	now := r.timeProvider.Now().UTC()
	id := uuid.NewString()

	var job *model.Job
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO jobs (
				id, owner_id, title, status, stage_data, stage_complete,
				final_report, edits_remaining, edits_used, metadata,
				legacy_import_id, created_at, updated_at
			) VALUES ($1, $2, $3, 'draft', '{}'::jsonb, '{}'::jsonb, $4, $5, 0, $6, $7, $8, $8)
			RETURNING `+jobColumns,
			id, req.OwnerID, req.Title, req.FinalReport, quota,
			[]byte(nullableJSON(req.Metadata)), req.LegacyImportID, now,
		)
		var scanErr error
		job, scanErr = scanJob(row)
		if scanErr != nil {
			return fmt.Errorf("insert job: %w", scanErr)
		}

		if req.FinalReport != nil {
			if _, verr := insertReportVersionTx(ctx, tx, reportVersionParams{
				JobID:       id,
				Kind:        model.ReportKindFinal,
				Content:     *req.FinalReport,
				GeneratedBy: model.GeneratedByImport,
				Now:         now,
			}); verr != nil {
				return verr
			}
		}
		return nil
	}})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

func nullableJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// GetByID returns a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, ErrJobIDRequired
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get job: %w", err))
	}
	return job, nil
}

// List returns jobs for an owner, newest first, optionally filtered by status.
func (r *JobRepo) List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error) {
	if opts.OwnerID == "" {
		return nil, errors.New("owner id is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	if opts.Limit > 1000 {
		opts.Limit = 1000
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE owner_id = $1`
	args := []any{opts.OwnerID}
	if opts.Status != nil {
		query += ` AND status = $2`
		args = append(args, *opts.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list jobs: %w", err))
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job row: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return jobs, nil
}

// Delete removes a job; child rows cascade via foreign keys.
func (r *JobRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrJobIDRequired
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("delete job: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("job %s not found", id)
	}
	return nil
}

func (r *JobRepo) now() time.Time {
	return r.timeProvider.Now().UTC()
}
