package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// ActivityRepo provides the append-only audit trail for jobs.
type ActivityRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewActivityRepo creates a new ActivityRepo instance.
func NewActivityRepo(db *sql.DB, cfg RepoConfig) *ActivityRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &ActivityRepo{DB: db, timeProvider: tp, logger: cfg.Logger}
}

// Append writes one activity row. The trail is append-only; there is no
// update or delete path.
func (r *ActivityRepo) Append(ctx context.Context, activity *model.JobActivity) error {
	if activity == nil || activity.JobID == "" {
		return ErrJobIDRequired
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = r.timeProvider.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO job_activities (id, job_id, action, stage, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		activity.ID, activity.JobID, activity.Action, activity.Stage,
		[]byte(nullableJSON(activity.Detail)), activity.CreatedAt,
	)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("append activity: %w", err))
	}
	return nil
}

// ListByJob returns a job's activity trail, newest first.
func (r *ActivityRepo) ListByJob(ctx context.Context, jobID string) ([]*model.JobActivity, error) {
	if jobID == "" {
		return nil, ErrJobIDRequired
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_id, action, stage, detail, created_at
		FROM job_activities
		WHERE job_id = $1
		ORDER BY created_at DESC, id DESC`,
		jobID,
	)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list activities: %w", err))
	}
	defer rows.Close()

	var activities []*model.JobActivity
	for rows.Next() {
		var (
			activity model.JobActivity
			detail   []byte
		)
		scanErr := rows.Scan(
			&activity.ID,
			&activity.JobID,
			&activity.Action,
			&activity.Stage,
			&detail,
			&activity.CreatedAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan activity row: %w", scanErr)
		}
		if len(detail) > 0 {
			activity.Detail = json.RawMessage(detail)
		}
		activities = append(activities, &activity)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return activities, nil
}
