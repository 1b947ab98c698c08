package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/data/pgxutil"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// WriteStage replaces the answer map for one stage and flags it complete.
// The jsonb_set calls keep sibling stages untouched.
func (r *JobRepo) WriteStage(ctx context.Context, p core.WriteStageParams) (*model.Job, error) {
	if p.JobID == "" {
		return nil, ErrJobIDRequired
	}
	answers, err := encodeJSONColumn(p.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode stage answers: %w", err)
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE jobs SET
			stage_data = jsonb_set(stage_data, ARRAY[$2], $3::jsonb),
			stage_complete = jsonb_set(stage_complete, ARRAY[$2], 'true'::jsonb),
			updated_at = $4
		WHERE id = $1
		RETURNING `+jobColumns,
		p.JobID, p.StageKey, answers, r.now(),
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", p.JobID)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("write stage: %w", err))
	}
	return job, nil
}

// SaveQuestions stores the generated question list once. A second call with a
// non-empty list already present reports a conflict.
func (r *JobRepo) SaveQuestions(ctx context.Context, jobID string, questions []model.DynamicQuestion) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	encoded, err := encodeJSONColumn(questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs SET questions = $2, updated_at = $3
		WHERE id = $1
		  AND (questions IS NULL OR questions = 'null'::jsonb OR jsonb_array_length(questions) = 0)`,
		jobID, encoded, r.now(),
	)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("save questions: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save questions rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing job from an immutable question list.
		if _, gerr := r.GetByID(ctx, jobID); gerr != nil {
			return gerr
		}
		return ErrQuestionsAlreadySet
	}
	return nil
}

// SaveDynamicAnswers replaces the answers to the generated questions.
func (r *JobRepo) SaveDynamicAnswers(ctx context.Context, jobID string, answers model.AnswerMap) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	encoded, err := encodeJSONColumn(answers)
	if err != nil {
		return fmt.Errorf("encode dynamic answers: %w", err)
	}
	return r.execOnJob(ctx, jobID, `
		UPDATE jobs SET dynamic_answers = $2, updated_at = $3 WHERE id = $1`,
		encoded, r.now(),
	)
}

// SaveSessionState stores the opaque resumption blob with its client timestamp.
func (r *JobRepo) SaveSessionState(ctx context.Context, p core.SessionStateParams) error {
	if p.JobID == "" {
		return ErrJobIDRequired
	}
	return r.execOnJob(ctx, p.JobID, `
		UPDATE jobs SET session_state = $2, session_saved_at = $3, updated_at = $4 WHERE id = $1`,
		p.State, p.SavedAt.UTC(), r.now(),
	)
}

// ReplaceStageDrafts overwrites the answer maps of the named stages without
// touching their completion flags. Used after a client-draft merge wins over
// the stored answers.
func (r *JobRepo) ReplaceStageDrafts(ctx context.Context, jobID string, stages map[string]model.AnswerMap) error {
	if jobID == "" {
		return ErrJobIDRequired
	}
	if len(stages) == 0 {
		return nil
	}

	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		for key, answers := range stages {
			encoded, encErr := encodeJSONColumn(answers)
			if encErr != nil {
				return fmt.Errorf("encode draft for stage %s: %w", key, encErr)
			}
			res, execErr := tx.ExecContext(ctx, `
				UPDATE jobs SET
					stage_data = jsonb_set(stage_data, ARRAY[$2], $3::jsonb),
					updated_at = $4
				WHERE id = $1`,
				jobID, key, encoded, r.now(),
			)
			if execErr != nil {
				return fmt.Errorf("replace draft for stage %s: %w", key, execErr)
			}
			affected, raErr := res.RowsAffected()
			if raErr != nil {
				return raErr
			}
			if affected == 0 {
				return apperrors.NotFoundf("job %s not found", jobID)
			}
		}
		return nil
	}})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// execOnJob runs a single-row UPDATE keyed by job id and converts a zero-row
// result into not found.
func (r *JobRepo) execOnJob(ctx context.Context, jobID, query string, args ...any) error {
	all := append([]any{jobID}, args...)
	res, err := r.DB.ExecContext(ctx, query, all...)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFoundf("job %s not found", jobID)
	}
	return nil
}
