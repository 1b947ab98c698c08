package model

import (
	"encoding/json"
	"time"
)

// Activity action labels. Pure audit vocabulary, never read for control flow.
const (
	ActivityJobCreated         = "job_created"
	ActivityStageSaved         = "stage_saved"
	ActivityQuestionsGenerated = "questions_generated"
	ActivityQuestionsSaved     = "questions_saved"
	ActivitySubmitted          = "submitted"
	ActivityCompleted          = "completed"
	ActivityFailed             = "failed"
	ActivityCancelled          = "cancelled"
	ActivityTimedOut           = "timed_out"
	ActivityReportEdited       = "report_edited"
	ActivitySessionSaved       = "session_saved"
	ActivityResumed            = "resumed"
	ActivityDeleted            = "deleted"
	ActivityExported           = "exported"
)

// JobActivity is an append-only audit entry for a mutating action on a job.
type JobActivity struct {
	ID        string          `json:"id"               db:"id"`
	JobID     string          `json:"job_id"           db:"job_id"`
	Action    string          `json:"action"           db:"action"`
	Stage     *string         `json:"stage,omitempty"  db:"stage"`
	Detail    json.RawMessage `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time       `json:"created_at"       db:"created_at"`
}

// NewActivity builds an activity entry, marshalling the detail map. A detail
// that fails to marshal is dropped rather than blocking the audited action.
func NewActivity(jobID, action string, detail map[string]any) *JobActivity {
	a := &JobActivity{JobID: jobID, Action: action}
	if len(detail) > 0 {
		if data, err := json.Marshal(detail); err == nil {
			a.Detail = data
		}
	}
	return a
}

// WithStage tags the activity with a stage key.
func (a *JobActivity) WithStage(stage string) *JobActivity {
	a.Stage = &stage
	return a
}
