// Package model defines the core data types for the draftforge discovery job system.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the lifecycle status of a discovery job.
type JobStatus string

// ExternalStatus represents the provider-side generation state tracked on a
// job. Provider vocabulary (queued|running) is mapped to this enum at the
// boundary; it is null until a submission exists.
type ExternalStatus string

const (
	// JobStatusDraft indicates a job collecting stage input, not yet submitted.
	JobStatusDraft JobStatus = "draft"
	// JobStatusQueued indicates a submitted job waiting for the provider to start.
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing indicates the provider is generating.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates generation finished and the report is stored.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the provider reported a terminal failure or the
	// submission timed out.
	JobStatusFailed JobStatus = "failed"
	// JobStatusCancelled indicates the owner cancelled an in-flight submission.
	JobStatusCancelled JobStatus = "cancelled"

	// ExternalQueued mirrors the provider's queued state.
	ExternalQueued ExternalStatus = "queued"
	// ExternalProcessing mirrors the provider's running state.
	ExternalProcessing ExternalStatus = "processing"
	// ExternalCompleted mirrors the provider's succeeded state.
	ExternalCompleted ExternalStatus = "completed"
	// ExternalFailed mirrors the provider's failed state.
	ExternalFailed ExternalStatus = "failed"
	// ExternalCancelled records an owner-initiated exit from queued/processing.
	ExternalCancelled ExternalStatus = "cancelled"
)

// Valid returns true if the JobStatus is a known value.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusQueued, JobStatusProcessing,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// InFlight reports whether a submission is awaiting a terminal provider state.
func (s JobStatus) InFlight() bool {
	return s == JobStatusQueued || s == JobStatusProcessing
}

// Valid returns true if the ExternalStatus is a known value.
func (s ExternalStatus) Valid() bool {
	switch s {
	case ExternalQueued, ExternalProcessing, ExternalCompleted, ExternalFailed, ExternalCancelled:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus to allow
// query-string and env parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus: %q", string(text))
	}
	*s = v
	return nil
}

// Job is the aggregate record tracking one discovery-to-report session.
//
// Invariants maintained by the repositories and services:
//   - ExternalID is set iff ExternalStatus is non-null.
//   - FinalReport is non-null only when Status is completed or the job was imported.
//   - EditsUsed + EditsRemaining is constant across the job's life.
//   - Stage completion flags transition false→true only.
//   - Questions are immutable once generated; only DynamicAnswers change.
type Job struct {
	ID      string `json:"id"       db:"id"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	Title   string `json:"title"    db:"title"`

	Status JobStatus `json:"status" db:"status"`

	StageData     map[string]AnswerMap `json:"stage_data"     db:"stage_data"`
	StageComplete map[string]bool      `json:"stage_complete" db:"stage_complete"`

	Questions      []DynamicQuestion `json:"questions,omitempty"       db:"questions"`
	DynamicAnswers AnswerMap         `json:"dynamic_answers,omitempty" db:"dynamic_answers"`

	PreliminaryReport *string `json:"preliminary_report,omitempty" db:"preliminary_report"`
	PreliminaryEdited *string `json:"preliminary_edited,omitempty" db:"preliminary_edited"`
	FinalReport       *string `json:"final_report,omitempty"       db:"final_report"`
	FinalEdited       *string `json:"final_edited,omitempty"       db:"final_edited"`

	ExternalID       *string         `json:"external_id,omitempty"       db:"external_id"`
	ExternalStatus   *ExternalStatus `json:"external_status,omitempty"   db:"external_status"`
	ExternalProgress *int            `json:"external_progress,omitempty" db:"external_progress"`
	ExternalError    *string         `json:"external_error,omitempty"    db:"external_error"`
	// ExternalReportKind records which report slot the in-flight submission
	// targets, so poll write-back lands in the right field.
	ExternalReportKind *ReportKind `json:"external_report_kind,omitempty" db:"external_report_kind"`

	// SessionState is an opaque UI-resumption blob; the server never inspects
	// it beyond the save timestamp used for last-write-wins draft merging.
	SessionState   json.RawMessage `json:"session_state,omitempty"    db:"session_state"`
	SessionSavedAt *time.Time      `json:"session_saved_at,omitempty" db:"session_saved_at"`

	EditsRemaining int `json:"edits_remaining" db:"edits_remaining"`
	EditsUsed      int `json:"edits_used"      db:"edits_used"`

	Metadata       json.RawMessage `json:"metadata,omitempty"         db:"metadata"`
	LegacyImportID *string         `json:"legacy_import_id,omitempty" db:"legacy_import_id"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"             db:"updated_at"`
}

// CurrentReport resolves the authoritative text for a report kind: the edited
// overlay when present, otherwise the original. Returns empty string when the
// report has not been generated.
func (j *Job) CurrentReport(kind ReportKind) string {
	var original, edited *string
	switch kind {
	case ReportKindPreliminary:
		original, edited = j.PreliminaryReport, j.PreliminaryEdited
	case ReportKindFinal:
		original, edited = j.FinalReport, j.FinalEdited
	default:
		return ""
	}
	if edited != nil {
		return *edited
	}
	if original != nil {
		return *original
	}
	return ""
}

// StageDone reports whether the named stage has been completed.
func (j *Job) StageDone(stage string) bool {
	return j.StageComplete[stage]
}

// ConsolidatedAnswers merges the answer maps of all completed stages plus the
// dynamic answers into one document for prompt building. Dynamic answers win
// over stage answers on key collision since they were collected later.
func (j *Job) ConsolidatedAnswers() AnswerMap {
	merged := AnswerMap{}
	for stage, answers := range j.StageData {
		if !j.StageComplete[stage] {
			continue
		}
		for k, v := range answers {
			merged[k] = v
		}
	}
	for k, v := range j.DynamicAnswers {
		merged[k] = v
	}
	return merged
}

// StatusSnapshot projects the fields clients poll on.
func (j *Job) StatusSnapshot() *JobStatusSnapshot {
	return &JobStatusSnapshot{
		Status:           j.Status,
		ExternalStatus:   j.ExternalStatus,
		ExternalProgress: j.ExternalProgress,
		ExternalError:    j.ExternalError,
		CompletedAt:      j.CompletedAt,
	}
}

// CreateJobRequest represents a request to create a new discovery job.
type CreateJobRequest struct {
	OwnerID        string          `json:"owner_id"`
	Title          string          `json:"title"`
	EditQuota      int             `json:"edit_quota,omitempty"`
	LegacyImportID *string         `json:"legacy_import_id,omitempty"`
	FinalReport    *string         `json:"final_report,omitempty"` // only honoured for legacy imports
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// DefaultEditQuota is applied when a create request does not specify one.
const DefaultEditQuota = 3

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return errors.New("owner id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if r.EditQuota < 0 {
		return errors.New("edit quota must be >= 0")
	}
	if r.FinalReport != nil && r.LegacyImportID == nil {
		return errors.New("final report may only be supplied via legacy import")
	}
	return nil
}

// JobListOptions filters listJobs results.
type JobListOptions struct {
	OwnerID string
	Status  *JobStatus
	Limit   int
	Offset  int
}

// JobStatusSnapshot is the checkStatus response shape.
type JobStatusSnapshot struct {
	Status           JobStatus       `json:"status"`
	ExternalStatus   *ExternalStatus `json:"external_status,omitempty"`
	ExternalProgress *int            `json:"external_progress,omitempty"`
	ExternalError    *string         `json:"external_error,omitempty"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

// ExportBundle is the exportJob payload: the job plus every child row.
type ExportBundle struct {
	Job        *Job           `json:"job"`
	Reports    []*JobReport   `json:"reports"`
	Edits      []*JobEdit     `json:"edits"`
	Activities []*JobActivity `json:"activities"`
	ExportedAt time.Time      `json:"exported_at"`
}
