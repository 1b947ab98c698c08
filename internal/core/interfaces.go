// Package core defines the ports between the service layer and its adapters.
// Service implementations depend on these interfaces, never on concrete
// repositories or the provider client, so that every controller can be
// constructed with test doubles.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/draftforge/discovery-engine/internal/domain/model"
)

// JobRepository defines the interface for job aggregate persistence.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	List(ctx context.Context, opts model.JobListOptions) ([]*model.Job, error)
	// Delete removes the job and cascades all child rows.
	Delete(ctx context.Context, id string) error

	// WriteStage fully replaces the stored answer map for a stage and sets its
	// completion flag true. Completion never reverts.
	WriteStage(ctx context.Context, p WriteStageParams) (*model.Job, error)

	// SaveQuestions stores the generated question list. It fails with a
	// conflict once a non-empty list exists; questions are immutable.
	SaveQuestions(ctx context.Context, jobID string, questions []model.DynamicQuestion) error
	// SaveDynamicAnswers replaces the dynamic answer map.
	SaveDynamicAnswers(ctx context.Context, jobID string, answers model.AnswerMap) error

	// MarkSubmitted records the provider handle and moves the job to queued
	// with zero progress, stamping the submission time.
	MarkSubmitted(ctx context.Context, p MarkSubmittedParams) error
	// UpdateExternalProgress writes a non-terminal poll observation
	// (status/progress) back to the job, last-write-wins.
	UpdateExternalProgress(ctx context.Context, p ExternalProgressParams) error
	// CompleteGeneration applies the terminal succeeded transition: writes the
	// report content, marks completed, stamps completion time, and appends the
	// report version — all in one transaction. The transition is guarded on
	// status IN (queued, processing) so applying it twice is a no-op.
	CompleteGeneration(ctx context.Context, p CompleteGenerationParams) (bool, error)
	// FailGeneration applies the terminal failed transition with the provider
	// error text. Guarded the same way as CompleteGeneration.
	FailGeneration(ctx context.Context, jobID, errMsg string) (bool, error)
	// CancelGeneration exits queued/processing to cancelled.
	CancelGeneration(ctx context.Context, jobID string) (bool, error)

	// SaveSessionState stores the opaque resumption blob and its timestamp.
	SaveSessionState(ctx context.Context, p SessionStateParams) error
	// ReplaceStageDrafts overwrites the answer maps of the named incomplete
	// stages after a client-draft merge. Completion flags are untouched.
	ReplaceStageDrafts(ctx context.Context, jobID string, stages map[string]model.AnswerMap) error

	// ListInFlight returns jobs whose status is queued/processing with a
	// stored handle, for poll-loop re-attachment at process start.
	ListInFlight(ctx context.Context) ([]*model.Job, error)
	// FailStaleSubmissions fails in-flight jobs submitted before the cutoff.
	// Returns the ids of jobs transitioned so their poll loops can be stopped.
	FailStaleSubmissions(ctx context.Context, cutoff time.Time, batchSize int) ([]string, error)
}

// WriteStageParams groups parameters for JobRepository.WriteStage.
type WriteStageParams struct {
	JobID    string
	StageKey string
	Answers  model.AnswerMap
}

// MarkSubmittedParams groups parameters for JobRepository.MarkSubmitted.
type MarkSubmittedParams struct {
	JobID      string
	ExternalID string
	ReportKind model.ReportKind
}

// ExternalProgressParams groups parameters for JobRepository.UpdateExternalProgress.
type ExternalProgressParams struct {
	JobID    string
	Status   model.ExternalStatus
	Progress *int
}

// CompleteGenerationParams groups parameters for JobRepository.CompleteGeneration.
type CompleteGenerationParams struct {
	JobID      string
	ReportKind model.ReportKind
	Content    string
	// GeneratedBy identifies the content origin on the report version row
	// (provider, or fallback when a degraded placeholder was substituted).
	GeneratedBy string
	// Degraded marks the job metadata when placeholder content was substituted.
	Degraded bool
}

// SessionStateParams groups parameters for JobRepository.SaveSessionState.
type SessionStateParams struct {
	JobID   string
	State   []byte
	SavedAt time.Time
}

// EditRepository defines the interface for quota-enforced report edits.
type EditRepository interface {
	// ApplyEdit atomically appends the JobEdit, decrements the quota,
	// writes the edited overlay, and appends a new current report version.
	// Fails with edit_quota_exceeded when no edits remain; on failure no row
	// is written and no counter moves.
	ApplyEdit(ctx context.Context, jobID string, req *model.EditReportRequest) (*model.JobEdit, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.JobEdit, error)
}

// ReportRepository defines the interface for versioned report snapshots.
type ReportRepository interface {
	ListByJob(ctx context.Context, jobID string) ([]*model.JobReport, error)
	// Current returns the single is_current row for a kind; two current rows
	// surface inconsistent_version_state.
	Current(ctx context.Context, jobID string, kind model.ReportKind) (*model.JobReport, error)
}

// ActivityRepository defines the interface for the append-only audit trail.
type ActivityRepository interface {
	Append(ctx context.Context, activity *model.JobActivity) error
	ListByJob(ctx context.Context, jobID string) ([]*model.JobActivity, error)
}

// DraftStore holds client-local session snapshots (opaque cursor plus drafted
// stage answers) between page loads, keyed by job.
type DraftStore interface {
	Save(ctx context.Context, jobID string, snap *model.SessionSnapshot) error
	// Get returns ErrDraftNotFound when no snapshot exists for the job.
	Get(ctx context.Context, jobID string) (*model.SessionSnapshot, error)
	Delete(ctx context.Context, jobID string) error
}

// ErrDraftNotFound is returned by DraftStore.Get when no snapshot exists.
var ErrDraftNotFound = errors.New("draft snapshot not found")

// SubmitRequest is the provider submission payload.
type SubmitRequest struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
	Metadata    map[string]string
}

// SubmitResult is the provider's acknowledgement of a submission.
type SubmitResult struct {
	JobID     string
	StatusURL string
}

// GenerationStatus is one poll observation from the provider, already mapped
// to the job's own status vocabulary (queued|running → queued|processing).
type GenerationStatus struct {
	Status   model.ExternalStatus
	Progress *int
	Result   string
	Error    string
}

// Provider is the external generation service consumed by the controllers.
type Provider interface {
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)
	GetStatus(ctx context.Context, externalID string) (*GenerationStatus, error)
}
