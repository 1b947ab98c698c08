package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// ResumeServiceOptions groups dependencies for ResumeService.
type ResumeServiceOptions struct {
	Repo       core.JobRepository      // Required: job repository
	Drafts     core.DraftStore         // Required: client snapshot store
	Activities core.ActivityRepository // Required: audit trail
	Poller     PollStarter             // Optional: background poll loops
	Logger     *slog.Logger            // Optional: structured logger
	Metrics    statsd.Sink             // Optional: metrics sink (StatsD-compatible)

	// SaveQuietPeriod is how long session-state saves are debounced before
	// the blob is persisted to the database. Defaults to 1.5s.
	SaveQuietPeriod time.Duration
}

// ResumeResult is what a returning client gets: the merged job, the stored
// UI cursor, and which stages were refreshed from the client draft.
type ResumeResult struct {
	Job            *model.Job      `json:"job"`
	SessionState   json.RawMessage `json:"session_state,omitempty"`
	MergedStages   []string        `json:"merged_stages,omitempty"`
	DraftRecovered bool            `json:"draft_recovered"`
}

// ResumeService restores interrupted sessions. The snapshot store holds the
// ephemeral resume hint; Postgres holds the durable copy. Merging is
// last-write-wins at whole-stage granularity and completed stages never
// regress.
type ResumeService struct {
	repo       core.JobRepository
	drafts     core.DraftStore
	activities core.ActivityRepository
	poller     PollStarter
	logger     *slog.Logger
	metrics    statsd.Sink
	debouncer  *Debouncer
}

// NewResumeService constructs a new ResumeService.
func NewResumeService(opts ResumeServiceOptions) (*ResumeService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Drafts == nil {
		return nil, errors.New("DraftStore is required")
	}
	if opts.Activities == nil {
		return nil, errors.New("ActivityRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "resume_service")
	}

	return &ResumeService{
		repo:       opts.Repo,
		drafts:     opts.Drafts,
		activities: opts.Activities,
		poller:     opts.Poller,
		logger:     logger,
		metrics:    opts.Metrics,
		debouncer:  NewDebouncer(opts.SaveQuietPeriod),
	}, nil
}

// MustNewResumeService constructs a new ResumeService and panics on error.
func MustNewResumeService(opts ResumeServiceOptions) *ResumeService {
	svc, err := NewResumeService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create ResumeService: %v", err))
	}
	return svc
}

// SaveSession stores the client's session snapshot. The snapshot lands in the
// draft store immediately; the durable session-state write is debounced so a
// typing burst costs one database write, not dozens.
func (s *ResumeService) SaveSession(ctx context.Context, ownerID, jobID string, snap *model.SessionSnapshot) error {
	if snap == nil {
		return apperrors.Validation("session snapshot is required")
	}
	if _, err := s.ownedJob(ctx, ownerID, jobID); err != nil {
		return err
	}

	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	if err := s.drafts.Save(ctx, jobID, snap); err != nil {
		return fmt.Errorf("save draft snapshot: %w", err)
	}

	state := snap.State
	savedAt := snap.SavedAt
	s.debouncer.Trigger(jobID, func() {
		// Detached from the request context; the request is long gone when
		// the quiet period elapses.
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.repo.SaveSessionState(flushCtx, core.SessionStateParams{
			JobID:   jobID,
			State:   state,
			SavedAt: savedAt,
		}); err != nil {
			if s.logger != nil {
				s.logger.WarnContext(flushCtx, "failed to persist session state",
					"job_id", jobID, "error", err)
			}
			return
		}
		s.appendActivity(flushCtx, model.NewActivity(jobID, model.ActivitySessionSaved, nil))
	})
	return nil
}

// Resume rebuilds the working state for a returning client. A missing
// snapshot is not an error: the durable job carries everything needed to
// start a fresh session.
func (s *ResumeService) Resume(ctx context.Context, ownerID, jobID string) (*ResumeResult, error) {
	job, err := s.ownedJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	snap, err := s.drafts.Get(ctx, jobID)
	if err != nil && !errors.Is(err, core.ErrDraftNotFound) {
		// The draft store being down degrades resumption, it does not block it.
		if s.logger != nil {
			s.logger.WarnContext(ctx, "draft store unavailable, resuming from durable state",
				"job_id", jobID, "error", err)
		}
		snap = nil
	}

	// A job submitted before a restart still has its provider handle but no
	// poll loop in this process. Re-attach so the result is collected.
	if s.poller != nil && job.Status.InFlight() && job.ExternalID != nil {
		s.poller.Start(job.ID, *job.ExternalID)
	}

	result := &ResumeResult{Job: job, SessionState: job.SessionState}
	if snap != nil {
		result.DraftRecovered = true
		if len(snap.State) > 0 && snap.SavedAt.After(sessionStateTime(job)) {
			result.SessionState = snap.State
		}
		if changed := model.MergeDrafts(job, snap); len(changed) > 0 {
			replace := make(map[string]model.AnswerMap, len(changed))
			for _, stage := range changed {
				replace[stage] = job.StageData[stage]
			}
			if err := s.repo.ReplaceStageDrafts(ctx, jobID, replace); err != nil {
				return nil, err
			}
			result.MergedStages = changed
		}
	}

	s.appendActivity(ctx, model.NewActivity(jobID, model.ActivityResumed, map[string]any{
		"draft_recovered": result.DraftRecovered,
		"merged_stages":   len(result.MergedStages),
	}))
	if s.metrics != nil {
		s.metrics.Count("job.resumed", 1, map[string]string{
			"draft_recovered": fmt.Sprintf("%t", result.DraftRecovered),
		})
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "session resumed",
			"job_id", jobID, "draft_recovered", result.DraftRecovered,
			"merged_stages", len(result.MergedStages))
	}
	return result, nil
}

// Close flushes any debounced session-state writes still pending and stops
// accepting new ones.
func (s *ResumeService) Close() {
	s.debouncer.Close()
}

func sessionStateTime(job *model.Job) time.Time {
	if job.SessionSavedAt != nil {
		return *job.SessionSavedAt
	}
	return time.Time{}
}

func (s *ResumeService) ownedJob(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
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

func (s *ResumeService) appendActivity(ctx context.Context, activity *model.JobActivity) {
	if err := s.activities.Append(ctx, activity); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to append activity",
			"job_id", activity.JobID, "action", activity.Action, "error", err)
	}
}
