package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/generation"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/mocks"
)

// pollStub records Start/Stop calls without running loops.
type pollStub struct {
	started [][2]string
	stopped []string
}

func (p *pollStub) Start(jobID, externalID string) { p.started = append(p.started, [2]string{jobID, externalID}) }
func (p *pollStub) Stop(jobID string)              { p.stopped = append(p.stopped, jobID) }

type submissionMocks struct {
	repo       *mocks.MockJobRepository
	provider   *mocks.MockProvider
	activities *mocks.MockActivityRepository
	poller     *pollStub
}

func newSubmissionService(t *testing.T) (*SubmissionService, submissionMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := submissionMocks{
		repo:       mocks.NewMockJobRepository(ctrl),
		provider:   mocks.NewMockProvider(ctrl),
		activities: mocks.NewMockActivityRepository(ctrl),
		poller:     &pollStub{},
	}
	svc := MustNewSubmissionService(SubmissionServiceOptions{
		Repo:       m.repo,
		Provider:   m.provider,
		Activities: m.activities,
		Poller:     m.poller,
		Model:      "report-large",
	})
	return svc, m
}

func submittableJob(id, ownerID string) *model.Job {
	job := draftJob(id, ownerID)
	job.StageData = map[string]model.AnswerMap{
		"basics": {"company_name": model.StringAnswer("Acme")},
	}
	job.StageComplete = map[string]bool{"basics": true}
	return job
}

func TestSubmissionService_Submit(t *testing.T) {
	svc, m := newSubmissionService(t)

	job := submittableJob("job-1", "owner-1")
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.provider.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req core.SubmitRequest) (*core.SubmitResult, error) {
			assert.NotEmpty(t, req.Prompt)
			assert.Equal(t, "report-large", req.Model)
			assert.Equal(t, "job-1", req.Metadata["job_id"])
			assert.Equal(t, "final", req.Metadata["report_kind"])
			return &core.SubmitResult{JobID: "ext-9"}, nil
		})
	m.repo.EXPECT().MarkSubmitted(gomock.Any(), core.MarkSubmittedParams{
		JobID:      "job-1",
		ExternalID: "ext-9",
		ReportKind: model.ReportKindFinal,
	}).Return(nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.Submit(context.Background(), "owner-1", "job-1", SubmitParams{ReportKind: model.ReportKindFinal})
	require.NoError(t, err)
	require.Len(t, m.poller.started, 1)
	assert.Equal(t, [2]string{"job-1", "ext-9"}, m.poller.started[0])
}

func TestSubmissionService_Submit_RenderedPromptAndModelOverride(t *testing.T) {
	svc, m := newSubmissionService(t)

	job := submittableJob("job-1", "owner-1")
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.provider.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req core.SubmitRequest) (*core.SubmitResult, error) {
			assert.True(t, strings.HasPrefix(req.Prompt, "Act as a market analyst."),
				"client-rendered prompt should lead the submitted prompt")
			assert.Contains(t, req.Prompt, "company_name: Acme")
			assert.Equal(t, "report-small", req.Model)
			return &core.SubmitResult{JobID: "ext-9"}, nil
		})
	m.repo.EXPECT().MarkSubmitted(gomock.Any(), gomock.Any()).Return(nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.Submit(context.Background(), "owner-1", "job-1", SubmitParams{
		ReportKind:     model.ReportKindFinal,
		RenderedPrompt: "Act as a market analyst.",
		Model:          "report-small",
	})
	require.NoError(t, err)
}

func TestSubmissionService_Submit_InvalidKind(t *testing.T) {
	svc, _ := newSubmissionService(t)

	_, err := svc.Submit(context.Background(), "owner-1", "job-1", SubmitParams{ReportKind: model.ReportKind("weekly")})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubmissionService_Submit_RequiresCompletedStage(t *testing.T) {
	svc, m := newSubmissionService(t)

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(draftJob("job-1", "owner-1"), nil)

	_, err := svc.Submit(context.Background(), "owner-1", "job-1", SubmitParams{ReportKind: model.ReportKindPreliminary})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSubmissionService_Submit_RejectsNonDraft(t *testing.T) {
	svc, m := newSubmissionService(t)

	job := submittableJob("job-1", "owner-1")
	job.Status = model.JobStatusQueued
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.Submit(context.Background(), "owner-1", "job-1", SubmitParams{ReportKind: model.ReportKindPreliminary})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestSubmissionService_Cancel(t *testing.T) {
	svc, m := newSubmissionService(t)

	job := submittableJob("job-1", "owner-1")
	job.Status = model.JobStatusProcessing
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.repo.EXPECT().CancelGeneration(gomock.Any(), "job-1").Return(true, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.Cancel(context.Background(), "owner-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, m.poller.stopped)
}

func TestSubmissionService_Cancel_NotInFlight(t *testing.T) {
	svc, m := newSubmissionService(t)

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.repo.EXPECT().CancelGeneration(gomock.Any(), "job-1").Return(false, nil)

	_, err := svc.Cancel(context.Background(), "owner-1", "job-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Empty(t, m.poller.stopped)
}

func TestSubmissionService_PollTick_TransientErrorKeepsPolling(t *testing.T) {
	svc, m := newSubmissionService(t)

	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").
		Return(nil, apperrors.ProviderTransient("connection reset", assert.AnError))

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSubmissionService_PollTick_PermanentErrorKeepsPolling(t *testing.T) {
	svc, m := newSubmissionService(t)

	// No FailGeneration expectation: even a provider that disowns the handle
	// must not fail the job from a poll tick. The reaper handles stuck jobs.
	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").
		Return(nil, apperrors.ProviderSubmission("generation ext-9 unknown to provider", nil))

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSubmissionService_PollTick_ProgressWriteBack(t *testing.T) {
	svc, m := newSubmissionService(t)

	progress := 40
	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").Return(&core.GenerationStatus{
		Status:   model.ExternalProcessing,
		Progress: &progress,
	}, nil)
	m.repo.EXPECT().UpdateExternalProgress(gomock.Any(), core.ExternalProgressParams{
		JobID:    "job-1",
		Status:   model.ExternalProcessing,
		Progress: &progress,
	}).Return(nil)

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSubmissionService_PollTick_Completed(t *testing.T) {
	svc, m := newSubmissionService(t)

	kind := model.ReportKindFinal
	submitted := time.Now().Add(-time.Minute)
	job := submittableJob("job-1", "owner-1")
	job.Status = model.JobStatusProcessing
	job.ExternalReportKind = &kind
	job.SubmittedAt = &submitted

	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").Return(&core.GenerationStatus{
		Status: model.ExternalCompleted,
		Result: `{"report": "# Final Report\n\nAcme is growing."}`,
	}, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.repo.EXPECT().CompleteGeneration(gomock.Any(), core.CompleteGenerationParams{
		JobID:       "job-1",
		ReportKind:  model.ReportKindFinal,
		Content:     "# Final Report\n\nAcme is growing.",
		GeneratedBy: model.GeneratedByProvider,
		Degraded:    false,
	}).Return(true, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestSubmissionService_PollTick_CompletedWithUnusableResultDegrades(t *testing.T) {
	svc, m := newSubmissionService(t)

	job := submittableJob("job-1", "owner-1")
	job.Status = model.JobStatusProcessing

	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").Return(&core.GenerationStatus{
		Status: model.ExternalCompleted,
		Result: "   ",
	}, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.repo.EXPECT().CompleteGeneration(gomock.Any(), core.CompleteGenerationParams{
		JobID:       "job-1",
		ReportKind:  model.ReportKindPreliminary,
		Content:     generation.DegradedPlaceholder,
		GeneratedBy: model.GeneratedByFallback,
		Degraded:    true,
	}).Return(true, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestSubmissionService_PollTick_CompletedRaceLoses(t *testing.T) {
	svc, m := newSubmissionService(t)

	job := submittableJob("job-1", "owner-1")
	job.Status = model.JobStatusProcessing

	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").Return(&core.GenerationStatus{
		Status: model.ExternalCompleted,
		Result: "done",
	}, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.repo.EXPECT().CompleteGeneration(gomock.Any(), gomock.Any()).Return(false, nil)

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestSubmissionService_PollTick_JobDeletedWhileInFlight(t *testing.T) {
	svc, m := newSubmissionService(t)

	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").Return(&core.GenerationStatus{
		Status: model.ExternalCompleted,
		Result: "done",
	}, nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(nil, apperrors.NotFoundf("job job-1 not found"))

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestSubmissionService_PollTick_Failed(t *testing.T) {
	svc, m := newSubmissionService(t)

	m.provider.EXPECT().GetStatus(gomock.Any(), "ext-9").Return(&core.GenerationStatus{
		Status: model.ExternalFailed,
		Error:  "model overloaded",
	}, nil)
	m.repo.EXPECT().FailGeneration(gomock.Any(), "job-1", "model overloaded").Return(true, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	done, err := svc.PollTick(context.Background(), "job-1", "ext-9")
	require.NoError(t, err)
	assert.True(t, done)
}
