package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/mocks"
)

type jobServiceMocks struct {
	repo       *mocks.MockJobRepository
	activities *mocks.MockActivityRepository
	reports    *mocks.MockReportRepository
	edits      *mocks.MockEditRepository
	drafts     *mocks.MockDraftStore
}

func newJobService(t *testing.T) (*JobService, jobServiceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := jobServiceMocks{
		repo:       mocks.NewMockJobRepository(ctrl),
		activities: mocks.NewMockActivityRepository(ctrl),
		reports:    mocks.NewMockReportRepository(ctrl),
		edits:      mocks.NewMockEditRepository(ctrl),
		drafts:     mocks.NewMockDraftStore(ctrl),
	}
	svc := MustNewJobService(JobServiceOptions{
		Repo:       m.repo,
		Activities: m.activities,
		Reports:    m.reports,
		Edits:      m.edits,
		Drafts:     m.drafts,
	})
	return svc, m
}

func draftJob(id, ownerID string) *model.Job {
	return &model.Job{
		ID:            id,
		OwnerID:       ownerID,
		Title:         "Acme discovery",
		Status:        model.JobStatusDraft,
		StageData:     map[string]model.AnswerMap{},
		StageComplete: map[string]bool{},
	}
}

func TestJobService_Create(t *testing.T) {
	svc, m := newJobService(t)

	req := &model.CreateJobRequest{OwnerID: "owner-1", Title: "Acme discovery"}
	created := draftJob("job-1", "owner-1")
	created.EditsRemaining = model.DefaultEditQuota

	m.repo.EXPECT().Create(gomock.Any(), req).Return(created, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	job, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, model.DefaultEditQuota, job.EditsRemaining)
}

func TestJobService_Create_ActivityFailureDoesNotBlock(t *testing.T) {
	svc, m := newJobService(t)

	req := &model.CreateJobRequest{OwnerID: "owner-1", Title: "Acme discovery"}
	m.repo.EXPECT().Create(gomock.Any(), req).Return(draftJob("job-1", "owner-1"), nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestJobService_Get_OwnerMismatchLooksLikeNotFound(t *testing.T) {
	svc, m := newJobService(t)

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(draftJob("job-1", "owner-1"), nil)

	_, err := svc.Get(context.Background(), "intruder", "job-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestJobService_Get_EmptyOwnerIsUnauthenticated(t *testing.T) {
	svc, _ := newJobService(t)

	_, err := svc.Get(context.Background(), "", "job-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestJobService_Delete_CleansDraftSnapshot(t *testing.T) {
	svc, m := newJobService(t)

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.repo.EXPECT().Delete(gomock.Any(), "job-1").Return(nil)
	m.drafts.EXPECT().Delete(gomock.Any(), "job-1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "owner-1", "job-1"))
}

func TestJobService_SaveStage(t *testing.T) {
	svc, m := newJobService(t)

	job := draftJob("job-1", "owner-1")
	answers := model.AnswerMap{"company_name": model.StringAnswer("Acme")}

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.repo.EXPECT().
		WriteStage(gomock.Any(), core.WriteStageParams{JobID: "job-1", StageKey: "basics", Answers: answers}).
		Return(job, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.SaveStage(context.Background(), "owner-1", "job-1", "basics", answers)
	require.NoError(t, err)
}

func TestJobService_SaveStage_Validation(t *testing.T) {
	svc, _ := newJobService(t)

	_, err := svc.SaveStage(context.Background(), "owner-1", "job-1", "  ", model.AnswerMap{"k": model.StringAnswer("v")})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.SaveStage(context.Background(), "owner-1", "job-1", "basics", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestJobService_SaveStage_RejectsNonDraft(t *testing.T) {
	svc, m := newJobService(t)

	job := draftJob("job-1", "owner-1")
	job.Status = model.JobStatusProcessing
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.SaveStage(context.Background(), "owner-1", "job-1", "basics",
		model.AnswerMap{"k": model.StringAnswer("v")})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestJobService_SaveDynamicAnswers(t *testing.T) {
	svc, m := newJobService(t)

	job := draftJob("job-1", "owner-1")
	job.Questions = []model.DynamicQuestion{{ID: "q1", Label: "What is the main goal?"}}
	answers := model.AnswerMap{"q1": model.StringAnswer("growth")}

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.repo.EXPECT().SaveDynamicAnswers(gomock.Any(), "job-1", answers).Return(nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.SaveDynamicAnswers(context.Background(), "owner-1", "job-1", answers)
	require.NoError(t, err)
}

func TestJobService_SaveDynamicAnswers_UnknownQuestionID(t *testing.T) {
	svc, m := newJobService(t)

	job := draftJob("job-1", "owner-1")
	job.Questions = []model.DynamicQuestion{{ID: "q1", Label: "What is the main goal?"}}
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)

	_, err := svc.SaveDynamicAnswers(context.Background(), "owner-1", "job-1",
		model.AnswerMap{"q9": model.StringAnswer("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestJobService_SaveDynamicAnswers_NoQuestionsYet(t *testing.T) {
	svc, m := newJobService(t)

	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(draftJob("job-1", "owner-1"), nil)

	_, err := svc.SaveDynamicAnswers(context.Background(), "owner-1", "job-1",
		model.AnswerMap{"q1": model.StringAnswer("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestJobService_Export(t *testing.T) {
	svc, m := newJobService(t)

	job := draftJob("job-1", "owner-1")
	m.repo.EXPECT().GetByID(gomock.Any(), "job-1").Return(job, nil)
	m.reports.EXPECT().ListByJob(gomock.Any(), "job-1").Return([]*model.JobReport{{ID: "r1"}}, nil)
	m.edits.EXPECT().ListByJob(gomock.Any(), "job-1").Return([]*model.JobEdit{{ID: "e1"}}, nil)
	m.activities.EXPECT().ListByJob(gomock.Any(), "job-1").Return([]*model.JobActivity{{ID: "a1"}}, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	bundle, err := svc.Export(context.Background(), "owner-1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, job, bundle.Job)
	assert.Len(t, bundle.Reports, 1)
	assert.Len(t, bundle.Edits, 1)
	assert.Len(t, bundle.Activities, 1)
	assert.False(t, bundle.ExportedAt.IsZero())
}
