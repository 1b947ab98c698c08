package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
	"github.com/draftforge/discovery-engine/internal/mocks"
)

// countingSink records Count calls so tests can assert on emitted metrics.
type countingSink struct {
	counts map[string]int64
	tags   map[string]map[string]string
}

func newCountingSink() *countingSink {
	return &countingSink{counts: map[string]int64{}, tags: map[string]map[string]string{}}
}

func (s *countingSink) Count(name string, value int64, tags map[string]string) {
	s.counts[name] += value
	s.tags[name] = tags
}
func (s *countingSink) Gauge(string, float64, map[string]string)        {}
func (s *countingSink) Timing(string, time.Duration, map[string]string) {}

type editMocks struct {
	repo       *mocks.MockJobRepository
	edits      *mocks.MockEditRepository
	reports    *mocks.MockReportRepository
	activities *mocks.MockActivityRepository
	sink       *countingSink
}

func newEditService(t *testing.T) (*EditService, editMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := editMocks{
		repo:       mocks.NewMockJobRepository(ctrl),
		edits:      mocks.NewMockEditRepository(ctrl),
		reports:    mocks.NewMockReportRepository(ctrl),
		activities: mocks.NewMockActivityRepository(ctrl),
		sink:       newCountingSink(),
	}
	svc := MustNewEditService(EditServiceOptions{
		Repo:       m.repo,
		Edits:      m.edits,
		Reports:    m.reports,
		Activities: m.activities,
		Metrics:    m.sink,
	})
	return svc, m
}

func TestEditService_Edit(t *testing.T) {
	svc, m := newEditService(t)
	ctx := context.Background()
	req := &model.EditReportRequest{
		ReportKind: model.ReportKindFinal,
		NewContent: "# Final Report\n\nRevised conclusions.",
	}

	m.repo.EXPECT().GetByID(ctx, "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.edits.EXPECT().ApplyEdit(ctx, "job-1", req).Return(&model.JobEdit{
		ID:            "edit-1",
		JobID:         "job-1",
		ReportKind:    model.ReportKindFinal,
		EditNumber:    1,
		EditedContent: req.NewContent,
	}, nil)
	m.activities.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *model.JobActivity) error {
			assert.Equal(t, model.ActivityReportEdited, a.Action)
			assert.Contains(t, string(a.Detail), `"report_kind":"final"`)
			return nil
		})

	edit, err := svc.Edit(ctx, "owner-1", "job-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, edit.EditNumber)
	assert.Equal(t, int64(1), m.sink.counts["job.report_edited"])
	assert.Equal(t, "final", m.sink.tags["job.report_edited"]["report_kind"])
}

func TestEditService_Edit_QuotaExceededEmitsMetric(t *testing.T) {
	svc, m := newEditService(t)
	ctx := context.Background()
	req := &model.EditReportRequest{ReportKind: model.ReportKindFinal, NewContent: "x"}

	m.repo.EXPECT().GetByID(ctx, "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.edits.EXPECT().ApplyEdit(ctx, "job-1", req).
		Return(nil, apperrors.EditQuotaExceeded("edit quota of 3 reached for job job-1"))

	_, err := svc.Edit(ctx, "owner-1", "job-1", req)
	require.Error(t, err)
	assert.True(t, apperrors.IsEditQuotaExceeded(err))
	assert.Equal(t, int64(1), m.sink.counts["job.edit_quota_exceeded"])
	assert.Zero(t, m.sink.counts["job.report_edited"])
}

func TestEditService_Edit_OwnerMismatchLooksLikeNotFound(t *testing.T) {
	svc, m := newEditService(t)
	ctx := context.Background()

	m.repo.EXPECT().GetByID(ctx, "job-1").Return(draftJob("job-1", "owner-1"), nil)

	_, err := svc.Edit(ctx, "someone-else", "job-1", &model.EditReportRequest{
		ReportKind: model.ReportKindFinal, NewContent: "x",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEditService_ListEdits(t *testing.T) {
	svc, m := newEditService(t)
	ctx := context.Background()

	m.repo.EXPECT().GetByID(ctx, "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.edits.EXPECT().ListByJob(ctx, "job-1").Return([]*model.JobEdit{
		{ID: "edit-1", EditNumber: 1},
		{ID: "edit-2", EditNumber: 2},
	}, nil)

	edits, err := svc.ListEdits(ctx, "owner-1", "job-1")
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Equal(t, 2, edits[1].EditNumber)
}

func TestEditService_ListReports(t *testing.T) {
	svc, m := newEditService(t)
	ctx := context.Background()

	m.repo.EXPECT().GetByID(ctx, "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.reports.EXPECT().ListByJob(ctx, "job-1").Return([]*model.JobReport{
		{ID: "rep-1", Kind: model.ReportKindPreliminary, Version: 1, IsCurrent: true},
	}, nil)

	reports, err := svc.ListReports(ctx, "owner-1", "job-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].IsCurrent)
}

func TestEditService_CurrentReport(t *testing.T) {
	svc, m := newEditService(t)
	ctx := context.Background()

	m.repo.EXPECT().GetByID(ctx, "job-1").Return(draftJob("job-1", "owner-1"), nil)
	m.reports.EXPECT().Current(ctx, "job-1", model.ReportKindFinal).Return(&model.JobReport{
		ID: "rep-2", Kind: model.ReportKindFinal, Version: 3, IsCurrent: true,
	}, nil)

	report, err := svc.CurrentReport(ctx, "owner-1", "job-1", model.ReportKindFinal)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Version)
}

func TestEditService_CurrentReport_EmptyOwnerIsUnauthenticated(t *testing.T) {
	svc, _ := newEditService(t)

	_, err := svc.CurrentReport(context.Background(), "", "job-1", model.ReportKindFinal)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
}
