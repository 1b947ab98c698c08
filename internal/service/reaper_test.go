package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	"github.com/draftforge/discovery-engine/internal/mocks"
)

type reaperMocks struct {
	repo       *mocks.MockJobRepository
	activities *mocks.MockActivityRepository
	poller     *pollStub
}

func newReaperService(t *testing.T, cfg ReaperConfig) (*ReaperService, reaperMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := reaperMocks{
		repo:       mocks.NewMockJobRepository(ctrl),
		activities: mocks.NewMockActivityRepository(ctrl),
		poller:     &pollStub{},
	}
	svc := MustNewReaperService(ReaperServiceOptions{
		Repo:       m.repo,
		Activities: m.activities,
		Poller:     m.poller,
		Config:     cfg,
	})
	return svc, m
}

func TestReaperService_Sweep(t *testing.T) {
	svc, m := newReaperService(t, ReaperConfig{MaxPollDuration: 30 * time.Minute, BatchSize: 50})
	ctx := context.Background()

	before := time.Now().Add(-30 * time.Minute)
	m.repo.EXPECT().FailStaleSubmissions(ctx, gomock.Any(), 50).DoAndReturn(
		func(_ context.Context, cutoff time.Time, _ int) ([]string, error) {
			after := time.Now().Add(-30 * time.Minute)
			assert.False(t, cutoff.Before(before), "cutoff should be now minus MaxPollDuration")
			assert.False(t, cutoff.After(after.Add(time.Second)))
			return []string{"job-1", "job-2"}, nil
		})
	m.activities.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *model.JobActivity) error {
			assert.Equal(t, model.ActivityTimedOut, a.Action)
			return nil
		}).Times(2)

	require.NoError(t, svc.Sweep(ctx))
	assert.Equal(t, []string{"job-1", "job-2"}, m.poller.stopped)
}

func TestReaperService_Sweep_NothingStale(t *testing.T) {
	svc, m := newReaperService(t, ReaperConfig{})
	ctx := context.Background()

	m.repo.EXPECT().FailStaleSubmissions(ctx, gomock.Any(), 100).Return(nil, nil)

	require.NoError(t, svc.Sweep(ctx))
	assert.Empty(t, m.poller.stopped)
}

func TestReaperService_Sweep_RepoError(t *testing.T) {
	svc, m := newReaperService(t, ReaperConfig{})
	ctx := context.Background()

	m.repo.EXPECT().FailStaleSubmissions(ctx, gomock.Any(), 100).Return(nil, assert.AnError)

	err := svc.Sweep(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReaperService_Sweep_ActivityFailureDoesNotBlock(t *testing.T) {
	svc, m := newReaperService(t, ReaperConfig{})
	ctx := context.Background()

	m.repo.EXPECT().FailStaleSubmissions(ctx, gomock.Any(), 100).Return([]string{"job-1"}, nil)
	m.activities.EXPECT().Append(ctx, gomock.Any()).Return(assert.AnError)

	require.NoError(t, svc.Sweep(ctx))
	assert.Equal(t, []string{"job-1"}, m.poller.stopped)
}

func TestReaperService_Run_StopsOnCancel(t *testing.T) {
	svc, m := newReaperService(t, ReaperConfig{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	m.repo.EXPECT().FailStaleSubmissions(gomock.Any(), gomock.Any(), 100).
		Return(nil, nil).MinTimes(1)

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "graceful shutdown returns nil")
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestReaperConfig_ApplyDefaults(t *testing.T) {
	cfg := ReaperConfig{}
	cfg.applyDefaults()
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 30*time.Minute, cfg.MaxPollDuration)
	assert.Equal(t, 100, cfg.BatchSize)
}
