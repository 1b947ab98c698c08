package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mergeFixture(updatedAt time.Time) *Job {
	return &Job{
		StageData: map[string]AnswerMap{
			"basics": {"company_name": StringAnswer("Acme")},
			"goals":  {"target": StringAnswer("server")},
		},
		StageComplete: map[string]bool{"basics": true},
		UpdatedAt:     updatedAt,
	}
}

func TestMergeDrafts_NewerSnapshotReplacesOpenStages(t *testing.T) {
	now := time.Now()
	job := mergeFixture(now.Add(-time.Hour))
	snap := &SessionSnapshot{
		SavedAt: now,
		Drafts: map[string]AnswerMap{
			"basics": {"company_name": StringAnswer("Intruder Co")},
			"goals":  {"target": StringAnswer("client")},
		},
	}

	changed := MergeDrafts(job, snap)

	assert.Equal(t, []string{"goals"}, changed)
	// Completed stages never regress.
	assert.Equal(t, "Acme", job.StageData["basics"]["company_name"].Str)
	// Open stages are replaced wholesale.
	assert.Equal(t, "client", job.StageData["goals"]["target"].Str)
}

func TestMergeDrafts_StaleSnapshotIgnored(t *testing.T) {
	now := time.Now()
	job := mergeFixture(now)
	snap := &SessionSnapshot{
		SavedAt: now.Add(-time.Minute),
		Drafts:  map[string]AnswerMap{"goals": {"target": StringAnswer("client")}},
	}

	assert.Nil(t, MergeDrafts(job, snap))
	assert.Equal(t, "server", job.StageData["goals"]["target"].Str)
}

func TestMergeDrafts_SessionSavedAtCountsAsServerTime(t *testing.T) {
	now := time.Now()
	job := mergeFixture(now.Add(-2 * time.Hour))
	saved := now.Add(-time.Minute)
	job.SessionSavedAt = &saved

	snap := &SessionSnapshot{
		SavedAt: now.Add(-30 * time.Minute),
		Drafts:  map[string]AnswerMap{"goals": {"target": StringAnswer("client")}},
	}

	// The snapshot is newer than UpdatedAt but older than the last session
	// save, so it loses.
	assert.Nil(t, MergeDrafts(job, snap))
}

func TestMergeDrafts_EqualTimestampLoses(t *testing.T) {
	now := time.Now()
	job := mergeFixture(now)
	snap := &SessionSnapshot{
		SavedAt: now,
		Drafts:  map[string]AnswerMap{"goals": {"target": StringAnswer("client")}},
	}

	assert.Nil(t, MergeDrafts(job, snap))
}

func TestMergeDrafts_NilAndEmptyInputs(t *testing.T) {
	assert.Nil(t, MergeDrafts(nil, &SessionSnapshot{SavedAt: time.Now()}))
	assert.Nil(t, MergeDrafts(&Job{}, nil))
	assert.Nil(t, MergeDrafts(&Job{}, &SessionSnapshot{SavedAt: time.Now()}))
}

func TestMergeDrafts_InitializesStageData(t *testing.T) {
	now := time.Now()
	job := &Job{UpdatedAt: now.Add(-time.Hour)}
	snap := &SessionSnapshot{
		SavedAt: now,
		Drafts:  map[string]AnswerMap{"basics": {"company_name": StringAnswer("Acme")}},
	}

	changed := MergeDrafts(job, snap)
	assert.Equal(t, []string{"basics"}, changed)
	assert.Equal(t, "Acme", job.StageData["basics"]["company_name"].Str)
}
