package model

import (
	"encoding/json"
	"time"
)

// SessionSnapshot is what a client persists for UI resumption: the opaque
// cursor blob, any locally drafted (not yet saved) stage answers, and the
// moment the snapshot was taken.
type SessionSnapshot struct {
	State   json.RawMessage      `json:"state,omitempty"`
	Drafts  map[string]AnswerMap `json:"drafts,omitempty"`
	SavedAt time.Time            `json:"saved_at"`
}

// MergeDrafts applies last-write-wins between the server-held stage data and a
// client-local draft snapshot. Granularity is the whole stage map, not the
// individual key: when the client snapshot is newer, each drafted stage map
// replaces the server copy wholesale. Completed stages never regress; drafted
// answers for a completed stage are discarded.
func MergeDrafts(job *Job, snap *SessionSnapshot) (changed []string) {
	if job == nil || snap == nil || len(snap.Drafts) == 0 {
		return nil
	}
	serverAt := job.UpdatedAt
	if job.SessionSavedAt != nil && job.SessionSavedAt.After(serverAt) {
		serverAt = *job.SessionSavedAt
	}
	if !snap.SavedAt.After(serverAt) {
		return nil
	}
	if job.StageData == nil {
		job.StageData = map[string]AnswerMap{}
	}
	for stage, draft := range snap.Drafts {
		if job.StageComplete[stage] {
			continue
		}
		job.StageData[stage] = draft
		changed = append(changed, stage)
	}
	return changed
}
