package model

import (
	"fmt"
	"strings"
	"time"
)

// ReportKind names the report slots on a job.
type ReportKind string

const (
	// ReportKindPreliminary is the narrative generated before follow-up questions.
	ReportKindPreliminary ReportKind = "preliminary"
	// ReportKindFinal is the full report generated on submission.
	ReportKindFinal ReportKind = "final"
)

// Valid returns true if the ReportKind is known.
func (k ReportKind) Valid() bool {
	return k == ReportKindPreliminary || k == ReportKindFinal
}

// UnmarshalText implements encoding.TextUnmarshaler for path/query parsing.
func (k *ReportKind) UnmarshalText(text []byte) error {
	v := ReportKind(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid ReportKind: %q", string(text))
	}
	*k = v
	return nil
}

// JobReport is an append-only versioned snapshot of a report's content.
// Exactly one row per (job, kind) carries IsCurrent=true at any time.
type JobReport struct {
	ID          string     `json:"id"           db:"id"`
	JobID       string     `json:"job_id"       db:"job_id"`
	Kind        ReportKind `json:"kind"         db:"kind"`
	Version     int        `json:"version"      db:"version"`
	Content     string     `json:"content"      db:"content"`
	IsCurrent   bool       `json:"is_current"   db:"is_current"`
	GeneratedBy string     `json:"generated_by" db:"generated_by"`
	CreatedAt   time.Time  `json:"created_at"   db:"created_at"`
}

// Generator identities recorded on report versions.
const (
	// GeneratedByProvider marks content written back from a provider result.
	GeneratedByProvider = "provider"
	// GeneratedByEditor marks content produced by an owner edit.
	GeneratedByEditor = "editor"
	// GeneratedByFallback marks a degraded placeholder substituted for an
	// unparseable provider result.
	GeneratedByFallback = "fallback"
	// GeneratedByImport marks content carried over from a legacy import.
	GeneratedByImport = "import"
)
