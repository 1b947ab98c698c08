package model

import (
	"errors"
	"strings"
	"time"
)

// JobEdit is an append-only record of one owner edit to a generated report.
// EditNumber is sequential per job, 1..quota.
type JobEdit struct {
	ID              string     `json:"id"                 db:"id"`
	JobID           string     `json:"job_id"             db:"job_id"`
	ReportKind      ReportKind `json:"report_kind"        db:"report_kind"`
	EditNumber      int        `json:"edit_number"        db:"edit_number"`
	OriginalContent string     `json:"original_content"   db:"original_content"`
	EditedContent   string     `json:"edited_content"     db:"edited_content"`
	AIAssisted      bool       `json:"ai_assisted"        db:"ai_assisted"`
	AIModel         *string    `json:"ai_model,omitempty" db:"ai_model"`
	CreatedAt       time.Time  `json:"created_at"         db:"created_at"`
}

// EditReportRequest carries one editReport call.
type EditReportRequest struct {
	ReportKind      ReportKind `json:"report_kind"`
	NewContent      string     `json:"new_content"`
	OriginalContent string     `json:"original_content"`
	AIAssisted      bool       `json:"ai_assisted"`
	AIModel         *string    `json:"ai_model,omitempty"`
}

// Validate validates the EditReportRequest fields.
func (r *EditReportRequest) Validate() error {
	if !r.ReportKind.Valid() {
		return errors.New("invalid report kind")
	}
	if strings.TrimSpace(r.NewContent) == "" {
		return errors.New("new content is required")
	}
	if r.AIModel != nil && !r.AIAssisted {
		return errors.New("ai model requires ai assisted flag")
	}
	return nil
}
