package httpx

import (
	"errors"
	"net/http"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	"github.com/draftforge/discovery-engine/internal/service"
)

// ReportHandlers provides HTTP handlers for report versions and edits.
type ReportHandlers struct {
	Svc *service.EditService
}

// ListReports handles HTTP requests for all report versions of a job.
func (h *ReportHandlers) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Svc.ListReports(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// CurrentReport handles HTTP requests for the current version of one report kind.
func (h *ReportHandlers) CurrentReport(w http.ResponseWriter, r *http.Request) {
	var kind model.ReportKind
	if err := kind.UnmarshalText([]byte(r.PathValue("kind"))); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_report_kind", Err: err})
		return
	}

	report, err := h.Svc.CurrentReport(r.Context(), ownerID(r), r.PathValue("id"), kind)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// EditReport handles HTTP requests to apply an edit to a report. Each
// successful edit consumes one unit of the job's edit quota.
func (h *ReportHandlers) EditReport(w http.ResponseWriter, r *http.Request) {
	var req model.EditReportRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.NewContent == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_edit",
			Err:     errors.New("new_content is required"),
		})
		return
	}

	edit, err := h.Svc.Edit(r.Context(), ownerID(r), r.PathValue("id"), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, edit)
}

// ListEdits handles HTTP requests for a job's edit history.
func (h *ReportHandlers) ListEdits(w http.ResponseWriter, r *http.Request) {
	edits, err := h.Svc.ListEdits(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, edits)
}
