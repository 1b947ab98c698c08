package httpx

import (
	"errors"
	"net/http"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	"github.com/draftforge/discovery-engine/internal/service"
)

// GenerationHandlers provides HTTP handlers for question generation and
// report submission.
type GenerationHandlers struct {
	Questions   *service.QuestionService
	Submissions *service.SubmissionService
}

// GenerateQuestions handles HTTP requests to generate follow-up questions
// from the consolidated stage answers. The call is synchronous and idempotent:
// once a question set exists it is returned as-is.
func (h *GenerationHandlers) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.Questions.Generate(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// Submit handles HTTP requests to submit a job for report generation.
func (h *GenerationHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReportKind     model.ReportKind `json:"report_kind"`
		RenderedPrompt string           `json:"rendered_prompt"`
		Model          string           `json:"model"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}
	if body.ReportKind == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_report_kind",
			Err:     errors.New("report_kind is required"),
		})
		return
	}

	job, err := h.Submissions.Submit(r.Context(), ownerID(r), r.PathValue("id"), service.SubmitParams{
		ReportKind:     body.ReportKind,
		RenderedPrompt: body.RenderedPrompt,
		Model:          body.Model,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// Cancel handles HTTP requests to cancel an in-flight generation.
func (h *GenerationHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	job, err := h.Submissions.Cancel(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}
