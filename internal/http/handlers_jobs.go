// Package httpx provides HTTP handlers and utilities for the discovery engine API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	"github.com/draftforge/discovery-engine/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// JobHandlers provides HTTP handlers for job lifecycle operations.
type JobHandlers struct {
	Svc *service.JobService
}

// CreateJob handles HTTP requests to create a new job.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	// The caller identity always wins over whatever the body claims.
	req.OwnerID = ownerID(r)

	job, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, job)
}

// ListJobs handles HTTP requests to list the caller's jobs.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.JobListOptions{
		OwnerID: ownerID(r),
		Limit:   limit,
		Offset:  offset,
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := model.JobStatus(v)
		if !status.Valid() {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "invalid_status",
				Err:     errors.New("unknown job status: " + v),
			})
			return
		}
		opts.Status = &status
	}

	jobs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobs)
}

// GetJob handles HTTP requests to retrieve a single job.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.Get(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// DeleteJob handles HTTP requests to delete a job and its dependents.
func (h *JobHandlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), ownerID(r), r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus handles HTTP requests for the lightweight job status snapshot.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Svc.Status(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// SaveStage handles HTTP requests to save answers for a discovery stage.
// Saving a stage marks it complete; completion never regresses.
func (h *JobHandlers) SaveStage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers model.AnswerMap `json:"answers"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	job, err := h.Svc.SaveStage(r.Context(), ownerID(r), r.PathValue("id"), r.PathValue("stage"), body.Answers)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// SaveDynamicAnswers handles HTTP requests to save answers for the generated
// follow-up questions.
func (h *JobHandlers) SaveDynamicAnswers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers model.AnswerMap `json:"answers"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	job, err := h.Svc.SaveDynamicAnswers(r.Context(), ownerID(r), r.PathValue("id"), body.Answers)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Export handles HTTP requests for the full export bundle of a job.
func (h *JobHandlers) Export(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.Svc.Export(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, bundle)
}

// Activities handles HTTP requests for a job's activity log.
func (h *JobHandlers) Activities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Svc.Activities(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, activities)
}
