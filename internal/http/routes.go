package httpx

import (
	"log/slog"
	"net/http"

	"github.com/draftforge/discovery-engine/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs        *service.JobService
	Questions   *service.QuestionService
	Submissions *service.SubmissionService
	Edits       *service.EditService
	Resume      *service.ResumeService

	// MaxBodyBytes caps request body sizes; 0 disables the cap.
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	generationHandlers := &GenerationHandlers{
		Questions:   services.Questions,
		Submissions: services.Submissions,
	}
	sessionHandlers := &SessionHandlers{Svc: services.Resume}
	reportHandlers := &ReportHandlers{Svc: services.Edits}

	registerJobRoutes(mux, jobHandlers)
	registerGenerationRoutes(mux, generationHandlers)
	registerSessionRoutes(mux, sessionHandlers)
	registerReportRoutes(mux, reportHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Identity()(handler)
	handler = MaxBody(services.MaxBodyBytes)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /api/jobs", h.CreateJob)
	mux.HandleFunc("GET /api/jobs", h.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.GetJob)
	mux.HandleFunc("DELETE /api/jobs/{id}", h.DeleteJob)
	mux.HandleFunc("GET /api/jobs/{id}/status", h.GetStatus)
	mux.HandleFunc("PUT /api/jobs/{id}/stages/{stage}", h.SaveStage)
	mux.HandleFunc("PUT /api/jobs/{id}/answers", h.SaveDynamicAnswers)
	mux.HandleFunc("GET /api/jobs/{id}/export", h.Export)
	mux.HandleFunc("GET /api/jobs/{id}/activities", h.Activities)
}

func registerGenerationRoutes(mux *http.ServeMux, h *GenerationHandlers) {
	mux.HandleFunc("POST /api/jobs/{id}/questions", h.GenerateQuestions)
	mux.HandleFunc("POST /api/jobs/{id}/submit", h.Submit)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", h.Cancel)
}

func registerSessionRoutes(mux *http.ServeMux, h *SessionHandlers) {
	mux.HandleFunc("PUT /api/jobs/{id}/session", h.SaveSession)
	mux.HandleFunc("POST /api/jobs/{id}/resume", h.Resume)
}

func registerReportRoutes(mux *http.ServeMux, h *ReportHandlers) {
	mux.HandleFunc("GET /api/jobs/{id}/reports", h.ListReports)
	mux.HandleFunc("GET /api/jobs/{id}/reports/{kind}", h.CurrentReport)
	mux.HandleFunc("POST /api/jobs/{id}/edits", h.EditReport)
	mux.HandleFunc("GET /api/jobs/{id}/edits", h.ListEdits)
}
