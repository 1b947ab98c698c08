package httpx

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// StatusForError maps an application error to its HTTP status code.
// Unrecognized errors map to 500 so internals are never leaked as client faults.
func StatusForError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusBadRequest
	}

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeValidation, apperrors.ErrCodeForeignKey:
		return http.StatusBadRequest
	case apperrors.ErrCodeEditQuotaExceeded:
		return http.StatusConflict
	case apperrors.ErrCodeGenerationFormat,
		apperrors.ErrCodeProviderSubmission,
		apperrors.ErrCodeProviderTransient:
		return http.StatusBadGateway
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError writes a JSON error response for a service-layer error.
// The error code in the body is the application error code; 5xx responses
// carry a generic message so internal detail stays out of the payload.
func WriteAppError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	body := errorBody{
		Error:   string(apperrors.GetCode(err)),
		Message: err.Error(),
		Field:   apperrors.GetField(err),
	}
	if status >= http.StatusInternalServerError {
		body.Message = "internal error"
	}
	WriteJSON(w, status, body)
}
