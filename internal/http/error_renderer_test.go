package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "not found", err: apperrors.NotFound("gone"), want: http.StatusNotFound},
		{name: "unauthenticated", err: apperrors.Unauthenticated("who"), want: http.StatusUnauthorized},
		{name: "conflict", err: apperrors.Conflict("busy"), want: http.StatusConflict},
		{name: "validation", err: apperrors.Validation("bad"), want: http.StatusBadRequest},
		{name: "edit quota", err: apperrors.EditQuotaExceeded("spent"), want: http.StatusConflict},
		{name: "generation format", err: apperrors.GenerationFormat("unparseable", "{"), want: http.StatusBadGateway},
		{name: "provider submission", err: apperrors.ProviderSubmission("rejected", nil), want: http.StatusBadGateway},
		{name: "provider transient", err: apperrors.ProviderTransient("flaky", nil), want: http.StatusBadGateway},
		{name: "timeout code", err: apperrors.Wrap(errors.New("slow"), apperrors.ErrCodeTimeout, "timed out"), want: http.StatusGatewayTimeout},
		{name: "context deadline", err: context.DeadlineExceeded, want: http.StatusGatewayTimeout},
		{name: "context canceled", err: context.Canceled, want: http.StatusBadRequest},
		{name: "wrapped app error", err: apperrors.Wrap(apperrors.NotFound("inner"), apperrors.ErrCodeNotFound, "outer"), want: http.StatusNotFound},
		{name: "plain error is internal", err: errors.New("surprise"), want: http.StatusInternalServerError},
		{name: "inconsistent version state is internal", err: apperrors.InconsistentVersionState("two current rows"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}

func TestWriteAppError_ClientFaultKeepsMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, apperrors.ValidationField("title", "title is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Error)
	assert.Equal(t, "title is required", body.Message)
	assert.Equal(t, "title", body.Field)
}

func TestWriteAppError_ServerFaultHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("pq: relation jobs does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Message)
	assert.NotContains(t, rec.Body.String(), "relation")
}
