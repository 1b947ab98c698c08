package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	plain := NotFound("job j-1 not found")
	assert.Equal(t, "job j-1 not found", plain.Error())

	cause := stderrors.New("connection refused")
	wrapped := Wrap(cause, ErrCodeInternal, "load job")
	assert.Equal(t, "load job: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		err   error
		check func(error) bool
		code  ErrorCode
	}{
		{NotFoundf("job %s not found", "j-1"), IsNotFound, ErrCodeNotFound},
		{Unauthenticated("identity required"), IsUnauthenticated, ErrCodeUnauthenticated},
		{Conflict("already queued"), IsConflict, ErrCodeConflict},
		{Validation("title is required"), IsValidation, ErrCodeValidation},
		{ValidationField("title", "required"), IsValidation, ErrCodeValidation},
		{GenerationFormat("no JSON found", "snippet"), IsGenerationFormat, ErrCodeGenerationFormat},
		{ProviderSubmission("rejected", nil), IsProviderSubmission, ErrCodeProviderSubmission},
		{ProviderTransient("status fetch failed", nil), IsProviderTransient, ErrCodeProviderTransient},
		{EditQuotaExceeded("no edits remaining"), IsEditQuotaExceeded, ErrCodeEditQuotaExceeded},
		{InconsistentVersionState("two current reports"), IsInconsistentVersionState, ErrCodeInconsistentVersionState},
		{Internalf("boom %d", 1), IsInternal, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.True(t, tc.check(tc.err))
			assert.Equal(t, tc.code, GetCode(tc.err))
			// Predicates see through plain wrapping.
			assert.True(t, tc.check(fmt.Errorf("outer: %w", tc.err)))
		})
	}
}

func TestPredicates_RejectOtherCodes(t *testing.T) {
	err := NotFound("missing")
	assert.False(t, IsConflict(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsNotFound(stderrors.New("missing")))
	assert.False(t, IsNotFound(nil))
}

func TestGetCode_NonAppError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(nil))
}

func TestGetField(t *testing.T) {
	err := ValidationField("owner_id", "owner id is required")
	assert.Equal(t, "owner_id", GetField(err))
	assert.Equal(t, "owner_id", GetField(fmt.Errorf("create: %w", err)))
	assert.Empty(t, GetField(Validation("no field")))
	assert.Empty(t, GetField(stderrors.New("plain")))
}

func TestGetSnippet(t *testing.T) {
	err := GenerationFormat("response contained no JSON", "I cannot produce…")
	assert.Equal(t, "I cannot produce…", GetSnippet(err))
	assert.Empty(t, GetSnippet(NotFound("missing")))

	cause := stderrors.New("unexpected end of JSON input")
	wrapped := GenerationFormatWrap(cause, "malformed questions payload", "{\"questio")
	require.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "{\"questio", GetSnippet(wrapped))
	assert.True(t, IsGenerationFormat(wrapped))
}
