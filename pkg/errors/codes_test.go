package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeDeadlineNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatusForCode(ErrCodeJobAlreadyRunning))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(ErrCodeValidation))
	assert.Equal(t, http.StatusBadGateway, HTTPStatusForCode(ErrCodeConflictCheckFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("NOPE_999")),
		"unmapped codes fall back to 500")
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "triage job not found", DefaultMessageForCode(ErrCodeJobNotFound))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("NOPE_999")))
}

func TestEveryMappedCodeHasAMessage(t *testing.T) {
	t.Parallel()

	for code := range ErrorCodeHTTPStatus {
		_, ok := ErrorCodeMessage[code]
		assert.True(t, ok, "code %s has an HTTP status but no default message", code)
	}
}

func TestClientServerClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, IsClientError(ErrCodeFilterValueInvalid))
	assert.False(t, IsServerError(ErrCodeFilterValueInvalid))
	assert.True(t, IsServerError(ErrCodeInternal))
	assert.False(t, IsClientError(ErrCodeInternal))
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DKT", ModuleForCode(ErrCodeCalendarMonthInvalid))
	assert.Equal(t, "TRG", ModuleForCode(ErrCodeJobTerminal))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeTimeout))
	assert.Equal(t, "UNKNOWN", ModuleForCode(ErrorCode("")))
}
