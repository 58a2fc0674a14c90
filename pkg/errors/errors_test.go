// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LitiDocket/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"deadline not found", errors.ErrCodeDeadlineNotFound, "deadline 7f3a not found"},
		{"invalid param", errors.CodeInvalidParam, "window days must be positive"},
		{"job already running", errors.ErrCodeJobAlreadyRunning, "triage already in flight"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestError_FormatIncludesDetail(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeValidation, "validation failed").WithDetail("field=priority")
	assert.True(t, strings.Contains(ae.Error(), "validation failed"))
	assert.True(t, strings.Contains(ae.Error(), "field=priority"))

	bare := errors.New(errors.ErrCodeValidation, "validation failed")
	assert.False(t, strings.Contains(bare.Error(), ":"), "bare error should omit detail segment: %s", bare.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	var nilErr error
	assert.Nil(t, errors.Wrap(nilErr, errors.CodeInternal, "ignored"))
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeJobNotFound, "job gone")
	wrapped := errors.Wrap(inner, errors.CodeUnknown, "while polling")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeJobNotFound, wrapped.Code, "CodeUnknown wrap must keep the inner code")
	assert.True(t, stderrors.Is(wrapped, wrapped), "identity")

	var ae *errors.AppError
	require.True(t, stderrors.As(wrapped, &ae))
}

func TestWrap_ChainTraversal(t *testing.T) {
	t.Parallel()

	root := fmt.Errorf("socket closed")
	mid := errors.Wrap(root, errors.ErrCodeDatabaseError, "query failed")
	top := errors.Wrap(mid, errors.ErrCodeInternal, "list deadlines failed")

	assert.True(t, errors.IsCode(top, errors.ErrCodeDatabaseError))
	assert.True(t, errors.IsCode(top, errors.ErrCodeInternal))
	assert.False(t, errors.IsCode(top, errors.ErrCodeCacheError))
	assert.Equal(t, root, stderrors.Unwrap(stderrors.Unwrap(top)))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.ErrCodeConflictCheckFailed,
		errors.GetCode(errors.New(errors.ErrCodeConflictCheckFailed, "checker down")))
}

func TestIsNotFound_CoversDomainVariants(t *testing.T) {
	t.Parallel()

	for _, code := range []errors.ErrorCode{
		errors.CodeNotFound,
		errors.ErrCodeDeadlineNotFound,
		errors.ErrCodeCaseNotFound,
		errors.ErrCodeJobNotFound,
		errors.ErrCodeDocumentNotFound,
	} {
		assert.True(t, errors.IsNotFound(errors.New(code, "missing")), "code %s", code)
	}
	assert.False(t, errors.IsNotFound(errors.New(errors.ErrCodeConflict, "clash")))
	assert.False(t, errors.IsNotFound(nil))
}

func TestIsValidationAndIsConflict(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsValidation(errors.NewValidationError("bad filter")))
	assert.True(t, errors.IsValidation(errors.New(errors.ErrCodeJobThresholdInvalid, "1.2")))
	assert.False(t, errors.IsValidation(errors.New(errors.ErrCodeInternal, "boom")))

	assert.True(t, errors.IsConflict(errors.New(errors.ErrCodeJobAlreadyRunning, "busy")))
	assert.True(t, errors.IsConflict(errors.Conflict("duplicate")))
	assert.False(t, errors.IsConflict(errors.NotFound("gone")))
}

func TestWithDetailAndWithCause_DoNotMutateReceiver(t *testing.T) {
	t.Parallel()

	base := errors.New(errors.ErrCodeInternal, "base")
	detailed := base.WithDetail("extra")
	caused := base.WithCause(fmt.Errorf("root"))

	assert.Empty(t, base.Detail)
	assert.Nil(t, base.Cause)
	assert.Equal(t, "extra", detailed.Detail)
	require.NotNil(t, caused.Cause)

	var nilErr *errors.AppError
	assert.Nil(t, nilErr.WithDetail("x"))
	assert.Nil(t, nilErr.WithCause(fmt.Errorf("y")))
}
