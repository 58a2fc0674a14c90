package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Docket Module Error Codes
const (
	ErrCodeDeadlineNotFound     ErrorCode = "DKT_001"
	ErrCodeDeadlineInvalidDate  ErrorCode = "DKT_002"
	ErrCodeDeadlineInvalidEnum  ErrorCode = "DKT_003"
	ErrCodeDeadlineAlertInvalid ErrorCode = "DKT_004"
	ErrCodeCalendarMonthInvalid ErrorCode = "DKT_005"
	ErrCodeFilterValueInvalid   ErrorCode = "DKT_006"
	ErrCodeCaseNotFound         ErrorCode = "DKT_007"
)

// Triage Module Error Codes
const (
	ErrCodeJobAlreadyRunning   ErrorCode = "TRG_001"
	ErrCodeJobNotFound         ErrorCode = "TRG_002"
	ErrCodeJobThresholdInvalid ErrorCode = "TRG_003"
	ErrCodeJobDocumentSetEmpty ErrorCode = "TRG_004"
	ErrCodeJobTerminal         ErrorCode = "TRG_005"
	ErrCodeJobSubmissionFailed ErrorCode = "TRG_006"
	ErrCodeDocumentNotFound    ErrorCode = "TRG_007"
	ErrCodeScoringFailed       ErrorCode = "TRG_008"
)

// Conflict Check Module Error Codes
const (
	ErrCodeConflictCheckFailed  ErrorCode = "CNF_001"
	ErrCodeConflictStateUnknown ErrorCode = "CNF_002"
)

// Mapping Collaborator Error Codes
const (
	ErrCodeMappingUnavailable   ErrorCode = "MAP_001"
	ErrCodeMappingResultInvalid ErrorCode = "MAP_002"
	ErrCodeAlignmentFailed      ErrorCode = "MAP_003"
)

// Data Source / Collaborator Transport Error Codes
const (
	ErrCodeDataSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeDataSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeDataSourceAuthFailed  ErrorCode = "SRC_003"
	ErrCodeDataSourceParseError  ErrorCode = "SRC_004"
	ErrCodeSearchFailed          ErrorCode = "SRC_005"
)

// Aliases used throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeOK             = ErrorCode("OK")

	CodeDatabaseError = ErrCodeDatabaseError
	CodeCacheError    = ErrCodeCacheError
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDeadlineNotFound:     http.StatusNotFound,
	ErrCodeDeadlineInvalidDate:  http.StatusBadRequest,
	ErrCodeDeadlineInvalidEnum:  http.StatusBadRequest,
	ErrCodeDeadlineAlertInvalid: http.StatusBadRequest,
	ErrCodeCalendarMonthInvalid: http.StatusBadRequest,
	ErrCodeFilterValueInvalid:   http.StatusBadRequest,
	ErrCodeCaseNotFound:         http.StatusNotFound,

	ErrCodeJobAlreadyRunning:   http.StatusConflict,
	ErrCodeJobNotFound:         http.StatusNotFound,
	ErrCodeJobThresholdInvalid: http.StatusBadRequest,
	ErrCodeJobDocumentSetEmpty: http.StatusBadRequest,
	ErrCodeJobTerminal:         http.StatusConflict,
	ErrCodeJobSubmissionFailed: http.StatusBadGateway,
	ErrCodeDocumentNotFound:    http.StatusNotFound,
	ErrCodeScoringFailed:       http.StatusBadGateway,

	ErrCodeConflictCheckFailed:  http.StatusBadGateway,
	ErrCodeConflictStateUnknown: http.StatusBadGateway,

	ErrCodeMappingUnavailable:   http.StatusBadGateway,
	ErrCodeMappingResultInvalid: http.StatusBadGateway,
	ErrCodeAlignmentFailed:      http.StatusBadGateway,

	ErrCodeDataSourceUnavailable: http.StatusServiceUnavailable,
	ErrCodeDataSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeDataSourceAuthFailed:  http.StatusBadGateway,
	ErrCodeDataSourceParseError:  http.StatusBadGateway,
	ErrCodeSearchFailed:          http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDeadlineNotFound:     "deadline not found",
	ErrCodeDeadlineInvalidDate:  "invalid deadline date",
	ErrCodeDeadlineInvalidEnum:  "invalid deadline field value",
	ErrCodeDeadlineAlertInvalid: "invalid alert interval",
	ErrCodeCalendarMonthInvalid: "invalid calendar month",
	ErrCodeFilterValueInvalid:   "invalid filter value",
	ErrCodeCaseNotFound:         "case not found",

	ErrCodeJobAlreadyRunning:   "a job of this type is already running for the case",
	ErrCodeJobNotFound:         "triage job not found",
	ErrCodeJobThresholdInvalid: "triage threshold must be between 0 and 1",
	ErrCodeJobDocumentSetEmpty: "document set must not be empty",
	ErrCodeJobTerminal:         "triage job already reached a terminal state",
	ErrCodeJobSubmissionFailed: "triage job submission failed",
	ErrCodeDocumentNotFound:    "document not found",
	ErrCodeScoringFailed:       "document scoring failed",

	ErrCodeConflictCheckFailed:  "conflict check failed",
	ErrCodeConflictStateUnknown: "conflict state unknown",

	ErrCodeMappingUnavailable:   "mapping service unavailable",
	ErrCodeMappingResultInvalid: "mapping service returned out-of-range metrics",
	ErrCodeAlignmentFailed:      "spatial alignment failed",

	ErrCodeDataSourceUnavailable: "data source unavailable",
	ErrCodeDataSourceRateLimited: "data source rate limited",
	ErrCodeDataSourceAuthFailed:  "data source authentication failed",
	ErrCodeDataSourceParseError:  "failed to parse data source response",
	ErrCodeSearchFailed:          "precedent search failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
