// Package errors provides the standardized error taxonomy for the reconciler
// and its mapping onto HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Evaluation errors raised while retrieving and decoding upstream tickets.
const (
	ErrCodeFetchFailed              ErrorCode = "FETCH_FAILED"
	ErrCodeUnexpectedResponseFormat ErrorCode = "UNEXPECTED_RESPONSE_FORMAT"
	ErrCodeParseFailed              ErrorCode = "PARSE_FAILED"
	ErrCodeEmptyDataset             ErrorCode = "EMPTY_DATASET"
	ErrCodeMissingColumns           ErrorCode = "MISSING_COLUMNS"
	ErrCodeInvalidDate              ErrorCode = "INVALID_DATE"
)

// Request validation errors raised at the HTTP boundary.
const (
	ErrCodeInvalidBody          ErrorCode = "INVALID_BODY"
	ErrCodeMissingCauldronData  ErrorCode = "MISSING_CAULDRON_DATA"
	ErrCodeMissingRequiredField ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidFieldType     ErrorCode = "INVALID_FIELD_TYPE"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFetchFailedError reports that the upstream ticket request could not be completed.
func NewFetchFailedError(err error) *StandardError {
	return newError(ErrCodeFetchFailed,
		fmt.Sprintf("Failed to fetch tickets API: %s", err.Error()),
		err.Error(), err)
}

// NewUnexpectedResponseFormatError reports a top-level payload shape no matcher accepts.
func NewUnexpectedResponseFormatError(kind string) *StandardError {
	return newError(ErrCodeUnexpectedResponseFormat,
		"Unexpected API response format.",
		fmt.Sprintf("top-level JSON type: %s", kind), nil)
}

// NewParseFailedError reports a body or record that could not be decoded into tickets.
func NewParseFailedError(err error) *StandardError {
	return newError(ErrCodeParseFailed,
		fmt.Sprintf("Error parsing tickets JSON: %s", err.Error()),
		err.Error(), err)
}

func NewEmptyDatasetError() *StandardError {
	return newError(ErrCodeEmptyDataset, "No ticket data found in response.", "", nil)
}

// NewMissingColumnsError lists the columns that were actually present.
func NewMissingColumnsError(present, missing []string) *StandardError {
	e := newError(ErrCodeMissingColumns,
		fmt.Sprintf("Missing expected columns in ticket data: [%s]", strings.Join(present, ", ")),
		fmt.Sprintf("missing: %s", strings.Join(missing, ", ")), nil)
	e.Metadata = map[string]interface{}{
		"present": present,
		"missing": missing,
	}
	return e
}

func NewInvalidDateError(value string, err error) *StandardError {
	return newError(ErrCodeInvalidDate,
		fmt.Sprintf("Invalid date: %q", value),
		err.Error(), err)
}

func NewInvalidBodyError(details string) *StandardError {
	return newError(ErrCodeInvalidBody, "Invalid or missing JSON body", details, nil)
}

func NewMissingCauldronDataError() *StandardError {
	return newError(ErrCodeMissingCauldronData, "Missing 'cauldron_data' field", "", nil)
}

// NewMissingRequiredFieldError names the absent cauldron fields in Details only;
// the client-facing message is fixed.
func NewMissingRequiredFieldError(fields []string) *StandardError {
	return newError(ErrCodeMissingRequiredField,
		"Missing required cauldron fields",
		strings.Join(fields, ", "), nil)
}

func NewInvalidFieldTypeError(messages []string) *StandardError {
	return newError(ErrCodeInvalidFieldType,
		fmt.Sprintf("Invalid request fields: %s", strings.Join(messages, "; ")),
		"", nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Internal server error", err.Error(), err)
}

// ==========================
// 3. Error Conversion to HTTP
// ==========================

// HTTPStatusMapping maps error codes to response statuses. Upstream
// evaluation failures are reported in-band with a 200, matching the
// behavior existing clients depend on.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeFetchFailed:              http.StatusOK,
	ErrCodeUnexpectedResponseFormat: http.StatusOK,
	ErrCodeParseFailed:              http.StatusOK,
	ErrCodeEmptyDataset:             http.StatusOK,
	ErrCodeMissingColumns:           http.StatusOK,

	ErrCodeInvalidDate:          http.StatusBadRequest,
	ErrCodeInvalidBody:          http.StatusBadRequest,
	ErrCodeMissingCauldronData:  http.StatusBadRequest,
	ErrCodeMissingRequiredField: http.StatusBadRequest,
	ErrCodeInvalidFieldType:     http.StatusBadRequest,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the response status for a code, 500 when unknown.
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// AsStandardError extracts a *StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFetchFailed:
		return "upstream"
	case ErrCodeUnexpectedResponseFormat, ErrCodeParseFailed, ErrCodeEmptyDataset, ErrCodeMissingColumns:
		return "upstream_data"
	case ErrCodeInvalidDate, ErrCodeInvalidBody, ErrCodeMissingCauldronData,
		ErrCodeMissingRequiredField, ErrCodeInvalidFieldType:
		return "validation"
	default:
		return "internal"
	}
}
