package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for AIKG errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Observability error codes
const (
	TRACING_INIT_FAILED ErrorCode = "TRACING_INIT_FAILED"
)

// Graph store error codes
const (
	GRAPH_UNAVAILABLE     ErrorCode = "GRAPH_UNAVAILABLE"
	GRAPH_QUERY_FAILED    ErrorCode = "GRAPH_QUERY_FAILED"
	GRAPH_WRITE_FAILED    ErrorCode = "GRAPH_WRITE_FAILED"
	GRAPH_CONNECTION_LOST ErrorCode = "GRAPH_CONNECTION_LOST"
)

// Knowledge error codes
const (
	KNOWLEDGE_NOT_FOUND ErrorCode = "KNOWLEDGE_NOT_FOUND"
	IMPORT_FAILED       ErrorCode = "IMPORT_FAILED"
	SEED_PARSE_FAILED   ErrorCode = "SEED_PARSE_FAILED"
)

// Conversation error codes
const (
	CONVERSATION_NOT_FOUND ErrorCode = "CONVERSATION_NOT_FOUND"
	USER_NOT_FOUND         ErrorCode = "USER_NOT_FOUND"
	USER_ALREADY_EXISTS    ErrorCode = "USER_ALREADY_EXISTS"
	AUTH_FAILED            ErrorCode = "AUTH_FAILED"
	SNAPSHOT_DECODE_FAILED ErrorCode = "SNAPSHOT_DECODE_FAILED"
	SNAPSHOT_ENCODE_FAILED ErrorCode = "SNAPSHOT_ENCODE_FAILED"
)

// Generation error codes
const (
	GENERATION_UNAVAILABLE ErrorCode = "GENERATION_UNAVAILABLE"
	GENERATION_TIMEOUT     ErrorCode = "GENERATION_TIMEOUT"
	PROVIDER_NOT_FOUND     ErrorCode = "PROVIDER_NOT_FOUND"
)

// Validation error codes
const (
	INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
)

// AIKGError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type AIKGError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *AIKGError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *AIKGError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an AIKGError with the same Code.
func (e *AIKGError) Is(target error) bool {
	var kgErr *AIKGError
	if errors.As(target, &kgErr) {
		return e.Code == kgErr.Code
	}
	return false
}

// NewError creates a new non-retryable AIKGError with the given code and message.
func NewError(code ErrorCode, message string) *AIKGError {
	return &AIKGError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable AIKGError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *AIKGError {
	return &AIKGError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable AIKGError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *AIKGError {
	return &AIKGError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// WrapRetryableError creates a retryable AIKGError that wraps an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *AIKGError {
	return &AIKGError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from err if it is an AIKGError.
// Returns an empty code and false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var kgErr *AIKGError
	if errors.As(err, &kgErr) {
		return kgErr.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given error code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// IsRetryable reports whether err is an AIKGError marked retryable.
func IsRetryable(err error) bool {
	var kgErr *AIKGError
	if errors.As(err, &kgErr) {
		return kgErr.Retryable
	}
	return false
}
