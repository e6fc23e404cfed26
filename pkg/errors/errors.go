// Package errors defines the error taxonomy for the CD-224 extract service.
//
// The legacy design distinguishes three failure classes: start-up fatals
// (missing key-file resolution, unavailable cryptor/hasher) that abort before
// the first line is read, run fatals that abort mid-stream leaving partial
// output in place, and per-record rejections. Rejections are data, not errors:
// they are routed to the invalid stream by the validator and never surface
// through this package.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryStartup       ErrorCategory = "startup"
	CategoryRun           ErrorCategory = "run"
	CategoryFile          ErrorCategory = "file"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Start-up errors
	CodeKeyResolution      ErrorCode = "key_resolution"
	CodeCryptorUnavailable ErrorCode = "cryptor_unavailable"
	CodeHasherUnavailable  ErrorCode = "hasher_unavailable"

	// Run errors
	CodeReadFailed       ErrorCode = "read_failed"
	CodeWriteFailed      ErrorCode = "write_failed"
	CodeProtectionFailed ErrorCode = "protection_failed"

	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCreate     ErrorCode = "file_create"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ExtractError is the base error type for all application errors
type ExtractError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ExtractError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// IsStartupFatal reports whether the error occurred before the first line was read
func (e *ExtractError) IsStartupFatal() bool {
	return e.Category == CategoryStartup || e.Category == CategoryConfiguration
}

// GetExitCode returns an appropriate exit code for the error
func (e *ExtractError) GetExitCode() int {
	switch e.Category {
	case CategoryStartup, CategoryConfiguration:
		return 2
	case CategoryFile:
		return 3
	case CategoryRun, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ExtractError) WithContext(key string, value interface{}) *ExtractError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ExtractError) WithSuggestion(suggestion string) *ExtractError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ExtractError
func New(category ErrorCategory, code ErrorCode, message string) *ExtractError {
	return &ExtractError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ExtractError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ExtractError {
	if err == nil {
		return nil
	}

	return &ExtractError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// StartupError creates an error for failures before the first line is read
func StartupError(code ErrorCode, detail string, err error) *ExtractError {
	var message string
	var suggestion string

	switch code {
	case CodeKeyResolution:
		message = fmt.Sprintf("no encryption key file mapped for client %s", detail)
		suggestion = "add the client to the key mapping file"
	case CodeCryptorUnavailable:
		message = fmt.Sprintf("cryptor is unavailable: %s", detail)
		suggestion = "check the encryption key file path and contents"
	case CodeHasherUnavailable:
		message = fmt.Sprintf("hasher is unavailable: %s", detail)
		suggestion = "check the salt file path and contents"
	default:
		message = fmt.Sprintf("start-up failure: %s", detail)
		suggestion = "check the run configuration"
	}

	var result *ExtractError
	if err != nil {
		result = Wrap(err, CategoryStartup, code, message)
	} else {
		result = New(CategoryStartup, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("detail", detail)
}

// RunError creates an error for failures inside the main line loop.
// Output written before the failure is left in place; no rollback.
func RunError(code ErrorCode, operation string, err error) *ExtractError {
	var message string

	switch code {
	case CodeReadFailed:
		message = fmt.Sprintf("failed reading input during %s", operation)
	case CodeWriteFailed:
		message = fmt.Sprintf("failed writing output during %s", operation)
	case CodeProtectionFailed:
		message = fmt.Sprintf("card protection failed during %s", operation)
	default:
		message = fmt.Sprintf("run aborted during %s", operation)
	}

	var result *ExtractError
	if err != nil {
		result = Wrap(err, CategoryRun, code, message)
	} else {
		result = New(CategoryRun, code, message)
	}

	return result.WithContext("operation", operation)
}

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ExtractError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have access"
	case CodeFileCreate:
		message = fmt.Sprintf("failed to create output file: %s", path)
		suggestion = "ensure the output directory exists and is writable"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ExtractError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ExtractError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the flag documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment or config file"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *ExtractError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ExtractError {
	message := fmt.Sprintf("internal error during %s", operation)

	var result *ExtractError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.WithContext("operation", operation)
}

// Utility functions

// IsExtractError checks if an error is an ExtractError
func IsExtractError(err error) bool {
	_, ok := err.(*ExtractError)
	return ok
}

// AsExtractError extracts an ExtractError from an error chain
func AsExtractError(err error) (*ExtractError, bool) {
	var extractErr *ExtractError
	if errors.As(err, &extractErr) {
		return extractErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an ExtractError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ExtractError {
	if err == nil {
		return nil
	}

	if extractErr, ok := AsExtractError(err); ok {
		return extractErr
	}

	return Wrap(err, category, code, message)
}
