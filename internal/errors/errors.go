// Package errors provides the error taxonomy for sixhats. It defines the
// sentinel errors, typed errors carrying diagnostic context, and
// classification helpers used by the orchestrator and the command layer.
//
// # Error Types
//
//   - InvalidInputError: malformed arguments or an unparsable hat list
//   - InvalidHatError: a hat identifier outside the six known hats
//   - ServiceError: a completion-service failure (transport, auth, quota,
//     malformed response)
//   - NotFoundError: a lookup that found nothing (archived sessions, hats)
//
// # Usage
//
//	err := errors.NewInvalidHatError("purple")
//	if errors.Is(err, errors.ErrInvalidHat) { ... }
//
//	var svcErr *errors.ServiceError
//	if errors.As(err, &svcErr) {
//	    log.Error("completion failed", "status", svcErr.StatusCode)
//	}
//
// # Classification
//
// Errors report a Severity, whether they are retryable, and whether their
// message is safe to show to a user. Retryability is informational only: the
// completion service is called exactly once per request.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidInput indicates that argument validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrInvalidHat indicates an unknown hat identifier.
	ErrInvalidHat = New("invalid hat")
	// ErrService indicates that the completion service failed.
	ErrService = New("completion service failed")
	// ErrNotFound indicates that a resource could not be found.
	ErrNotFound = New("not found")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrMissingCredentials indicates that no API key was configured.
	ErrMissingCredentials = New("missing completion service credentials")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// SixHatsError is the interface shared by every typed error in this package.
type SixHatsError interface {
	error
	Unwrap() error
	Is(target error) bool
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// InvalidInputError
// -----------------------------------------------------------------------------

// InvalidInputError represents malformed arguments.
//
// Example:
//
//	err := errors.NewInvalidInputError("hats must be a JSON array of strings").
//		WithField("hats").WithValue(raw)
type InvalidInputError struct {
	baseError
	Field string
	Value any
}

// NewInvalidInputError creates a new InvalidInputError.
func NewInvalidInputError(message string) *InvalidInputError {
	return &InvalidInputError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *InvalidInputError) WithField(field string) *InvalidInputError {
	e.Field = field
	return e
}

// WithValue adds the offending value to the error context.
func (e *InvalidInputError) WithValue(value any) *InvalidInputError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *InvalidInputError) WithCause(cause error) *InvalidInputError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *InvalidInputError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid input")
	if e.Field != "" {
		fmt.Fprintf(&sb, " [%s]", e.Field)
	}
	sb.WriteString(": ")
	sb.WriteString(e.message)
	if e.Value != nil {
		fmt.Fprintf(&sb, " (got: %v)", e.Value)
	}
	if e.cause != nil {
		fmt.Fprintf(&sb, ": %v", e.cause)
	}
	return sb.String()
}

// Is checks if this error matches the target.
func (e *InvalidInputError) Is(target error) bool {
	if _, ok := target.(*InvalidInputError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// InvalidHatError
// -----------------------------------------------------------------------------

// InvalidHatError reports a hat identifier that is not one of the six hats.
type InvalidHatError struct {
	baseError
	HatID    string
	Position int
}

// NewInvalidHatError creates a new InvalidHatError for the given identifier.
func NewInvalidHatError(id string) *InvalidHatError {
	return &InvalidHatError{
		baseError: baseError{
			message:    "unknown hat",
			severity:   SeverityWarning,
			userFacing: true,
		},
		HatID:    id,
		Position: -1,
	}
}

// WithPosition records the index of the identifier in the traversal order.
func (e *InvalidHatError) WithPosition(pos int) *InvalidHatError {
	e.Position = pos
	return e
}

// Error returns the formatted error message.
func (e *InvalidHatError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("invalid hat color: %s (position %d)", e.HatID, e.Position)
	}
	return fmt.Sprintf("invalid hat color: %s", e.HatID)
}

// Is checks if this error matches the target.
func (e *InvalidHatError) Is(target error) bool {
	if _, ok := target.(*InvalidHatError); ok {
		return true
	}
	if target == ErrInvalidHat || target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// ServiceError
// -----------------------------------------------------------------------------

// ServiceError represents a failed completion-service call.
//
// Example:
//
//	err := errors.NewServiceError("send request", cause).WithStatusCode(529)
//	fmt.Println(err) // "service error [status=529]: send request: ..."
type ServiceError struct {
	baseError
	Operation  string
	StatusCode int
	Diagnostic string
}

// NewServiceError creates a new ServiceError for the named operation.
func NewServiceError(operation string, cause error) *ServiceError {
	return &ServiceError{
		baseError: baseError{
			message:    operation,
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Operation: operation,
	}
}

// WithStatusCode records the HTTP status code returned by the service.
// 429 and 5xx responses are marked retryable.
func (e *ServiceError) WithStatusCode(code int) *ServiceError {
	e.StatusCode = code
	e.retryable = code == 429 || code >= 500
	return e
}

// WithDiagnostic records the raw diagnostic text from the service.
func (e *ServiceError) WithDiagnostic(diag string) *ServiceError {
	e.Diagnostic = diag
	return e
}

// Error returns the formatted error message.
func (e *ServiceError) Error() string {
	prefix := "service error"
	if e.StatusCode != 0 {
		prefix = fmt.Sprintf("service error [status=%d]", e.StatusCode)
	}

	msg := fmt.Sprintf("%s: %s", prefix, e.message)
	if e.Diagnostic != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Diagnostic)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Is checks if this error matches the target.
func (e *ServiceError) Is(target error) bool {
	if _, ok := target.(*ServiceError); ok {
		return true
	}
	if target == ErrService {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// NotFoundError
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("session", "abc123")
//	fmt.Println(err) // "session 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    "not found",
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	base := fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if target == ErrNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var typed SixHatsError
	if As(err, &typed) {
		return typed.IsRetryable()
	}
	return false
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var typed SixHatsError
	if As(err, &typed) {
		return typed.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement SixHatsError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var typed SixHatsError
	if As(err, &typed) {
		return typed.Severity()
	}
	return SeverityError
}

// IsInputError reports whether err should be treated as a fatal input error
// (InvalidInput or InvalidHat) rather than a runtime failure.
func IsInputError(err error) bool {
	return Is(err, ErrInvalidInput) || Is(err, ErrInvalidHat)
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
