// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. It also
// maps error codes onto process exit codes for the command line tool.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Input
	CodeInvalidInput     ErrorCode = "INVALID_INPUT"
	CodeInvalidHeader    ErrorCode = "INVALID_HEADER"
	CodeInvalidSource    ErrorCode = "INVALID_SOURCE"
	CodeInvalidSink      ErrorCode = "INVALID_SINK"
	CodeSourceEqualsSink ErrorCode = "SOURCE_EQUALS_SINK"
	CodeDanglingArc      ErrorCode = "DANGLING_ARC"
	CodeNegativeCapacity ErrorCode = "NEGATIVE_CAPACITY"
	CodeFileUnreadable   ErrorCode = "FILE_UNREADABLE"

	// Resources
	CodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"

	// Algorithms
	CodeInvalidPath     ErrorCode = "INVALID_PATH"
	CodeInvalidAugment  ErrorCode = "INVALID_AUGMENT"
	CodeTimeout         ErrorCode = "TIMEOUT"
	CodeIterationLimit  ErrorCode = "ITERATION_LIMIT"
	CodeStructureChange ErrorCode = "STRUCTURE_CHANGE"

	// Flow-related
	CodeFlowViolation         ErrorCode = "FLOW_VIOLATION"
	CodeCapacityOverflow      ErrorCode = "CAPACITY_OVERFLOW"
	CodeConservationViolation ErrorCode = "CONSERVATION_VIOLATION"
	CodeNegativeFlow          ErrorCode = "NEGATIVE_FLOW"
	CodeNegativeResidual      ErrorCode = "NEGATIVE_RESIDUAL"
	CodeResidualMismatch      ErrorCode = "RESIDUAL_MISMATCH"

	// Output
	CodeReportFailed      ErrorCode = "REPORT_FAILED"
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// General
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeNilInput        ErrorCode = "NIL_INPUT"
	CodeUsage           ErrorCode = "USAGE"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitInput    = 2
	ExitResource = 3
)

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error that might require immediate human intervention.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
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

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field: %s)", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// exitCodes lists codes that do not map to ExitFailure.
var exitCodes = map[ErrorCode]int{
	CodeInvalidInput:      ExitInput,
	CodeInvalidHeader:     ExitInput,
	CodeInvalidSource:     ExitInput,
	CodeInvalidSink:       ExitInput,
	CodeSourceEqualsSink:  ExitInput,
	CodeDanglingArc:       ExitInput,
	CodeNegativeCapacity:  ExitInput,
	CodeFileUnreadable:    ExitInput,
	CodeUsage:             ExitInput,
	CodeInvalidArgument:   ExitInput,
	CodeNilInput:          ExitInput,
	CodeResourceExhausted: ExitResource,
}

// ExitCode maps the error code onto a process exit status. It also makes
// *Error satisfy the exit coder interface of the CLI framework.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Code]; ok {
		return code
	}
	return ExitFailure
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, ErrInvalidSource) matches any invalid-source error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithField creates a new application error with the given code, message, and field.
func NewWithField(code ErrorCode, message, field string) *Error {
	return New(code, message).WithField(field)
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
func Wrap(cause error, code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error and returns the modified error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ExitCode returns the process exit status for err. nil maps to ExitOK,
// foreign errors to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ExitCode()
	}
	return ExitFailure
}

// IsInputError reports whether err describes a defect in the user's input.
func IsInputError(err error) bool {
	return err != nil && ExitCode(err) == ExitInput
}

// Sentinels for errors.Is. They are shared, so return a fresh error from
// New instead of returning one of these.
var (
	ErrInvalidSource    = New(CodeInvalidSource, "source vertex is missing or out of range")
	ErrInvalidSink      = New(CodeInvalidSink, "sink vertex is missing or out of range")
	ErrSourceEqualsSink = New(CodeSourceEqualsSink, "source and sink cannot be the same")
	ErrNilNetwork       = New(CodeNilInput, "network is nil")
	ErrTimeout          = New(CodeTimeout, "operation timed out")
	ErrIterationLimit   = New(CodeIterationLimit, "augmentation round limit exceeded")
)

// ValidationErrors is a collection of application errors and warnings,
// typically used for aggregating results of multiple validation checks.
type ValidationErrors struct {
	Errors   []*Error // Errors contains all collected errors (SeverityError and SeverityCritical).
	Warnings []*Error // Warnings contains all collected warnings (SeverityWarning).
}

// NewValidationErrors creates and returns a new empty ValidationErrors collection.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors:   make([]*Error, 0),
		Warnings: make([]*Error, 0),
	}
}

// Add appends an *Error to the appropriate slice (Errors or Warnings)
// based on its Severity.
func (v *ValidationErrors) Add(err *Error) {
	if err.Severity == SeverityWarning {
		v.Warnings = append(v.Warnings, err)
	} else {
		v.Errors = append(v.Errors, err)
	}
}

// AddError creates and adds a new application error with SeverityError.
func (v *ValidationErrors) AddError(code ErrorCode, message string) {
	v.Errors = append(v.Errors, New(code, message))
}

// HasErrors returns true if the collection contains any errors (non-warning severity).
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// HasWarnings returns true if the collection contains any warnings.
func (v *ValidationErrors) HasWarnings() bool {
	return len(v.Warnings) > 0
}

// IsValid returns true if the collection contains no errors (warnings do not affect validity).
func (v *ValidationErrors) IsValid() bool {
	return !v.HasErrors()
}

// Merge combines the current ValidationErrors collection with another one.
func (v *ValidationErrors) Merge(other *ValidationErrors) {
	if other == nil {
		return
	}
	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}

// ErrorMessages returns a slice of string messages for all collected errors.
func (v *ValidationErrors) ErrorMessages() []string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// Err folds the collection into a single error, or nil when valid.
// The first error's code is kept; the rest are attached as details.
func (v *ValidationErrors) Err() error {
	if v.IsValid() {
		return nil
	}
	first := v.Errors[0]
	out := New(first.Code, first.Message).WithField(first.Field)
	if len(v.Errors) > 1 {
		out.WithDetails("violations", v.ErrorMessages())
	}
	return out
}
