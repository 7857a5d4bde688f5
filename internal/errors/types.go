package errors

import (
	"fmt"
	"strings"
)

// ExternError defines the base interface for all externgen errors
type ExternError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the type of error that occurred. An ErrorCode is itself an
// error so that callers can match with errors.Is(err, errors.InvalidSelfKindCode).
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Verification errors
	GenericsNotAllowedCode
	InvalidSelfKindCode
	NonFFISignatureCode
	DisallowedAssociatedItemCode
	UnsupportedCapabilityCode
	SizeOverflowCode
	BindingMismatchCode
	ReservedNameCode
	InvalidTypeCode

	// Front end and output errors
	SyntaxErrorCode
	GenerationErrorCode
	TemplateErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case GenericsNotAllowedCode:
		return "GenericsNotAllowed"
	case InvalidSelfKindCode:
		return "InvalidSelfKind"
	case NonFFISignatureCode:
		return "NonFFISignature"
	case DisallowedAssociatedItemCode:
		return "DisallowedAssociatedItem"
	case UnsupportedCapabilityCode:
		return "UnsupportedCapability"
	case SizeOverflowCode:
		return "SizeOverflow"
	case BindingMismatchCode:
		return "BindingMismatch"
	case ReservedNameCode:
		return "ReservedName"
	case InvalidTypeCode:
		return "InvalidType"
	case SyntaxErrorCode:
		return "SyntaxError"
	case GenerationErrorCode:
		return "GenerationError"
	case TemplateErrorCode:
		return "TemplateError"
	case FileSystemErrorCode:
		return "FileSystemError"
	case ConfigurationErrorCode:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// Error implements the error interface so codes can be used as match targets
func (e ErrorCode) Error() string {
	return e.String()
}

// IsVerification reports whether the code belongs to the verification taxonomy
func (e ErrorCode) IsVerification() bool {
	return e >= GenericsNotAllowedCode && e <= InvalidTypeCode
}

// SourceLocation is a position in a Go source file
type SourceLocation struct {
	File   string // file path where error occurred
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether no file is known
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError provides a common implementation of the ExternError interface
type BaseError struct {
	Code        ErrorCode              // type of error
	Message     string                 // error message
	Loc         SourceLocation         // where the error occurred
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // helpful suggestions for fixing the error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Loc.String(), msg)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Location returns the source location where the error occurred
func (e *BaseError) Location() SourceLocation {
	return e.Loc
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns helpful suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// Is matches an ErrorCode target against the error's code
func (e *BaseError) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

// WithLocation adds location information to the error
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// WithSuggestions adds multiple helpful suggestions
func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New creates a new BaseError with the specified code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Newf creates a new BaseError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new error that wraps another error
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Hints:   make([]string, 0),
	}
}

// Wrapf creates a new error that wraps another error with formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// MultipleErrors collects independent failures, e.g. every problem of one
// interface, so they can be reported together
type MultipleErrors struct {
	Errors []ExternError
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// ErrorCode is the code of the first error
func (e *MultipleErrors) ErrorCode() ErrorCode {
	if len(e.Errors) == 0 {
		return UnknownErrorCode
	}
	return e.Errors[0].ErrorCode()
}

// Location is the location of the first error
func (e *MultipleErrors) Location() SourceLocation {
	if len(e.Errors) == 0 {
		return SourceLocation{}
	}
	return e.Errors[0].Location()
}

// Context merges the context of every error, keys prefixed with the 1-based
// position of the error they came from
func (e *MultipleErrors) Context() map[string]interface{} {
	merged := make(map[string]interface{})
	for i, err := range e.Errors {
		for k, v := range err.Context() {
			merged[fmt.Sprintf("%d.%s", i+1, k)] = v
		}
	}
	return merged
}

// Suggestions concatenates the suggestions of every error
func (e *MultipleErrors) Suggestions() []string {
	var suggestions []string
	for _, err := range e.Errors {
		suggestions = append(suggestions, err.Suggestions()...)
	}
	return suggestions
}

// Unwrap returns every collected error for errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add adds an error to the collection. A nested MultipleErrors is flattened and
// plain errors are wrapped with UnknownErrorCode.
func (e *MultipleErrors) Add(err error) {
	switch v := err.(type) {
	case nil:
	case *MultipleErrors:
		if v != e {
			e.Errors = append(e.Errors, v.Errors...)
		}
	case ExternError:
		e.Errors = append(e.Errors, v)
	default:
		e.Errors = append(e.Errors, Wrap(UnknownErrorCode, err.Error(), err))
	}
}

// IsEmpty reports whether nothing was collected
func (e *MultipleErrors) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Count returns len(e.Errors)
func (e *MultipleErrors) Count() int {
	return len(e.Errors)
}

// HasCode reports whether any collected error carries code
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}

// ErrOrNil returns nil when the collection is empty
func (e *MultipleErrors) ErrOrNil() error {
	if e == nil || e.IsEmpty() {
		return nil
	}
	return e
}

// NewMultipleErrors creates a new MultipleErrors collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{
		Errors: make([]ExternError, 0),
	}
}

// Sentinels for errors.Is matching against a code
var (
	ErrGenericsNotAllowed       error = GenericsNotAllowedCode
	ErrInvalidSelfKind          error = InvalidSelfKindCode
	ErrNonFFISignature          error = NonFFISignatureCode
	ErrDisallowedAssociatedItem error = DisallowedAssociatedItemCode
	ErrUnsupportedCapability    error = UnsupportedCapabilityCode
	ErrSizeOverflow             error = SizeOverflowCode
	ErrBindingMismatch          error = BindingMismatchCode
	ErrReservedName             error = ReservedNameCode
	ErrInvalidType              error = InvalidTypeCode
)
