package errors

import (
	stderrors "errors"
	"fmt"
)

// LexError is the structured error type for lexsearch.
// It carries enough context for logging, progress reporting and CLI output.
type LexError struct {
	// Code is the unique error code (e.g., "ERR_401_EMPTY_CORPUS").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Enumeration, etc.).
	Category Category

	// Severity decides whether the indexing run aborts.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LexError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with LexError.
func (e *LexError) Is(target error) bool {
	if t, ok := target.(*LexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *LexError) WithDetail(key, value string) *LexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *LexError) WithSuggestion(suggestion string) *LexError {
	e.Suggestion = suggestion
	return e
}

// New creates a new LexError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *LexError {
	return &LexError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a LexError from an existing error.
// The error's message becomes the LexError message.
func Wrap(code string, err error) *LexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *LexError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// DocumentReadError reports a per-file extraction failure.
// The file is skipped; the run continues.
func DocumentReadError(path string, cause error) *LexError {
	return New(ErrCodeDocumentRead, "failed to read document: "+path, cause).
		WithDetail("path", path)
}

// PartitionWarning reports a missing or empty partition file.
func PartitionWarning(path, reason string) *LexError {
	return New(ErrCodePartitionInvalid, fmt.Sprintf("partition %s skipped: %s", path, reason), nil).
		WithDetail("path", path).
		WithDetail("reason", reason)
}

// EnumerationError reports a failed, timed out or missing enumeration script.
func EnumerationError(message string, cause error) *LexError {
	return New(ErrCodeEnumerationScript, message, cause)
}

// EmptyCorpusError reports that nothing could be indexed.
func EmptyCorpusError(message string) *LexError {
	return New(ErrCodeEmptyCorpus, message, nil).
		WithSuggestion("Check that the partition folder contains pdf_part_N.txt files listing existing documents")
}

// IndexIOError reports a failure to load or save the index store.
func IndexIOError(message string, cause error) *LexError {
	return New(ErrCodeIndexIO, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *LexError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors abort the indexing run.
func IsFatal(err error) bool {
	var le *LexError
	if stderrors.As(err, &le) {
		return le.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a LexError anywhere in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var le *LexError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ""
}

// GetCategory extracts the category from a LexError anywhere in the chain.
func GetCategory(err error) Category {
	var le *LexError
	if stderrors.As(err, &le) {
		return le.Category
	}
	return ""
}
