// Package errors provides structured error handling for lexsearch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (documents, partitions, index store)
//   - 3XX: Enumeration errors
//   - 4XX: Corpus and query validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryEnumeration indicates failures of the file enumeration step.
	CategoryEnumeration Category = "ENUMERATION"
	// CategoryValidation indicates corpus or input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeDocumentRead     = "ERR_201_DOCUMENT_READ"
	ErrCodePartitionInvalid = "ERR_202_PARTITION_INVALID"
	ErrCodeIndexIO          = "ERR_203_INDEX_IO"
	ErrCodeIndexLocked      = "ERR_204_INDEX_LOCKED"

	// Enumeration errors (300-399)
	ErrCodeEnumerationScript = "ERR_301_ENUMERATION_SCRIPT"

	// Validation errors (400-499)
	ErrCodeEmptyCorpus  = "ERR_401_EMPTY_CORPUS"
	ErrCodeInvalidInput = "ERR_402_INVALID_INPUT"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeWorkerCrash = "ERR_502_WORKER_CRASH"
	ErrCodeIndexFailed = "ERR_503_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "401" from "ERR_401_EMPTY_CORPUS"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryEnumeration
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeDocumentRead, ErrCodePartitionInvalid, ErrCodeEnumerationScript:
		return SeverityWarning
	case ErrCodeWorkerCrash, ErrCodeInvalidInput:
		return SeverityError
	default:
		return SeverityFatal
	}
}
