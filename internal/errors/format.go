package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// asLexError finds a LexError in the chain, wrapping plain errors as internal.
func asLexError(err error) *LexError {
	var le *LexError
	if stderrors.As(err, &le) {
		return le
	}
	return Wrap(ErrCodeInternal, err)
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	le := asLexError(err)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", le.Message))

	if le.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", le.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", le.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	le := asLexError(err)
	je := jsonError{
		Code:       le.Code,
		Message:    le.Message,
		Category:   string(le.Category),
		Severity:   string(le.Severity),
		Details:    le.Details,
		Suggestion: le.Suggestion,
	}

	if le.Cause != nil {
		je.Cause = le.Cause.Error()
	}

	return json.Marshal(je)
}

// LogAttrs formats an error as key-value pairs for slog.
//
//	logger.Warn("partition_skipped", errors.LogAttrs(err)...)
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	var le *LexError
	if !stderrors.As(err, &le) {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", le.Code,
		"error", le.Message,
		"severity", string(le.Severity),
	}
	if le.Cause != nil {
		attrs = append(attrs, "cause", le.Cause.Error())
	}
	for k, v := range le.Details {
		attrs = append(attrs, "detail_"+k, v)
	}
	return attrs
}
