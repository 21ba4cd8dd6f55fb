// Package output formats CLI messages and search results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/lexsearch/internal/search"
)

// Format selects how results are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text or json)", s)
	}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// ResultOptions controls search result output.
type ResultOptions struct {
	Format Format
	Scores bool
}

type jsonHit struct {
	Path  string `json:"path"`
	Score *int   `json:"score,omitempty"`
}

type jsonResults struct {
	Query   string    `json:"query"`
	Count   int       `json:"count"`
	Results []jsonHit `json:"results"`
}

// SearchResults prints ranked hits for query.
func (w *Writer) SearchResults(query string, hits []search.Hit, opts ResultOptions) error {
	if opts.Format == FormatJSON {
		doc := jsonResults{Query: query, Count: len(hits), Results: make([]jsonHit, 0, len(hits))}
		for _, h := range hits {
			jh := jsonHit{Path: h.Path}
			if opts.Scores {
				score := h.Score
				jh.Score = &score
			}
			doc.Results = append(doc.Results, jh)
		}
		return w.encodeJSON(doc)
	}

	if len(hits) == 0 {
		_, err := fmt.Fprintf(w.out, "No results found for '%s'. Try different keywords.\n", query)
		return err
	}
	for _, h := range hits {
		var err error
		if opts.Scores {
			_, err = fmt.Fprintf(w.out, "%4d  %s\n", h.Score, h.Path)
		} else {
			_, err = fmt.Fprintln(w.out, h.Path)
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w.out, "\nFound %d result(s) for '%s'\n", len(hits), query)
	return err
}

// Completions prints one completion per line, or a JSON array.
func (w *Writer) Completions(words []string, format Format) error {
	if format == FormatJSON {
		if words == nil {
			words = []string{}
		}
		return w.encodeJSON(words)
	}
	for _, word := range words {
		if _, err := fmt.Fprintln(w.out, word); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) encodeJSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
