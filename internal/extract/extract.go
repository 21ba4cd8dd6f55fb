// Package extract provides per-format text extraction adapters keyed by file
// extension.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

// Extractor reads the text content of one document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) (string, error)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// Builtin returns the built-in adapters by extension.
func Builtin() map[string]Extractor {
	return map[string]Extractor{
		".pdf":  PDFExtractor{},
		".docx": DocxExtractor{},
		".txt":  TextExtractor{},
		".md":   TextExtractor{},
	}
}

// Registry dispatches extraction by file extension.
// Only extensions that are both enabled and have an adapter are served.
type Registry struct {
	adapters map[string]Extractor
	logger   *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used to report read failures.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithAdapter registers or replaces the adapter for ext, enabling it.
func WithAdapter(ext string, e Extractor) RegistryOption {
	return func(r *Registry) {
		r.adapters[normalizeExt(ext)] = e
	}
}

// NewRegistry creates a registry serving the given formats (e.g. ".pdf")
// with the built-in adapters. Formats without a built-in adapter are ignored
// unless provided through WithAdapter.
func NewRegistry(formats []string, opts ...RegistryOption) *Registry {
	builtin := Builtin()
	r := &Registry{
		adapters: make(map[string]Extractor, len(formats)),
		logger:   slog.Default(),
	}
	for _, f := range formats {
		ext := normalizeExt(f)
		if e, ok := builtin[ext]; ok {
			r.adapters[ext] = e
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Supports reports whether path has an extension this registry can read.
func (r *Registry) Supports(path string) bool {
	_, ok := r.adapters[normalizeExt(filepath.Ext(path))]
	return ok
}

// Formats returns the served extensions, sorted.
func (r *Registry) Formats() []string {
	exts := make([]string, 0, len(r.adapters))
	for ext := range r.adapters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractText returns the text of path, or "" if the format is unsupported
// or reading fails. Failures are logged as document read errors and never
// returned; a panicking adapter is treated as a failure.
func (r *Registry) ExtractText(ctx context.Context, path string) (text string) {
	e, ok := r.adapters[normalizeExt(filepath.Ext(path))]
	if !ok {
		return ""
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logReadError(path, fmt.Errorf("extractor panic: %v", rec))
			text = ""
		}
	}()

	text, err := e.Extract(ctx, path)
	if err != nil {
		r.logReadError(path, err)
		return ""
	}
	return text
}

func (r *Registry) logReadError(path string, err error) {
	r.logger.Warn("document_read_failed", lexerrors.LogAttrs(lexerrors.DocumentReadError(path, err))...)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
