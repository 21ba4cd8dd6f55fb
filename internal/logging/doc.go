// Package logging sets up structured slog logging for lexsearch.
// Logs are JSON lines written to a size-rotated file under ~/.lexsearch/logs/
// and, optionally, to stderr. Components receive a *slog.Logger through their
// options rather than reaching for a package-level logger.
package logging
