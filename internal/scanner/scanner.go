// Package scanner produces the partition files that list the documents to
// index. It either runs an external enumeration script, which writes the
// partition files itself, or walks document roots and writes them directly.
package scanner

import (
	"context"
	"time"
)

// DefaultTimeout bounds one enumeration run.
const DefaultTimeout = 5 * time.Minute

// Enumeration modes.
const (
	ModeScript  = "script"
	ModeBuiltin = "builtin"
	ModeNone    = "none"
)

// Result summarizes one enumeration run.
type Result struct {
	// Files is the number of documents listed, when known.
	Files int

	// Output is the combined output of the script, if one ran.
	Output string

	Duration time.Duration
}

// Enumerator writes the partition files for an indexing run.
type Enumerator interface {
	Enumerate(ctx context.Context) (*Result, error)
}
