package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Aman-CERP/lexsearch/internal/config"
)

const (
	// MinDiskSpaceBytes is the minimum required free disk space (100MB).
	MinDiskSpaceBytes = 100 * 1024 * 1024

	// MinFileDescriptors is the minimum required file descriptor limit.
	MinFileDescriptors = 1024
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs preflight validation checks for one project.
type Checker struct {
	cfg     *config.Config
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints check details.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// New creates a Checker for the project configured by cfg.
func New(cfg *config.Config, opts ...Option) *Checker {
	c := &Checker{
		cfg:    cfg,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all preflight checks and returns the results.
func (c *Checker) RunAll(_ context.Context) []CheckResult {
	dataDir := c.cfg.DataDir()

	return []CheckResult{
		c.CheckWritePermissions(dataDir),
		c.CheckDiskSpace(dataDir),
		c.CheckFileDescriptors(),
		c.CheckIndexLock(),
		c.CheckEnumeration(),
		c.CheckFormats(),
	}
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	return tally(results).failed > 0
}

// counts splits results into passed, warned and critically failed checks.
// An optional check that fails counts as a warning.
type counts struct {
	passed, warned, failed int
}

func tally(results []CheckResult) counts {
	var n counts
	for _, r := range results {
		switch {
		case r.IsCritical():
			n.failed++
		case r.Status == StatusPass:
			n.passed++
		default:
			n.warned++
		}
	}
	return n
}

// SummaryStatus returns ready, ready_with_warnings or failed.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	n := tally(results)
	switch {
	case n.failed > 0:
		return "failed"
	case n.warned > 0:
		return "ready_with_warnings"
	default:
		return "ready"
	}
}

// PrintResults writes one aligned line per check, then a summary.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintf(c.output, "lexsearch System Check (%s)\n\n", c.cfg.DataDir())

	tw := tabwriter.NewWriter(c.output, 0, 4, 2, ' ', 0)
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(tw, "  \t\t%s\n", r.Details)
		}
	}
	_ = tw.Flush()

	n := tally(results)
	_, _ = fmt.Fprintf(c.output, "\n%d passed, %d warning(s), %d failed\n", n.passed, n.warned, n.failed)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))
}

// CheckWritePermissions checks that the index and vocabulary can be written
// to dir, creating it if needed.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "write_permissions",
		Required: true,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s: %v", dir, err)
		return result
	}

	f, err := os.CreateTemp(dir, ".lexsearch-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	result.Status = StatusPass
	result.Message = "OK"
	result.Details = filepath.Clean(dir)
	return result
}
