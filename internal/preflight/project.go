package preflight

import (
	"fmt"
	"os"
	"strings"

	"github.com/Aman-CERP/lexsearch/internal/async"
	"github.com/Aman-CERP/lexsearch/internal/extract"
	"github.com/Aman-CERP/lexsearch/internal/scanner"
)

// CheckIndexLock fails while another run holds the indexing lock and warns
// when a previous run left its lock behind.
func (c *Checker) CheckIndexLock() CheckResult {
	result := CheckResult{
		Name:     "index_lock",
		Required: true,
	}

	dataDir := c.cfg.DataDir()
	switch {
	case async.IsIndexing(dataDir):
		result.Status = StatusFail
		result.Message = "another indexing run is in progress"
	case async.HasIncompleteLock(dataDir):
		result.Status = StatusWarn
		result.Message = "previous run was interrupted"
		result.Details = "The next run replaces the stale lock"
	default:
		result.Status = StatusPass
		result.Message = "OK"
	}
	return result
}

// CheckEnumeration checks the source the configured enumeration mode reads.
// Enumeration problems never stop a run, so this check only warns.
func (c *Checker) CheckEnumeration() CheckResult {
	result := CheckResult{
		Name:   "enumeration",
		Status: StatusPass,
	}

	switch c.cfg.Enumeration.Mode {
	case scanner.ModeScript:
		script := c.cfg.ScriptPath()
		if _, err := os.Stat(script); err != nil {
			result.Status = StatusWarn
			result.Message = fmt.Sprintf("script %s not found", script)
			result.Details = "Existing partition files will be used"
			return result
		}
		result.Message = "script " + script

	case scanner.ModeBuiltin:
		var missing []string
		for _, root := range c.cfg.Enumeration.Roots {
			if info, err := os.Stat(root); err != nil || !info.IsDir() {
				missing = append(missing, root)
			}
		}
		if len(c.cfg.Enumeration.Roots) == 0 || len(missing) == len(c.cfg.Enumeration.Roots) {
			result.Status = StatusWarn
			result.Message = "no document roots exist"
			result.Details = strings.Join(missing, ", ")
			return result
		}
		result.Message = fmt.Sprintf("%d root(s)", len(c.cfg.Enumeration.Roots)-len(missing))
		if len(missing) > 0 {
			result.Status = StatusWarn
			result.Details = "missing: " + strings.Join(missing, ", ")
		}

	default:
		folder := c.cfg.Indexing.PartitionFolder
		if info, err := os.Stat(folder); err != nil || !info.IsDir() {
			result.Status = StatusWarn
			result.Message = fmt.Sprintf("partition folder %s not found", folder)
			return result
		}
		result.Message = "partition folder " + folder
	}
	return result
}

// CheckFormats warns about configured formats no extractor can read.
func (c *Checker) CheckFormats() CheckResult {
	result := CheckResult{
		Name:     "formats",
		Required: true,
	}

	served := extract.NewRegistry(c.cfg.Indexing.SupportedFormats).Formats()
	if len(served) == 0 {
		result.Status = StatusFail
		result.Message = "no supported format can be extracted"
		result.Details = strings.Join(c.cfg.Indexing.SupportedFormats, ", ")
		return result
	}

	result.Message = strings.Join(served, ", ")
	if len(served) < len(c.cfg.Indexing.SupportedFormats) {
		result.Status = StatusWarn
		result.Details = "Some configured formats have no extractor"
		return result
	}
	result.Status = StatusPass
	return result
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
