package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	lexerrors "github.com/Aman-CERP/lexsearch/internal/errors"
)

// maxOutputTail is how much script output is kept in errors.
const maxOutputTail = 2048

// DefaultScript returns the enumeration script for the current OS.
func DefaultScript() string {
	if runtime.GOOS == "windows" {
		return "scripts/pdf_search.bat"
	}
	return "scripts/pdf_search.sh"
}

// ScriptEnumerator runs an external script that writes the partition files.
// On Windows the script runs through cmd; elsewhere through bash.
type ScriptEnumerator struct {
	Script  string
	Timeout time.Duration
	Dir     string // working directory; empty means the current one

	// Env is added to the inherited environment, as KEY=value pairs.
	Env []string

	Logger *slog.Logger
}

// NewScriptEnumerator creates an enumerator for script. Empty values take
// DefaultScript and DefaultTimeout.
func NewScriptEnumerator(script string, timeout time.Duration, logger *slog.Logger) *ScriptEnumerator {
	if script == "" {
		script = DefaultScript()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptEnumerator{Script: script, Timeout: timeout, Logger: logger}
}

// Enumerate runs the script to completion. Cancelling ctx does not stop a
// script that has started; only the timeout does. A missing script, a
// timeout or a non-zero exit is returned as an EnumerationError.
func (s *ScriptEnumerator) Enumerate(ctx context.Context) (*Result, error) {
	start := time.Now()

	script := s.Script
	if script == "" {
		script = DefaultScript()
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := script
	if s.Dir != "" && !filepath.IsAbs(script) {
		path = filepath.Join(s.Dir, script)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, lexerrors.EnumerationError("enumeration script not found: "+script, err).
			WithDetail("script", script).
			WithSuggestion("Create the script, or set enumeration.mode to builtin")
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	cmd := scriptCommand(runCtx, script)
	cmd.Dir = s.Dir
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	// Children of the script may hold the output pipe after it is killed
	cmd.WaitDelay = time.Second

	logger.Info("enumeration_script_started",
		slog.String("script", script),
		slog.Duration("timeout", timeout))

	err := cmd.Run()
	res := &Result{Output: out.String(), Duration: time.Since(start)}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, lexerrors.EnumerationError(
			fmt.Sprintf("enumeration script timed out after %s", timeout), runCtx.Err()).
			WithDetail("script", script)
	}
	if err != nil {
		var exitErr *exec.ExitError
		msg := "enumeration script failed"
		if errors.As(err, &exitErr) {
			msg = fmt.Sprintf("enumeration script exited with code %d", exitErr.ExitCode())
		}
		return res, lexerrors.EnumerationError(msg, err).
			WithDetail("script", script).
			WithDetail("output", tail(res.Output, maxOutputTail))
	}

	logger.Info("enumeration_script_finished",
		slog.String("script", script),
		slog.Duration("duration", res.Duration))
	return res, nil
}

func scriptCommand(ctx context.Context, script string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", script)
	}
	return exec.CommandContext(ctx, "bash", script)
}

// tail returns at most n trailing bytes of s.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
