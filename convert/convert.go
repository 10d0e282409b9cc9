// Package convert invokes external command-line conversion tools (Calibre's
// ebook-convert, LibreOffice) under bounded concurrency, with an isolated
// per-request temp workspace, a hard wall-clock timeout, and guaranteed
// workspace cleanup on every exit path.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

var (
	// ErrToolNotFound is returned when the external binary cannot be
	// located via environment override, well-known paths, or PATH.
	ErrToolNotFound = errors.New("convert: conversion tool not found")

	// ErrNoOutput is returned when the tool exits 0 but the expected
	// output artifact is absent. Some tools exit 0 on silent failure;
	// that is a failure here, never an empty success.
	ErrNoOutput = errors.New("convert: no output produced by conversion tool")
)

// DefaultTimeout bounds one external conversion run.
const DefaultTimeout = 120 * time.Second

// DefaultConcurrency bounds simultaneous processes per converter kind.
const DefaultConcurrency = 2

// ConversionError reports a tool that ran and failed: a non-zero exit
// status with whatever it wrote to standard error.
type ConversionError struct {
	Kind     string
	ExitCode int
	Stderr   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert: %s failed (rc=%d): %s", e.Kind, e.ExitCode, e.Stderr)
}

// TimeoutError reports a tool that exceeded the wall-clock timeout and was
// killed. Distinct from ConversionError so callers can tell "tool hung"
// from "tool rejected input".
type TimeoutError struct {
	Kind    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("convert: %s timed out after %s", e.Kind, e.Timeout)
}

// Request is one conversion invocation. The source bytes are written to a
// fresh workspace which is destroyed when the call returns.
type Request struct {
	Content   []byte
	Extension string // declared source extension without the dot; "bin" when empty
}

// Result is what a successful conversion produced.
type Result struct {
	Output []byte // the converted artifact, read into memory before cleanup
	Stderr string // captured diagnostics, decoded permissively
}

// Runner executes one kind of external conversion tool. The admission gate
// is the only cross-request shared state: at most its capacity of processes
// run at once, independent of the other converter kind.
type Runner struct {
	kind    string
	timeout time.Duration
	gate    *semaphore.Weighted

	// resolve locates the tool binary; called before any workspace is
	// created so "tool not found" surfaces without leaving files behind.
	resolve func() (string, error)

	// plan returns the command argv (after the binary) and a locator for
	// the expected output artifact inside the workspace.
	plan func(workspace, inputPath string) (args []string, locate func() (string, error))

	// tempRoot overrides the workspace parent directory; empty means the
	// system default.
	tempRoot string
}

// Run converts one request. The workspace lives only for the duration of
// the call and is removed on success, failure, timeout, and panic alike.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	bin, err := r.resolve()
	if err != nil {
		return nil, err
	}

	workspace, err := os.MkdirTemp(r.tempRoot, r.kind+"_convert_")
	if err != nil {
		return nil, fmt.Errorf("convert: creating workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	ext := strings.TrimPrefix(req.Extension, ".")
	if ext == "" {
		ext = "bin"
	}
	inputPath := filepath.Join(workspace, "input."+ext)
	if err := os.WriteFile(inputPath, req.Content, 0o600); err != nil {
		return nil, fmt.Errorf("convert: writing source file: %w", err)
	}

	args, locate := r.plan(workspace, inputPath)

	var stderr bytes.Buffer
	runErr, timedOut, acquireErr := r.runGated(ctx, bin, args, &stderr)
	if acquireErr != nil {
		return nil, fmt.Errorf("convert: waiting for %s slot: %w", r.kind, acquireErr)
	}
	stderrText := strings.ToValidUTF8(stderr.String(), "�")

	if timedOut {
		return nil, &TimeoutError{Kind: r.kind, Timeout: r.timeout}
	}
	if runErr != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code = exitErr.ExitCode()
		}
		return nil, &ConversionError{Kind: r.kind, ExitCode: code, Stderr: stderrText}
	}

	outPath, err := locate()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoOutput, r.kind, err)
	}
	output, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading artifact: %v", ErrNoOutput, r.kind, err)
	}

	slog.Info("conversion succeeded", "kind", r.kind, "input_bytes", len(req.Content), "output_bytes", len(output))
	return &Result{Output: output, Stderr: stderrText}, nil
}

// runGated blocks on the admission gate, runs the process under the
// timeout, and releases the slot the moment the process terminates so a
// crashed converter never starves waiting requests.
func (r *Runner) runGated(ctx context.Context, bin string, args []string, stderr io.Writer) (runErr error, timedOut bool, acquireErr error) {
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return nil, false, err
	}
	defer r.gate.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	// A killed converter can leave children holding the stderr pipe open;
	// don't let them delay Wait forever.
	cmd.WaitDelay = 5 * time.Second

	slog.Info("running conversion tool", "kind", r.kind, "cmd", bin, "args", strings.Join(args, " "))
	err := cmd.Run()
	if deadlineHit(err, runCtx.Err()) {
		return nil, true, nil
	}
	return err, false, nil
}

// deadlineHit classifies a run as timed out only when it actually failed.
// A tool that exits cleanly in the same instant the deadline fires produced
// its artifact and must count as a success.
func deadlineHit(runErr, ctxErr error) bool {
	return runErr != nil && ctxErr == context.DeadlineExceeded
}

// resolveTool implements the standard binary lookup order: explicit
// override path, well-known install locations, then PATH.
func resolveTool(override, name string, candidates []string, install string) (string, error) {
	if override != "" {
		if fileExists(override) {
			return override, nil
		}
		return "", fmt.Errorf("%w: configured path %q does not exist. %s", ErrToolNotFound, override, install)
	}
	for _, c := range candidates {
		if fileExists(c) {
			return c, nil
		}
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s. %s", ErrToolNotFound, name, install)
}

func newGate(capacity int) *semaphore.Weighted {
	return semaphore.NewWeighted(int64(capacity))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
