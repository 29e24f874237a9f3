// SPDX-License-Identifier: MPL-2.0

package esbuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

type (
	// Runner executes an esbuild binary.
	Runner struct {
		// Executable is the path returned by a resolver.
		Executable string
		// WorkDir is the directory esbuild runs in; entry points and outdir
		// are relative to it.
		WorkDir string
		// Stdout and Stderr receive the process output. When nil the output
		// is captured into the Result.
		Stdout io.Writer
		Stderr io.Writer
		// Env replaces the process environment when non-nil.
		Env []string
	}

	// Result is the outcome of one esbuild run. Error is set only when the
	// process could not be started; a failing build sets ExitCode.
	Result struct {
		Args      []string
		ExitCode  int
		Output    string
		ErrOutput string
		Error     error
	}
)

// ErrNoExecutable is returned when Runner.Executable is empty.
var ErrNoExecutable = errors.New("no esbuild executable")

// Run invokes esbuild with cfg followed by extra arguments.
func (r *Runner) Run(ctx context.Context, cfg *Config, extra ...string) *Result {
	args := append(cfg.Args(), extra...)
	result := &Result{Args: args}
	if r.Executable == "" {
		result.ExitCode = 1
		result.Error = ErrNoExecutable
		return result
	}

	cmd := exec.CommandContext(ctx, r.Executable, args...)
	cmd.Dir = r.WorkDir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	cmd.Stderr = &stderr
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	err := cmd.Run()
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = fmt.Errorf("failed to execute esbuild: %w", err)
		}
	}
	return result
}
