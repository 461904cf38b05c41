// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tools implements the execution
// of external analysis programs.
//
// Every external tool used in an analysis
// is invoked through Run,
// so there is a single place
// in which processes are spawned,
// timed out,
// and cancelled.
// A tool that runs and exits with a failure code
// is not an error:
// the caller inspects the exit code of the result.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

var (
	// ErrNotFound is returned when the executable
	// of a tool cannot be located.
	ErrNotFound = errors.New("tool not found")

	// ErrTimedOut is returned when a tool
	// runs out of its allotted time
	// and is terminated.
	ErrTimedOut = errors.New("tool timed out")

	// ErrLaunchFailed is returned when the operating system
	// is unable to start the tool process.
	ErrLaunchFailed = errors.New("tool launch failed")

	// ErrCancelled is returned when a running tool
	// is cancelled by the caller.
	ErrCancelled = errors.New("tool cancelled")
)

// A Job is the description of a single run
// of an external tool.
type Job struct {
	// Path of the executable.
	// A bare name is searched in the system path.
	Path string

	// Command line arguments.
	Args []string

	// Working directory of the process.
	Dir string

	// Maximum run time.
	// A zero or negative timeout means no limit.
	Timeout time.Duration

	// Standard input of the process,
	// if any.
	Stdin io.Reader

	// Additional environment variables,
	// in "key=value" form.
	Env []string
}

// A Result is the outcome of a finished tool run.
type Result struct {
	// Exit code of the process.
	ExitCode int

	// Captured standard output.
	Stdout []byte

	// Captured standard error.
	Stderr []byte

	// Wall clock run time.
	Duration time.Duration
}

// Run executes an external tool
// and waits for it to finish,
// capturing its output streams.
//
// A process that exits with a nonzero code
// is a valid result,
// not an error.
// Run returns an error only when the tool
// cannot be located (ErrNotFound),
// cannot be started (ErrLaunchFailed),
// exceeds the job timeout (ErrTimedOut),
// or the context is cancelled (ErrCancelled).
// All of them can be tested with errors.Is.
func Run(ctx context.Context, j Job) (*Result, error) {
	path, err := lookPath(j.Path)
	if err != nil {
		return nil, err
	}

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, j.Args...)
	cmd.Dir = j.Dir
	cmd.Stdin = j.Stdin
	if len(j.Env) > 0 {
		cmd.Env = append(os.Environ(), j.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	// a kill by the context looks like an exit error,
	// so the context is checked first
	if cErr := ctx.Err(); cErr != nil {
		if errors.Is(cErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("tools: %q after %v: %w", j.Path, j.Timeout, ErrTimedOut)
		}
		return nil, fmt.Errorf("tools: %q: %w", j.Path, ErrCancelled)
	}

	if err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return nil, fmt.Errorf("tools: %q: %v: %w", j.Path, err, ErrLaunchFailed)
		}
		res.ExitCode = ee.ExitCode()
	}
	return res, nil
}

// LookPath resolves the executable of a tool.
// A bare command name is searched
// in the system path;
// anything with a path separator
// is used as an explicit location.
func lookPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("tools: empty tool path: %w", ErrNotFound)
	}
	if !strings.ContainsRune(path, os.PathSeparator) {
		p, err := exec.LookPath(path)
		if err != nil {
			return "", fmt.Errorf("tools: %q: %w", path, ErrNotFound)
		}
		return p, nil
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("tools: %q: %w", path, ErrNotFound)
	}
	return path, nil
}

// Threads returns a default number of threads
// for an external tool,
// the number of physical cores of the machine.
func Threads() int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		n = runtime.NumCPU()
	}
	if n < 1 {
		n = 1
	}
	return n
}
