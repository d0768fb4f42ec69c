// Package command runs external commands on behalf of the restricted shell.
package command

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

// Runner executes a named command with arguments. Implementations connect
// the command's stdio however they see fit.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands via os/exec with pass-through stdio.
//
// The exit status of a command that started successfully is deliberately not
// inspected: the shell passes output through and returns to the prompt. Only
// failures to start (missing binary, permission denied) are reported.
type ExecRunner struct {
	Timeout time.Duration // zero means no timeout

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()

	// A command killed by timeout or cancellation looks like an exit error;
	// report the context instead.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// IsNotFound reports whether err indicates the command binary was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
