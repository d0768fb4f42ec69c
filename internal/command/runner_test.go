package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestExecRunnerPassesOutputThrough(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses sh")
	}

	var out bytes.Buffer
	r := &ExecRunner{Stdout: &out, Stderr: io.Discard}

	if err := r.Run(context.Background(), "sh", "-c", "echo hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Fatalf("expected passthrough output, got %q", out.String())
	}
}

func TestExecRunnerIgnoresExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses sh")
	}

	r := &ExecRunner{Stdout: io.Discard, Stderr: io.Discard}

	if err := r.Run(context.Background(), "sh", "-c", "exit 3"); err != nil {
		t.Fatalf("exit status must not be reported, got %v", err)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := &ExecRunner{}

	err := r.Run(context.Background(), "definitely-not-a-real-binary-x7q")
	if err == nil {
		t.Fatalf("expected error for missing binary")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test uses sleep")
	}

	r := &ExecRunner{Timeout: 50 * time.Millisecond}

	start := time.Now()
	err := r.Run(context.Background(), "sleep", "1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout did not trigger quickly")
	}
}
