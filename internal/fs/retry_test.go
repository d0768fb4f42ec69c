package fs

import (
	"context"
	"errors"
	"syscall"
	"testing"
)

func TestRetryTransientThenSuccess(t *testing.T) {
	attempts := 0
	err := retry(context.Background(), "op", func() error {
		attempts++
		if attempts < 3 {
			return syscall.EBUSY
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryPermanentFailsImmediately(t *testing.T) {
	attempts := 0
	permanent := errors.New("no such file")

	err := retry(context.Background(), "op", func() error {
		attempts++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("expected wrapped permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("permanent errors must not retry, got %d attempts", attempts)
	}
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, "op", func() error { return syscall.EBUSY })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	if !isTransient(syscall.EAGAIN) || !isTransient(syscall.EBUSY) || !isTransient(syscall.ETIMEDOUT) {
		t.Fatalf("expected syscall errors to be transient")
	}
	if isTransient(errors.New("boom")) {
		t.Fatalf("arbitrary errors must not be transient")
	}
}
