// Package schedule decides when the next backup cycle starts.
//
// Two strategies exist. Interval preserves the classic behavior: the
// configured delay is counted from the end of one cycle to the start of the
// next, so the true period is archive duration plus interval. Cron runs on a
// fixed wall-clock cadence regardless of how long the archive took.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler blocks until the next cycle should start.
type Scheduler interface {
	// Wait returns nil when the next cycle is due, or the context error
	// if ctx is done first.
	Wait(ctx context.Context) error
}

// Interval sleeps a fixed duration after each completed cycle.
type Interval struct {
	Every time.Duration
}

func (i Interval) Wait(ctx context.Context) error {
	t := time.NewTimer(i.Every)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Cron waits until the next activation of a standard cron expression.
type Cron struct {
	sched cron.Schedule
}

// ParseCron builds a Cron scheduler from a standard 5-field expression.
func ParseCron(expr string) (Cron, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return Cron{}, fmt.Errorf("parsing cron expression %q: %w", expr, err)
	}
	return Cron{sched: sched}, nil
}

func (c Cron) Wait(ctx context.Context) error {
	now := time.Now()
	next := c.sched.Next(now)

	t := time.NewTimer(next.Sub(now))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Next exposes the underlying cron activation time, mainly for logging.
func (c Cron) Next(after time.Time) time.Time {
	return c.sched.Next(after)
}
