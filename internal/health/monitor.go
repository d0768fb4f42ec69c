package health

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"hostkit/internal/logging"
)

// Thresholds are usage percentages above which the monitor warns.
type Thresholds struct {
	CPU    float64
	Memory float64
	Disk   float64
}

// DefaultThresholds mirror the classic monitor defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{CPU: 80, Memory: 85, Disk: 80}
}

// Exceeded returns one warning per threshold the sample crosses.
func (t Thresholds) Exceeded(s Sample) []string {
	var warnings []string
	if s.CPU > t.CPU {
		warnings = append(warnings, fmt.Sprintf("CPU usage exceeded threshold: %.1f%% > %.1f%%", s.CPU, t.CPU))
	}
	if s.Memory > t.Memory {
		warnings = append(warnings, fmt.Sprintf("Memory usage exceeded threshold: %.1f%% > %.1f%%", s.Memory, t.Memory))
	}
	if s.Disk > t.Disk {
		warnings = append(warnings, fmt.Sprintf("Disk usage exceeded threshold: %.1f%% > %.1f%%", s.Disk, t.Disk))
	}
	return warnings
}

// History keeps the most recent samples, oldest first.
type History struct {
	max     int
	samples []Sample
}

func NewHistory(max int) *History {
	return &History{max: max}
}

func (h *History) Push(s Sample) {
	h.samples = append(h.samples, s)
	if h.max > 0 && len(h.samples) > h.max {
		h.samples = h.samples[len(h.samples)-h.max:]
	}
}

func (h *History) Len() int {
	return len(h.samples)
}

func (h *History) Samples() []Sample {
	return slices.Clone(h.samples)
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	Thresholds Thresholds
	Interval   time.Duration

	// HistoryLength bounds the kept samples. Defaults to 60.
	HistoryLength int

	// MaxCycles bounds the loop for tests. Zero means run until cancelled.
	MaxCycles int

	// Out receives the reports. Defaults to os.Stdout.
	Out io.Writer
}

// Monitor samples periodically, reports, and warns on crossed thresholds.
type Monitor struct {
	opts    MonitorOptions
	sampler Sampler
	history *History
	log     logging.Logger
}

func NewMonitor(opts MonitorOptions, sampler Sampler, log logging.Logger) *Monitor {
	if opts.Interval == 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.HistoryLength == 0 {
		opts.HistoryLength = 60
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Monitor{
		opts:    opts,
		sampler: sampler,
		history: NewHistory(opts.HistoryLength),
		log:     log,
	}
}

// History exposes the collected samples.
func (m *Monitor) History() *History {
	return m.history
}

// Run samples until the context is cancelled or MaxCycles is reached.
// A failed sample is reported and the loop continues; monitoring is not a
// backup and has no reason to die on a transient read error.
func (m *Monitor) Run(ctx context.Context) error {
	for n := 0; m.opts.MaxCycles == 0 || n < m.opts.MaxCycles; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		sample, err := m.sampler.Sample(ctx)
		if err != nil {
			m.log.Error("sampling failed: %v", err)
		} else {
			m.history.Push(sample)
			m.report(sample)
		}

		if m.opts.MaxCycles > 0 && n+1 == m.opts.MaxCycles {
			break
		}

		t := time.NewTimer(m.opts.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	return nil
}

func (m *Monitor) report(s Sample) {
	fmt.Fprintf(m.opts.Out, "--- System Health at %s ---\n", s.Time.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(m.opts.Out, Render(s))
	fmt.Fprintf(m.opts.Out, "Memory: %s / %s\n", humanize.Bytes(s.MemoryUsed), humanize.Bytes(s.MemoryTotal))

	for _, w := range m.opts.Thresholds.Exceeded(s) {
		fmt.Fprintf(m.opts.Out, "WARNING: %s\n", w)
		m.log.Warn("%s", w)
	}
}
