// Package health reports system resource usage.
//
// It backs the "health" command the restricted shell is allowed to run:
// a one-shot CPU/RAM/Disk report, plus an optional watch mode with
// thresholds and a bounded sample history.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// Sample is one point-in-time measurement.
type Sample struct {
	CPU    float64 // percent
	Memory float64 // percent
	Disk   float64 // percent

	MemoryUsed  uint64 // bytes
	MemoryTotal uint64 // bytes

	Time time.Time
}

// Sampler produces samples. Tests inject a fake; production uses
// SystemSampler.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// SystemSampler measures the local machine via gopsutil.
type SystemSampler struct {
	// DiskPath is the mount point measured. Defaults to "/".
	DiskPath string

	// CPUWindow is how long the CPU measurement observes the system.
	// Defaults to one second.
	CPUWindow time.Duration
}

func (s *SystemSampler) Sample(ctx context.Context) (Sample, error) {
	window := s.CPUWindow
	if window == 0 {
		window = time.Second
	}
	diskPath := s.DiskPath
	if diskPath == "" {
		diskPath = "/"
	}

	cpuPercents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return Sample{}, fmt.Errorf("reading cpu usage: %w", err)
	}
	var cpuPercent float64
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("reading memory usage: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		return Sample{}, fmt.Errorf("reading disk usage: %w", err)
	}

	return Sample{
		CPU:         cpuPercent,
		Memory:      vm.UsedPercent,
		Disk:        du.UsedPercent,
		MemoryUsed:  vm.Used,
		MemoryTotal: vm.Total,
		Time:        time.Now(),
	}, nil
}

// Render formats a sample as the classic three-line health report.
func Render(s Sample) string {
	return fmt.Sprintf("CPU: %.1f%%\nRAM: %.1f%%\nDisk: %.1f%%", s.CPU, s.Memory, s.Disk)
}
