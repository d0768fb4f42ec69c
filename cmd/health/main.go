package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hostkit/internal/health"
	"hostkit/internal/logging"
)

func main() {
	var (
		watch      bool
		interval   time.Duration
		cpuThresh  float64
		memThresh  float64
		diskThresh float64
		historyLen int
		diskPath   string
	)

	root := &cobra.Command{
		Use:   "health",
		Short: "Report system CPU, memory and disk usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				cancel()
			}()

			sampler := &health.SystemSampler{DiskPath: diskPath}

			if !watch {
				sample, err := sampler.Sample(ctx)
				if err != nil {
					return err
				}
				fmt.Println("=== System Health ===")
				fmt.Println(health.Render(sample))
				return nil
			}

			mon := health.NewMonitor(health.MonitorOptions{
				Thresholds:    health.Thresholds{CPU: cpuThresh, Memory: memThresh, Disk: diskThresh},
				Interval:      interval,
				HistoryLength: historyLen,
			}, sampler, logging.New(os.Stderr, "info", "text"))

			if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	defaults := health.DefaultThresholds()
	root.Flags().BoolVar(&watch, "watch", false, "sample periodically instead of once")
	root.Flags().DurationVar(&interval, "interval", 5*time.Second, "sampling interval in watch mode")
	root.Flags().Float64Var(&cpuThresh, "cpu", defaults.CPU, "CPU usage warning threshold (percent)")
	root.Flags().Float64Var(&memThresh, "mem", defaults.Memory, "memory usage warning threshold (percent)")
	root.Flags().Float64Var(&diskThresh, "disk", defaults.Disk, "disk usage warning threshold (percent)")
	root.Flags().IntVar(&historyLen, "history", 60, "samples kept in watch mode")
	root.Flags().StringVar(&diskPath, "path", "/", "mount point measured for disk usage")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
