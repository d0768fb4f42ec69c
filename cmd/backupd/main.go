package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hostkit/internal/archive"
	"hostkit/internal/backup"
	"hostkit/internal/config"
	"hostkit/internal/fs"
	"hostkit/internal/logging"
	"hostkit/internal/mailbox"
	"hostkit/internal/reload"
	"hostkit/internal/schedule"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "backupd <input_directory> <output_directory> <interval_minutes>",
		Short: "Periodic directory backup daemon",
		Long: "backupd archives the input directory into timestamped .tar.gz\n" +
			"files in the output directory, once per interval, until stopped.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(args)
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "optional YAML config file")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(args []string) error {
	inputDir, outputDir := args[0], args[1]

	minutes, err := strconv.Atoi(args[2])
	if err != nil || minutes < 1 {
		return fmt.Errorf("interval must be a positive number of minutes, got %q", args[2])
	}

	cfg := config.Default()
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
	}

	logg := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	var sched schedule.Scheduler = schedule.Interval{Every: time.Duration(minutes) * time.Minute}
	if cfg.Backup.Schedule != "" {
		cronSched, err := schedule.ParseCron(cfg.Backup.Schedule)
		if err != nil {
			return err
		}
		sched = cronSched
		logg.Info("cron schedule %q overrides the interval; next run %s",
			cfg.Backup.Schedule, cronSched.Next(time.Now()).Format(time.RFC3339))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logg.Info("shutting down...")
		cancel()
	}()

	fsys := fs.New()
	updates := mailbox.New[config.BackupConfig]()

	if cfgFile != "" {
		watch := reload.New(cfgFile, cfg.ConfigReload, logg, updates)

		if cfg.ConfigReload.Enabled {
			go func() {
				if err := watch.Start(ctx); err != nil {
					logg.Error("config watcher failed: %v", err)
				}
			}()
		}

		// Hot reload on SIGHUP
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGHUP)
			for range sigCh {
				watch.Publish()
			}
		}()
	}

	runner := backup.New(backup.Options{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Prefix:    cfg.Backup.Prefix,
		Scheduler: sched,
	}, archive.NewWriter(fsys), fsys, logg, updates)

	if err := runner.Run(ctx); err != nil && !backup.IsCancelled(err) {
		return err
	}
	return nil
}
