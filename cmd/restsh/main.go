package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hostkit/internal/command"
	"hostkit/internal/shell"
)

func main() {
	root := &cobra.Command{
		Use:   "restsh",
		Short: "Restricted interactive shell",
		Long: "restsh reads commands from a prompt and executes only the\n" +
			"allow-listed health command. Type 'exit' to quit.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run()
		},
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	runner := &command.ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	sh := shell.New(shell.Options{
		Commands: map[string]shell.Handler{
			"health": func(ctx context.Context) error {
				return runner.Run(ctx, "health")
			},
		},
	}, os.Stdin, os.Stdout)

	err := sh.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
