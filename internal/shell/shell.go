// Package shell implements the restricted interactive shell.
//
// The shell reads one line at a time from a prompt and dispatches it against
// a closed allow-list built at construction time. Lookup is exact-key only:
// no prefix, substring or pattern matching is ever applied, so growing the
// allow-list cannot reintroduce injection through partial matches.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	// DefaultPrompt is printed before every read.
	DefaultPrompt = "> "

	exitCommand   = "exit"
	farewell      = "Exiting..."
	notAllowedMsg = "Error: Command not allowed."
)

// Handler executes one allow-listed command.
type Handler func(ctx context.Context) error

// Options configures a Shell. The allow-list is copied at construction and
// immutable afterwards, so different allow-lists can be injected in tests.
type Options struct {
	Prompt   string
	Commands map[string]Handler
}

// Shell is a single-session restricted shell over a line reader.
type Shell struct {
	prompt   string
	commands map[string]Handler

	in  *bufio.Scanner
	out io.Writer

	history []string
}

// New builds a shell reading commands from in and writing to out.
func New(opts Options, in io.Reader, out io.Writer) *Shell {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	commands := make(map[string]Handler, len(opts.Commands))
	for name, h := range opts.Commands {
		commands[name] = h
	}

	return &Shell{
		prompt:   prompt,
		commands: commands,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run processes input lines until "exit", end of input, or ctx cancellation.
// End of input is treated like "exit": the farewell is printed and Run
// returns nil (or the reader's error, if any).
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, s.prompt)

		if !s.in.Scan() {
			fmt.Fprintln(s.out, farewell)
			return s.in.Err()
		}

		line := strings.TrimSpace(s.in.Text())

		if line == exitCommand {
			fmt.Fprintln(s.out, farewell)
			return nil
		}

		// Exact-key lookup only.
		handler, ok := s.commands[line]
		if !ok {
			fmt.Fprintln(s.out, notAllowedMsg)
			continue
		}

		s.history = append(s.history, line)

		if err := handler(ctx); err != nil {
			fmt.Fprintf(s.out, "%s: %v\n", line, err)
		}
	}
}

// History returns the commands executed during this session, in order.
// Disallowed input is not recorded.
func (s *Shell) History() []string {
	return slices.Clone(s.history)
}
