// Package backup implements the periodic backup loop.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"hostkit/internal/config"
	"hostkit/internal/fs"
	"hostkit/internal/logging"
	"hostkit/internal/mailbox"
	"hostkit/internal/schedule"
)

// Archiver produces one archive file from a source directory.
type Archiver interface {
	Create(ctx context.Context, srcDir, destPath string) error
}

// Options configures a Runner. InputDir, OutputDir and Scheduler are
// required; the rest has working defaults.
type Options struct {
	InputDir  string
	OutputDir string
	Prefix    string

	Scheduler schedule.Scheduler

	// MaxCycles bounds the loop for tests. Zero means run until cancelled.
	MaxCycles int

	// Out receives the per-cycle progress protocol. Defaults to os.Stdout.
	Out io.Writer

	// Now is the clock used for archive names. Defaults to time.Now.
	Now func() time.Time
}

// Runner drives the cycle loop: name, archive, verify, report, wait.
// The first failed cycle is fatal; Run returns the error without retrying.
type Runner struct {
	opts  Options
	arch  Archiver
	fsys  fs.FS
	log   logging.Logger
	sched schedule.Scheduler

	// updates carries reloaded configuration; applied between cycles.
	updates *mailbox.Mailbox[config.BackupConfig]
}

func New(opts Options, arch Archiver, fsys fs.FS, log logging.Logger, updates *mailbox.Mailbox[config.BackupConfig]) *Runner {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if fsys == nil {
		fsys = fs.New()
	}

	return &Runner{
		opts:    opts,
		arch:    arch,
		fsys:    fsys,
		log:     log,
		sched:   opts.Scheduler,
		updates: updates,
	}
}

// Run validates the backup tuple once, then cycles until the context is
// cancelled, MaxCycles is reached, or a cycle fails.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}

	if existing, err := Scan(r.opts.OutputDir, r.opts.Prefix); err == nil && len(existing) > 0 {
		r.log.Info("found %d existing archive(s) in %s", len(existing), r.opts.OutputDir)
	}

	for n := 0; r.opts.MaxCycles == 0 || n < r.opts.MaxCycles; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.cycle(ctx); err != nil {
			return err
		}

		r.applyPendingConfig()

		if r.opts.MaxCycles > 0 && n+1 == r.opts.MaxCycles {
			break
		}

		if err := r.sched.Wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

// validate fails fast before any archiving happens.
func (r *Runner) validate() error {
	info, err := r.fsys.Stat(r.opts.InputDir)
	if err != nil || !info.IsDir {
		return fmt.Errorf("input directory %s does not exist", r.opts.InputDir)
	}

	// Creating an already-existing output directory is not an error.
	if err := r.fsys.MkdirAll(r.opts.OutputDir); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	return nil
}

func (r *Runner) cycle(ctx context.Context) error {
	name := ArtifactName(r.opts.Prefix, r.opts.Now())
	dest := r.uniquePath(filepath.Join(r.opts.OutputDir, name))

	fmt.Fprintf(r.opts.Out, "Creating %s...", filepath.Base(dest))

	err := r.arch.Create(ctx, r.opts.InputDir, dest)

	// Success means the archiver reported none AND the file exists.
	var info fs.FileInfo
	if err == nil {
		info, err = r.fsys.Stat(dest)
	}

	if err != nil {
		fmt.Fprintln(r.opts.Out, " failed!")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("backup of %s failed: %w", r.opts.InputDir, err)
	}

	fmt.Fprintf(r.opts.Out, " done! (size: %s)\n", humanize.Bytes(uint64(info.Size)))
	r.log.Debug("archive written: %s (%d bytes)", dest, info.Size)

	return nil
}

// uniquePath appends a numeric counter when two cycles land in the same
// second, so an existing archive is never silently overwritten.
func (r *Runner) uniquePath(dest string) string {
	if _, err := r.fsys.Stat(dest); err != nil {
		return dest
	}

	base := strings.TrimSuffix(dest, suffix)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, suffix)
		if _, err := r.fsys.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// applyPendingConfig picks up a reloaded config between cycles.
func (r *Runner) applyPendingConfig() {
	if r.updates == nil {
		return
	}

	upd := r.updates.TryTake()
	if upd == nil {
		return
	}

	if upd.Prefix != "" && upd.Prefix != r.opts.Prefix {
		r.log.Info("archive prefix changed: %s -> %s", r.opts.Prefix, upd.Prefix)
		r.opts.Prefix = upd.Prefix
	}

	if upd.Schedule != "" {
		cronSched, err := schedule.ParseCron(upd.Schedule)
		if err != nil {
			r.log.Error("ignoring reloaded schedule: %v", err)
			return
		}
		r.log.Info("switching to cron schedule %q", upd.Schedule)
		r.sched = cronSched
	} else if r.opts.Scheduler != nil {
		r.sched = r.opts.Scheduler
	}
}

// IsCancelled reports whether err is just the loop noticing shutdown.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
