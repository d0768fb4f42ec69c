package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hostkit/internal/archive"
	"hostkit/internal/fs"
	"hostkit/internal/logging"
	"hostkit/internal/schedule"
)

// fakeArchiver writes a fixed payload, or misbehaves on demand.
type fakeArchiver struct {
	fail      bool // report an error, write nothing
	skipWrite bool // report success but write nothing
	calls     int
}

func (f *fakeArchiver) Create(ctx context.Context, srcDir, destPath string) error {
	f.calls++
	if f.fail {
		return errors.New("tar blew up")
	}
	if f.skipWrite {
		return nil
	}
	return os.WriteFile(destPath, []byte("data"), 0o644)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testOptions(t *testing.T, out io.Writer) (Options, string, string) {
	t.Helper()
	tmp := t.TempDir()
	input := filepath.Join(tmp, "src")
	if err := os.MkdirAll(input, 0o755); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(tmp, "out")

	return Options{
		InputDir:  input,
		OutputDir: output,
		Scheduler: schedule.Interval{Every: time.Millisecond},
		MaxCycles: 1,
		Out:       out,
		Now:       fixedClock(time.Date(2024, 3, 15, 9, 30, 45, 0, time.Local)),
	}, input, output
}

func TestRunSingleCycle(t *testing.T) {
	var out strings.Builder
	opts, _, outputDir := testOptions(t, &out)

	r := New(opts, &fakeArchiver{}, nil, logging.Nop{}, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Creating backup_20240315_093045.tar.gz... done! (size: 4 B)\n"
	if out.String() != want {
		t.Fatalf("output mismatch:\ngot  %q\nwant %q", out.String(), want)
	}

	matches, err := filepath.Glob(filepath.Join(outputDir, "backup_*.tar.gz"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected exactly one archive, got %v", matches)
	}
}

func TestRunCreatesOutputDirIdempotently(t *testing.T) {
	var out strings.Builder
	opts, _, outputDir := testOptions(t, &out)

	// Pre-create the output directory; a second MkdirAll must not fail.
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	r := New(opts, &fakeArchiver{}, nil, logging.Nop{}, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunMissingInputDirIsFatal(t *testing.T) {
	var out strings.Builder
	opts, inputDir, outputDir := testOptions(t, &out)
	if err := os.RemoveAll(inputDir); err != nil {
		t.Fatal(err)
	}

	arch := &fakeArchiver{}
	r := New(opts, arch, nil, logging.Nop{}, nil)

	err := r.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing-input error, got %v", err)
	}
	if arch.calls != 0 {
		t.Fatalf("no archive must be attempted, got %d calls", arch.calls)
	}
	if _, statErr := os.Stat(outputDir); !os.IsNotExist(statErr) {
		t.Fatalf("output directory must not be created when validation fails")
	}
}

func TestRunFirstFailureIsFatal(t *testing.T) {
	var out strings.Builder
	opts, _, _ := testOptions(t, &out)
	opts.MaxCycles = 5

	arch := &fakeArchiver{fail: true}
	r := New(opts, arch, nil, logging.Nop{}, nil)

	err := r.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if arch.calls != 1 {
		t.Fatalf("expected no retry after failure, got %d calls", arch.calls)
	}
	if !strings.HasSuffix(out.String(), " failed!\n") {
		t.Fatalf("expected failure report, got %q", out.String())
	}
}

func TestRunArchiverSuccessWithoutFileIsFailure(t *testing.T) {
	// Success requires both a clean archiver status and an existing file.
	var out strings.Builder
	opts, _, _ := testOptions(t, &out)

	r := New(opts, &fakeArchiver{skipWrite: true}, nil, logging.Nop{}, nil)
	if err := r.Run(context.Background()); err == nil {
		t.Fatalf("expected error when archive file is absent")
	}
	if !strings.HasSuffix(out.String(), " failed!\n") {
		t.Fatalf("expected failure report, got %q", out.String())
	}
}

func TestRunSameSecondCollisionGetsSuffix(t *testing.T) {
	var out strings.Builder
	opts, _, outputDir := testOptions(t, &out)
	opts.MaxCycles = 2

	r := New(opts, &fakeArchiver{}, nil, logging.Nop{}, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{
		"backup_20240315_093045.tar.gz",
		"backup_20240315_093045_2.tar.gz",
	} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	opts, _, _ := testOptions(t, &out)
	opts.MaxCycles = 0

	r := New(opts, &fakeArchiver{}, nil, logging.Nop{}, nil)

	err := r.Run(ctx)
	if !IsCancelled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

// End-to-end cycle with the real archiver: the artifact must extract back to
// the original file under a top-level directory named after the input dir.
func TestRunWritesExtractableArchive(t *testing.T) {
	var out strings.Builder
	opts, inputDir, outputDir := testOptions(t, &out)

	if err := os.WriteFile(filepath.Join(inputDir, "file.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	fsys := fs.New()
	r := New(opts, archive.NewWriter(fsys), fsys, logging.Nop{}, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(outputDir, "backup_*.tar.gz"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one archive, got %v (err %v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)

	found := false
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if hdr.Name == "src/file.txt" {
			content, err := io.ReadAll(tr)
			if err != nil {
				t.Fatal(err)
			}
			if string(content) != "payload" {
				t.Fatalf("content mismatch: %q", content)
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("src/file.txt not found in archive")
	}
}
