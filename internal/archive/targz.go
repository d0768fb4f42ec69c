// Package archive writes gzip-compressed tar archives of a directory tree.
//
// Entries are stored with paths rooted at the source directory's base name,
// never absolute, so the archive unpacks the same way on any machine. The
// archive is written to a temporary file and renamed into place once it is
// complete, so a half-written file never carries the final name.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"hostkit/internal/fs"
)

// Writer creates archives on the local filesystem.
type Writer struct {
	fsys fs.FS
}

func NewWriter(fsys fs.FS) *Writer {
	if fsys == nil {
		fsys = fs.New()
	}
	return &Writer{fsys: fsys}
}

// Create archives srcDir into destPath as a .tar.gz file.
func (w *Writer) Create(ctx context.Context, srcDir, destPath string) error {
	st, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("source %s is not a directory", srcDir)
	}

	tmp := destPath + ".tmp"

	if err := w.writeTo(ctx, srcDir, tmp); err != nil {
		_ = w.fsys.Remove(tmp)
		return err
	}

	if err := w.fsys.Rename(ctx, tmp, destPath); err != nil {
		_ = w.fsys.Remove(tmp)
		return fmt.Errorf("finalizing archive: %w", err)
	}

	return nil
}

func (w *Writer) writeTo(ctx context.Context, srcDir, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	base := filepath.Base(filepath.Clean(srcDir))

	err = filepath.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			link, err = os.Readlink(p)
			if err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		hdr.Name = path.Join(base, filepath.ToSlash(rel))
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		src, err := os.Open(p)
		if err != nil {
			return err
		}
		defer src.Close()

		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("copying %s: %w", rel, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("archiving %s: %w", srcDir, err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip stream: %w", err)
	}
	return f.Sync()
}
