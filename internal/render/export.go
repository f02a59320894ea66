package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hpungsan/sicon/internal/errors"
)

// Artifact describes a written output file.
type Artifact struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
	Bytes  int64  `json:"bytes"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Exporter writes render requests to disk.
type Exporter struct {
	Capability Capability
}

// NewExporter creates an Exporter bound to c.
func NewExporter(c Capability) *Exporter {
	return &Exporter{Capability: c}
}

// Export renders doc per req and writes req.Target.
// The target is replaced atomically; on failure it is left untouched and
// no temporary files remain.
func (e *Exporter) Export(ctx context.Context, doc []byte, req Request) (*Artifact, error) {
	if err := e.Capability.Check(req.Format); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("export")
	}

	if err := os.MkdirAll(filepath.Dir(req.Target), 0755); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create output directory: %w", err))
	}

	art := &Artifact{Path: req.Target, Format: req.Format}

	switch {
	case req.Format == FormatSVG:
		n, err := writeAtomic(req.Target, func(w io.Writer) error {
			_, err := w.Write(doc)
			return err
		})
		if err != nil {
			return nil, err
		}
		art.Bytes = n

	case req.Format.IsBundle():
		n, err := e.exportBundle(ctx, doc, req)
		if err != nil {
			return nil, err
		}
		art.Bytes = n
		last := IconsetEntries()[len(IconsetEntries())-1]
		art.Width, art.Height = last.Pixels, last.Pixels

	default:
		img, err := renderRaster(doc, req.Size, req)
		if err != nil {
			return nil, err
		}
		n, err := writeAtomic(req.Target, func(w io.Writer) error {
			return Encode(w, img, req.Format)
		})
		if err != nil {
			return nil, err
		}
		art.Bytes = n
		art.Width, art.Height = req.Size, req.Size
	}

	return art, nil
}

// exportBundle stages the iconset ladder in a work directory next to the
// target, runs the packager and renames its output into place.
// The work directory is removed on every path.
func (e *Exporter) exportBundle(ctx context.Context, doc []byte, req Request) (int64, error) {
	if e.Capability.Packager == nil {
		return 0, e.Capability.Check(req.Format)
	}

	work, err := os.MkdirTemp(filepath.Dir(req.Target), ".sicon-")
	if err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create work directory: %w", err))
	}
	defer os.RemoveAll(work)

	staging := filepath.Join(work, "icon.iconset")
	if err := os.Mkdir(staging, 0755); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create iconset directory: %w", err))
	}

	for _, entry := range IconsetEntries() {
		if ctx.Err() != nil {
			return 0, errors.NewCancelled("export")
		}
		img, err := renderRaster(doc, entry.Pixels, req)
		if err != nil {
			return 0, err
		}
		f, err := os.OpenFile(filepath.Join(staging, entry.Name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		encErr := Encode(f, img, FormatPNG)
		closeErr := f.Close()
		if encErr != nil {
			return 0, encErr
		}
		if closeErr != nil {
			return 0, errors.NewInternal(closeErr)
		}
	}

	packed := filepath.Join(work, "icon.icns")
	if err := e.Capability.Packager.Package(ctx, staging, packed); err != nil {
		return 0, errors.NewRender("package icns", err)
	}
	info, err := os.Stat(packed)
	if err != nil {
		return 0, errors.NewRender("package icns", fmt.Errorf("packager produced no output: %w", err))
	}

	if err := rename(packed, req.Target); err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// writeAtomic writes through a temp file in the target directory and renames
// it into place. Returns the number of bytes written.
func writeAtomic(target string, write func(io.Writer) error) (int64, error) {
	file, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create temp file: %w", err))
	}
	tempPath := file.Name()

	// Clean up temp file on failure (existing target is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	cw := &countingWriter{w: file}
	if err := write(cw); err != nil {
		if _, ok := errors.As(err); ok {
			return 0, err
		}
		return 0, errors.NewInternal(err)
	}

	if err := file.Sync(); err != nil {
		return 0, errors.NewInternal(err)
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to close temp file: %w", err))
	}
	file = nil

	if err := os.Chmod(tempPath, 0644); err != nil {
		return 0, errors.NewInternal(err)
	}

	if err := rename(tempPath, target); err != nil {
		return 0, err
	}

	success = true
	return cw.n, nil
}

// rename moves src over dst.
//
// On Windows, os.Rename fails if the destination exists. We fail safely
// (preserving the existing file) instead of a non-atomic delete+rename.
func rename(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(dst); statErr == nil {
				return errors.NewInvalidRequest("output file already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize output: %w", err))
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
