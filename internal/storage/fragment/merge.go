package fragment

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
)

// copyBufSize is the buffer used to stream each fragment.
const copyBufSize = 256 << 10

// MergeStats summarises a Merge.
type MergeStats struct {
	Output    string
	Fragments int
	Bytes     int64
	Skipped   []string // directory entries that are not regular files
}

type options struct {
	logger   logger.Logger
	progress func(done, total int64)
}

// Option configures Merge.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithProgress registers fn to be called as bytes are appended, with the
// running byte count and the total size of all fragments.
func WithProgress(fn func(done, total int64)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// Fragments returns the regular files directly inside dir sorted by full
// path, and the names of entries that were skipped. exclude, if non-empty,
// is left out of the listing.
func Fragments(dir, exclude string) ([]string, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, domain.ErrFragmentDir.At(dir, err)
	}

	excludeAbs := ""
	if exclude != "" {
		if abs, err := filepath.Abs(exclude); err == nil {
			excludeAbs = abs
		}
	}

	var files, skipped []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.Type().IsRegular() {
			skipped = append(skipped, e.Name())
			continue
		}
		if excludeAbs != "" {
			if abs, err := filepath.Abs(path); err == nil && abs == excludeAbs {
				skipped = append(skipped, e.Name())
				continue
			}
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, skipped, nil
}

// Merge concatenates the regular files of dir into out.
//
// out is created or truncated. Any failure is fatal and returned as a
// *domain.CarveError naming the path involved; out may then hold a partial
// result. An empty dir yields a zero-byte out. If out lives inside dir it
// is not merged into itself.
func Merge(ctx context.Context, dir, out string, opts ...Option) (*MergeStats, error) {
	o := options{logger: logger.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	files, skipped, err := Fragments(dir, out)
	if err != nil {
		return nil, err
	}
	for _, name := range skipped {
		o.logger.Debug("skipping entry", "dir", dir, "name", name)
	}

	var total int64
	if o.progress != nil {
		for _, f := range files {
			if info, err := os.Stat(f); err == nil {
				total += info.Size()
			}
		}
	}

	dst, err := os.Create(out)
	if err != nil {
		return nil, domain.ErrMergeOutput.At(out, err)
	}

	stats := &MergeStats{Output: out, Skipped: skipped}
	buf := make([]byte, copyBufSize)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			dst.Close()
			return stats, err
		}

		n, err := appendFile(dst, f, buf, func(n int64) {
			if o.progress != nil {
				o.progress(stats.Bytes+n, total)
			}
		})
		stats.Bytes += n
		if err != nil {
			dst.Close()
			return stats, err
		}
		stats.Fragments++
		o.logger.Debug("appended fragment", "path", f, "bytes", n)
	}

	if err := dst.Close(); err != nil {
		return stats, domain.ErrMergeOutput.At(out, err)
	}
	return stats, nil
}

// appendFile copies the file at path to dst. A read failure is reported
// against path, a write failure against dst.
func appendFile(dst *os.File, path string, buf []byte, progress func(int64)) (int64, error) {
	src, err := os.Open(path)
	if err != nil {
		return 0, domain.ErrFragmentIO.At(path, err)
	}
	defer src.Close()

	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, domain.ErrFragmentIO.At(dst.Name(), werr)
			}
			progress(written)
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, domain.ErrFragmentIO.At(path, rerr)
		}
	}
}
