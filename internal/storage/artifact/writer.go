package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
	"github.com/yndnr/imgcarve/pkg/carve"
)

// Status of one artifact after WriteAll.
const (
	StatusWritten = domain.StatusWritten
	StatusFailed  = domain.StatusFailed
	StatusSkipped = domain.StatusSkipped
)

// maxChunk caps a single limiter reservation.
const maxChunk = 64 << 10

// Artifact describes the outcome for one segment.
type Artifact struct {
	Index   int // position in the segment directory, 0-based
	Name    string
	Path    string
	Segment carve.Segment
	Raw     bool  // bytes were copied verbatim
	Size    int64 // bytes on disk, 0 unless written
	Status  string
	Err     error
}

// Failure is a segment that could not be written.
type Failure struct {
	Index int
	Name  string
	Err   error
}

// Report summarises one WriteAll call.
type Report struct {
	Dir       string
	Artifacts []Artifact
	Failures  []Failure
	Written   int
	Bytes     int64 // bytes on disk across written artifacts
}

// Writer writes carved segments into a directory.
type Writer struct {
	dir      string
	keepRaw  bool
	codec    Codec
	workers  int
	limiter  *rate.Limiter
	logger   logger.Logger
	progress func(done, total int64)
}

// Option configures a Writer.
type Option func(*Writer)

// WithKeepRaw copies every segment verbatim instead of re-encoding images.
func WithKeepRaw(keep bool) Option {
	return func(w *Writer) {
		w.keepRaw = keep
	}
}

// WithCodec replaces the default StdCodec.
func WithCodec(c Codec) Option {
	return func(w *Writer) {
		if c != nil {
			w.codec = c
		}
	}
}

// WithWorkers writes up to n artifacts concurrently. Output does not depend
// on n.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithRateLimit throttles writes to bytesPerSecond. Zero or less disables
// throttling.
func WithRateLimit(bytesPerSecond int64) Option {
	return func(w *Writer) {
		if bytesPerSecond <= 0 {
			w.limiter = nil
			return
		}
		burst := int(min(bytesPerSecond, maxChunk))
		w.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), burst)
	}
}

// WithLogger sets the logger used for per-artifact failures.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithProgress registers fn to be called after each artifact with the
// segment bytes handled so far and the total. Calls are serialised.
func WithProgress(fn func(done, total int64)) Option {
	return func(w *Writer) {
		w.progress = fn
	}
}

// NewWriter creates a Writer for dir. The directory must already exist.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{
		dir:     dir,
		codec:   StdCodec{},
		workers: 1,
		logger:  logger.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteAll writes one artifact per segment of res, named by res.Names().
//
// Per-segment failures are logged and returned in the Report. The error is
// non-nil only when ctx is cancelled; the Report then covers the segments
// attempted before cancellation and the rest are marked skipped.
func (w *Writer) WriteAll(ctx context.Context, res *carve.Result) (*Report, error) {
	names := res.Names()
	arts := make([]Artifact, len(res.Segments))
	for i, seg := range res.Segments {
		arts[i] = Artifact{
			Index:   i,
			Name:    names[i],
			Path:    filepath.Join(w.dir, names[i]),
			Segment: seg,
			Status:  StatusSkipped,
		}
	}

	var (
		mu    sync.Mutex
		done  int64
		total = int64(res.CoveredBytes())
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers)

	for i := range arts {
		if gctx.Err() != nil {
			break
		}
		a := &arts[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := w.writeOne(gctx, a); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					a.Status = StatusSkipped
					a.Err = nil
					return err
				}
				a.Status = StatusFailed
				a.Err = err
				w.logger.Error("failed to write artifact",
					"index", a.Index,
					"name", a.Name,
					"error", err,
				)
			} else {
				a.Status = StatusWritten
			}

			if w.progress != nil {
				mu.Lock()
				done += int64(a.Segment.Len())
				w.progress(done, total)
				mu.Unlock()
			}
			return nil
		})
	}
	waitErr := g.Wait()

	report := &Report{Dir: w.dir, Artifacts: arts}
	for _, a := range arts {
		switch a.Status {
		case StatusWritten:
			report.Written++
			report.Bytes += a.Size
		case StatusFailed:
			report.Failures = append(report.Failures, Failure{Index: a.Index, Name: a.Name, Err: a.Err})
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if waitErr != nil {
		return report, waitErr
	}
	return report, nil
}

// writeOne writes a single artifact through a temporary file in the output
// directory and renames it into place.
func (w *Writer) writeOne(ctx context.Context, a *Artifact) error {
	data := a.Segment.Bytes()
	if err := w.throttle(ctx, len(data)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.dir, "."+a.Name+".*.tmp")
	if err != nil {
		return domain.ErrArtifactCreate.At(a.Path, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	raw := w.keepRaw || a.Segment.Format == carve.FormatOpaque
	a.Raw = raw
	if raw {
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return domain.ErrArtifactWrite.At(a.Path, err)
		}
		if err := tmp.Close(); err != nil {
			return domain.ErrArtifactWrite.At(a.Path, err)
		}
	} else {
		tmp.Close()
		img, err := w.codec.Decode(data)
		if err != nil {
			return domain.ErrArtifactDecode.At(a.Path, err)
		}
		if err := img.Save(tmpPath, a.Segment.Format); err != nil {
			return domain.ErrArtifactSave.At(a.Path, err)
		}
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return domain.ErrArtifactWrite.At(a.Path, err)
	}
	if err := os.Rename(tmpPath, a.Path); err != nil {
		return domain.ErrArtifactWrite.At(a.Path, err)
	}
	committed = true
	a.Size = info.Size()
	return nil
}

// throttle blocks until n bytes may be written.
func (w *Writer) throttle(ctx context.Context, n int) error {
	if w.limiter == nil {
		return nil
	}
	burst := w.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := w.limiter.WaitN(ctx, chunk); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		n -= chunk
	}
	return nil
}
