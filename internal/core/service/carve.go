package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/storage/artifact"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
	"github.com/yndnr/imgcarve/pkg/carve"
)

// CarveService scans input files and writes their segments.
type CarveService struct {
	opts serviceOptions
}

// NewCarveService creates a new CarveService.
func NewCarveService(opts ...Option) *CarveService {
	return &CarveService{opts: newOptions(opts)}
}

// ============================================================================
// Carve Operation
// ============================================================================

// CarveRequest contains parameters for one carve run.
type CarveRequest struct {
	Input         string     // Required: file to scan
	OutputDir     string     // Required: created if missing
	Mode          carve.Mode // Partition (default) or single-type
	AlignedStride bool       // Step terminator search by pattern length
	KeepRaw       bool       // Copy bytes verbatim instead of re-encoding
	Workers       int        // Concurrent artifact writes, default 1
	RateLimit     int64      // Bytes per second, 0 = unlimited
	Manifest      string     // Optional manifest path (.json or YAML)

	// OnScanned, if set, is called once the input is scanned and before
	// any artifact is written.
	OnScanned func(*carve.Result)

	// Progress, if set, receives artifact write progress in bytes.
	Progress func(done, total int64)
}

// CarveResponse contains the outcome of a carve run.
type CarveResponse struct {
	RunID    string
	Result   *carve.Result
	Report   *artifact.Report
	Manifest *domain.Manifest // nil unless requested
	Elapsed  time.Duration
}

// Carve reads req.Input, scans it and writes one artifact per segment into
// req.OutputDir.
//
// Failing to read the input or create the output directory is fatal.
// Per-artifact failures are logged and reported in the response but do not
// fail the run.
func (s *CarveService) Carve(ctx context.Context, req *CarveRequest) (*CarveResponse, error) {
	start := time.Now()

	runID, err := domain.NewRunID()
	if err != nil {
		return nil, err
	}
	ctx = logger.WithRunID(logger.WithLogger(ctx, s.opts.logger), runID)
	log := logger.L(ctx)

	// 1. Read input
	buf, err := os.ReadFile(req.Input)
	if err != nil {
		return nil, domain.ErrInputRead.At(req.Input, err)
	}

	// 2. Prepare output directory
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, domain.ErrOutputDir.At(req.OutputDir, err)
	}

	// 3. Scan
	res := s.scan(buf, req.Mode, req.AlignedStride)
	log.Debug("input scanned",
		"input", req.Input,
		"bytes", len(buf),
		"segments", len(res.Segments),
		"mode", res.Mode.String(),
	)
	s.logCounts(log, res)
	if req.OnScanned != nil {
		req.OnScanned(res)
	}

	// 4. Write artifacts
	w := artifact.NewWriter(req.OutputDir,
		artifact.WithKeepRaw(req.KeepRaw),
		artifact.WithCodec(s.opts.codec),
		artifact.WithWorkers(req.Workers),
		artifact.WithRateLimit(req.RateLimit),
		artifact.WithLogger(log),
		artifact.WithProgress(req.Progress),
	)
	report, werr := w.WriteAll(ctx, res)
	s.recordArtifacts(report)

	resp := &CarveResponse{
		RunID:  runID,
		Result: res,
		Report: report,
	}

	// 5. Manifest, written even for a cancelled run so it shows what was
	// skipped.
	if req.Manifest != "" {
		m := buildManifest(runID, req, buf, res, report, start)
		if err := WriteManifest(req.Manifest, m); err != nil {
			return resp, err
		}
		resp.Manifest = m
		log.Debug("manifest written", "path", req.Manifest)
	}

	if werr != nil {
		return resp, werr
	}

	resp.Elapsed = time.Since(start)
	log.Info("carve complete",
		"total", len(res.Segments),
		"written", report.Written,
		"failed", len(report.Failures),
		"output", req.OutputDir,
		"elapsed", resp.Elapsed,
	)
	return resp, nil
}

func (s *CarveService) scan(buf []byte, mode carve.Mode, aligned bool) *carve.Result {
	began := time.Now()
	res := carve.NewScanner(
		carve.WithMode(mode),
		carve.WithAlignedStride(aligned),
	).Scan(buf)

	if s.opts.metrics != nil {
		counts := make(map[string]int)
		for f, n := range res.Counts() {
			counts[f.String()] = n
		}
		s.opts.metrics.ObserveScan(counts, len(buf), time.Since(began))
	}
	return res
}

// logCounts logs the number of segments found per image format, and the
// OPAQUE count in partition mode.
func (s *CarveService) logCounts(log logger.Logger, res *carve.Result) {
	counts := res.Counts()
	for _, f := range carve.ImageFormats() {
		log.Info("images found", "format", f.Ext(), "count", counts[f])
	}
	if res.Mode == carve.ModePartition {
		log.Debug("opaque segments", "count", counts[carve.FormatOpaque])
	}
}

func (s *CarveService) recordArtifacts(report *artifact.Report) {
	if s.opts.metrics == nil || report == nil {
		return
	}
	for _, a := range report.Artifacts {
		switch a.Status {
		case artifact.StatusWritten:
			s.opts.metrics.ObserveArtifact(a.Segment.Format.String(), a.Size)
		case artifact.StatusFailed:
			s.opts.metrics.ArtifactFailed(failureReason(a.Err))
		}
	}
}

// failureReason maps an artifact error to a metric label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrArtifactCreate):
		return "create"
	case errors.Is(err, domain.ErrArtifactWrite):
		return "write"
	case errors.Is(err, domain.ErrArtifactDecode):
		return "decode"
	case errors.Is(err, domain.ErrArtifactSave):
		return "save"
	default:
		return "other"
	}
}

// ============================================================================
// Scan Operation (dry run)
// ============================================================================

// ScanRequest contains parameters for a dry-run scan.
type ScanRequest struct {
	Input         string
	Mode          carve.Mode
	AlignedStride bool
	Digests       bool // compute a BLAKE3 digest per segment
}

// SegmentInfo describes one segment of a scan for display.
type SegmentInfo struct {
	Index  int          `json:"index" yaml:"index"`
	Name   string       `json:"name" yaml:"name"`
	Format carve.Format `json:"format" yaml:"format"`
	Start  int          `json:"start" yaml:"start"`
	End    int          `json:"end" yaml:"end"`
	Size   int          `json:"size" yaml:"size"`
	Digest string       `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// ScanResponse contains the segment directory of a dry-run scan.
type ScanResponse struct {
	Input    string        `json:"input" yaml:"input"`
	Size     int           `json:"size" yaml:"size"`
	Mode     carve.Mode    `json:"mode" yaml:"mode"`
	Segments []SegmentInfo `json:"segments" yaml:"segments"`
}

// Scan reads req.Input and returns its segment directory with the names a
// carve would use. Nothing is written.
func (s *CarveService) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	buf, err := os.ReadFile(req.Input)
	if err != nil {
		return nil, domain.ErrInputRead.At(req.Input, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := s.scan(buf, req.Mode, req.AlignedStride)
	log := s.opts.logger
	s.logCounts(log, res)

	names := res.Names()
	resp := &ScanResponse{
		Input:    req.Input,
		Size:     res.Size,
		Mode:     res.Mode,
		Segments: make([]SegmentInfo, len(res.Segments)),
	}
	for i, seg := range res.Segments {
		info := SegmentInfo{
			Index:  i,
			Name:   names[i],
			Format: seg.Format,
			Start:  seg.Start,
			End:    seg.End,
			Size:   seg.Len(),
		}
		if req.Digests {
			info.Digest = domain.Digest(seg.Bytes())
		}
		resp.Segments[i] = info
	}
	return resp, nil
}
