package service

import (
	"context"
	"time"

	"github.com/yndnr/imgcarve/internal/storage/fragment"
)

// MergeService reassembles fragment directories.
type MergeService struct {
	opts serviceOptions
}

// NewMergeService creates a new MergeService.
func NewMergeService(opts ...Option) *MergeService {
	return &MergeService{opts: newOptions(opts)}
}

// MergeRequest contains parameters for a merge.
type MergeRequest struct {
	Dir    string // Required: directory of fragments
	Output string // Required: file to create or truncate

	// Progress, if set, receives merge progress in bytes.
	Progress func(done, total int64)
}

// Merge concatenates the regular files of req.Dir, in byte-wise name
// order, into req.Output. Every failure is fatal.
func (s *MergeService) Merge(ctx context.Context, req *MergeRequest) (*fragment.MergeStats, error) {
	start := time.Now()
	log := s.opts.logger

	stats, err := fragment.Merge(ctx, req.Dir, req.Output,
		fragment.WithLogger(log),
		fragment.WithProgress(req.Progress),
	)
	if err != nil {
		return stats, err
	}

	if s.opts.metrics != nil {
		s.opts.metrics.ObserveMerge(stats.Fragments, stats.Bytes)
	}
	log.Info("merge complete",
		"fragments", stats.Fragments,
		"bytes", stats.Bytes,
		"output", req.Output,
		"elapsed", time.Since(start),
	)
	return stats, nil
}
