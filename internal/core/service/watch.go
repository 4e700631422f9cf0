package service

import (
	"context"
	"os"
	"time"

	"github.com/yndnr/imgcarve/internal/infra/confloader"
	"github.com/yndnr/imgcarve/internal/storage/artifact"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
)

// WatchRequest contains parameters for watch mode.
type WatchRequest struct {
	CarveRequest

	// Debounce is the quiet period after the last write to the input
	// before a re-carve starts. Zero uses confloader.DefaultDebounce.
	Debounce time.Duration
}

// Watch carves req.Input once, then again every time the file is written,
// until ctx is done. Each run's outcome is passed to onRun, which may be
// nil. A failing run does not stop the watch.
//
// Before a re-carve, the artifacts written by the previous run are
// removed so the output directory always reflects the latest input.
func (s *CarveService) Watch(ctx context.Context, req *WatchRequest, onRun func(*CarveResponse, error)) error {
	log := s.opts.logger

	debounce := req.Debounce
	if debounce <= 0 {
		debounce = confloader.DefaultDebounce
	}
	w, err := confloader.NewWatcher(logger.Slog(log), debounce, req.Input)
	if err != nil {
		return err
	}
	wctx, stop := context.WithCancel(ctx)
	watching := make(chan struct{})
	go func() {
		defer close(watching)
		w.Run(wctx)
	}()
	defer func() {
		stop()
		<-watching
	}()

	var previous *artifact.Report
	run := func() {
		if previous != nil {
			removeArtifacts(log, previous)
		}
		resp, err := s.Carve(ctx, &req.CarveRequest)
		if resp != nil {
			previous = resp.Report
		}
		if err != nil && ctx.Err() == nil {
			log.Error("carve failed", "input", req.Input, "error", err)
		}
		if onRun != nil {
			onRun(resp, err)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped", "input", req.Input)
			return nil
		case <-w.Changes():
			log.Info("input changed, carving again", "input", req.Input)
			run()
		}
	}
}

func removeArtifacts(log logger.Logger, report *artifact.Report) {
	for _, a := range report.Artifacts {
		if a.Status != artifact.StatusWritten {
			continue
		}
		if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove stale artifact", "path", a.Path, "error", err)
		}
	}
}
