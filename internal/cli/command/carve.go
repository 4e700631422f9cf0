package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/imgcarve/internal/cli/output"
	"github.com/yndnr/imgcarve/internal/core/service"
	"github.com/yndnr/imgcarve/internal/infra/shutdown"
	"github.com/yndnr/imgcarve/pkg/carve"
)

// shutdownTimeout bounds how long watch mode may take to stop and clean up.
const shutdownTimeout = 10 * time.Second

// CarveCommand returns the carve command.
func CarveCommand() *cli.Command {
	return &cli.Command{
		Name:      "carve",
		Usage:     "Extract the images of INPUT into the output directory",
		ArgsUsage: "INPUT",
		Flags:     append(commonFlags(), carveFlags()...),
		Action: func(c *cli.Context) error {
			input, err := singleArg(c, "INPUT")
			if err != nil {
				return err
			}
			rt, err := setup(c, map[string]any{"merge": false})
			if err != nil {
				return err
			}
			return runCarve(c, rt, input)
		},
	}
}

func carveRequest(rt *runtime, input string) (*service.CarveRequest, error) {
	cfg := rt.cfg
	out, err := cfg.ResolveOutput(false)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}
	mode, _ := carve.ParseMode(cfg.Mode)

	return &service.CarveRequest{
		Input:         input,
		OutputDir:     out,
		Mode:          mode,
		AlignedStride: cfg.AlignedStride,
		KeepRaw:       cfg.KeepRaw,
		Workers:       cfg.Workers,
		RateLimit:     cfg.RateLimit,
		Manifest:      cfg.Manifest,
	}, nil
}

func runCarve(c *cli.Context, rt *runtime, input string) error {
	req, err := carveRequest(rt, input)
	if err != nil {
		return err
	}
	svc := service.NewCarveService(
		service.WithLogger(rt.log),
		service.WithMetrics(rt.metrics),
	)

	if rt.cfg.Watch {
		return watchCarve(c, rt, svc, req)
	}

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()

	var (
		spin *output.Spinner
		bar  *output.ProgressBar
	)
	if rt.progress {
		spin = output.NewSpinner(rt.stderr, "Scanning "+input)
		spin.Start()
		defer spin.Stop()
		req.OnScanned = func(res *carve.Result) {
			spin.Success(fmt.Sprintf("Found %d segments", len(res.Segments)))
		}
		bar = output.NewProgressBar(rt.stderr, "Writing")
		req.Progress = bar.Update
	}

	_, err = svc.Carve(ctx, req)
	if rt.progress {
		if err != nil {
			spin.Fail("Carve failed")
		} else {
			bar.Finish()
		}
	}

	if ferr := rt.flushMetrics(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

// watchCarve re-carves on every change to the input until the parent
// context ends or a shutdown signal arrives.
func watchCarve(c *cli.Context, rt *runtime, svc *service.CarveService, req *service.CarveRequest) error {
	g := shutdown.NewGroup(shutdownTimeout)
	g.Defer("flush metrics", func(context.Context) error {
		return rt.flushMetrics()
	})

	rt.log.Info("watching input", "input", req.Input, "output", req.OutputDir)
	return g.Run(c.Context, func(ctx context.Context) error {
		return svc.Watch(ctx, &service.WatchRequest{CarveRequest: *req}, func(*service.CarveResponse, error) {
			if err := rt.flushMetrics(); err != nil {
				rt.log.Warn("failed to write metrics", "error", err)
			}
		})
	})
}
