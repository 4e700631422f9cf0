package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/imgcarve/internal/cli/output"
	"github.com/yndnr/imgcarve/internal/core/service"
	"github.com/yndnr/imgcarve/internal/infra/shutdown"
)

// MergeCommand returns the merge command.
func MergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "Concatenate the files of DIR, in name order, into one file",
		ArgsUsage: "DIR",
		Flags: append(commonFlags(),
			outputFlag("Merged file (default ./output.bin)"),
		),
		Action: func(c *cli.Context) error {
			dir, err := singleArg(c, "DIR")
			if err != nil {
				return err
			}
			rt, err := setup(c, map[string]any{"merge": true, "watch": false})
			if err != nil {
				return err
			}
			return runMerge(c, rt, dir)
		},
	}
}

func runMerge(c *cli.Context, rt *runtime, dir string) error {
	out, err := rt.cfg.ResolveOutput(true)
	if err != nil {
		return err
	}

	ctx, stop := shutdown.WithSignals(c.Context)
	defer stop()

	req := &service.MergeRequest{Dir: dir, Output: out}
	var bar *output.ProgressBar
	if rt.progress {
		bar = output.NewProgressBar(rt.stderr, "Merging")
		req.Progress = bar.Update
	}

	svc := service.NewMergeService(
		service.WithLogger(rt.log),
		service.WithMetrics(rt.metrics),
	)
	_, err = svc.Merge(ctx, req)
	if err == nil && bar != nil {
		bar.Finish()
	}

	if ferr := rt.flushMetrics(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
