package command

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/imgcarve/internal/cli/config"
	"github.com/yndnr/imgcarve/internal/cli/output"
	"github.com/yndnr/imgcarve/internal/core/service"
	"github.com/yndnr/imgcarve/pkg/carve"
)

// formatFlag selects the output format of listing commands.
func formatFlag(def output.Format) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: table, json, yaml",
		Value:   string(def),
	}
}

// ScanCommand returns the scan command.
func ScanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "List the segments a carve of INPUT would write, without writing",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: config.DefaultLogLevel,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Scan mode: partition, single",
				Value: config.DefaultMode,
			},
			&cli.BoolFlag{
				Name:  "aligned-stride",
				Usage: "Search PNG and JPG terminators at pattern-length stride",
			},
			formatFlag(output.FormatTable),
			&cli.BoolFlag{
				Name:    "wide",
				Aliases: []string{"w"},
				Usage:   "Show digests in table output",
			},
			&cli.BoolFlag{
				Name:  "digests",
				Usage: "Compute a BLAKE3 digest per segment",
			},
		},
		Action: scanAction,
	}
}

func scanAction(c *cli.Context) error {
	input, err := singleArg(c, "INPUT")
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	rt, err := setup(c, map[string]any{"watch": false})
	if err != nil {
		return err
	}
	mode, _ := carve.ParseMode(rt.cfg.Mode)

	svc := service.NewCarveService(service.WithLogger(rt.log))
	resp, err := svc.Scan(c.Context, &service.ScanRequest{
		Input:         input,
		Mode:          mode,
		AlignedStride: rt.cfg.AlignedStride,
		Digests:       c.Bool("digests") || c.Bool("wide"),
	})
	if err != nil {
		return err
	}

	f := output.NewFormatter(format, c.Bool("wide"))
	if format == output.FormatTable {
		return f.Format(rt.stdout, segmentTable(resp.Segments))
	}
	return f.Format(rt.stdout, resp)
}

// segmentTable is the table layout of a scan. The digest column is wide-only.
type segmentTable []service.SegmentInfo

func (s segmentTable) Table(wide bool) *output.Table {
	cols := []string{"index", "name", "format", "start", "end", "size"}
	if wide {
		cols = append(cols, "digest")
	}
	t := &output.Table{Headers: output.Header(cols...)}
	for _, seg := range s {
		row := []string{
			strconv.Itoa(seg.Index),
			seg.Name,
			seg.Format.String(),
			strconv.Itoa(seg.Start),
			strconv.Itoa(seg.End),
			humanize.IBytes(uint64(seg.Size)),
		}
		if wide {
			row = append(row, seg.Digest)
		}
		t.Row(row...)
	}
	return t
}
