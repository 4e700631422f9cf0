package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/imgcarve/internal/cli/config"
	"github.com/yndnr/imgcarve/internal/infra/buildinfo"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
	"github.com/yndnr/imgcarve/internal/telemetry/metric"
)

// App creates the CLI application.
func App() *cli.App {
	flags := append(commonFlags(), carveFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:  "merge",
		Usage: "Merge the fragments of directory INPUT instead of carving",
	})

	return &cli.App{
		Name:      "imgcarve",
		Usage:     "Carve PNG, JPG and GIF images out of binary data, or merge fragments back",
		UsageText: "imgcarve [options] INPUT\n   imgcarve command [command options] ARG",
		Version:   buildinfo.String(),
		Flags:     flags,
		Commands: []*cli.Command{
			CarveCommand(),
			MergeCommand(),
			ScanCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Action: rootAction,
	}
}

func rootAction(c *cli.Context) error {
	input, err := singleArg(c, "INPUT")
	if err != nil {
		return err
	}

	rt, err := setup(c, nil)
	if err != nil {
		return err
	}
	if rt.cfg.Merge {
		return runMerge(c, rt, input)
	}
	return runCarve(c, rt, input)
}

// commonFlags returns the flags shared by every run command.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file (default ~/.imgcarve/config.yaml when present)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: config.DefaultLogLevel,
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
			Value: config.DefaultLogFormat,
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this textfile when the run ends",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Show progress on stderr",
		},
	}
}

// outputFlag is the carve directory or merge file.
func outputFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   usage,
	}
}

// carveFlags returns the flags that shape a carve.
func carveFlags() []cli.Flag {
	return []cli.Flag{
		outputFlag("Output directory for a carve (default ./output) or file for a merge (default ./output.bin)"),
		&cli.BoolFlag{
			Name:  "keep-raw-bin",
			Usage: "Write segment bytes verbatim instead of re-encoding images",
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
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Artifacts written concurrently",
			Value: config.DefaultWorkers,
		},
		&cli.Int64Flag{
			Name:  "rate-limit",
			Usage: "Artifact write limit in bytes per second (0 = unlimited)",
		},
		&cli.StringFlag{
			Name:  "manifest",
			Usage: "Write a run manifest (.json or YAML) to this file",
		},
		&cli.BoolFlag{
			Name:  "watch",
			Usage: "Carve again whenever INPUT is written, until interrupted",
		},
	}
}

// configKeys maps run flags to configuration keys. Only flags given on
// the command line override the file and environment.
var configKeys = []struct {
	flag    string
	key     string
	boolean bool
}{
	{"output", "output", false},
	{"keep-raw-bin", "keep_raw", true},
	{"merge", "merge", true},
	{"mode", "mode", false},
	{"aligned-stride", "aligned_stride", true},
	{"workers", "workers", false},
	{"rate-limit", "rate_limit", false},
	{"manifest", "manifest", false},
	{"metrics-file", "metrics_file", false},
	{"watch", "watch", true},
	{"log-level", "log.level", false},
	{"log-format", "log.format", false},
}

// setContext returns the innermost context in which name was given, or nil.
func setContext(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx != nil && ctx.IsSet(name) {
			return ctx
		}
	}
	return nil
}

// triState reads a boolean flag: absent, bare (true) or --name=VALUE.
func triState(c *cli.Context, name string) config.TriState {
	if ctx := setContext(c, name); ctx != nil {
		return config.TriState{Set: true, Value: ctx.Bool(name)}
	}
	return config.TriState{}
}

func flagString(c *cli.Context, name string) string {
	if ctx := setContext(c, name); ctx != nil {
		return ctx.String(name)
	}
	return ""
}

// overrides collects the explicitly set run flags as configuration keys.
func overrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	for _, k := range configKeys {
		if k.boolean {
			if ts := triState(c, k.flag); ts.Set {
				out[k.key] = ts.Value
			}
			continue
		}
		if ctx := setContext(c, k.flag); ctx != nil {
			out[k.key] = ctx.Value(k.flag)
		}
	}
	return out
}

// runtime is the resolved state of one command invocation.
type runtime struct {
	cfg      *config.Config
	log      logger.Logger
	metrics  *metric.Registry
	progress bool
	stdout   io.Writer
	stderr   io.Writer
}

// setup loads the configuration with forced keys applied on top of the
// command line, and builds the logger.
func setup(c *cli.Context, forced map[string]any) (*runtime, error) {
	ov := overrides(c)
	for k, v := range forced {
		ov[k] = v
	}

	cfg, err := config.Load(flagString(c, "config"), ov)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	return &runtime{
		cfg:      cfg,
		log:      log,
		metrics:  metric.Global(),
		progress: triState(c, "progress").Or(false),
		stdout:   c.App.Writer,
		stderr:   c.App.ErrWriter,
	}, nil
}

// flushMetrics writes the metrics textfile when one is configured.
func (rt *runtime) flushMetrics() error {
	path := rt.cfg.MetricsFile
	if path == "" {
		return nil
	}
	if err := rt.metrics.WriteTextfile(path); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	rt.log.Debug("metrics written", "path", path)
	return nil
}

// singleArg returns the one positional argument of c.
func singleArg(c *cli.Context, name string) (string, error) {
	switch c.NArg() {
	case 1:
		return c.Args().First(), nil
	case 0:
		return "", fmt.Errorf("missing %s argument", name)
	default:
		return "", fmt.Errorf("expected one %s argument, got %d", name, c.NArg())
	}
}
