package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/imgcarve/internal/cli/output"
	"github.com/yndnr/imgcarve/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Flags: []cli.Flag{formatFlag(output.FormatTable)},
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			var data any = buildinfo.Get()
			if format == output.FormatTable {
				data = versionTable(buildinfo.Get())
			}
			return output.NewFormatter(format, false).Format(c.App.Writer, data)
		},
	}
}

func versionTable(info buildinfo.Info) *output.Table {
	commit := info.Commit
	if info.Modified {
		commit += "-dirty"
	}
	return output.KeyValues(
		"version", info.Version,
		"commit", commit,
		"build_time", info.BuildTime,
		"go_version", info.GoVersion,
	)
}
