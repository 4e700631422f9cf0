package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/imgcarve/internal/cli/config"
	"github.com/yndnr/imgcarve/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Config file",
					},
					formatFlag(output.FormatYAML),
				},
				Action: configShow,
			},
			{
				Name:      "init",
				Usage:     "Write a default configuration file",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	cfg, err := config.Load(flagString(c, "config"), overrides(c))
	if err != nil {
		return err
	}
	return output.NewFormatter(format, true).Format(c.App.Writer, cfg)
}

func configInit(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if path == "" {
		return fmt.Errorf("no config path given and no home directory")
	}

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "✓ Configuration written to %s\n", path)
	return nil
}

func configValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = config.DefaultConfigPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Fprintf(c.App.Writer, "No configuration file found at %s\n", path)
			fmt.Fprintf(c.App.Writer, "Using default settings.\n")
			return nil
		}
	}

	if _, err := config.Load(path, nil); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "✓ Configuration file is valid: %s\n", path)
	return nil
}
