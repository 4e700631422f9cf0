// Package command provides the imgcarve CLI commands.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: root command, run flags, flag to config mapping
//   - carve.go: carve command and watch mode
//   - merge.go: merge command
//   - scan.go: dry-run segment listing
//   - config.go: config show / init
//   - version.go: build information
//
// Commands follow a consistent pattern of resolving the configuration,
// calling the appropriate service, and formatting output.
package command
