package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/poold/internal/cli/output"
	"github.com/yndnr/poold/internal/infra/buildinfo"
)

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Print build information",
		Flags:  []cli.Flag{outputFlag(string(output.FormatText))},
		Action: versionAction,
	}
}

func versionAction(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"), output.FormatText)
	if err != nil {
		return err
	}
	if format == output.FormatText {
		return output.NewFormatter(format).Format(c.App.Writer, "poold "+buildinfo.String())
	}
	return output.NewFormatter(format).Format(c.App.Writer, buildinfo.Get())
}
