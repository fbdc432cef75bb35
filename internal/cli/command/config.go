package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/poold/internal/cli/output"
	"github.com/yndnr/poold/internal/daemon"
)

// ConfigCommand returns the config subcommand.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective configuration",
		Description: "Loads defaults, the configuration file and POOLD_<SECTION>__<KEY>\n" +
			"environment variables and flag overrides, validates the result and\n" +
			"prints it.",
		Flags: []cli.Flag{
			configFlag(),
			logLevelFlag(),
			logFormatFlag(),
			outputFlag(string(output.FormatYAML)),
		},
		Action: configShow,
	}
}

func configShow(c *cli.Context) error {
	format, err := output.ParseFormat(c.String("output"), output.FormatYAML)
	if err != nil {
		return err
	}
	if format == output.FormatText {
		format = output.FormatYAML
	}

	cfg, err := daemon.LoadConfig(c.String("config"), overrides(c))
	if err != nil {
		return err
	}

	return output.NewFormatter(format).Format(c.App.Writer, cfg)
}
