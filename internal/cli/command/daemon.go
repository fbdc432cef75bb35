package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/poold/internal/daemon"
)

// DaemonCommand returns the daemon subcommand.
func DaemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Run the daemon in the foreground",
		Description: "Serves the control socket handed over by systemd, or binds\n" +
			"the socket path itself. SIGINT or SIGTERM stops the daemon and\n" +
			"removes the socket path if the daemon created it.",
		Flags: []cli.Flag{
			configFlag(),
			runtimeDirFlag(),
			socketFlag(),
			logLevelFlag(),
			logFormatFlag(),
		},
		Action: daemonAction,
	}
}

func daemonAction(c *cli.Context) error {
	configFile := c.String("config")
	cfg, err := daemon.LoadConfig(configFile, overrides(c))
	if err != nil {
		return err
	}

	socket, err := socketPath(c, true)
	if err != nil {
		return fmt.Errorf("runtime dir: %w", err)
	}

	return daemon.Run(daemon.Options{
		ConfigFile: configFile,
		Config:     cfg,
		Socket:     socket,
	})
}
