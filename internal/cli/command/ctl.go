package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/poold/internal/cli/connection"
)

// CtlCommand returns the ctl subcommand.
func CtlCommand() *cli.Command {
	return &cli.Command{
		Name:      "ctl",
		Usage:     "Send a control command to a running daemon",
		ArgsUsage: "COMMAND [ARGS...]",
		Flags: []cli.Flag{
			runtimeDirFlag(),
			socketFlag(),
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Dial and reply timeout",
				Value: connection.DefaultTimeout,
			},
		},
		Action: ctlAction,
	}
}

func ctlAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("missing command (try: poold ctl help)")
	}

	socket, err := socketPath(c, false)
	if err != nil {
		return err
	}

	client := connection.NewSocketClient(socket, c.Duration("timeout"))
	defer client.Close()

	reply, err := client.Execute(strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return fmt.Errorf("%s: %w", socket, err)
	}
	if msg, ok := strings.CutPrefix(reply, "error: "); ok {
		return errors.New(msg)
	}

	_, err = fmt.Fprintln(c.App.Writer, reply)
	return err
}
