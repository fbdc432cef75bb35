package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/poold/internal/daemon"
	"github.com/yndnr/poold/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "poold",
		Usage:   "socket-activated local control daemon",
		Version: buildinfo.String(),
		Commands: []*cli.Command{
			DaemonCommand(),
			ConfigCommand(),
			CtlCommand(),
			VersionCommand(),
		},
		HideVersion: true,
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		EnvVars: []string{"POOLD_CONFIG"},
	}
}

func runtimeDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "runtime-dir",
		Usage:   "Directory holding the socket (default: $XDG_RUNTIME_DIR/poold)",
		EnvVars: []string{"POOLD_RUNTIME_DIR"},
	}
}

func socketFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "socket",
		Aliases: []string{"s"},
		Usage:   "Socket path (default: <runtime-dir>/poold.sock)",
		EnvVars: []string{"POOLD_SOCKET"},
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "log-level",
		Usage: "Override log.level: debug, info, warn, error",
	}
}

func logFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "log-format",
		Usage: "Override log.format: json, text, console",
	}
}

// overrides maps the configuration flags onto their dotted keys. Unset
// flags yield empty strings, which the loader skips.
func overrides(c *cli.Context) map[string]any {
	return map[string]any{
		"log.level":  c.String("log-level"),
		"log.format": c.String("log-format"),
	}
}

func outputFlag(def string) cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output format: text, json, yaml",
		Value:   def,
	}
}

// socketPath returns --socket, or the default path in the runtime dir.
// With create set, a missing runtime dir is created with mode 0700; an
// explicit --socket never gets its parent created.
func socketPath(c *cli.Context, create bool) (string, error) {
	if s := c.String("socket"); s != "" {
		return s, nil
	}

	dir := c.String("runtime-dir")
	if dir == "" {
		dir = daemon.DefaultRuntimeDir()
	}
	if create {
		if err := daemon.EnsureRuntimeDir(dir); err != nil {
			return "", err
		}
	}
	return daemon.SocketPath(dir), nil
}

// PrintError writes err the way the command line reports failures.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
