// Command dcl resolves declarative configuration statement trees against a
// schema and serves the results to editors.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "dcl",
		Version: version,
		Usage:   "Declarative configuration resolver",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the config file (default: nearest .dcl.yaml)",
			},
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "schema document (overrides config)",
				Sources: cli.EnvVars("DCL_SCHEMA"),
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "filter expression for call statements to skip (repeatable)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level: debug, info, warn or error (overrides config)",
				Sources: cli.EnvVars("DCL_LOG"),
			},
		},
		Commands: []*cli.Command{
			resolveCommand(),
			checkCommand(),
			serveCommand(),
		},
	}
}
