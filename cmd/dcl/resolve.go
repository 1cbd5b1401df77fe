package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve statement files and print what every statement refers to",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: text or yaml (overrides config)",
			},
		},
		Action: runResolve,
	}
}

func runResolve(_ context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = s.logger.Sync() }()

	files, err := s.collectFiles(cmd.Args().Slice())
	if err != nil {
		return err
	}

	a, err := s.analyzer()
	if err != nil {
		return err
	}

	reports := make([]fileReport, 0, len(files))
	failed := false

	for _, file := range files {
		data, err := os.ReadFile(file) //nolint:gosec // G304: file path from user input is expected
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		r := buildReport(a.Analyze(file, data))

		s.logger.Debug("Resolved file",
			zap.String("path", file),
			zap.Int("statements", len(r.Statements)),
			zap.Int("errors", r.Errors))

		failed = failed || r.Errors > 0
		reports = append(reports, r)
	}

	out := cmd.Root().Writer

	if s.format == formatYAML {
		err = writeYAML(out, reports)
		if err != nil {
			return err
		}
	} else {
		writeText(out, newStyles(out), reports)
	}

	if failed {
		return cli.Exit("", 1)
	}

	return nil
}
