package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rlch/dcl/analysis"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Aliases:   []string{"lint"},
		Usage:     "Report diagnostics for statement files",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "fail on warnings as well as errors",
			},
		},
		Action: runCheck,
	}
}

func runCheck(_ context.Context, cmd *cli.Command) error {
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

	out := cmd.Root().Writer
	st := newStyles(out)

	counts := make(map[analysis.DiagnosticSeverity]int)

	for _, file := range files {
		data, err := os.ReadFile(file) //nolint:gosec // G304: file path from user input is expected
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		f := a.Analyze(file, data)

		for _, d := range f.Diagnostics {
			counts[d.Severity]++

			writeDiagnostic(out, st, d)
		}
	}

	errs, warnings := counts[analysis.SeverityError], counts[analysis.SeverityWarning]

	_, _ = fmt.Fprintf(out, "%s, %s in %s\n",
		plural(errs, "error"), plural(warnings, "warning"), plural(len(files), "file"))

	if errs > 0 || (cmd.Bool("strict") && warnings > 0) {
		return cli.Exit("", 1)
	}

	return nil
}

func writeDiagnostic(w io.Writer, st *styles, d analysis.Diagnostic) {
	_, _ = fmt.Fprintf(w, "%s %s %s %s\n",
		st.Path.Render(d.Span.String()+":"),
		st.severity(d.Severity).Render(d.Severity.String()+":"),
		d.Message,
		st.Dim.Render("["+d.Code+"]"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}

	return fmt.Sprintf("%d %ss", n, word)
}
