package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rlch/dcl/analysis"
)

var (
	colorOK      = lipgloss.Color("#10b981") // green-500
	colorError   = lipgloss.Color("#ef4444") // red-500
	colorWarning = lipgloss.Color("#eab308") // yellow-500
	colorInfo    = lipgloss.Color("#06b6d4") // cyan-500
	colorDim     = lipgloss.Color("#6b7280") // gray-500
	colorAccent  = lipgloss.Color("#3b82f6") // blue-500
)

// styles renders command output.
type styles struct {
	OK      lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
	Path    lipgloss.Style

	SymbolOK      string
	SymbolError   string
	SymbolSkipped string

	TreeMiddle string
	TreeEnd    string
	TreeBar    string
}

// newStyles returns colored styles when w is a terminal and plain ones
// otherwise.
func newStyles(w io.Writer) *styles {
	plain := lipgloss.NewStyle()

	s := &styles{
		OK:      plain,
		Error:   plain,
		Warning: plain,
		Info:    plain,
		Dim:     plain,
		Bold:    plain,
		Path:    plain,

		SymbolOK:      "✓",
		SymbolError:   "✗",
		SymbolSkipped: "↓",

		TreeMiddle: "├─",
		TreeEnd:    "╰─",
		TreeBar:    "│ ",
	}

	if !isTerminal(w) {
		return s
	}

	s.OK = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	s.Error = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	s.Warning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	s.Info = lipgloss.NewStyle().Foreground(colorInfo)
	s.Dim = lipgloss.NewStyle().Foreground(colorDim)
	s.Bold = lipgloss.NewStyle().Bold(true)
	s.Path = lipgloss.NewStyle().Foreground(colorAccent)

	return s
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s *styles) severity(sev analysis.DiagnosticSeverity) lipgloss.Style {
	switch sev {
	case analysis.SeverityError:
		return s.Error
	case analysis.SeverityWarning:
		return s.Warning
	default:
		return s.Info
	}
}
