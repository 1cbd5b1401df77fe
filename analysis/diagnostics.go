package analysis

import (
	"strings"

	"github.com/rlch/dcl"
)

// DiagnosticSource is the Source of every diagnostic produced here.
const DiagnosticSource = "dcl"

// Diagnostics converts the errors of a resolution result into diagnostics
// located at the offending nodes, in result order.
func Diagnostics(prog *dcl.Program, res *Result) []Diagnostic {
	idx := dcl.Index(prog)
	out := make([]Diagnostic, 0, len(res.Errors))

	for _, e := range res.Errors {
		out = append(out, errorDiagnostic(idx[e.Node], e))
	}

	return out
}

func errorDiagnostic(n dcl.Node, e *ResolutionError) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  e.Reason.String(),
		Code:     e.Reason.Code(),
		Source:   DiagnosticSource,
	}

	if n != nil {
		d.Span = n.NodeSpan()
		d.Message += " in `" + summary(n) + "`"
	}

	return d
}

// summary is the first line of the node's source form.
func summary(n dcl.Node) string {
	line, rest, multi := strings.Cut(dcl.Format(n), "\n")
	if multi && rest != "" {
		return strings.TrimSuffix(line, "{") + "{ ... }"
	}

	return line
}
