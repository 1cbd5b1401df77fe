package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

// fileReport is the resolve output for one file.
type fileReport struct {
	Path        string            `yaml:"path"`
	DecodeError string            `yaml:"decodeError,omitempty"`
	Statements  []statementReport `yaml:"statements,omitempty"`
	Errors      int               `yaml:"errors"`
}

// statementReport is what a statement resolved to. Statements of a block that
// was not analyzed are reported as skipped.
type statementReport struct {
	Line     int               `yaml:"line"`
	Source   string            `yaml:"source"`
	Resolved string            `yaml:"resolved,omitempty"`
	Type     string            `yaml:"type,omitempty"`
	Errors   []string          `yaml:"errors,omitempty"`
	Skipped  bool              `yaml:"skipped,omitempty"`
	Block    []statementReport `yaml:"block,omitempty"`
}

func buildReport(f *analysis.AnalyzedFile) fileReport {
	r := fileReport{Path: f.Path}

	if f.DecodeError != nil {
		r.DecodeError = f.DecodeError.Error()
		r.Errors = 1

		return r
	}

	r.Statements = statementReports(f, f.Program.Statements)
	r.Errors = len(f.Result.Errors)

	return r
}

func statementReports(f *analysis.AnalyzedFile, stmts []dcl.Stmt) []statementReport {
	reports := make([]statementReport, 0, len(stmts))

	for _, stmt := range stmts {
		sr := statementReport{
			Line:   stmt.NodeSpan().Start.Line,
			Source: statementSource(stmt),
		}

		switch e := f.Trace.Lookup(stmt.NodeID()).(type) {
		case analysis.Resolution:
			sr.Resolved = describe(e.Origin)
			sr.Type = e.Origin.Type().String()

			// Assignments resolve to their value; name the target as well.
			if a, ok := stmt.(*dcl.Assignment); ok {
				if target := f.Trace.OriginOf(a.LHS.ID); target != nil {
					sr.Resolved = describe(target) + " = " + sr.Resolved
				}
			}
		case analysis.Errors:
			for _, err := range e.Errors {
				sr.Errors = append(sr.Errors, err.Reason.String())
			}
		default:
			sr.Skipped = true
		}

		if call := blockCall(stmt); call != nil {
			sr.Block = statementReports(f, call.Lambda.Statements)
		}

		reports = append(reports, sr)
	}

	return reports
}

// statementSource renders stmt on one line; blocks are elided.
func statementSource(stmt dcl.Stmt) string {
	call := blockCall(stmt)
	if call == nil {
		return dcl.Format(stmt)
	}

	head := *call
	head.Lambda = nil

	return dcl.Format(&head) + " { ... }"
}

func blockCall(stmt dcl.Stmt) *dcl.FunctionCall {
	es, ok := stmt.(*dcl.ExprStatement)
	if !ok {
		return nil
	}

	call, ok := es.Expr.(*dcl.FunctionCall)
	if !ok || call.Lambda == nil {
		return nil
	}

	return call
}

// describe names what an origin refers to.
func describe(o analysis.Origin) string {
	switch o := o.(type) {
	case *analysis.ImplicitReceiver:
		return "receiver " + o.ValueType.String()
	case *analysis.Constant:
		return "constant " + o.ValueType.String()
	case *analysis.PropertyReference:
		return "property " + o.Property.Owner + "." + o.Property.Name
	case *analysis.FunctionInvocation:
		return "call " + o.Function.Signature()
	case *analysis.NewObjectFromFunction:
		return fmt.Sprintf("%s %s", o.Function.Semantics, o.Function.Signature())
	case *analysis.EnumConstant:
		return "enum " + o.Enum.String() + "." + o.Name
	case *analysis.LocalValueReference:
		return "local " + o.Name
	case *analysis.GroupedVararg:
		return "vararg " + o.Type().String()
	case *analysis.Augmentation:
		return "augment " + o.Property.Property.Name + " via " + o.Result.Function.Signature()
	default:
		return o.Type().String()
	}
}

func writeYAML(w io.Writer, reports []fileReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(reports)
	if err != nil {
		return err
	}

	return enc.Close()
}

func writeText(w io.Writer, st *styles, reports []fileReport) {
	for _, r := range reports {
		_, _ = fmt.Fprintln(w, st.Path.Render(r.Path))

		if r.DecodeError != "" {
			_, _ = fmt.Fprintf(w, "  %s %s\n", st.Error.Render(st.SymbolError), r.DecodeError)

			continue
		}

		writeStatements(w, st, r.Statements, "  ")
	}
}

func writeStatements(w io.Writer, st *styles, stmts []statementReport, indent string) {
	for i, s := range stmts {
		branch, bar := st.TreeMiddle, st.TreeBar
		if i == len(stmts)-1 {
			branch, bar = st.TreeEnd, "  "
		}

		line := st.Dim.Render(fmt.Sprintf("%d:", s.Line))

		switch {
		case len(s.Errors) > 0:
			_, _ = fmt.Fprintf(w, "%s%s %s %s %s\n", indent, branch, st.Error.Render(st.SymbolError), line, s.Source)

			for _, e := range s.Errors {
				_, _ = fmt.Fprintf(w, "%s%s    %s\n", indent, bar, st.Error.Render(e))
			}
		case s.Skipped:
			_, _ = fmt.Fprintf(w, "%s%s %s %s %s\n", indent, branch, st.Dim.Render(st.SymbolSkipped), line, st.Dim.Render(s.Source))
		default:
			_, _ = fmt.Fprintf(w, "%s%s %s %s %s  %s\n", indent, branch, st.OK.Render(st.SymbolOK), line, s.Source,
				st.Dim.Render(s.Resolved))
		}

		writeStatements(w, st, s.Block, indent+bar+" ")
	}
}
