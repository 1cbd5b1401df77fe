package analysis

import (
	"strconv"

	"github.com/rlch/dcl"
)

// Rule represents a check run over an analyzed file.
// Inspired by go/analysis.Analyzer pattern.
type Rule struct {
	// Name is a short identifier for the rule (used in diagnostic codes).
	Name string

	// Doc is a brief description of what the rule checks.
	Doc string

	// Severity is the default severity for diagnostics from this rule.
	Severity DiagnosticSeverity

	// Run executes the rule and appends any diagnostics to the file.
	Run func(f *AnalyzedFile)
}

// DefaultRules returns all built-in rules.
func DefaultRules() []*Rule {
	return []*Rule{
		// Error-level checks.
		resolutionErrorsRule,

		// Warning-level checks.
		unusedLocalValueRule,

		// Information and hint-level checks.
		unresolvedBlockRule,
		shadowedLocalValueRule,
		emptyBlockRule,
	}
}

// ----------------------------------------------------------------------------
// Rule: resolution-errors
// ----------------------------------------------------------------------------

var resolutionErrorsRule = &Rule{
	Name:     "resolution-errors",
	Doc:      "Reports every error of the resolution result.",
	Severity: SeverityError,
	Run:      checkResolutionErrors,
}

func checkResolutionErrors(f *AnalyzedFile) {
	if f.Result == nil {
		return
	}

	f.Diagnostics = append(f.Diagnostics, Diagnostics(f.Program, f.Result)...)
}

// ----------------------------------------------------------------------------
// Rule: unused-local-value
// ----------------------------------------------------------------------------

var unusedLocalValueRule = &Rule{
	Name:     "unused-local-value",
	Doc:      "Reports local values that are never referenced.",
	Severity: SeverityWarning,
	Run:      checkUnusedLocalValues,
}

func checkUnusedLocalValues(f *AnalyzedFile) {
	for _, l := range f.Symbols.Locals {
		if len(l.References) > 0 {
			continue
		}

		f.Diagnostics = append(f.Diagnostics, Diagnostic{
			Span:     l.Span,
			Severity: SeverityWarning,
			Message:  "unused local value: " + l.Name,
			Code:     "unused-local-value",
			Source:   DiagnosticSource,
		})
	}
}

// ----------------------------------------------------------------------------
// Rule: unresolved-block
// ----------------------------------------------------------------------------

var unresolvedBlockRule = &Rule{
	Name:     "unresolved-block",
	Doc:      "Reports configuring blocks skipped because their call did not resolve.",
	Severity: SeverityInformation,
	Run:      checkUnresolvedBlocks,
}

func checkUnresolvedBlocks(f *AnalyzedFile) {
	if f.Program == nil || f.Trace == nil {
		return
	}

	dcl.InspectProgram(f.Program, func(n dcl.Node) bool {
		call, ok := n.(*dcl.FunctionCall)
		if !ok || call.Lambda == nil {
			return true
		}

		// Calls that were never visited (filtered or nested in a skipped
		// block) are not reported.
		if _, failed := f.Trace.Lookup(call.ID).(Errors); !failed {
			return true
		}

		f.Diagnostics = append(f.Diagnostics, Diagnostic{
			Span:     call.Lambda.Span,
			Severity: SeverityInformation,
			Message:  "block of " + call.Name + " was not analyzed because the call did not resolve",
			Code:     "unresolved-block",
			Source:   DiagnosticSource,
		})

		return false
	})
}

// ----------------------------------------------------------------------------
// Rule: shadowed-local-value
// ----------------------------------------------------------------------------

var shadowedLocalValueRule = &Rule{
	Name:     "shadowed-local-value",
	Doc:      "Reports local values that shadow a local value of an enclosing block.",
	Severity: SeverityHint,
	Run:      checkShadowedLocalValues,
}

func checkShadowedLocalValues(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	checkShadowedIn(f, f.Program.Statements, nil)
}

func checkShadowedIn(f *AnalyzedFile, stmts []dcl.Stmt, outer map[string]dcl.Span) {
	declared := make(map[string]dcl.Span, len(outer))
	for name, span := range outer {
		declared[name] = span
	}

	for _, s := range stmts {
		for _, b := range blocksOf(s) {
			checkShadowedIn(f, b.Statements, declared)
		}

		lv, ok := s.(*dcl.LocalValue)
		if !ok || lv.Name == "" {
			continue
		}

		if first, exists := outer[lv.Name]; exists {
			f.Diagnostics = append(f.Diagnostics, Diagnostic{
				Span:     lv.Span,
				Severity: SeverityHint,
				Message:  "local value " + lv.Name + " shadows the one declared at line " + formatLine(first),
				Code:     "shadowed-local-value",
				Source:   DiagnosticSource,
			})
		}

		declared[lv.Name] = lv.Span
	}
}

// blocksOf returns the lambda blocks directly inside a statement.
func blocksOf(s dcl.Stmt) []*dcl.Block {
	var out []*dcl.Block

	dcl.Inspect(s, func(n dcl.Node) bool {
		if b, ok := n.(*dcl.Block); ok {
			out = append(out, b)

			return false
		}

		return true
	})

	return out
}

// ----------------------------------------------------------------------------
// Rule: empty-block
// ----------------------------------------------------------------------------

var emptyBlockRule = &Rule{
	Name:     "empty-block",
	Doc:      "Reports configuring blocks without statements.",
	Severity: SeverityHint,
	Run:      checkEmptyBlocks,
}

func checkEmptyBlocks(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	dcl.InspectProgram(f.Program, func(n dcl.Node) bool {
		call, ok := n.(*dcl.FunctionCall)
		if ok && call.Lambda != nil && len(call.Lambda.Statements) == 0 {
			f.Diagnostics = append(f.Diagnostics, Diagnostic{
				Span:     call.Lambda.Span,
				Severity: SeverityHint,
				Message:  "empty block: " + call.Name,
				Code:     "empty-block",
				Source:   DiagnosticSource,
			})
		}

		return true
	})
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

func formatLine(span dcl.Span) string {
	return strconv.Itoa(span.Start.Line)
}
