package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl/analysis"
)

func TestRule_ResolutionErrors(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- assign: {lhs: {ref: str}, rhs: {ref: nope}}
`)

	assertHasDiagnostic(t, result, "unresolved-reference")
	assertHasDiagnostic(t, result, "unresolved-assignment-rhs")

	d := findDiagnostic(t, result, "unresolved-reference")
	assert.Equal(t, analysis.SeverityError, d.Severity)
	assert.Equal(t, analysis.DiagnosticSource, d.Source)
	assert.Contains(t, d.Message, "unresolved reference: nope")
	assert.Equal(t, 2, d.Span.Start.Line)
}

func TestRule_UnusedLocalValue(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- val: {name: m, rhs: {call: {name: my1}}}
`)

	assertHasDiagnostic(t, result, "unused-local-value")
}

func TestRule_UsedLocalValue(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- val: {name: m, rhs: {call: {name: my1}}}
- call:
    name: my
    block:
      - assign: {lhs: {ref: my}, rhs: {ref: m}}
`)

	assertNoDiagnostic(t, result, "unused-local-value")
	require.Len(t, result.Symbols.Locals, 1)
	assert.Len(t, result.Symbols.Locals[0].References, 1)
}

func TestRule_UnresolvedBlock(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- call:
    name: unknown
    block:
      - assign: {lhs: {ref: str}, rhs: {str: x}}
`)

	assertHasDiagnostic(t, result, "unresolved-block")
	assert.Equal(t, analysis.SeverityInformation, findDiagnostic(t, result, "unresolved-block").Severity)
}

func TestRule_ResolvedBlock(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- call:
    name: item
    args: [{str: a}]
    block:
      - assign: {lhs: {ref: name}, rhs: {str: b}}
`)

	assertNoDiagnostic(t, result, "unresolved-block")
	assert.Empty(t, result.Diagnostics)
}

func TestRule_ShadowedLocalValue(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- val: {name: m, rhs: {call: {name: my1}}}
- call:
    name: my
    block:
      - val: {name: m, rhs: {call: {name: my2}}}
      - assign: {lhs: {ref: my}, rhs: {ref: m}}
- call:
    name: my
    block:
      - assign: {lhs: {ref: my}, rhs: {ref: m}}
`)

	assertHasDiagnostic(t, result, "shadowed-local-value")

	d := findDiagnostic(t, result, "shadowed-local-value")
	assert.Contains(t, d.Message, "line 2")
	assertNoDiagnostic(t, result, "unused-local-value")
}

func TestRule_EmptyBlock(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- call: {name: item, args: [{str: a}], block: []}
`)

	assertHasDiagnostic(t, result, "empty-block")
}

func TestRule_CustomRules(t *testing.T) {
	t.Parallel()

	calls := 0
	rule := &analysis.Rule{
		Name:     "count",
		Severity: analysis.SeverityHint,
		Run:      func(*analysis.AnalyzedFile) { calls++ },
	}

	analyzer := analysis.NewAnalyzerWithRules(loadSchema(t), []*analysis.Rule{rule})
	result := analyzer.Analyze("test.yaml", []byte(`- assign: {lhs: {ref: str}, rhs: {ref: nope}}`))

	assert.Equal(t, 1, calls)
	assert.Empty(t, result.Diagnostics)
	assert.Len(t, result.Result.Errors, 2)
}

// Test helpers

func analyze(t *testing.T, input string) *analysis.AnalyzedFile {
	t.Helper()

	analyzer := analysis.NewAnalyzer(loadSchema(t))

	return analyzer.Analyze("test.yaml", []byte(input))
}

func findDiagnostic(t *testing.T, result *analysis.AnalyzedFile, code string) analysis.Diagnostic {
	t.Helper()

	for _, d := range result.Diagnostics {
		if d.Code == code {
			return d
		}
	}

	t.Fatalf("expected diagnostic %q", code)

	return analysis.Diagnostic{}
}

func assertHasDiagnostic(t *testing.T, result *analysis.AnalyzedFile, code string) {
	t.Helper()

	for _, d := range result.Diagnostics {
		if d.Code == code {
			return
		}
	}

	t.Errorf("expected diagnostic %q, got:", code)

	for _, d := range result.Diagnostics {
		t.Logf("  %s: %s", d.Code, d.Message)
	}
}

func assertNoDiagnostic(t *testing.T, result *analysis.AnalyzedFile, code string) {
	t.Helper()

	for _, d := range result.Diagnostics {
		if d.Code == code {
			t.Errorf("unexpected diagnostic %q: %s", code, d.Message)
		}
	}
}
