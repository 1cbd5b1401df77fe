package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl/analysis"
)

func TestFailures(t *testing.T) {
	t.Parallel()

	a := &analysis.ResolutionError{Node: 1, Reason: analysis.UnresolvedReference{Name: "a"}}
	b := &analysis.ResolutionError{Node: 2, Reason: analysis.UnresolvedReference{Name: "b"}}
	c := &analysis.ResolutionError{Node: 3, Reason: analysis.UnresolvedAssignmentRhs{}}

	t.Run("none", func(t *testing.T) {
		t.Parallel()

		var fs analysis.Failures
		fs.Add(nil)

		assert.False(t, fs.Failed())
		assert.Nil(t, fs.Result())
	})

	t.Run("single is returned as is", func(t *testing.T) {
		t.Parallel()

		var fs analysis.Failures
		fs.Add(a)

		assert.True(t, fs.Failed())
		assert.Same(t, a, fs.Result())
	})

	t.Run("multiple are flattened in order", func(t *testing.T) {
		t.Parallel()

		var inner analysis.Failures
		inner.Add(a)
		inner.Add(b)

		var fs analysis.Failures
		fs.Add(inner.Result())
		fs.Add(c)

		mf, ok := fs.Result().(*analysis.MultipleFailures)
		require.True(t, ok)
		assert.Equal(t, []*analysis.ResolutionError{a, b, c}, mf.Errors)
		assert.Equal(t, mf.Errors, analysis.Flatten(mf))
	})
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	e := &analysis.ResolutionError{Node: 1, Reason: analysis.MissingLocalValueName{}}

	assert.Nil(t, analysis.Flatten(nil))
	assert.Equal(t, []*analysis.ResolutionError{e}, analysis.Flatten(e))
}

func TestResult_ErrorsAt(t *testing.T) {
	t.Parallel()

	prog, res := resolve(t, `
- assign: {lhs: {ref: str}, rhs: {str: ok}}
- assign: {lhs: {ref: str}, rhs: {ref: nope}}
`)

	assert.False(t, res.OK())

	stmt := prog.Statements[1]
	errs := res.ErrorsAt(stmt.NodeID())
	require.Len(t, errs, 1)
	assert.Equal(t, analysis.UnresolvedAssignmentRhs{}, errs[0].Reason)

	assert.Empty(t, res.ErrorsAt(prog.Statements[0].NodeID()))
}

func TestErrorReason_Codes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reason analysis.ErrorReason
		code   string
		msg    string
	}{
		{analysis.UnresolvedReference{Name: "x"}, "unresolved-reference", "unresolved reference: x"},
		{analysis.UnresolvedFunctionCallSignature{Name: "f"}, "unresolved-function-call-signature", "no applicable function f"},
		{analysis.DuplicateLocalValue{Name: "m"}, "duplicate-local-value", "local value m is already declared in this block"},
		{analysis.MissingLocalValueInitializer{}, "missing-local-value-initializer", "local value declaration without a value"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.code, tt.reason.Code())
			assert.Equal(t, tt.msg, tt.reason.String())
		})
	}
}
