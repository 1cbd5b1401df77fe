package dcl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		node     dcl.Node
		expected string
	}{
		{
			name:     "assignment",
			node:     &dcl.Assignment{LHS: &dcl.PropertyAccess{Name: "name"}, RHS: &dcl.Literal{Kind: dcl.StringLiteral, Value: "app"}},
			expected: `name = "app"`,
		},
		{
			name: "augmenting assignment",
			node: &dcl.AugmentingAssignment{
				LHS: &dcl.PropertyAccess{Receiver: &dcl.This{}, Name: "data"},
				Op:  dcl.PlusAssign,
				RHS: &dcl.FunctionCall{Name: "newData"},
			},
			expected: `this.data += newData()`,
		},
		{
			name:     "local value",
			node:     &dcl.LocalValue{Name: "n", RHS: &dcl.Literal{Kind: dcl.IntLiteral, Value: int32(42)}},
			expected: `val n = 42`,
		},
		{
			name:     "missing rhs",
			node:     &dcl.LocalValue{Name: "n"},
			expected: `val n = <missing>`,
		},
		{
			name:     "long literal",
			node:     &dcl.Literal{Kind: dcl.LongLiteral, Value: int64(7)},
			expected: `7L`,
		},
		{
			name:     "boolean and null",
			node:     &dcl.FunctionCall{Name: "f", Args: []*dcl.Argument{{Value: &dcl.Literal{Kind: dcl.BooleanLiteral, Value: true}}, {Value: &dcl.Null{}}}},
			expected: `f(true, null)`,
		},
		{
			name: "named arguments",
			node: &dcl.FunctionCall{
				Receiver: &dcl.PropertyAccess{Name: "my"},
				Name:     "label",
				Args: []*dcl.Argument{
					{Value: &dcl.Literal{Kind: dcl.StringLiteral, Value: "k"}},
					{Name: "value", Value: &dcl.LocalValueRef{Name: "v"}},
				},
			},
			expected: `my.label("k", value = v)`,
		},
		{
			name:     "empty block",
			node:     &dcl.FunctionCall{Name: "plugins", Lambda: &dcl.Block{}},
			expected: `plugins { }`,
		},
		{
			name: "nested blocks",
			node: &dcl.FunctionCall{Name: "my", Lambda: &dcl.Block{Statements: []dcl.Stmt{
				&dcl.Assignment{LHS: &dcl.PropertyAccess{Name: "inner"}, RHS: &dcl.Literal{Kind: dcl.StringLiteral, Value: "a"}},
				&dcl.ExprStatement{Expr: &dcl.FunctionCall{Name: "nested", Lambda: &dcl.Block{Statements: []dcl.Stmt{
					&dcl.ExprStatement{Expr: &dcl.This{}},
				}}}},
			}}},
			expected: "my {\n\tinner = \"a\"\n\tnested {\n\t\tthis\n\t}\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.expected, dcl.Format(tt.node)); diff != "" {
				t.Errorf("Format() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatProgram(t *testing.T) {
	t.Parallel()

	prog, err := dcl.DecodeProgram("test.yaml", []byte(`
- val: {name: m, rhs: {call: {name: my1}}}
- call:
    name: item
    args: [{str: a}]
    block:
      - assign: {lhs: {ref: name}, rhs: {local: m}}
`))
	require.NoError(t, err)

	expected := "val m = my1()\nitem(\"a\") {\n\tname = m\n}\n"
	assert.Equal(t, expected, dcl.FormatProgram(prog))
}
