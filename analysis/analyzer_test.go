package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantCodes []string
	}{
		{
			name:  "empty file",
			input: "",
		},
		{
			name: "resolved program",
			input: `
- assign: {lhs: {ref: str}, rhs: {str: x}}
- call: {name: label, args: [{str: k}]}
`,
		},
		{
			name:      "type mismatch",
			input:     `- assign: {lhs: {ref: superClass}, rhs: {call: {name: notASubtype}}}`,
			wantCodes: []string{"assignment-type-mismatch"},
		},
		{
			name:      "read-only",
			input:     `- assign: {lhs: {ref: readOnly}, rhs: {str: x}}`,
			wantCodes: []string{"read-only-property-assignment"},
		},
		{
			name:      "ambiguous",
			input:     `- call: {name: fFoo, args: [{call: {name: bothSubFoo}}]}`,
			wantCodes: []string{"ambiguous-functions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := analyze(t, tt.input)

			require.NoError(t, result.DecodeError)
			require.NotNil(t, result.Program)
			require.NotNil(t, result.Result)

			codes := make([]string, 0, len(result.Diagnostics))
			for _, d := range result.Diagnostics {
				codes = append(codes, d.Code)
			}

			if tt.wantCodes == nil {
				assert.Empty(t, codes)
			} else {
				assert.Equal(t, tt.wantCodes, codes)
			}
		})
	}
}

func TestAnalyzer_DecodeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"invalid yaml", "- {\n", 0},
		{"invalid tree", "- assign: {lhs: {ref: str}}\n- call: [1, 2]\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := analyze(t, tt.input)

			require.Error(t, result.DecodeError)
			assert.ErrorIs(t, result.DecodeError, dcl.ErrInvalidTree)
			assert.Nil(t, result.Program)
			assert.Nil(t, result.Result)

			require.Len(t, result.Diagnostics, 1)
			assert.Equal(t, "decode-error", result.Diagnostics[0].Code)
			assert.Equal(t, analysis.SeverityError, result.Diagnostics[0].Severity)
			if tt.wantLine > 0 {
				assert.Equal(t, tt.wantLine, result.Diagnostics[0].Span.Start.Line)
			} else {
				assert.NotZero(t, result.Diagnostics[0].Span.Start.Line)
			}
		})
	}
}

func TestAnalyzer_Filter(t *testing.T) {
	t.Parallel()

	filter, err := analysis.ExcludeMatching(`name == "unknown"`)
	require.NoError(t, err)

	analyzer := analysis.NewAnalyzer(loadSchema(t), analysis.WithFilter(filter))
	result := analyzer.Analyze("test.yaml", []byte(`
- call:
    name: unknown
    block:
      - assign: {lhs: {ref: str}, rhs: {str: x}}
`))

	assert.Empty(t, result.Diagnostics)
	assert.Zero(t, result.Trace.Len())
}

func TestAnalyzer_Trace(t *testing.T) {
	t.Parallel()

	result := analyze(t, `
- val: {name: s, rhs: {str: hello}}
- assign: {lhs: {ref: str}, rhs: {ref: s}}
`)

	require.Empty(t, result.Diagnostics)

	assign := result.Program.Statements[1].(*dcl.Assignment)

	ref, ok := result.Trace.OriginOf(assign.RHS.NodeID()).(*analysis.LocalValueReference)
	require.True(t, ok)
	assert.Equal(t, result.Program.Statements[0].NodeID(), ref.Decl)

	prop, ok := result.Trace.OriginOf(assign.LHS.ID).(*analysis.PropertyReference)
	require.True(t, ok)
	assert.Equal(t, "str", prop.Property.Name)
}
