package analysis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
	"github.com/rlch/dcl/schema"
)

func writeConfig(t *testing.T, content string) *dcl.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, ".dcl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := dcl.LoadConfigFile(path)
	require.NoError(t, err)

	return cfg
}

func TestNewAnalyzerFromConfig(t *testing.T) {
	t.Parallel()

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "schema.yaml"))
	require.NoError(t, err)

	cfg := writeConfig(t, "schema: "+schemaPath+"\nexclude:\n  - name == \"unknown\"\n")

	a, err := analysis.NewAnalyzerFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, schema.Named("Root"), a.Model().Root())

	f := a.Analyze("test.yaml", []byte(`
- call: {name: unknown}
- assign: {lhs: {ref: str}, rhs: {ref: nope}}
`))

	codes := make([]string, 0, len(f.Diagnostics))
	for _, d := range f.Diagnostics {
		codes = append(codes, d.Code)
	}

	assert.Equal(t, []string{"unresolved-reference", "unresolved-assignment-rhs"}, codes)
}

func TestNewAnalyzerFromConfig_Errors(t *testing.T) {
	t.Parallel()

	_, err := analysis.NewAnalyzerFromConfig(writeConfig(t, "format: text\n"))
	require.ErrorIs(t, err, analysis.ErrNoSchema)

	_, err = analysis.NewAnalyzerFromConfig(writeConfig(t, "schema: missing.yaml\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "schema.yaml"))
	require.NoError(t, err)

	_, err = analysis.NewAnalyzerFromConfig(writeConfig(t, "schema: "+schemaPath+"\nexclude: [\"name ==\"]\n"))
	require.Error(t, err)
}
