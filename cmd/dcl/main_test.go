package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rlch/dcl/analysis"
)

var (
	projectConfig = filepath.Join("testdata", "project", ".dcl.yaml")
	projectFile   = filepath.Join("testdata", "project", "build.yaml")
	brokenConfig  = filepath.Join("testdata", "broken", ".dcl.yaml")
	brokenFile    = filepath.Join("testdata", "broken", "build.yaml")
)

// run executes the app with args and returns its output and the exit code.
func run(t *testing.T, args ...string) (string, int, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := app.Run(context.Background(), append([]string{"dcl", "--log-level", "error"}, args...))

	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return out.String(), exit.ExitCode(), nil
	}

	return out.String(), 0, err
}

func resolveYAML(t *testing.T, args ...string) ([]fileReport, int) {
	t.Helper()

	out, code, err := run(t, args...)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports), out)

	return reports, code
}

func TestResolve_YAML(t *testing.T) {
	t.Parallel()

	reports, code := resolveYAML(t, "--config", projectConfig, "resolve", "--format", "yaml", filepath.Dir(projectFile))
	assert.Equal(t, 0, code)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, projectFile, r.Path)
	assert.Zero(t, r.Errors)
	require.Len(t, r.Statements, 4)

	base := r.Statements[0]
	assert.Equal(t, 1, base.Line)
	assert.Equal(t, "constant String", base.Resolved)
	assert.Equal(t, "String", base.Type)

	assert.Equal(t, "property Project.name = local base", r.Statements[1].Resolved)

	module := r.Statements[2]
	assert.Equal(t, 3, module.Line)
	assert.Contains(t, module.Source, "module(")
	assert.Equal(t, "adding Project.module(id: String): Module", module.Resolved)
	require.Len(t, module.Block, 1)
	assert.Equal(t, "property Module.level = enum Level.HIGH", module.Block[0].Resolved)

	// Excluded by the config.
	assert.True(t, r.Statements[3].Skipped)
}

func TestResolve_Text(t *testing.T) {
	t.Parallel()

	out, code, err := run(t, "--config", projectConfig, "resolve", projectFile)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.Contains(t, out, projectFile)
	assert.Contains(t, out, "✓ 1: val base")
	assert.Contains(t, out, "enum Level.HIGH")
	assert.Contains(t, out, "↓ 8: internal()")
}

func TestResolve_Errors(t *testing.T) {
	t.Parallel()

	reports, code := resolveYAML(t, "--config", brokenConfig, "resolve", "--format", "yaml", brokenFile)
	assert.Equal(t, 1, code)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Statements, 3)

	assert.Positive(t, reports[0].Errors)
	assert.Contains(t, reports[0].Statements[1].Errors, "unresolved reference: nope")

	missing := reports[0].Statements[2]
	assert.Contains(t, missing.Errors, "no applicable function missing")
	require.Len(t, missing.Block, 1)
	assert.True(t, missing.Block[0].Skipped)
}

func TestResolve_SchemaFlag(t *testing.T) {
	t.Parallel()

	// Without the config nothing is excluded.
	reports, code := resolveYAML(t,
		"--schema", filepath.Join("testdata", "project", "schema.yaml"),
		"--config", writeConfig(t, ""),
		"resolve", "--format", "yaml", projectFile)
	assert.Equal(t, 1, code)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Statements, 4)
	assert.Contains(t, reports[0].Statements[3].Errors, "no applicable function internal")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		code     int
		contains []string
		excludes []string
	}{
		{
			name:     "clean",
			args:     []string{"--config", projectConfig, "check", projectFile},
			contains: []string{"0 errors, 0 warnings in 1 file"},
		},
		{
			name: "diagnostics",
			args: []string{"--config", brokenConfig, "check", brokenFile},
			code: 1,
			contains: []string{
				"build.yaml:2:3:",
				"[unused-local-value]",
				"[unresolved-block]",
				", 1 warning in 1 file",
			},
		},
		{
			name:     "exclude flag",
			args:     []string{"--config", brokenConfig, "--exclude", `name == "missing"`, "check", brokenFile},
			code:     1,
			contains: []string{"[unused-local-value]"},
			excludes: []string{"[unresolved-block]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, code, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code, out)

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestCheck_Strict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "build.yaml")
	require.NoError(t, os.WriteFile(file, []byte("- val: {name: unused, rhs: {str: x}}\n"), 0o600))

	schema, err := filepath.Abs(filepath.Join("testdata", "project", "schema.yaml"))
	require.NoError(t, err)

	cfg := writeConfig(t, "schema: "+schema+"\n")

	_, code, err := run(t, "--config", cfg, "check", file)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	_, code, err = run(t, "--config", cfg, "check", "--strict", file)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestSettingsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no schema", []string{"--config", writeConfig(t, ""), "check", projectFile}, analysis.ErrNoSchema},
		{"no files", []string{"--config", projectConfig, "check", t.TempDir()}, errNoFiles},
		{"bad format", []string{"--config", projectConfig, "resolve", "--format", "json", projectFile}, errUnknownFormat},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), ".dcl.yaml"), "check"}, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := run(t, tt.args...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".dcl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestIsStatementFile(t *testing.T) {
	t.Parallel()

	assert.True(t, isStatementFile("a/build.yaml"))
	assert.True(t, isStatementFile("build.yml"))
	assert.False(t, isStatementFile("a/.dcl.yaml"))
	assert.False(t, isStatementFile("dcl.yml"))
	assert.False(t, isStatementFile("README.md"))
}
