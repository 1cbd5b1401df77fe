package dcl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl"
)

func TestLoadConfig_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	content := `schema: schemas/build.yaml
exclude:
  - name == "plugins"
format: yaml
log: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".dcl.yaml"), []byte(content), 0o600))

	path, err := dcl.FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".dcl.yaml"), path)

	cfg, err := dcl.LoadConfig(nested)
	require.NoError(t, err)

	assert.Equal(t, "schemas/build.yaml", cfg.Schema)
	assert.Equal(t, []string{`name == "plugins"`}, cfg.Exclude)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "debug", cfg.Log)
	assert.Equal(t, filepath.Join(root, "schemas", "build.yaml"), cfg.SchemaPath())
}

func TestLoadConfig_AlternateNames(t *testing.T) {
	t.Parallel()

	for _, name := range dcl.DefaultConfigNames {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("schema: s.yaml\n"), 0o600))

			cfg, err := dcl.LoadConfig(dir)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "s.yaml"), cfg.SchemaPath())
		})
	}
}

func TestConfig_SchemaPath(t *testing.T) {
	t.Parallel()

	assert.Empty(t, (&dcl.Config{}).SchemaPath())
	assert.Equal(t, "/abs/schema.yaml", (&dcl.Config{Schema: "/abs/schema.yaml"}).SchemaPath())
	assert.Equal(t, "rel.yaml", (&dcl.Config{Schema: "rel.yaml"}).SchemaPath())
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".dcl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("exclude: {not: a list}\n"), 0o600))

	_, err := dcl.LoadConfigFile(path)
	require.Error(t, err)

	_, err = dcl.LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
