package dcl

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when no config file exists in the directory tree.
var ErrConfigNotFound = errors.New("no .dcl.yaml found")

// Config represents the .dcl.yaml configuration file.
type Config struct {
	// Schema is the path of the schema document, relative to the config file.
	Schema string `yaml:"schema"`

	// Exclude holds filter expressions; call statements matching any of them are
	// excluded from resolution together with their nested blocks.
	// e.g., `name == "plugins" && depth == 0`
	Exclude []string `yaml:"exclude,omitempty"`

	// Format selects the output of the resolve command ("text" or "yaml").
	Format string `yaml:"format,omitempty"`

	// Log is the log level ("debug", "info", "warn", "error").
	Log string `yaml:"log,omitempty"`

	// dir is the directory the config was loaded from.
	dir string
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".dcl.yaml", ".dcl.yml", "dcl.yaml", "dcl.yml"}

// LoadConfig finds and loads the nearest .dcl.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.dir = filepath.Dir(path)

	return &cfg, nil
}

// SchemaPath returns the schema path resolved against the config directory.
func (c *Config) SchemaPath() string {
	if c.Schema == "" || filepath.IsAbs(c.Schema) || c.dir == "" {
		return c.Schema
	}

	return filepath.Join(c.dir, c.Schema)
}
