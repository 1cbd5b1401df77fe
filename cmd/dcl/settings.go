package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

var (
	errNoFiles       = errors.New("no statement files found")
	errUnknownFormat = errors.New("unknown output format")
)

const (
	formatText = "text"
	formatYAML = "yaml"

	defaultLogLevel = "warn"
)

// settings is the config file merged with the command line.
type settings struct {
	config *dcl.Config
	format string
	logger *zap.Logger
}

func loadSettings(cmd *cli.Command) (*settings, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if schema := cmd.String("schema"); schema != "" {
		abs, err := filepath.Abs(schema)
		if err != nil {
			return nil, fmt.Errorf("resolving schema path: %w", err)
		}

		cfg.Schema = abs
	}

	cfg.Exclude = append(cfg.Exclude, cmd.StringSlice("exclude")...)

	s := &settings{config: cfg, format: cfg.Format}

	if cmd.IsSet("format") {
		s.format = cmd.String("format")
	}

	switch s.format {
	case "":
		s.format = formatText
	case formatText, formatYAML:
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownFormat, s.format)
	}

	level := cfg.Log
	if l := cmd.String("log-level"); l != "" {
		level = l
	}

	s.logger, err = newLogger(level)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// loadConfig loads the config at path, or the nearest one above the working
// directory. A missing config is not an error when no path was given.
func loadConfig(path string) (*dcl.Config, error) {
	if path != "" {
		return dcl.LoadConfigFile(path)
	}

	cfg, err := dcl.LoadConfig(".")
	if errors.Is(err, dcl.ErrConfigNotFound) {
		return &dcl.Config{}, nil
	}

	return cfg, err
}

// newLogger builds a development logger writing to stderr; stdout carries
// command output and, for serve, the protocol stream.
func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(lvl)

	return config.Build()
}

func (s *settings) analyzer() (*analysis.Analyzer, error) {
	return analysis.NewAnalyzerFromConfig(s.config, analysis.WithLogger(s.logger))
}

// collectFiles expands directories into the YAML files below them. Config
// files and the schema document are not statement files.
func (s *settings) collectFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	skip := make(map[string]bool)

	if schema := s.config.SchemaPath(); schema != "" {
		if abs, err := filepath.Abs(schema); err == nil {
			skip[abs] = true
		}
	}

	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() || !isStatementFile(path) {
				return nil
			}

			if abs, err := filepath.Abs(path); err == nil && skip[abs] {
				return nil
			}

			files = append(files, path)

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, errNoFiles
	}

	return files, nil
}

func isStatementFile(path string) bool {
	base := filepath.Base(path)

	for _, name := range dcl.DefaultConfigNames {
		if base == name {
			return false
		}
	}

	return strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".yml")
}
