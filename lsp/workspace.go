package lsp

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

// WorkspaceLoader finds the .dcl.yaml governing a document and builds an
// analyzer for it. Analyzers are cached per config file.
type WorkspaceLoader struct {
	logger *zap.Logger

	// workspaceRoot is searched when a document has no config of its own.
	workspaceRoot string

	// opts are passed to every analyzer.
	opts []analysis.Option

	// mu protects the cache.
	mu sync.Mutex

	// analyzers maps config paths to their analyzers.
	analyzers map[string]*analysis.Analyzer
}

// NewWorkspaceLoader creates a loader.
func NewWorkspaceLoader(logger *zap.Logger, opts ...analysis.Option) *WorkspaceLoader {
	return &WorkspaceLoader{
		logger:    logger,
		opts:      opts,
		analyzers: make(map[string]*analysis.Analyzer),
	}
}

// SetWorkspaceRoot sets the fallback directory for config lookup.
func (l *WorkspaceLoader) SetWorkspaceRoot(root string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.workspaceRoot = root
}

// AnalyzerFor returns the analyzer for the document at path.
func (l *WorkspaceLoader) AnalyzerFor(path string) (*analysis.Analyzer, error) {
	configPath, err := dcl.FindConfig(filepath.Dir(path))
	if err != nil {
		l.mu.Lock()
		root := l.workspaceRoot
		l.mu.Unlock()

		if root == "" {
			return nil, err
		}

		configPath, err = dcl.FindConfig(root)
		if err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.analyzers[configPath]; ok {
		return a, nil
	}

	cfg, err := dcl.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	a, err := analysis.NewAnalyzerFromConfig(cfg, l.opts...)
	if err != nil {
		return nil, err
	}

	l.logger.Info("Loaded schema",
		zap.String("config", configPath),
		zap.String("schema", cfg.SchemaPath()))

	l.analyzers[configPath] = a

	return a, nil
}

// InvalidateAll drops every cached analyzer.
func (l *WorkspaceLoader) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.analyzers = make(map[string]*analysis.Analyzer)
}
