package analysis

import (
	"errors"
	"fmt"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// ErrNoSchema is returned when a config does not name a schema document.
var ErrNoSchema = errors.New("config does not name a schema")

// NewAnalyzerFromConfig loads the schema named by cfg and returns an analyzer
// that skips the call statements matched by its exclude expressions.
func NewAnalyzerFromConfig(cfg *dcl.Config, opts ...Option) (*Analyzer, error) {
	if cfg.Schema == "" {
		return nil, ErrNoSchema
	}

	model, err := schema.LoadFile(cfg.SchemaPath())
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if len(cfg.Exclude) > 0 {
		filter, err := ExcludeMatching(cfg.Exclude...)
		if err != nil {
			return nil, err
		}

		opts = append(opts, WithFilter(filter))
	}

	return NewAnalyzer(model, opts...), nil
}
