package analysis

import (
	"slices"

	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// Resolver resolves statement trees against a schema. A Resolver may serve
// concurrent runs unless it was created WithTrace, since the trace is shared.
type Resolver struct {
	model         schema.Model
	logger        *zap.Logger
	filter        StatementFilter
	trace         *Trace
	augmentations []schema.AugmentationsProvider
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Runs are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFilter excludes the call statements the filter rejects, together with
// their nested blocks.
func WithFilter(f StatementFilter) Option {
	return func(r *Resolver) {
		r.filter = f
	}
}

// WithTrace records the outcome of every visited node into t.
func WithTrace(t *Trace) Option {
	return func(r *Resolver) {
		r.trace = t
	}
}

// WithAugmentations adds augmentation operators on top of those of the schema.
func WithAugmentations(p ...schema.AugmentationsProvider) Option {
	return func(r *Resolver) {
		r.augmentations = append(r.augmentations, p...)
	}
}

// New creates a Resolver for the given schema.
func New(model schema.Model, opts ...Option) *Resolver {
	r := &Resolver{
		model:  model,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve is shorthand for New(model, opts...).Resolve(prog).
func Resolve(model schema.Model, prog *dcl.Program, opts ...Option) *Result {
	return New(model, opts...).Resolve(prog)
}

// Resolve resolves every statement of prog. It never fails as a whole:
// problems are reported in Result.Errors.
func (r *Resolver) Resolve(prog *dcl.Program) *Result {
	root := &ImplicitReceiver{ValueType: r.model.Root()}

	run := &run{
		Resolver: r,
		scope:    newScope(root),
		result:   &Result{},
		extra:    make(map[string][]*schema.Augmentation),
	}

	for _, p := range r.augmentations {
		for _, a := range p.ProvideAugmentations() {
			if !validAugmentation(a) {
				var typ string
				if a != nil {
					typ = a.Type
				}

				r.logger.Warn("ignoring augmentation without a two-parameter function",
					zap.String("type", typ))

				continue
			}

			run.extra[a.Type] = append(run.extra[a.Type], a)
		}
	}

	r.logger.Debug("resolving program",
		zap.Int("statements", len(prog.Statements)),
		zap.Stringer("root", root.ValueType))

	run.statements(prog.Statements)

	r.logger.Debug("resolved program",
		zap.Int("assignments", len(run.result.Assignments)),
		zap.Int("additions", len(run.result.Additions)),
		zap.Int("errors", len(run.result.Errors)))

	return run.result
}

// run is the state of a single resolution.
type run struct {
	*Resolver

	scope  *scope
	result *Result
	extra  map[string][]*schema.Augmentation
}

func (r *run) augmentationsOf(t schema.TypeRef) []*schema.Augmentation {
	out := slices.DeleteFunc(slices.Clone(r.model.AugmentationsOf(t, schema.Plus)), func(a *schema.Augmentation) bool {
		return !validAugmentation(a)
	})

	for _, a := range r.extra[t.Name] {
		if a.Kind == schema.Plus {
			out = append(out, a)
		}
	}

	return out
}

// validAugmentation reports whether a can be applied as a call over the
// property value and the operand.
func validAugmentation(a *schema.Augmentation) bool {
	return a != nil && a.Function != nil && len(a.Function.Params) == 2
}

func (r *run) record(node dcl.NodeID, o Origin, f Failure) {
	if f != nil {
		r.trace.RecordFailures(node, Flatten(f))

		return
	}

	r.trace.RecordSuccess(node, o)
}
