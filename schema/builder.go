package schema

import (
	"errors"
	"fmt"
)

// Schema building errors.
var (
	ErrUnknownType         = errors.New("unknown type")
	ErrUnknownRoot         = errors.New("unknown root type")
	ErrDuplicateType       = errors.New("duplicate type")
	ErrSupertypeCycle      = errors.New("supertype cycle")
	ErrMultipleVarargs     = errors.New("more than one vararg parameter")
	ErrInvalidAugmentation = errors.New("invalid augmentation")
	ErrUnexpectedBlock     = errors.New("pure function cannot take a block")
)

// PropertyExtractor contributes properties to a type.
type PropertyExtractor interface {
	ExtractProperties(t *Type) []*Property
}

// FunctionExtractor contributes member functions to a type.
type FunctionExtractor interface {
	ExtractFunctions(t *Type) []*Function
}

// TopLevelFunctionDiscovery contributes top-level functions.
type TopLevelFunctionDiscovery interface {
	DiscoverTopLevelFunctions() []*Function
}

// AugmentationsProvider contributes augmentation operators.
type AugmentationsProvider interface {
	ProvideAugmentations() []*Augmentation
}

// PropertyExtractorFunc adapts a function to PropertyExtractor.
type PropertyExtractorFunc func(t *Type) []*Property

// ExtractProperties implements PropertyExtractor.
func (f PropertyExtractorFunc) ExtractProperties(t *Type) []*Property { return f(t) }

// FunctionExtractorFunc adapts a function to FunctionExtractor.
type FunctionExtractorFunc func(t *Type) []*Function

// ExtractFunctions implements FunctionExtractor.
func (f FunctionExtractorFunc) ExtractFunctions(t *Type) []*Function { return f(t) }

// TopLevelFunctionDiscoveryFunc adapts a function to TopLevelFunctionDiscovery.
type TopLevelFunctionDiscoveryFunc func() []*Function

// DiscoverTopLevelFunctions implements TopLevelFunctionDiscovery.
func (f TopLevelFunctionDiscoveryFunc) DiscoverTopLevelFunctions() []*Function { return f() }

// AugmentationsProviderFunc adapts a function to AugmentationsProvider.
type AugmentationsProviderFunc func() []*Augmentation

// ProvideAugmentations implements AugmentationsProvider.
func (f AugmentationsProviderFunc) ProvideAugmentations() []*Augmentation { return f() }

// Builder assembles an immutable Schema from declarations and contributors.
//
// Merge policy: a type's members are its declared members followed by those of
// each registered extractor in registration order, then the members inherited
// from its supertypes (direct supertypes first, in declaration order).
// Properties are deduplicated by name and functions by name and parameter
// types; the first registered entry wins and later ones are dropped.
type Builder struct {
	root          string
	types         []*Type
	enums         []*Enum
	topLevel      []*Function
	augmentations []*Augmentation

	propertyExtractors     []PropertyExtractor
	functionExtractors     []FunctionExtractor
	topLevelDiscoveries    []TopLevelFunctionDiscovery
	augmentationsProviders []AugmentationsProvider
}

// NewBuilder creates a builder whose top-level receiver is the named type.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Root returns the name of the root type.
func (b *Builder) Root() string {
	return b.root
}

// AddType declares a type.
func (b *Builder) AddType(t *Type) *Builder {
	b.types = append(b.types, t)

	return b
}

// AddEnum declares an enum type.
func (b *Builder) AddEnum(e *Enum) *Builder {
	b.enums = append(b.enums, e)

	return b
}

// AddTopLevelFunction declares a top-level function.
func (b *Builder) AddTopLevelFunction(f *Function) *Builder {
	b.topLevel = append(b.topLevel, f)

	return b
}

// AddAugmentation registers an augmentation operator.
func (b *Builder) AddAugmentation(a *Augmentation) *Builder {
	b.augmentations = append(b.augmentations, a)

	return b
}

// WithPropertyExtractors appends property contributors.
func (b *Builder) WithPropertyExtractors(e ...PropertyExtractor) *Builder {
	b.propertyExtractors = append(b.propertyExtractors, e...)

	return b
}

// WithFunctionExtractors appends member function contributors.
func (b *Builder) WithFunctionExtractors(e ...FunctionExtractor) *Builder {
	b.functionExtractors = append(b.functionExtractors, e...)

	return b
}

// WithTopLevelFunctionDiscovery appends top-level function contributors.
func (b *Builder) WithTopLevelFunctionDiscovery(d ...TopLevelFunctionDiscovery) *Builder {
	b.topLevelDiscoveries = append(b.topLevelDiscoveries, d...)

	return b
}

// WithAugmentationsProviders appends augmentation contributors.
func (b *Builder) WithAugmentationsProviders(p ...AugmentationsProvider) *Builder {
	b.augmentationsProviders = append(b.augmentationsProviders, p...)

	return b
}

// Build validates the declarations and produces the schema. All validation
// problems are reported together.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		root:          b.root,
		types:         make(map[string]*Type, len(b.types)),
		enums:         make(map[string]*Enum, len(b.enums)),
		supertypes:    make(map[string]map[string]bool, len(b.types)),
		augmentations: make(map[string][]*Augmentation),
	}

	var errs []error

	decls := make(map[string]*Type, len(b.types))

	for _, t := range b.types {
		if _, dup := decls[t.Name]; dup || isBuiltin(t.Name) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateType, t.Name))

			continue
		}

		decls[t.Name] = t
		s.typeOrder = append(s.typeOrder, t.Name)
	}

	for _, e := range b.enums {
		if _, dup := decls[e.Name]; dup || s.enums[e.Name] != nil || isBuiltin(e.Name) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateType, e.Name))

			continue
		}

		s.enums[e.Name] = e
	}

	if decls[b.root] == nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRoot, b.root))
	}

	known := func(name string) bool {
		return isBuiltin(name) || decls[name] != nil || s.enums[name] != nil
	}

	errs = append(errs, b.computeSupertypes(s, decls, known)...)

	own := make(map[string]*Type, len(decls))
	for _, name := range s.typeOrder {
		own[name] = b.ownMembers(decls[name])
	}

	for _, name := range s.typeOrder {
		merged := &Type{
			Name:       name,
			Supertypes: decls[name].Supertypes,
			Properties: own[name].Properties,
			Functions:  own[name].Functions,
		}

		for _, super := range s.supertypeOrder(name, decls) {
			if inherited := own[super]; inherited != nil {
				merged.Properties = mergeProperties(merged.Properties, inherited.Properties)
				merged.Functions = mergeFunctions(merged.Functions, inherited.Functions)
			}
		}

		s.types[name] = merged
	}

	s.topLevel = mergeFunctions(nil, b.topLevel)
	for _, d := range b.topLevelDiscoveries {
		s.topLevel = mergeFunctions(s.topLevel, d.DiscoverTopLevelFunctions())
	}

	augmentations := b.augmentations
	for _, p := range b.augmentationsProviders {
		augmentations = append(augmentations, p.ProvideAugmentations()...)
	}

	for _, a := range augmentations {
		if err := validateAugmentation(a, known); err != nil {
			errs = append(errs, err)

			continue
		}

		s.augmentations[a.Type] = append(s.augmentations[a.Type], a)
	}

	for _, name := range s.typeOrder {
		errs = append(errs, validateMembers(s.types[name], known)...)
	}

	for _, f := range s.topLevel {
		errs = append(errs, validateFunction(f, known)...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return s, nil
}

func isBuiltin(name string) bool {
	_, ok := builtins[name]

	return ok
}

// ownMembers merges declared members with extractor contributions.
func (b *Builder) ownMembers(decl *Type) *Type {
	t := &Type{Name: decl.Name}

	t.Properties = mergeProperties(nil, withPropertyOwner(decl.Name, decl.Properties))
	t.Functions = mergeFunctions(nil, withFunctionOwner(decl.Name, decl.Functions))

	for _, e := range b.propertyExtractors {
		t.Properties = mergeProperties(t.Properties, withPropertyOwner(decl.Name, e.ExtractProperties(decl)))
	}

	for _, e := range b.functionExtractors {
		t.Functions = mergeFunctions(t.Functions, withFunctionOwner(decl.Name, e.ExtractFunctions(decl)))
	}

	return t
}

func withPropertyOwner(owner string, props []*Property) []*Property {
	out := make([]*Property, 0, len(props))

	for _, p := range props {
		if p.Owner == "" {
			cp := *p
			cp.Owner = owner
			p = &cp
		}

		out = append(out, p)
	}

	return out
}

func withFunctionOwner(owner string, funcs []*Function) []*Function {
	out := make([]*Function, 0, len(funcs))

	for _, f := range funcs {
		if f.Owner == "" {
			cp := *f
			cp.Owner = owner
			f = &cp
		}

		out = append(out, f)
	}

	return out
}

// mergeProperties appends the properties whose names are not taken yet.
func mergeProperties(into, from []*Property) []*Property {
	seen := make(map[string]bool, len(into))
	for _, p := range into {
		seen[p.Name] = true
	}

	for _, p := range from {
		if seen[p.Name] {
			continue
		}

		seen[p.Name] = true
		into = append(into, p)
	}

	return into
}

// mergeFunctions appends the functions whose name and parameter types are not
// taken yet. Overloads with distinct parameter types are all kept.
func mergeFunctions(into, from []*Function) []*Function {
	seen := make(map[string]bool, len(into))
	for _, f := range into {
		seen[f.memberKey()] = true
	}

	for _, f := range from {
		key := f.memberKey()
		if seen[key] {
			continue
		}

		seen[key] = true
		into = append(into, f)
	}

	return into
}

// computeSupertypes fills the transitive supertype closure and reports unknown
// supertypes and cycles.
func (b *Builder) computeSupertypes(s *Schema, decls map[string]*Type, known func(string) bool) []error {
	var errs []error

	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(decls))

	var visit func(name string) bool

	visit = func(name string) bool {
		switch state[name] {
		case visiting:
			return false
		case done:
			return true
		}

		state[name] = visiting
		closure := make(map[string]bool)

		for _, super := range decls[name].Supertypes {
			if decls[super] == nil {
				if !known(super) {
					errs = append(errs, fmt.Errorf("type %s: supertype: %w: %s", name, ErrUnknownType, super))
				} else {
					closure[super] = true
				}

				continue
			}

			if !visit(super) {
				errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrSupertypeCycle, name, super))
				state[name] = done
				s.supertypes[name] = closure

				return true
			}

			closure[super] = true
			for t := range s.supertypes[super] {
				closure[t] = true
			}
		}

		state[name] = done
		s.supertypes[name] = closure

		return true
	}

	for _, name := range s.typeOrder {
		visit(name)
	}

	return errs
}

// supertypeOrder lists the transitive supertypes breadth-first, direct
// supertypes first in declaration order.
func (s *Schema) supertypeOrder(name string, decls map[string]*Type) []string {
	var order []string

	seen := map[string]bool{name: true}
	queue := []string{name}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		decl := decls[current]
		if decl == nil {
			continue
		}

		for _, super := range decl.Supertypes {
			if seen[super] {
				continue
			}

			seen[super] = true
			order = append(order, super)
			queue = append(queue, super)
		}
	}

	return order
}

func validateMembers(t *Type, known func(string) bool) []error {
	var errs []error

	for _, p := range t.Properties {
		if p.Owner != t.Name {
			continue
		}

		if err := validateRef(p.Type, nil, known); err != nil {
			errs = append(errs, fmt.Errorf("type %s: property %s: %w", t.Name, p.Name, err))
		}
	}

	for _, f := range t.Functions {
		if f.Owner != t.Name {
			continue
		}

		errs = append(errs, validateFunction(f, known)...)
	}

	return errs
}

func validateFunction(f *Function, known func(string) bool) []error {
	var errs []error

	varargs := 0

	for _, p := range f.Params {
		if p.Vararg {
			varargs++
		}

		if err := validateRef(p.Type, f.TypeParams, known); err != nil {
			errs = append(errs, fmt.Errorf("function %s: parameter %s: %w", f.Signature(), p.Name, err))
		}
	}

	if varargs > 1 {
		errs = append(errs, fmt.Errorf("function %s: %w", f.Signature(), ErrMultipleVarargs))
	}

	if f.Semantics == Pure && f.Block != BlockNotAllowed {
		errs = append(errs, fmt.Errorf("function %s: %w: block %s", f.Signature(), ErrUnexpectedBlock, f.Block))
	}

	if err := validateRef(f.Returns, f.TypeParams, known); err != nil {
		errs = append(errs, fmt.Errorf("function %s: return type: %w", f.Signature(), err))
	}

	if !f.Configures.IsZero() {
		if err := validateRef(f.Configures, f.TypeParams, known); err != nil {
			errs = append(errs, fmt.Errorf("function %s: configured type: %w", f.Signature(), err))
		}
	}

	return errs
}

func validateRef(t TypeRef, typeParams []string, known func(string) bool) error {
	if t.IsZero() {
		return fmt.Errorf("%w: <empty>", ErrUnknownType)
	}

	if t.Var {
		for _, p := range typeParams {
			if p == t.Name {
				return nil
			}
		}

		return fmt.Errorf("%w: type variable %s", ErrUnknownType, t.Name)
	}

	if !known(t.Name) {
		return fmt.Errorf("%w: %s", ErrUnknownType, t.Name)
	}

	for _, a := range t.Args {
		if err := validateRef(a, typeParams, known); err != nil {
			return err
		}
	}

	return nil
}

func validateAugmentation(a *Augmentation, known func(string) bool) error {
	if !known(a.Type) {
		return fmt.Errorf("augmentation of %s: %w: %s", a.Type, ErrUnknownType, a.Type)
	}

	if a.Function == nil || len(a.Function.Params) != 2 {
		return fmt.Errorf("%w: %s %s: function must take the property value and the operand", ErrInvalidAugmentation, a.Type, a.Kind)
	}

	for _, err := range validateFunction(a.Function, known) {
		return fmt.Errorf("%w: %w", ErrInvalidAugmentation, err)
	}

	return nil
}
