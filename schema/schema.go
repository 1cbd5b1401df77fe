// Package schema is the read-only model of the types, properties, functions and
// enums a configuration program can reach from its root receiver.
//
// Schemas are produced by a Builder and never change afterwards, so one schema
// can be shared by any number of concurrent resolution runs.
package schema

import (
	"strings"
)

// AccessMode restricts how a property may be used.
type AccessMode int

// Access modes.
const (
	ReadWrite AccessMode = iota
	ReadOnly
	WriteOnly
)

// CanRead reports whether the property value may be read.
func (m AccessMode) CanRead() bool { return m != WriteOnly }

// CanWrite reports whether the property may be assigned.
func (m AccessMode) CanWrite() bool { return m != ReadOnly }

func (m AccessMode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	default:
		return "read-write"
	}
}

// Semantics describes what invoking a function means for the configured model.
type Semantics int

// Function semantics.
const (
	// Pure functions compute a value and have no effect on the model.
	Pure Semantics = iota
	// Adding functions create a new object and add it to the receiver.
	Adding
	// Configuring functions produce an object that the lambda configures.
	Configuring
	// AccessAndConfigure functions reach an existing nested object and configure it.
	AccessAndConfigure
)

// AcceptsBlock reports whether a function with these semantics may take a
// configuring lambda at all.
func (s Semantics) AcceptsBlock() bool { return s != Pure }

func (s Semantics) String() string {
	switch s {
	case Adding:
		return "adding"
	case Configuring:
		return "configuring"
	case AccessAndConfigure:
		return "accessAndConfigure"
	default:
		return "pure"
	}
}

// BlockRequirement states whether a call must, may or must not pass a
// configuring lambda.
type BlockRequirement int

// Block requirements.
const (
	BlockNotAllowed BlockRequirement = iota
	BlockOptional
	BlockRequired
)

// Allows reports whether a call with or without a lambda satisfies the requirement.
func (r BlockRequirement) Allows(hasLambda bool) bool {
	switch r {
	case BlockRequired:
		return hasLambda
	case BlockNotAllowed:
		return !hasLambda
	default:
		return true
	}
}

func (r BlockRequirement) String() string {
	switch r {
	case BlockRequired:
		return "required"
	case BlockOptional:
		return "optional"
	default:
		return "notAllowed"
	}
}

// Property is a named value on a type.
type Property struct {
	Name   string
	Type   TypeRef
	Access AccessMode

	// HiddenInDSL excludes the property from name resolution entirely.
	HiddenInDSL bool

	// CurrentReceiverOnly forbids access other than unqualified access on the
	// innermost receiver.
	CurrentReceiverOnly bool

	// Owner is the name of the type declaring the property.
	Owner string
}

// Parameter is a formal function parameter.
type Parameter struct {
	Name string
	// Type is the declared type; for a vararg parameter it is the element type.
	Type       TypeRef
	Vararg     bool
	HasDefault bool
}

func (p *Parameter) String() string {
	if p.Vararg {
		return "vararg " + p.Name + ": " + p.Type.String()
	}

	return p.Name + ": " + p.Type.String()
}

// Function is a member function of a type, or a top-level function when Owner
// is empty.
type Function struct {
	Name       string
	Owner      string
	TypeParams []string
	Params     []*Parameter
	Returns    TypeRef
	Semantics  Semantics
	Block      BlockRequirement

	// Configures is the receiver type of the configuring lambda. When unset the
	// return type is configured.
	Configures TypeRef

	CurrentReceiverOnly bool
}

// ConfiguredType returns the receiver type inside the function's lambda.
func (f *Function) ConfiguredType() TypeRef {
	if !f.Configures.IsZero() {
		return f.Configures
	}

	return f.Returns
}

// Vararg returns the vararg parameter and its index, or nil and -1.
func (f *Function) Vararg() (*Parameter, int) {
	for i, p := range f.Params {
		if p.Vararg {
			return p, i
		}
	}

	return nil, -1
}

// Signature renders the function as `Owner.name(params): Returns`. Two functions
// with the same signature are the same member for merge purposes.
func (f *Function) Signature() string {
	var b strings.Builder

	if f.Owner != "" {
		b.WriteString(f.Owner)
		b.WriteString(".")
	}

	b.WriteString(f.Name)
	b.WriteString("(")

	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.String())
	}

	b.WriteString("): ")
	b.WriteString(f.Returns.String())

	return b.String()
}

// memberKey identifies a function by name and parameter types, ignoring owner
// and parameter names.
func (f *Function) memberKey() string {
	var b strings.Builder

	b.WriteString(f.Name)
	b.WriteString("(")

	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(",")
		}

		if p.Vararg {
			b.WriteString("*")
		}

		b.WriteString(p.Type.String())
	}

	b.WriteString(")")

	return b.String()
}

// Type is a configurable type with its members. Properties and Functions of a
// built schema include inherited members.
type Type struct {
	Name       string
	Supertypes []string
	Properties []*Property
	Functions  []*Function
}

// Enum is an enum type with its constants in declaration order.
type Enum struct {
	Name      string
	Constants []string
}

// AugmentationKind is the operator an augmentation implements.
type AugmentationKind int

// Augmentation kinds.
const (
	Plus AugmentationKind = iota
)

func (k AugmentationKind) String() string {
	return "plus"
}

// Augmentation makes `property += operand` resolve to Function, which takes the
// property value and the operand and returns the new property value.
type Augmentation struct {
	Type     string
	Kind     AugmentationKind
	Function *Function
}

// Model is the query interface the resolver consumes. Lookups of unknown types
// return empty results.
type Model interface {
	// Root returns the type of the top-level receiver.
	Root() TypeRef
	PropertiesOf(t TypeRef) []*Property
	FunctionsOf(t TypeRef) []*Function
	TopLevelFunctions() []*Function
	IsSubtype(a, b TypeRef) bool
	AugmentationsOf(t TypeRef, kind AugmentationKind) []*Augmentation
	EnumConstantsOf(t TypeRef) []string
	IsEnum(t TypeRef) bool
}

// Schema is the immutable Model produced by a Builder.
type Schema struct {
	root          string
	types         map[string]*Type
	typeOrder     []string
	enums         map[string]*Enum
	supertypes    map[string]map[string]bool
	topLevel      []*Function
	augmentations map[string][]*Augmentation
}

var _ Model = (*Schema)(nil)

// Root implements Model.
func (s *Schema) Root() TypeRef {
	return Named(s.root)
}

// Type returns the type with the given name, or nil.
func (s *Schema) Type(name string) *Type {
	return s.types[name]
}

// Types returns all types in declaration order.
func (s *Schema) Types() []*Type {
	out := make([]*Type, 0, len(s.typeOrder))
	for _, n := range s.typeOrder {
		out = append(out, s.types[n])
	}

	return out
}

// PropertiesOf implements Model.
func (s *Schema) PropertiesOf(t TypeRef) []*Property {
	if typ := s.types[t.Name]; typ != nil && !t.Var {
		return typ.Properties
	}

	return nil
}

// FunctionsOf implements Model.
func (s *Schema) FunctionsOf(t TypeRef) []*Function {
	if typ := s.types[t.Name]; typ != nil && !t.Var {
		return typ.Functions
	}

	return nil
}

// TopLevelFunctions implements Model.
func (s *Schema) TopLevelFunctions() []*Function {
	return s.topLevel
}

// AugmentationsOf implements Model.
func (s *Schema) AugmentationsOf(t TypeRef, kind AugmentationKind) []*Augmentation {
	var out []*Augmentation

	for _, a := range s.augmentations[t.Name] {
		if a.Kind == kind {
			out = append(out, a)
		}
	}

	return out
}

// EnumConstantsOf implements Model.
func (s *Schema) EnumConstantsOf(t TypeRef) []string {
	if e := s.enums[t.Name]; e != nil && !t.Var {
		return e.Constants
	}

	return nil
}

// IsEnum implements Model.
func (s *Schema) IsEnum(t TypeRef) bool {
	return !t.Var && s.enums[t.Name] != nil
}

// IsSubtype implements Model. The relation is reflexive and transitive over
// declared supertypes. Type arguments are covariant, Null is a subtype of every
// non-primitive type and every type is a subtype of Any.
func (s *Schema) IsSubtype(a, b TypeRef) bool {
	if a.Equal(b) {
		return true
	}

	if a.Var || b.Var {
		return false
	}

	if b.Name == AnyName && len(b.Args) == 0 {
		return true
	}

	if a.Name == NullName {
		return !b.IsPrimitive()
	}

	if len(a.Args) != len(b.Args) {
		return false
	}

	if a.Name != b.Name && !s.supertypes[a.Name][b.Name] {
		return false
	}

	for i := range a.Args {
		if !s.IsSubtype(a.Args[i], b.Args[i]) {
			return false
		}
	}

	return true
}
