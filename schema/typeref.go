package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrInvalidTypeRef is returned when a type reference cannot be parsed.
var ErrInvalidTypeRef = errors.New("invalid type reference")

// TypeRef refers to a type by name, optionally with type arguments. When Var is
// set, Name is a type variable declared by the enclosing function.
type TypeRef struct {
	Name string
	Args []TypeRef
	Var  bool
}

// Built-in type names.
const (
	AnyName     = "Any"
	UnitName    = "Unit"
	NullName    = "Null"
	StringName  = "String"
	IntName     = "Int"
	LongName    = "Long"
	BooleanName = "Boolean"
	ListName    = "List"
)

// Built-in type references.
var (
	Any     = TypeRef{Name: AnyName}
	Unit    = TypeRef{Name: UnitName}
	Null    = TypeRef{Name: NullName}
	String  = TypeRef{Name: StringName}
	Int     = TypeRef{Name: IntName}
	Long    = TypeRef{Name: LongName}
	Boolean = TypeRef{Name: BooleanName}
)

var builtins = map[string]int{
	AnyName:     0,
	UnitName:    0,
	NullName:    0,
	StringName:  0,
	IntName:     0,
	LongName:    0,
	BooleanName: 0,
	ListName:    1,
}

// Named returns a reference to a named type.
func Named(name string, args ...TypeRef) TypeRef {
	return TypeRef{Name: name, Args: args}
}

// Var returns a reference to a type variable.
func Var(name string) TypeRef {
	return TypeRef{Name: name, Var: true}
}

// ListOf returns List<elem>.
func ListOf(elem TypeRef) TypeRef {
	return TypeRef{Name: ListName, Args: []TypeRef{elem}}
}

// IsZero reports whether the reference is unset.
func (t TypeRef) IsZero() bool {
	return t.Name == ""
}

// IsPrimitive reports whether the type is one of the value types that null
// cannot inhabit.
func (t TypeRef) IsPrimitive() bool {
	switch t.Name {
	case StringName, IntName, LongName, BooleanName, UnitName:
		return len(t.Args) == 0 && !t.Var
	default:
		return false
	}
}

// String renders the reference as written in schema files.
func (t TypeRef) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}

	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}

	return t.Name + "<" + strings.Join(parts, ", ") + ">"
}

// Equal reports structural equality.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.Name != o.Name || t.Var != o.Var || len(t.Args) != len(o.Args) {
		return false
	}

	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}

	return true
}

// HasVars reports whether the reference mentions a type variable.
func (t TypeRef) HasVars() bool {
	if t.Var {
		return true
	}

	for _, a := range t.Args {
		if a.HasVars() {
			return true
		}
	}

	return false
}

// Substitute replaces bound type variables. Unbound variables are kept.
func (t TypeRef) Substitute(subst map[string]TypeRef) TypeRef {
	if len(subst) == 0 {
		return t
	}

	if t.Var {
		if r, ok := subst[t.Name]; ok {
			return r
		}

		return t
	}

	if len(t.Args) == 0 {
		return t
	}

	args := make([]TypeRef, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(subst)
	}

	return TypeRef{Name: t.Name, Args: args}
}

// ----------------------------------------------------------------------------
// Type reference grammar
// ----------------------------------------------------------------------------

type typeRefNode struct {
	Name string         `parser:"@Ident"`
	Args []*typeRefNode `parser:"('<' @@ (',' @@)* '>')?"`
}

var typeRefLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.]*`},
	{Name: "Punct", Pattern: `[<>,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var typeRefParser = participle.MustBuild[typeRefNode](
	participle.Lexer(typeRefLexer),
	participle.Elide("Whitespace"),
)

// ParseTypeRef parses a type reference such as "List<String>". Names listed in
// typeParams become type variables.
func ParseTypeRef(s string, typeParams ...string) (TypeRef, error) {
	node, err := typeRefParser.ParseString("", s)
	if err != nil {
		return TypeRef{}, fmt.Errorf("%w %q: %w", ErrInvalidTypeRef, s, err)
	}

	return node.toRef(typeParams), nil
}

// MustParseTypeRef is like ParseTypeRef but panics on error.
func MustParseTypeRef(s string, typeParams ...string) TypeRef {
	t, err := ParseTypeRef(s, typeParams...)
	if err != nil {
		panic(err)
	}

	return t
}

func (n *typeRefNode) toRef(typeParams []string) TypeRef {
	ref := TypeRef{Name: n.Name}

	for _, p := range typeParams {
		if p == n.Name && len(n.Args) == 0 {
			ref.Var = true
		}
	}

	for _, a := range n.Args {
		ref.Args = append(ref.Args, a.toRef(typeParams))
	}

	return ref
}
