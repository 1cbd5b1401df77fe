package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/dcl/schema"
)

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, name(it))
	}

	return out
}

func propertyNames(ps []*schema.Property) []string {
	return names(ps, func(p *schema.Property) string { return p.Name })
}

func TestBuilder_Subtyping(t *testing.T) {
	t.Parallel()

	s, err := schema.NewBuilder("Root").
		AddType(&schema.Type{Name: "Root"}).
		AddType(&schema.Type{Name: "SuperClass"}).
		AddType(&schema.Type{Name: "SuperInterface"}).
		AddType(&schema.Type{Name: "Subtype", Supertypes: []string{"SuperClass", "SuperInterface"}}).
		AddType(&schema.Type{Name: "SubSubtype", Supertypes: []string{"Subtype"}}).
		AddType(&schema.Type{Name: "NotASubtype"}).
		Build()
	require.NoError(t, err)

	tests := []struct {
		a, b schema.TypeRef
		want bool
	}{
		{schema.Named("Subtype"), schema.Named("Subtype"), true},
		{schema.Named("Subtype"), schema.Named("SuperClass"), true},
		{schema.Named("Subtype"), schema.Named("SuperInterface"), true},
		{schema.Named("SubSubtype"), schema.Named("SuperInterface"), true},
		{schema.Named("SuperClass"), schema.Named("Subtype"), false},
		{schema.Named("NotASubtype"), schema.Named("SuperClass"), false},
		{schema.ListOf(schema.Named("Subtype")), schema.ListOf(schema.Named("SuperClass")), true},
		{schema.ListOf(schema.Named("SuperClass")), schema.ListOf(schema.Named("Subtype")), false},
		{schema.Null, schema.Named("SuperClass"), true},
		{schema.Null, schema.String, false},
		{schema.Int, schema.Long, false},
		{schema.Int, schema.Any, true},
		{schema.Named("NotASubtype"), schema.Any, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.IsSubtype(tt.a, tt.b), "IsSubtype(%s, %s)", tt.a, tt.b)
	}
}

func TestBuilder_MergePolicy(t *testing.T) {
	t.Parallel()

	first := schema.PropertyExtractorFunc(func(t *schema.Type) []*schema.Property {
		if t.Name != "Sub" {
			return nil
		}

		return []*schema.Property{
			{Name: "declared", Type: schema.Int},
			{Name: "extra", Type: schema.String},
		}
	})
	second := schema.PropertyExtractorFunc(func(t *schema.Type) []*schema.Property {
		if t.Name != "Sub" {
			return nil
		}

		return []*schema.Property{
			{Name: "extra", Type: schema.Boolean},
			{Name: "late", Type: schema.Boolean},
		}
	})

	s, err := schema.NewBuilder("Sub").
		AddType(&schema.Type{
			Name:       "Base",
			Properties: []*schema.Property{{Name: "inherited", Type: schema.String}, {Name: "declared", Type: schema.Long}},
		}).
		AddType(&schema.Type{
			Name:       "Sub",
			Supertypes: []string{"Base"},
			Properties: []*schema.Property{{Name: "declared", Type: schema.String}},
		}).
		WithPropertyExtractors(first, second).
		Build()
	require.NoError(t, err)

	props := s.PropertiesOf(schema.Named("Sub"))
	assert.Equal(t, []string{"declared", "extra", "late", "inherited"}, propertyNames(props))

	assert.Equal(t, schema.String, props[0].Type, "declared member wins over contributed and inherited")
	assert.Equal(t, schema.String, props[1].Type, "first extractor wins")
	assert.Equal(t, "Sub", props[0].Owner)
	assert.Equal(t, "Base", props[3].Owner)
}

func TestBuilder_FunctionOverloadsKept(t *testing.T) {
	t.Parallel()

	fn := func(param string, ret schema.TypeRef) *schema.Function {
		return &schema.Function{
			Name:    "f",
			Params:  []*schema.Parameter{{Name: "x", Type: schema.Named(param)}},
			Returns: ret,
		}
	}

	s, err := schema.NewBuilder("Root").
		AddType(&schema.Type{Name: "Foo"}).
		AddType(&schema.Type{Name: "Bar"}).
		AddType(&schema.Type{
			Name:      "Root",
			Functions: []*schema.Function{fn("Foo", schema.Int), fn("Bar", schema.Int), fn("Foo", schema.String)},
		}).
		WithFunctionExtractors(schema.FunctionExtractorFunc(func(t *schema.Type) []*schema.Function {
			return []*schema.Function{fn("Bar", schema.Boolean)}
		})).
		Build()
	require.NoError(t, err)

	funcs := s.FunctionsOf(s.Root())
	require.Len(t, funcs, 2)
	assert.Equal(t, schema.Int, funcs[0].Returns)
	assert.Equal(t, schema.Int, funcs[1].Returns)
}

func TestBuilder_Contributors(t *testing.T) {
	t.Parallel()

	s, err := schema.NewBuilder("Root").
		AddType(&schema.Type{Name: "Root"}).
		AddType(&schema.Type{Name: "Data"}).
		WithTopLevelFunctionDiscovery(schema.TopLevelFunctionDiscoveryFunc(func() []*schema.Function {
			return []*schema.Function{{Name: "listOf", TypeParams: []string{"T"},
				Params:  []*schema.Parameter{{Name: "items", Type: schema.Var("T"), Vararg: true}},
				Returns: schema.ListOf(schema.Var("T"))}}
		})).
		WithAugmentationsProviders(schema.AugmentationsProviderFunc(func() []*schema.Augmentation {
			return []*schema.Augmentation{{Type: "Data", Kind: schema.Plus, Function: &schema.Function{
				Name:    "plus",
				Params:  []*schema.Parameter{{Name: "a", Type: schema.Named("Data")}, {Name: "b", Type: schema.Named("Data")}},
				Returns: schema.Named("Data"),
			}}}
		})).
		Build()
	require.NoError(t, err)

	require.Len(t, s.TopLevelFunctions(), 1)
	assert.Equal(t, "listOf", s.TopLevelFunctions()[0].Name)
	assert.Len(t, s.AugmentationsOf(schema.Named("Data"), schema.Plus), 1)
	assert.Empty(t, s.AugmentationsOf(schema.String, schema.Plus))
}

func TestBuilder_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder *schema.Builder
		want    error
	}{
		{
			name:    "unknown root",
			builder: schema.NewBuilder("Missing").AddType(&schema.Type{Name: "Root"}),
			want:    schema.ErrUnknownRoot,
		},
		{
			name: "unknown property type",
			builder: schema.NewBuilder("Root").AddType(&schema.Type{
				Name:       "Root",
				Properties: []*schema.Property{{Name: "x", Type: schema.Named("Nope")}},
			}),
			want: schema.ErrUnknownType,
		},
		{
			name: "duplicate type",
			builder: schema.NewBuilder("Root").
				AddType(&schema.Type{Name: "Root"}).
				AddType(&schema.Type{Name: "Root"}),
			want: schema.ErrDuplicateType,
		},
		{
			name: "supertype cycle",
			builder: schema.NewBuilder("Root").
				AddType(&schema.Type{Name: "Root"}).
				AddType(&schema.Type{Name: "A", Supertypes: []string{"B"}}).
				AddType(&schema.Type{Name: "B", Supertypes: []string{"A"}}),
			want: schema.ErrSupertypeCycle,
		},
		{
			name: "two varargs",
			builder: schema.NewBuilder("Root").AddType(&schema.Type{
				Name: "Root",
				Functions: []*schema.Function{{
					Name:    "f",
					Params:  []*schema.Parameter{{Name: "a", Type: schema.Int, Vararg: true}, {Name: "b", Type: schema.Int, Vararg: true}},
					Returns: schema.Unit,
				}},
			}),
			want: schema.ErrMultipleVarargs,
		},
		{
			name: "pure function with block",
			builder: schema.NewBuilder("Root").AddType(&schema.Type{
				Name: "Root",
				Functions: []*schema.Function{{
					Name:    "calc",
					Returns: schema.Int,
					Block:   schema.BlockOptional,
				}},
			}),
			want: schema.ErrUnexpectedBlock,
		},
		{
			name: "pure top-level function with block",
			builder: schema.NewBuilder("Root").
				AddType(&schema.Type{Name: "Root"}).
				AddTopLevelFunction(&schema.Function{Name: "calc", Returns: schema.Int, Block: schema.BlockRequired}),
			want: schema.ErrUnexpectedBlock,
		},
		{
			name: "augmentation arity",
			builder: schema.NewBuilder("Root").
				AddType(&schema.Type{Name: "Root"}).
				AddAugmentation(&schema.Augmentation{Type: "Root", Function: &schema.Function{
					Name: "plus", Params: []*schema.Parameter{{Name: "a", Type: schema.Named("Root")}}, Returns: schema.Named("Root"),
				}}),
			want: schema.ErrInvalidAugmentation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.builder.Build()
			require.ErrorIs(t, err, tt.want)
		})
	}
}
