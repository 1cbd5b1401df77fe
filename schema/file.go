package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSchemaFile is returned when a schema document cannot be decoded.
var ErrInvalidSchemaFile = errors.New("invalid schema file")

// File is the YAML form of a schema document.
//
//	root: Root
//	types:
//	  - name: Root
//	    properties:
//	      - {name: str, type: String}
//	    functions:
//	      - {name: my, returns: MyType, semantics: adding, block: optional}
//	enums:
//	  - {name: Enum, constants: [FOO, BAR, BAZ]}
type File struct {
	Root          string             `yaml:"root"`
	Types         []TypeFile         `yaml:"types,omitempty"`
	Enums         []EnumFile         `yaml:"enums,omitempty"`
	Functions     []FunctionFile     `yaml:"functions,omitempty"`
	Augmentations []AugmentationFile `yaml:"augmentations,omitempty"`
}

// TypeFile declares a type.
type TypeFile struct {
	Name       string         `yaml:"name"`
	Supertypes []string       `yaml:"supertypes,omitempty"`
	Properties []PropertyFile `yaml:"properties,omitempty"`
	Functions  []FunctionFile `yaml:"functions,omitempty"`
}

// PropertyFile declares a property.
type PropertyFile struct {
	Name                string `yaml:"name"`
	Type                string `yaml:"type"`
	Access              string `yaml:"access,omitempty"` // rw (default), ro, wo
	Hidden              bool   `yaml:"hidden,omitempty"`
	CurrentReceiverOnly bool   `yaml:"currentReceiverOnly,omitempty"`
}

// FunctionFile declares a function.
type FunctionFile struct {
	Name                string          `yaml:"name"`
	TypeParams          []string        `yaml:"typeParams,omitempty"`
	Params              []ParameterFile `yaml:"params,omitempty"`
	Returns             string          `yaml:"returns,omitempty"` // default Unit
	Semantics           string          `yaml:"semantics,omitempty"`
	Block               string          `yaml:"block,omitempty"`
	Configures          string          `yaml:"configures,omitempty"`
	CurrentReceiverOnly bool            `yaml:"currentReceiverOnly,omitempty"`
}

// ParameterFile declares a function parameter.
type ParameterFile struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Vararg  bool   `yaml:"vararg,omitempty"`
	Default bool   `yaml:"default,omitempty"`
}

// EnumFile declares an enum.
type EnumFile struct {
	Name      string   `yaml:"name"`
	Constants []string `yaml:"constants"`
}

// AugmentationFile registers an augmentation for a type.
type AugmentationFile struct {
	Type     string       `yaml:"type"`
	Kind     string       `yaml:"kind,omitempty"` // plus (default)
	Function FunctionFile `yaml:"function"`
}

// LoadFile reads a schema document and builds it.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Decode parses a schema document into a Builder, so callers can register
// extra contributors before building.
func Decode(data []byte) (*Builder, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchemaFile, err)
	}

	return f.Builder()
}

// Builder converts the document into a Builder.
func (f *File) Builder() (*Builder, error) {
	b := NewBuilder(f.Root)

	for _, tf := range f.Types {
		t := &Type{Name: tf.Name, Supertypes: tf.Supertypes}

		for _, pf := range tf.Properties {
			p, err := pf.property()
			if err != nil {
				return nil, fmt.Errorf("%w: type %s: %w", ErrInvalidSchemaFile, tf.Name, err)
			}

			t.Properties = append(t.Properties, p)
		}

		for _, ff := range tf.Functions {
			fn, err := ff.function()
			if err != nil {
				return nil, fmt.Errorf("%w: type %s: %w", ErrInvalidSchemaFile, tf.Name, err)
			}

			t.Functions = append(t.Functions, fn)
		}

		b.AddType(t)
	}

	for _, ef := range f.Enums {
		b.AddEnum(&Enum{Name: ef.Name, Constants: ef.Constants})
	}

	for _, ff := range f.Functions {
		fn, err := ff.function()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSchemaFile, err)
		}

		b.AddTopLevelFunction(fn)
	}

	for _, af := range f.Augmentations {
		if af.Kind != "" && af.Kind != "plus" {
			return nil, fmt.Errorf("%w: augmentation of %s: unknown kind %q", ErrInvalidSchemaFile, af.Type, af.Kind)
		}

		fn, err := af.Function.function()
		if err != nil {
			return nil, fmt.Errorf("%w: augmentation of %s: %w", ErrInvalidSchemaFile, af.Type, err)
		}

		b.AddAugmentation(&Augmentation{Type: af.Type, Kind: Plus, Function: fn})
	}

	return b, nil
}

func (pf PropertyFile) property() (*Property, error) {
	typ, err := ParseTypeRef(pf.Type)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", pf.Name, err)
	}

	p := &Property{
		Name:                pf.Name,
		Type:                typ,
		HiddenInDSL:         pf.Hidden,
		CurrentReceiverOnly: pf.CurrentReceiverOnly,
	}

	switch pf.Access {
	case "", "rw":
		p.Access = ReadWrite
	case "ro":
		p.Access = ReadOnly
	case "wo":
		p.Access = WriteOnly
	default:
		return nil, fmt.Errorf("property %s: unknown access %q", pf.Name, pf.Access)
	}

	return p, nil
}

func (ff FunctionFile) function() (*Function, error) {
	fn := &Function{
		Name:                ff.Name,
		TypeParams:          ff.TypeParams,
		Returns:             Unit,
		CurrentReceiverOnly: ff.CurrentReceiverOnly,
	}

	var err error

	if ff.Returns != "" {
		fn.Returns, err = ParseTypeRef(ff.Returns, ff.TypeParams...)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", ff.Name, err)
		}
	}

	if ff.Configures != "" {
		fn.Configures, err = ParseTypeRef(ff.Configures, ff.TypeParams...)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", ff.Name, err)
		}
	}

	for _, pf := range ff.Params {
		typ, err := ParseTypeRef(pf.Type, ff.TypeParams...)
		if err != nil {
			return nil, fmt.Errorf("function %s: parameter %s: %w", ff.Name, pf.Name, err)
		}

		fn.Params = append(fn.Params, &Parameter{
			Name:       pf.Name,
			Type:       typ,
			Vararg:     pf.Vararg,
			HasDefault: pf.Default,
		})
	}

	switch ff.Semantics {
	case "", "pure":
		fn.Semantics = Pure
	case "adding":
		fn.Semantics = Adding
	case "configuring":
		fn.Semantics = Configuring
	case "accessAndConfigure":
		fn.Semantics = AccessAndConfigure
	default:
		return nil, fmt.Errorf("function %s: unknown semantics %q", ff.Name, ff.Semantics)
	}

	switch ff.Block {
	case "":
		fn.Block = BlockNotAllowed
		if fn.Semantics.AcceptsBlock() {
			fn.Block = BlockOptional
		}
	case "notAllowed":
		fn.Block = BlockNotAllowed
	case "optional":
		fn.Block = BlockOptional
	case "required":
		fn.Block = BlockRequired
	default:
		return nil, fmt.Errorf("function %s: unknown block requirement %q", ff.Name, ff.Block)
	}

	return fn, nil
}
