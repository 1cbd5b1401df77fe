package dcl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrInvalidTree is returned when a serialized statement tree is malformed.
var ErrInvalidTree = errors.New("invalid statement tree")

// DecodeProgram reads the YAML interchange form of an already-parsed statement
// tree. Spans are taken from the YAML node positions and the result is numbered.
//
// Every node is a single-key mapping:
//
//	- val: {name: m, rhs: {call: {name: my1}}}
//	- call:
//	    name: my
//	    block:
//	      - assign: {lhs: {ref: my}, rhs: {ref: m}}
func DecodeProgram(filename string, data []byte) (*Program, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTree, err)
	}

	d := &decoder{filename: filename}
	p := &Program{}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return p, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return p, nil
	}

	p.Statements, err = d.statements(root)
	if err != nil {
		return nil, err
	}

	Number(p)

	return p, nil
}

// LoadProgram reads and decodes a statement tree file.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return DecodeProgram(path, data)
}

type decoder struct {
	filename string
}

func (d *decoder) span(n *yaml.Node) Span {
	return SpanAt(d.filename, n.Line, n.Column)
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", d.span(n), ErrInvalidTree, fmt.Sprintf(format, args...))
}

// single unpacks a single-key mapping into its key and value nodes.
func (d *decoder) single(n *yaml.Node) (string, *yaml.Node, error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, d.errorf(n, "expected a single-key mapping")
	}

	return n.Content[0].Value, n.Content[1], nil
}

// fields indexes the entries of a mapping node by key.
func (d *decoder) fields(n *yaml.Node, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping")
	}

	out := make(map[string]*yaml.Node, len(n.Content)/2)

	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !slices.Contains(allowed, key.Value) {
			return nil, d.errorf(key, "unexpected field %q", key.Value)
		}

		out[key.Value] = n.Content[i+1]
	}

	return out, nil
}

func (d *decoder) statements(n *yaml.Node) ([]Stmt, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list of statements")
	}

	stmts := make([]Stmt, 0, len(n.Content))

	for _, item := range n.Content {
		s, err := d.statement(item)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, s)
	}

	return stmts, nil
}

func (d *decoder) statement(n *yaml.Node) (Stmt, error) {
	key, value, err := d.single(n)
	if err != nil {
		return nil, err
	}

	span := d.span(n)

	switch key {
	case "assign", "augment":
		f, err := d.fields(value, "lhs", "rhs")
		if err != nil {
			return nil, err
		}

		lhs, err := d.lhs(value, f["lhs"])
		if err != nil {
			return nil, err
		}

		rhs, err := d.optionalExpr(f["rhs"])
		if err != nil {
			return nil, err
		}

		if key == "augment" {
			return &AugmentingAssignment{Span: span, LHS: lhs, Op: PlusAssign, RHS: rhs}, nil
		}

		return &Assignment{Span: span, LHS: lhs, RHS: rhs}, nil
	case "val":
		f, err := d.fields(value, "name", "rhs")
		if err != nil {
			return nil, err
		}

		rhs, err := d.optionalExpr(f["rhs"])
		if err != nil {
			return nil, err
		}

		name := ""
		if f["name"] != nil {
			name = f["name"].Value
		}

		return &LocalValue{Span: span, Name: name, RHS: rhs}, nil
	case "call":
		call, err := d.call(n, value)
		if err != nil {
			return nil, err
		}

		return &ExprStatement{Span: span, Expr: call}, nil
	case "expr":
		e, err := d.expr(value)
		if err != nil {
			return nil, err
		}

		return &ExprStatement{Span: span, Expr: e}, nil
	default:
		return nil, d.errorf(n, "unknown statement %q", key)
	}
}

func (d *decoder) lhs(parent, n *yaml.Node) (*PropertyAccess, error) {
	if n == nil {
		return nil, d.errorf(parent, "assignment without lhs")
	}

	e, err := d.expr(n)
	if err != nil {
		return nil, err
	}

	pa, ok := e.(*PropertyAccess)
	if !ok {
		return nil, d.errorf(n, "assignment lhs must be a property access")
	}

	return pa, nil
}

func (d *decoder) optionalExpr(n *yaml.Node) (Expr, error) {
	if n == nil {
		return nil, nil
	}

	return d.expr(n)
}

func (d *decoder) expr(n *yaml.Node) (Expr, error) {
	key, value, err := d.single(n)
	if err != nil {
		return nil, err
	}

	span := d.span(n)

	switch key {
	case "str":
		return &Literal{Span: span, Kind: StringLiteral, Value: value.Value}, nil
	case "int":
		v, err := strconv.ParseInt(value.Value, 10, 32)
		if err != nil {
			return nil, d.errorf(value, "invalid int literal %q", value.Value)
		}

		return &Literal{Span: span, Kind: IntLiteral, Value: int32(v)}, nil
	case "long":
		v, err := strconv.ParseInt(value.Value, 10, 64)
		if err != nil {
			return nil, d.errorf(value, "invalid long literal %q", value.Value)
		}

		return &Literal{Span: span, Kind: LongLiteral, Value: v}, nil
	case "bool":
		v, err := strconv.ParseBool(value.Value)
		if err != nil {
			return nil, d.errorf(value, "invalid boolean literal %q", value.Value)
		}

		return &Literal{Span: span, Kind: BooleanLiteral, Value: v}, nil
	case "null":
		return &Null{Span: span}, nil
	case "this":
		return &This{Span: span}, nil
	case "ref":
		return &PropertyAccess{Span: span, Name: value.Value}, nil
	case "local":
		return &LocalValueRef{Span: span, Name: value.Value}, nil
	case "prop":
		f, err := d.fields(value, "of", "name")
		if err != nil {
			return nil, err
		}

		recv, err := d.optionalExpr(f["of"])
		if err != nil {
			return nil, err
		}

		if f["name"] == nil {
			return nil, d.errorf(value, "property access without name")
		}

		return &PropertyAccess{Span: span, Receiver: recv, Name: f["name"].Value}, nil
	case "call":
		return d.call(n, value)
	default:
		return nil, d.errorf(n, "unknown expression %q", key)
	}
}

func (d *decoder) call(outer, n *yaml.Node) (*FunctionCall, error) {
	f, err := d.fields(n, "of", "name", "args", "block")
	if err != nil {
		return nil, err
	}

	if f["name"] == nil {
		return nil, d.errorf(n, "call without name")
	}

	call := &FunctionCall{Span: d.span(outer), Name: f["name"].Value}

	call.Receiver, err = d.optionalExpr(f["of"])
	if err != nil {
		return nil, err
	}

	if args := f["args"]; args != nil {
		if args.Kind != yaml.SequenceNode {
			return nil, d.errorf(args, "call arguments must be a list")
		}

		for _, a := range args.Content {
			arg, err := d.argument(a)
			if err != nil {
				return nil, err
			}

			call.Args = append(call.Args, arg)
		}
	}

	if block := f["block"]; block != nil {
		stmts, err := d.statementsOrEmpty(block)
		if err != nil {
			return nil, err
		}

		call.Lambda = &Block{Span: d.span(block), Statements: stmts}
	}

	return call, nil
}

func (d *decoder) statementsOrEmpty(n *yaml.Node) ([]Stmt, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}

	return d.statements(n)
}

func (d *decoder) argument(n *yaml.Node) (*Argument, error) {
	if n.Kind == yaml.MappingNode && len(n.Content) == 4 && n.Content[0].Value == "arg" {
		f, err := d.fields(n, "arg", "value")
		if err != nil {
			return nil, err
		}

		if f["value"] == nil {
			return nil, d.errorf(n, "named argument without value")
		}

		v, err := d.expr(f["value"])
		if err != nil {
			return nil, err
		}

		return &Argument{Name: f["arg"].Value, Value: v}, nil
	}

	v, err := d.expr(n)
	if err != nil {
		return nil, err
	}

	return &Argument{Value: v}, nil
}
