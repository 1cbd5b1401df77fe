package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
	"github.com/rlch/dcl/schema"
)

// Hover handles textDocument/hover requests.
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.logger.Debug("Hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	_, f, ok := s.resolvedDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	pos := analysis.PositionToLexer(params.Position.Line, params.Position.Character)

	node := analysis.NodeAtPosition(f, pos)
	if node == nil {
		return nil, nil //nolint:nilnil
	}

	content := hoverContent(f, node)
	if content == "" {
		return nil, nil //nolint:nilnil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: content,
		},
		Range: rangePtr(spanToRange(node.NodeSpan())),
	}, nil
}

// hoverContent describes what node resolved to, or why it did not.
func hoverContent(f *analysis.AnalyzedFile, node dcl.Node) string {
	switch e := f.Trace.Lookup(node.NodeID()).(type) {
	case analysis.Errors:
		var b strings.Builder

		for _, err := range e.Errors {
			fmt.Fprintf(&b, "- %s\n", err.Reason)
		}

		return b.String()
	case analysis.Resolution:
		if lv, ok := node.(*dcl.LocalValue); ok {
			return fmt.Sprintf("**local value** `%s: %s`", lv.Name, e.Origin.Type())
		}

		return describeOrigin(e.Origin)
	default:
		return ""
	}
}

func describeOrigin(o analysis.Origin) string {
	switch o := o.(type) {
	case *analysis.PropertyReference:
		return describeProperty(o.Property)
	case *analysis.FunctionInvocation:
		return describeFunction(o.Function, o.ValueType)
	case *analysis.NewObjectFromFunction:
		return describeFunction(o.Function, o.ValueType)
	case *analysis.LocalValueReference:
		return fmt.Sprintf("**local value** `%s: %s`", o.Name, o.Type())
	case *analysis.EnumConstant:
		return fmt.Sprintf("**enum constant** `%s.%s`", o.Enum, o.Name)
	case *analysis.ImplicitReceiver:
		return fmt.Sprintf("**receiver** `%s`", o.Type())
	case *analysis.Augmentation:
		return fmt.Sprintf("**augmentation** `%s += ...`\n\n%s", o.Property.Property.Name, describeFunction(o.Result.Function, o.Type()))
	default:
		return fmt.Sprintf("`%s`", o.Type())
	}
}

func describeProperty(p *schema.Property) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**property** `%s: %s`", p.Name, p.Type)

	if p.Access != schema.ReadWrite {
		fmt.Fprintf(&b, " (%s)", p.Access)
	}

	if p.Owner != "" {
		fmt.Fprintf(&b, "\n\nDeclared on `%s`", p.Owner)
	}

	return b.String()
}

// describeFunction renders the signature with the result type after type
// arguments were inferred.
func describeFunction(fn *schema.Function, result schema.TypeRef) string {
	var b strings.Builder

	b.WriteString("```\n")
	b.WriteString(fn.Signature())
	b.WriteString("\n```\n")

	fmt.Fprintf(&b, "\n%s, returns `%s`", fn.Semantics, result)

	if fn.Semantics.AcceptsBlock() {
		fmt.Fprintf(&b, ", configures `%s`", fn.ConfiguredType())
	}

	return b.String()
}
