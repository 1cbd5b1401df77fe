package lsp

import (
	"context"

	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

// Definition handles textDocument/definition requests. Local value references
// jump to their declaration.
func (s *Server) Definition(_ context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	s.logger.Debug("Definition",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, f, ok := s.resolvedDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	pos := analysis.PositionToLexer(params.Position.Line, params.Position.Character)

	sym := localSymbolAt(f, pos)
	if sym == nil {
		return nil, nil
	}

	return []protocol.Location{{
		URI:   doc.URI,
		Range: spanToRange(sym.Span),
	}}, nil
}

// localSymbolAt returns the local value declared or referenced at pos.
func localSymbolAt(f *analysis.AnalyzedFile, pos lexer.Position) *analysis.LocalSymbol {
	node, origin := analysis.OriginAtPosition(f, pos)
	if node == nil {
		return nil
	}

	decl := node.NodeID()
	if _, isDecl := node.(*dcl.LocalValue); !isDecl {
		ref, ok := origin.(*analysis.LocalValueReference)
		if !ok || ref.ID != node.NodeID() {
			return nil
		}

		decl = ref.Decl
	}

	for _, sym := range f.Symbols.Locals {
		if sym.Node.ID == decl {
			return sym
		}
	}

	return nil
}
