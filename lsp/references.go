package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

// References handles textDocument/references requests for local values.
func (s *Server) References(_ context.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	s.logger.Debug("References",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character),
		zap.Bool("includeDeclaration", params.Context.IncludeDeclaration))

	doc, f, ok := s.resolvedDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	pos := analysis.PositionToLexer(params.Position.Line, params.Position.Character)

	sym := localSymbolAt(f, pos)
	if sym == nil {
		return nil, nil
	}

	var locations []protocol.Location

	if params.Context.IncludeDeclaration {
		locations = append(locations, protocol.Location{URI: doc.URI, Range: spanToRange(sym.Span)})
	}

	for _, span := range referenceSpans(f, sym) {
		locations = append(locations, protocol.Location{URI: doc.URI, Range: spanToRange(span)})
	}

	return locations, nil
}

func referenceSpans(f *analysis.AnalyzedFile, sym *analysis.LocalSymbol) []dcl.Span {
	idx := dcl.Index(f.Program)
	spans := make([]dcl.Span, 0, len(sym.References))

	for _, id := range sym.References {
		if n := idx[id]; n != nil {
			spans = append(spans, n.NodeSpan())
		}
	}

	return spans
}
