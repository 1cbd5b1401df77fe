package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl/analysis"
)

// DocumentHighlight handles textDocument/documentHighlight requests.
// The declaration of a local value is a write, its references are reads.
func (s *Server) DocumentHighlight(_ context.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	s.logger.Debug("DocumentHighlight",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	_, f, ok := s.resolvedDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	pos := analysis.PositionToLexer(params.Position.Line, params.Position.Character)

	sym := localSymbolAt(f, pos)
	if sym == nil {
		return nil, nil
	}

	highlights := []protocol.DocumentHighlight{{
		Range: spanToRange(sym.Span),
		Kind:  protocol.DocumentHighlightKindWrite,
	}}

	for _, span := range referenceSpans(f, sym) {
		highlights = append(highlights, protocol.DocumentHighlight{
			Range: spanToRange(span),
			Kind:  protocol.DocumentHighlightKindRead,
		})
	}

	return highlights, nil
}
