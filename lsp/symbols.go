package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

// DocumentSymbol handles textDocument/documentSymbol requests.
// Returns a hierarchical tree of symbols for the outline view.
func (s *Server) DocumentSymbol(_ context.Context, params *protocol.DocumentSymbolParams) ([]any, error) {
	s.logger.Debug("DocumentSymbol",
		zap.String("uri", string(params.TextDocument.URI)))

	_, f, ok := s.resolvedDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	symbols := buildSymbols(f, f.Program.Statements)

	// Convert to []any for the protocol
	result := make([]any, len(symbols))
	for i, sym := range symbols {
		result[i] = sym
	}

	return result, nil
}

// buildSymbols creates a symbol per statement; call statements nest the
// symbols of their block.
func buildSymbols(f *analysis.AnalyzedFile, stmts []dcl.Stmt) []protocol.DocumentSymbol {
	symbols := make([]protocol.DocumentSymbol, 0, len(stmts))

	for _, stmt := range stmts {
		sym := protocol.DocumentSymbol{
			Range:          spanToRange(extent(stmt)),
			SelectionRange: spanToRange(stmt.NodeSpan()),
		}

		if o := f.Trace.OriginOf(stmt.NodeID()); o != nil {
			sym.Detail = o.Type().String()
		}

		switch n := stmt.(type) {
		case *dcl.LocalValue:
			sym.Name = n.Name
			sym.Kind = protocol.SymbolKindVariable
		case *dcl.Assignment:
			sym.Name = dcl.Format(n.LHS)
			sym.Kind = protocol.SymbolKindProperty
		case *dcl.AugmentingAssignment:
			sym.Name = dcl.Format(n.LHS) + " " + n.Op.Token()
			sym.Kind = protocol.SymbolKindProperty
		case *dcl.ExprStatement:
			call, ok := n.Expr.(*dcl.FunctionCall)
			if !ok {
				continue
			}

			sym.Name = call.Name
			sym.Kind = protocol.SymbolKindMethod

			if call.Lambda != nil {
				sym.Kind = protocol.SymbolKindObject
				sym.Children = buildSymbols(f, call.Lambda.Statements)
			}
		}

		if sym.Name == "" {
			continue
		}

		symbols = append(symbols, sym)
	}

	return symbols
}
