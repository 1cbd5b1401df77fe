package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
)

// FoldingRanges handles textDocument/foldingRange requests.
// Every call whose block spans more than one line can be folded.
func (s *Server) FoldingRanges(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.logger.Debug("FoldingRanges",
		zap.String("uri", string(params.TextDocument.URI)))

	_, f, ok := s.resolvedDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	var ranges []protocol.FoldingRange

	dcl.InspectProgram(f.Program, func(n dcl.Node) bool {
		call, ok := n.(*dcl.FunctionCall)
		if !ok || call.Lambda == nil || len(call.Lambda.Statements) == 0 {
			return true
		}

		r := spanToRange(extent(call))
		if r.End.Line > r.Start.Line {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: r.Start.Line,
				EndLine:   r.End.Line,
				Kind:      protocol.RegionFoldingRange,
			})
		}

		return true
	})

	return ranges, nil
}
