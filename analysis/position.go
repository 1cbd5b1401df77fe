package analysis

import (
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/rlch/dcl"
)

// NodeAtPosition finds the most specific node at a given position: the node
// containing pos whose start is closest to it. Nodes with an empty span are
// considered to extend to the end of their start line.
// Returns nil if no node contains the position.
//
//nolint:ireturn // Returning interface is intentional for AST node polymorphism.
func NodeAtPosition(f *AnalyzedFile, pos lexer.Position) dcl.Node {
	if f.Program == nil {
		return nil
	}

	var best dcl.Node

	dcl.InspectProgram(f.Program, func(n dcl.Node) bool {
		if _, isBlock := n.(*dcl.Block); isBlock {
			return true
		}

		span := n.NodeSpan()
		if !containsPosition(span, pos) {
			return true
		}

		if best == nil || !before(span.Start, best.NodeSpan().Start) {
			best = n
		}

		return true
	})

	return best
}

// OriginAtPosition returns the node at pos together with the origin it
// resolved to, or nil when it did not resolve.
//
//nolint:ireturn // Returning interface is intentional for AST node polymorphism.
func OriginAtPosition(f *AnalyzedFile, pos lexer.Position) (dcl.Node, Origin) {
	n := NodeAtPosition(f, pos)
	if n == nil {
		return nil, nil
	}

	return n, f.Trace.OriginOf(n.NodeID())
}

func containsPosition(span dcl.Span, pos lexer.Position) bool {
	if span.IsZero() {
		return false
	}

	// Check if pos is after start.
	if before(pos, span.Start) {
		return false
	}

	if span.End == span.Start {
		return pos.Line == span.Start.Line
	}

	// Check if pos is before end.
	if pos.Line > span.End.Line {
		return false
	}

	if pos.Line == span.End.Line && pos.Column > span.End.Column {
		return false
	}

	return true
}

func before(a, b lexer.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
}

// PositionToLexer converts LSP 0-based line/character to participle's 1-based line/column.
func PositionToLexer(line, character uint32) lexer.Position {
	return lexer.Position{
		Line:   int(line) + 1, // LSP is 0-based, participle is 1-based
		Column: int(character) + 1,
	}
}
