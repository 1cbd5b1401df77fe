package dcl

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Span represents a range in source code. Lines and columns are 1-based.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s.Start.Line == 0 && s.End.Line == 0
}

// String renders the span as file:line:col.
func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}

	if s.Start.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Start.Filename, s.Start.Line, s.Start.Column)
	}

	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// SpanAt returns an empty span at the given line and column.
func SpanAt(filename string, line, column int) Span {
	pos := lexer.Position{Filename: filename, Line: line, Column: column}

	return Span{Start: pos, End: pos}
}
