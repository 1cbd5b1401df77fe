package lsp

import (
	"net/url"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"

	"github.com/rlch/dcl"
)

// spanToRange converts a dcl.Span to an LSP protocol.Range.
// dcl uses 1-based line/column, LSP uses 0-based.
func spanToRange(span dcl.Span) protocol.Range {
	return protocol.Range{
		Start: positionToLSP(span.Start),
		End:   positionToLSP(span.End),
	}
}

func positionToLSP(pos lexer.Position) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(0, pos.Line-1)),   //nolint:gosec // G115: values are small line numbers
		Character: uint32(max(0, pos.Column-1)), //nolint:gosec // G115: values are small column numbers
	}
}

func rangePtr(r protocol.Range) *protocol.Range {
	return &r
}

// extent returns the span of n widened to the start of its last descendant.
// Decoded nodes carry point spans, so this is how far a node reaches.
func extent(n dcl.Node) dcl.Span {
	span := n.NodeSpan()

	dcl.Inspect(n, func(c dcl.Node) bool {
		if start := c.NodeSpan().Start; after(start, span.End) {
			span.End = start
		}

		return true
	})

	return span
}

func after(a, b lexer.Position) bool {
	return a.Line > b.Line || (a.Line == b.Line && a.Column > b.Column)
}

// URIToPath converts a document URI to a file system path.
func URIToPath(uri protocol.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil {
		return strings.TrimPrefix(string(uri), "file://")
	}

	if u.Scheme == "file" {
		return u.Path
	}

	return string(uri)
}

// PathToURI converts a file system path to a document URI.
func PathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI("file://" + path)
}
