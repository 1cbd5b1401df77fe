package lsp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func position(uri protocol.DocumentURI, line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: char},
	}
}

func TestServer_Hover(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	tests := []struct {
		name string
		line uint32
		char uint32
		want string
	}{
		{"property", 1, 20, "**property** `name: String`"},
		{"local value declaration", 0, 5, "**local value** `base: String`"},
		{"local value reference", 1, 36, "**local value** `base: String`"},
		{"function", 2, 4, "module(id: String): Module"},
		{"enum constant", 7, 42, "**enum constant** `Level.HIGH`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hover, err := server.Hover(context.Background(), &protocol.HoverParams{
				TextDocumentPositionParams: position(uri, tt.line, tt.char),
			})
			require.NoError(t, err)
			require.NotNil(t, hover)
			assert.Equal(t, protocol.Markdown, hover.Contents.Kind)
			assert.Contains(t, hover.Contents.Value, tt.want)
		})
	}
}

func TestServer_Hover_Nothing(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	hover, err := server.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: position(uri, 40, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, hover)
}

func TestServer_Definition(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	locs, err := server.Definition(context.Background(), &protocol.DefinitionParams{
		TextDocumentPositionParams: position(uri, 1, 36),
	})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, uri, locs[0].URI)
	assert.Equal(t, protocol.Position{Line: 0, Character: 2}, locs[0].Range.Start)

	// A property reference has no local declaration.
	locs, err = server.Definition(context.Background(), &protocol.DefinitionParams{
		TextDocumentPositionParams: position(uri, 1, 20),
	})
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestServer_References(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	tests := []struct {
		name        string
		includeDecl bool
		want        []protocol.Position
	}{
		{"with declaration", true, []protocol.Position{{Line: 0, Character: 2}, {Line: 1, Character: 34}, {Line: 6, Character: 40}}},
		{"without declaration", false, []protocol.Position{{Line: 1, Character: 34}, {Line: 6, Character: 40}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			locs, err := server.References(context.Background(), &protocol.ReferenceParams{
				TextDocumentPositionParams: position(uri, 0, 5),
				Context:                    protocol.ReferenceContext{IncludeDeclaration: tt.includeDecl},
			})
			require.NoError(t, err)

			got := make([]protocol.Position, len(locs))
			for i, l := range locs {
				got[i] = l.Range.Start
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_DocumentHighlight(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	highlights, err := server.DocumentHighlight(context.Background(), &protocol.DocumentHighlightParams{
		TextDocumentPositionParams: position(uri, 6, 42),
	})
	require.NoError(t, err)
	require.Len(t, highlights, 3)

	assert.Equal(t, protocol.DocumentHighlightKindWrite, highlights[0].Kind)
	assert.Equal(t, protocol.DocumentHighlightKindRead, highlights[1].Kind)
	assert.Equal(t, protocol.DocumentHighlightKindRead, highlights[2].Kind)
}

func TestServer_DocumentSymbol(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	result, err := server.DocumentSymbol(context.Background(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	symbols := make([]protocol.DocumentSymbol, 0, len(result))
	for _, r := range result {
		sym, ok := r.(protocol.DocumentSymbol)
		require.True(t, ok)

		symbols = append(symbols, sym)
	}

	require.Len(t, symbols, 4)

	assert.Equal(t, "base", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindVariable, symbols[0].Kind)
	assert.Equal(t, "String", symbols[0].Detail)

	assert.Equal(t, "name", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindProperty, symbols[1].Kind)

	module := symbols[2]
	assert.Equal(t, "module", module.Name)
	assert.Equal(t, protocol.SymbolKindObject, module.Kind)
	assert.Equal(t, "Module", module.Detail)
	require.Len(t, module.Children, 2)
	assert.Equal(t, "path", module.Children[0].Name)
	assert.Equal(t, "level", module.Children[1].Name)

	// Excluded by the workspace filter, so it never resolved.
	assert.Equal(t, "ignored", symbols[3].Name)
	assert.Equal(t, protocol.SymbolKindMethod, symbols[3].Kind)
	assert.Empty(t, symbols[3].Detail)
}

func TestServer_FoldingRanges(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	ranges, err := server.FoldingRanges(context.Background(), &protocol.FoldingRangeParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		},
	})
	require.NoError(t, err)
	require.Len(t, ranges, 1)

	assert.Equal(t, uint32(2), ranges[0].StartLine)
	assert.Equal(t, uint32(7), ranges[0].EndLine)
	assert.Equal(t, protocol.RegionFoldingRange, ranges[0].Kind)
}

func TestServer_Completion(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	tests := []struct {
		name string
		line uint32
		char uint32
		want []string
	}{
		{"property in block", 6, 30, []string{"path"}},
		{"function name", 3, 13, []string{"module"}},
		{"local value", 1, 42, []string{"base"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list, err := server.Completion(context.Background(), &protocol.CompletionParams{
				TextDocumentPositionParams: position(uri, tt.line, tt.char),
			})
			require.NoError(t, err)
			require.NotNil(t, list)

			labels := make([]string, 0, len(list.Items))
			for _, item := range list.Items {
				labels = append(labels, item.Label)
			}

			assert.Equal(t, tt.want, labels)
		})
	}
}

func TestServer_Completion_UsesLastValidAnalysis(t *testing.T) {
	t.Parallel()

	server, _, uri := openProject(t)

	content, err := os.ReadFile(filepath.Join("testdata", "workspace", "project.yaml"))
	require.NoError(t, err)

	// An unfinished statement at the end breaks decoding.
	err = server.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: string(content) + "- {ref: \n"},
		},
	})
	require.NoError(t, err)

	list, err := server.Completion(context.Background(), &protocol.CompletionParams{
		TextDocumentPositionParams: position(uri, 6, 30),
	})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "path", list.Items[0].Label)
	assert.Equal(t, "String", list.Items[0].Detail)
}

func TestServer_Completion_UnknownDocument(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	list, err := server.Completion(context.Background(), &protocol.CompletionParams{
		TextDocumentPositionParams: position("file:///nowhere.yaml", 0, 0),
	})
	require.NoError(t, err)
	assert.Nil(t, list)
}
