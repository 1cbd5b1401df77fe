// Package lsp implements a Language Server Protocol server reporting dcl
// resolution results to editors.
package lsp

import (
	"context"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
)

// Server implements the LSP Server interface for dcl statement trees.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// analyzer is used for every document when set. Otherwise each document is
	// analyzed against the schema of its nearest .dcl.yaml.
	analyzer *analysis.Analyzer
	loader   *WorkspaceLoader

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document represents an open document in the server.
type Document struct {
	URI      protocol.DocumentURI
	Version  int32
	Content  string
	Analysis *analysis.AnalyzedFile

	// LastValidAnalysis holds the most recent analysis that decoded successfully.
	// Used for completion when the current document does not decode.
	LastValidAnalysis *analysis.AnalyzedFile
}

// NewServer creates a new LSP server. When analyzer is nil, schemas are
// discovered through .dcl.yaml files.
func NewServer(client protocol.Client, logger *zap.Logger, analyzer *analysis.Analyzer) *Server {
	return &Server{
		client:    client,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]*Document),
		analyzer:  analyzer,
		loader:    NewWorkspaceLoader(logger),
	}
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.String("rootURI", string(params.RootURI)))

	if params.RootURI != "" {
		s.workspaceRoot = URIToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.workspaceRoot = params.RootPath
	}

	if s.workspaceRoot != "" {
		s.loader.SetWorkspaceRoot(s.workspaceRoot)
		s.logger.Info("Workspace root", zap.String("root", s.workspaceRoot))
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider:      true,
			DefinitionProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{"."},
				ResolveProvider:   false,
			},
			// Document symbol support for outline view
			DocumentSymbolProvider:    true,
			DocumentHighlightProvider: true,
			ReferencesProvider:        true,
			FoldingRangeProvider:      true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "dcl-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	// The main loop should handle exiting after this
	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}

	s.analyze(doc)
	s.documents[params.TextDocument.URI] = doc

	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Info("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - take the last content change (should only be one with full sync)
	if len(params.ContentChanges) > 0 {
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		doc.Version = params.TextDocument.Version

		s.analyze(doc)
		s.publishDiagnostics(ctx, doc)
	}

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, params.TextDocument.URI)

	// Clear diagnostics for closed document
	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Info("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	return nil
}

// DidChangeWatchedFiles handles workspace/didChangeWatchedFiles. A changed
// config or schema file may affect every open document, so all of them are
// analyzed again.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	s.logger.Info("DidChangeWatchedFiles", zap.Int("changes", len(params.Changes)))

	s.loader.InvalidateAll()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.documents {
		s.analyze(doc)
		s.publishDiagnostics(ctx, doc)
	}

	return nil
}

// analyze replaces the analysis of doc. Callers hold the write lock.
func (s *Server) analyze(doc *Document) {
	path := URIToPath(doc.URI)

	analyzer := s.analyzer
	if analyzer == nil {
		var err error

		analyzer, err = s.loader.AnalyzerFor(path)
		if err != nil {
			s.logger.Warn("No schema for document", zap.String("path", path), zap.Error(err))

			doc.Analysis = schemaErrorAnalysis(path, err)

			return
		}
	}

	doc.Analysis = analyzer.Analyze(path, []byte(doc.Content))

	// If decoding succeeded, save as last valid analysis for completion fallback
	if doc.Analysis.DecodeError == nil {
		doc.LastValidAnalysis = doc.Analysis
	}
}

func schemaErrorAnalysis(path string, err error) *analysis.AnalyzedFile {
	return &analysis.AnalyzedFile{
		Path: path,
		Diagnostics: []analysis.Diagnostic{{
			Span:     dcl.SpanAt(path, 1, 1),
			Severity: analysis.SeverityError,
			Message:  "cannot load schema: " + err.Error(),
			Code:     "schema-error",
			Source:   analysis.DiagnosticSource,
		}},
		Symbols: analysis.NewSymbolTable(),
	}
}

// getDocument returns a document by URI (read-locked).
func (s *Server) getDocument(uri protocol.DocumentURI) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]

	return doc, ok
}

// resolvedDocument returns the document's analysis when it has a program.
func (s *Server) resolvedDocument(uri protocol.DocumentURI) (*Document, *analysis.AnalyzedFile, bool) {
	doc, ok := s.getDocument(uri)
	if !ok || doc.Analysis == nil || doc.Analysis.Program == nil {
		return nil, nil, false
	}

	return doc, doc.Analysis, true
}
