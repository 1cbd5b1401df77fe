// Package analysis resolves dcl statement trees against a schema and turns the
// outcome into diagnostics.
package analysis

import (
	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// AnalyzedFile holds analysis results for a single file.
type AnalyzedFile struct {
	// Path is the file path (URI in LSP terms).
	Path string

	// Program is the decoded statement tree. Nil if decoding failed.
	Program *dcl.Program

	// DecodeError holds the decode error if decoding failed.
	DecodeError error

	// Model is the schema the file was resolved against.
	Model schema.Model

	// Result is the resolution result. Nil if decoding failed.
	Result *Result

	// Trace holds the per-node outcomes of the resolution.
	Trace *Trace

	// Diagnostics contains all errors and warnings found during analysis.
	Diagnostics []Diagnostic

	// Symbols contains the local values declared in this file.
	Symbols *SymbolTable
}

// SymbolTable holds the local value declarations of a file.
type SymbolTable struct {
	// Locals lists the declarations in document order.
	Locals []*LocalSymbol
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

// LocalSymbol is a `val` declaration.
type LocalSymbol struct {
	Name string
	Span dcl.Span

	// Node is the declaration.
	Node *dcl.LocalValue

	// References are the nodes that resolved to this declaration.
	References []dcl.NodeID
}

// Diagnostic represents an error or warning found during analysis.
type Diagnostic struct {
	Span     dcl.Span
	Severity DiagnosticSeverity
	Message  string
	Code     string // e.g., "unresolved-reference", "unused-local-value"
	Source   string // "dcl"
}

// DiagnosticSeverity indicates the severity of a diagnostic.
type DiagnosticSeverity int

// Diagnostic severity constants.
const (
	SeverityError DiagnosticSeverity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s DiagnosticSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}
