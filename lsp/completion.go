package lsp

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/analysis"
	"github.com/rlch/dcl/schema"
)

// Completion handles textDocument/completion requests.
func (s *Server) Completion(_ context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	s.logger.Debug("Completion",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character))

	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil
	}

	// Use last valid analysis for lookups if the current content does not decode.
	// This allows completion to work while the user is typing.
	f := doc.Analysis
	if f == nil || f.Program == nil {
		s.logger.Debug("Using last valid analysis for completion (current has decode error)")
		f = doc.LastValidAnalysis
	}

	if f == nil || f.Program == nil || f.Model == nil {
		return &protocol.CompletionList{}, nil
	}

	cc := getCompletionContext(doc.Content, params.Position)
	s.logger.Debug("Completion context", zap.String("kind", string(cc.Kind)))

	var items []protocol.CompletionItem

	sc := scopeAt(f, analysis.PositionToLexer(params.Position.Line, params.Position.Character))

	switch cc.Kind {
	case CompletionKindNone:
		// No completions available at this position
	case CompletionKindLocal:
		items = completeLocals(f, sc)
	case CompletionKindProperty:
		items = append(completeLocals(f, sc), completeProperties(f.Model, sc)...)
	case CompletionKindFunction:
		items = completeFunctions(f.Model, sc)
	case CompletionKindMember:
		items = append(completeLocals(f, sc), completeProperties(f.Model, sc)...)
		items = append(items, completeFunctions(f.Model, sc)...)
	}

	// Filter by prefix if present
	if cc.Prefix != "" {
		items = filterByPrefix(items, cc.Prefix)
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

// CompletionKind indicates what kind of completion is expected at a position.
type CompletionKind string

const (
	// CompletionKindNone indicates no completion, e.g. a declaration name.
	CompletionKindNone CompletionKind = "none"
	// CompletionKindLocal indicates an explicit local value reference.
	CompletionKindLocal CompletionKind = "local"
	// CompletionKindProperty indicates a bare name or property access.
	CompletionKindProperty CompletionKind = "property"
	// CompletionKindFunction indicates the name of a call.
	CompletionKindFunction CompletionKind = "function"
	// CompletionKindMember indicates any name visible at the position.
	CompletionKindMember CompletionKind = "member"
)

// CompletionContext holds information about where completion was triggered.
type CompletionContext struct {
	Kind     CompletionKind
	Prefix   string // Text before cursor (for filtering)
	LineText string // Full text of the current line
}

var (
	// fieldBeforeCursor matches the tree field whose value is being typed.
	fieldBeforeCursor = regexp.MustCompile(`(\w+):\s*\w*$`)
	// declNameBeforeCursor matches the name of a local value declaration.
	declNameBeforeCursor = regexp.MustCompile(`val:\s*\{?\s*name:\s*\w*$`)
)

// getCompletionContext classifies the position from the text before the cursor.
func getCompletionContext(content string, pos protocol.Position) *CompletionContext {
	cc := &CompletionContext{Kind: CompletionKindNone}

	lines := strings.Split(content, "\n")
	if int(pos.Line) >= len(lines) {
		return cc
	}

	cc.LineText = lines[pos.Line]

	col := min(int(pos.Character), len(cc.LineText))
	before := cc.LineText[:col]
	cc.Prefix = extractPrefix(before)

	if declNameBeforeCursor.MatchString(before) {
		return cc
	}

	m := fieldBeforeCursor.FindStringSubmatch(before)
	if m == nil {
		cc.Kind = CompletionKindMember

		return cc
	}

	switch m[1] {
	case "local":
		cc.Kind = CompletionKindLocal
	case "ref":
		cc.Kind = CompletionKindProperty
	case "name":
		// A property access names its property, a call names its function.
		if strings.Contains(before, "prop:") {
			cc.Kind = CompletionKindProperty
		} else {
			cc.Kind = CompletionKindFunction
		}
	default:
		cc.Kind = CompletionKindMember
	}

	return cc
}

// completionScope is what is visible at a position: the receivers innermost
// first and the local values declared before it.
type completionScope struct {
	receivers []analysis.Origin
	locals    []*dcl.LocalValue
}

func scopeAt(f *analysis.AnalyzedFile, pos lexer.Position) *completionScope {
	sc := &completionScope{}
	collectScope(f, f.Program.Statements, pos, sc)

	// collectScope appends outermost first.
	for i, j := 0, len(sc.receivers)-1; i < j; i, j = i+1, j-1 {
		sc.receivers[i], sc.receivers[j] = sc.receivers[j], sc.receivers[i]
	}

	for i, j := 0, len(sc.locals)-1; i < j; i, j = i+1, j-1 {
		sc.locals[i], sc.locals[j] = sc.locals[j], sc.locals[i]
	}

	sc.receivers = append(sc.receivers, &analysis.ImplicitReceiver{ValueType: f.Model.Root()})

	return sc
}

func collectScope(f *analysis.AnalyzedFile, stmts []dcl.Stmt, pos lexer.Position, sc *completionScope) {
	for _, stmt := range stmts {
		if lv, ok := stmt.(*dcl.LocalValue); ok && lv.Name != "" && before(lv.Span.Start, pos) {
			sc.locals = append(sc.locals, lv)
		}

		var inner *dcl.Block

		dcl.Inspect(stmt, func(n dcl.Node) bool {
			if b, ok := n.(*dcl.Block); ok {
				if inner == nil && blockContains(b, pos) {
					inner = b
				}

				return false
			}

			return true
		})

		if inner == nil {
			continue
		}

		if recv, ok := f.Trace.OriginOf(inner.ID).(*analysis.ImplicitReceiver); ok {
			sc.receivers = append(sc.receivers, recv)
		}

		collectScope(f, inner.Statements, pos, sc)

		return
	}
}

// blockContains reports whether pos falls inside b. The line after the last
// statement counts as inside when it is indented at least as deep as the block,
// so that a statement being added at the end of a block completes in it.
func blockContains(b *dcl.Block, pos lexer.Position) bool {
	span := extent(b)
	if before(pos, span.Start) {
		return false
	}

	if pos.Line <= span.End.Line {
		return true
	}

	return pos.Line == span.End.Line+1 && pos.Column >= span.Start.Column
}

func before(a, b lexer.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Column < b.Column)
}

func completeLocals(f *analysis.AnalyzedFile, sc *completionScope) []protocol.CompletionItem {
	seen := make(map[string]bool)

	var items []protocol.CompletionItem

	for _, lv := range sc.locals {
		if seen[lv.Name] {
			continue
		}

		seen[lv.Name] = true

		item := protocol.CompletionItem{
			Label: lv.Name,
			Kind:  protocol.CompletionItemKindVariable,
		}

		if o := f.Trace.OriginOf(lv.ID); o != nil {
			item.Detail = o.Type().String()
		}

		items = append(items, item)
	}

	return items
}

func completeProperties(model schema.Model, sc *completionScope) []protocol.CompletionItem {
	seen := make(map[string]bool)

	var items []protocol.CompletionItem

	for i, recv := range sc.receivers {
		for _, p := range model.PropertiesOf(recv.Type()) {
			if seen[p.Name] || p.HiddenInDSL || (p.CurrentReceiverOnly && i > 0) {
				continue
			}

			seen[p.Name] = true

			items = append(items, protocol.CompletionItem{
				Label:         p.Name,
				Kind:          protocol.CompletionItemKindProperty,
				Detail:        p.Type.String(),
				Documentation: describeProperty(p),
			})
		}
	}

	return items
}

func completeFunctions(model schema.Model, sc *completionScope) []protocol.CompletionItem {
	seen := make(map[string]bool)

	var items []protocol.CompletionItem

	add := func(fn *schema.Function, kind protocol.CompletionItemKind) {
		sig := fn.Signature()
		if seen[sig] {
			return
		}

		seen[sig] = true

		items = append(items, protocol.CompletionItem{
			Label:  fn.Name,
			Kind:   kind,
			Detail: sig,
		})
	}

	for i, recv := range sc.receivers {
		for _, fn := range model.FunctionsOf(recv.Type()) {
			if fn.CurrentReceiverOnly && i > 0 {
				continue
			}

			add(fn, protocol.CompletionItemKindMethod)
		}
	}

	for _, fn := range model.TopLevelFunctions() {
		add(fn, protocol.CompletionItemKindFunction)
	}

	return items
}

func filterByPrefix(items []protocol.CompletionItem, prefix string) []protocol.CompletionItem {
	if prefix == "" {
		return items
	}

	prefix = strings.ToLower(prefix)
	filtered := make([]protocol.CompletionItem, 0, len(items))

	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item.Label), prefix) {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

// extractPrefix extracts the identifier prefix being typed.
func extractPrefix(text string) string {
	end := len(text)
	start := end

	for i := end - 1; i >= 0; i-- {
		c := rune(text[i])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			start = i
		} else {
			break
		}
	}

	return text[start:end]
}
