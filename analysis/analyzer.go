package analysis

import (
	"regexp"
	"strconv"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// Analyzer decodes, resolves and checks dcl files against one schema.
type Analyzer struct {
	model schema.Model

	// rules is the set of checks to run.
	rules []*Rule

	// opts are passed to every resolution.
	opts []Option
}

// NewAnalyzer creates a new analyzer with default rules.
func NewAnalyzer(model schema.Model, opts ...Option) *Analyzer {
	return &Analyzer{
		model: model,
		rules: DefaultRules(),
		opts:  opts,
	}
}

// NewAnalyzerWithRules creates an analyzer with custom rules.
func NewAnalyzerWithRules(model schema.Model, rules []*Rule, opts ...Option) *Analyzer {
	return &Analyzer{
		model: model,
		rules: rules,
		opts:  opts,
	}
}

// Model returns the schema the analyzer resolves against.
//
//nolint:ireturn // Model is consumed through its interface.
func (a *Analyzer) Model() schema.Model {
	return a.model
}

// Analyze decodes and analyzes the YAML statement tree of a file.
func (a *Analyzer) Analyze(path string, content []byte) *AnalyzedFile {
	f := &AnalyzedFile{
		Path:        path,
		Diagnostics: []Diagnostic{},
		Symbols:     NewSymbolTable(),
	}

	prog, err := dcl.DecodeProgram(path, content)
	if err != nil {
		f.DecodeError = err
		f.Diagnostics = append(f.Diagnostics, decodeErrorToDiagnostic(path, err))

		return f
	}

	a.AnalyzeProgram(f, prog)

	return f
}

// AnalyzeProgram resolves an already decoded program into f and runs the rules.
func (a *Analyzer) AnalyzeProgram(f *AnalyzedFile, prog *dcl.Program) {
	f.Program = prog
	f.Model = a.model
	f.Trace = NewTrace()

	opts := append([]Option{WithTrace(f.Trace)}, a.opts...)
	f.Result = Resolve(a.model, prog, opts...)

	buildSymbols(f)

	for _, rule := range a.rules {
		rule.Run(f)
	}
}

// lineRegex extracts the line of a YAML or decode error message.
var lineRegex = regexp.MustCompile(`line (\d+)|:(\d+):(\d+):`)

// decodeErrorToDiagnostic converts a decode error to a diagnostic, locating it
// from the error message when possible.
func decodeErrorToDiagnostic(path string, err error) Diagnostic {
	span := dcl.Span{}

	if m := lineRegex.FindStringSubmatch(err.Error()); m != nil {
		line, col := m[1], "1"
		if line == "" {
			line, col = m[2], m[3]
		}

		l, _ := strconv.Atoi(line)
		c, _ := strconv.Atoi(col)
		span = dcl.SpanAt(path, l, c)
	}

	return Diagnostic{
		Span:     span,
		Severity: SeverityError,
		Message:  err.Error(),
		Code:     "decode-error",
		Source:   DiagnosticSource,
	}
}

// buildSymbols collects the local value declarations and the nodes that
// resolved to them.
func buildSymbols(f *AnalyzedFile) {
	if f.Program == nil {
		return
	}

	byDecl := make(map[dcl.NodeID]*LocalSymbol)

	dcl.InspectProgram(f.Program, func(n dcl.Node) bool {
		if lv, ok := n.(*dcl.LocalValue); ok && lv.Name != "" {
			sym := &LocalSymbol{Name: lv.Name, Span: lv.Span, Node: lv}
			f.Symbols.Locals = append(f.Symbols.Locals, sym)
			byDecl[lv.ID] = sym
		}

		return true
	})

	dcl.InspectProgram(f.Program, func(n dcl.Node) bool {
		if ref, ok := f.Trace.OriginOf(n.NodeID()).(*LocalValueReference); ok && ref.ID == n.NodeID() {
			if sym := byDecl[ref.Decl]; sym != nil {
				sym.References = append(sym.References, ref.ID)
			}
		}

		return true
	})
}
