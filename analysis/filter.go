package analysis

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rlch/dcl"
)

// StatementFilter decides whether a call statement at the given block depth
// (0 at the top level) is resolved. Rejected statements are skipped together
// with their nested blocks.
type StatementFilter func(call *dcl.FunctionCall, depth int) bool

// IsCallNamed matches calls to any of the given function names.
func IsCallNamed(names ...string) StatementFilter {
	return func(call *dcl.FunctionCall, _ int) bool {
		for _, n := range names {
			if call.Name == n {
				return true
			}
		}

		return false
	}
}

// IsTopLevel matches call statements outside of any configuring block.
func IsTopLevel() StatementFilter {
	return func(_ *dcl.FunctionCall, depth int) bool {
		return depth == 0
	}
}

// Not inverts f.
func Not(f StatementFilter) StatementFilter {
	return func(call *dcl.FunctionCall, depth int) bool {
		return !f(call, depth)
	}
}

// All matches when every filter matches.
func All(fs ...StatementFilter) StatementFilter {
	return func(call *dcl.FunctionCall, depth int) bool {
		for _, f := range fs {
			if !f(call, depth) {
				return false
			}
		}

		return true
	}
}

// Any matches when at least one filter matches.
func Any(fs ...StatementFilter) StatementFilter {
	return func(call *dcl.FunctionCall, depth int) bool {
		for _, f := range fs {
			if f(call, depth) {
				return true
			}
		}

		return false
	}
}

// filterEnv is the environment filter expressions are evaluated against.
func filterEnv(call *dcl.FunctionCall, depth int) map[string]any {
	receiver := ""
	if call.Receiver != nil {
		receiver = dcl.Format(call.Receiver)
	}

	return map[string]any{
		"name":     call.Name,
		"receiver": receiver,
		"depth":    depth,
		"args":     len(call.Args),
		"hasBlock": call.Lambda != nil,
	}
}

// CompileFilter compiles a boolean expression over the call statement into a
// filter. The expression sees name, receiver (source form, empty when
// unqualified), depth, args (argument count) and hasBlock.
// e.g., `name == "plugins" && depth == 0`
func CompileFilter(src string) (StatementFilter, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv(&dcl.FunctionCall{}, 0)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}

	return func(call *dcl.FunctionCall, depth int) bool {
		return matches(program, call, depth)
	}, nil
}

func matches(program *vm.Program, call *dcl.FunctionCall, depth int) bool {
	out, err := expr.Run(program, filterEnv(call, depth))
	if err != nil {
		return false
	}

	ok, _ := out.(bool)

	return ok
}

// ExcludeMatching compiles exclusion expressions into a filter that resolves
// every call statement none of them matches. Blank expressions are ignored.
func ExcludeMatching(srcs ...string) (StatementFilter, error) {
	var excluded []StatementFilter

	for _, src := range srcs {
		if strings.TrimSpace(src) == "" {
			continue
		}

		f, err := CompileFilter(src)
		if err != nil {
			return nil, err
		}

		excluded = append(excluded, f)
	}

	return Not(Any(excluded...)), nil
}
