package analysis

import (
	"slices"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// resolvedArg is a call argument after resolution. name is empty for
// positional arguments.
type resolvedArg struct {
	name  string
	value Origin
}

// candidateGroup is the set of functions visible on one receiver. Receiver is
// nil for top-level functions.
type candidateGroup struct {
	receiver Origin
	funcs    []*schema.Function
}

// boundCall is an applicable candidate with its argument bindings.
type boundCall struct {
	fn         *schema.Function
	receiver   Origin
	bindings   []Binding
	returns    schema.TypeRef
	configures schema.TypeRef
}

// call resolves a function call: receiver and arguments are resolved
// independently, then the applicable candidates of the innermost receiver that
// has any are narrowed to the most specific one.
func (r *run) call(c *dcl.FunctionCall, expected schema.TypeRef) (Origin, Failure) {
	var fs Failures

	var (
		groups  []candidateGroup
		violate bool
	)

	if c.Receiver != nil {
		recv, f := r.expr(c.Receiver, schema.TypeRef{})
		if f != nil {
			fs.Add(f)
		} else {
			groups, violate = r.memberCandidates(recv, c.Name)
		}
	} else {
		groups, violate = r.chainCandidates(c.Name)
	}

	hasLambda := c.Lambda != nil
	argTypes := r.expectedArgTypes(c, groups, expected)

	var argFs Failures

	args := make([]resolvedArg, len(c.Args))
	for i, a := range c.Args {
		o, f := r.expr(a.Value, argTypes[i])
		argFs.Add(f)

		args[i] = resolvedArg{name: a.Name, value: o}
	}

	if argFs.Failed() {
		fs.Add(argFs.Result())
		fs.Add(fail(c.ID, UnresolvedFunctionCallArguments{}))
	}

	if fs.Failed() {
		fs.Add(fail(c.ID, UnresolvedFunctionCallSignature{Name: c.Name}))

		return nil, fs.Result()
	}

	var applicable []*boundCall

	for _, g := range groups {
		for _, fn := range g.funcs {
			if bc, ok := r.applicable(c.ID, fn, g.receiver, args, hasLambda, expected); ok {
				applicable = append(applicable, bc)
			}
		}

		if len(applicable) > 0 {
			break
		}
	}

	if len(applicable) == 0 {
		if violate && !hasCandidates(groups) {
			return nil, fail(c.ID, AccessOnCurrentReceiverOnlyViolation{Name: c.Name})
		}

		return nil, fail(c.ID, UnresolvedFunctionCallSignature{Name: c.Name})
	}

	chosen := r.mostSpecific(applicable)
	if len(chosen) > 1 {
		fns := make([]*schema.Function, len(chosen))
		for i, bc := range chosen {
			fns[i] = bc.fn
		}

		return nil, fail(c.ID, AmbiguousFunctions{Candidates: fns})
	}

	bc := chosen[0]
	o := invocation(c.ID, bc.receiver, bc.fn, bc.bindings, bc.returns)

	if bc.fn.Semantics == schema.Adding {
		r.result.Additions = append(r.result.Additions, &Addition{Object: o, Receiver: bc.receiver, Node: c.ID})
	}

	if hasLambda {
		r.configure(c.Lambda, bc.configures)
	}

	return o, nil
}

// configure resolves a lambda body with the configured object as receiver.
func (r *run) configure(b *dcl.Block, receiver schema.TypeRef) {
	recv := &ImplicitReceiver{ID: b.ID, ValueType: receiver}

	r.trace.RecordSuccess(b.ID, recv)

	r.scope.push(recv)
	defer r.scope.pop()

	r.statements(b.Statements)
}

// memberCandidates lists the functions named name on an explicit receiver.
// Current-receiver-only functions are never visible through a receiver
// expression; violate reports whether any was dropped.
func (r *run) memberCandidates(recv Origin, name string) ([]candidateGroup, bool) {
	funcs, violate := visible(r.functionsNamed(recv.Type(), name), false)

	return []candidateGroup{{receiver: recv, funcs: funcs}}, violate
}

// chainCandidates lists the functions named name on every receiver of the
// chain, innermost first, followed by the top-level functions.
func (r *run) chainCandidates(name string) ([]candidateGroup, bool) {
	var (
		groups  []candidateGroup
		violate bool
	)

	for i, recv := range r.scope.receivers() {
		funcs, dropped := visible(r.functionsNamed(recv.Type(), name), i == 0)
		violate = violate || dropped

		groups = append(groups, candidateGroup{receiver: recv, funcs: funcs})
	}

	var top []*schema.Function

	for _, fn := range r.model.TopLevelFunctions() {
		if fn.Name == name {
			top = append(top, fn)
		}
	}

	return append(groups, candidateGroup{funcs: top}), violate
}

func visible(funcs []*schema.Function, innermost bool) ([]*schema.Function, bool) {
	if innermost {
		return funcs, false
	}

	out := make([]*schema.Function, 0, len(funcs))
	for _, fn := range funcs {
		if !fn.CurrentReceiverOnly {
			out = append(out, fn)
		}
	}

	return out, len(out) < len(funcs)
}

func hasCandidates(groups []candidateGroup) bool {
	for _, g := range groups {
		if len(g.funcs) > 0 {
			return true
		}
	}

	return false
}

func (r *run) functionsNamed(t schema.TypeRef, name string) []*schema.Function {
	var out []*schema.Function

	for _, fn := range r.model.FunctionsOf(t) {
		if fn.Name == name {
			out = append(out, fn)
		}
	}

	return out
}

// expectedArgTypes derives the expected type of every argument from the only
// candidate whose parameters fit the call's shape. Groups are searched in the
// same order as resolution and the first group with a fitting candidate
// decides. Without a single such candidate nothing is expected.
func (r *run) expectedArgTypes(c *dcl.FunctionCall, groups []candidateGroup, expected schema.TypeRef) []schema.TypeRef {
	out := make([]schema.TypeRef, len(c.Args))

	names := make([]string, len(c.Args))
	for i, a := range c.Args {
		names[i] = a.Name
	}

	var (
		match *schema.Function
		slots [][]int
		count int
	)

	for _, g := range groups {
		for _, fn := range g.funcs {
			s, ok := shape(fn, names)
			if !ok || !acceptsLambda(fn, c.Lambda != nil) {
				continue
			}

			match, slots = fn, s
			count++
		}

		if count > 0 {
			break
		}
	}

	if count != 1 {
		return out
	}

	subst := make(map[string]schema.TypeRef)
	unify(match.Returns, expected, subst)

	for pi, p := range match.Params {
		t := p.Type.Substitute(subst)
		if t.HasVars() {
			continue
		}

		for _, ai := range slots[pi] {
			out[ai] = t
		}
	}

	return out
}

// acceptsLambda reports whether fn can be called with or without a lambda.
// Pure functions never take one.
func acceptsLambda(fn *schema.Function, hasLambda bool) bool {
	if hasLambda && !fn.Semantics.AcceptsBlock() {
		return false
	}

	return fn.Block.Allows(hasLambda)
}

// shape assigns arguments to parameters: positional arguments in order, named
// arguments by name. Trailing positional arguments go to the vararg
// parameter. Parameters left without argument need a default value, except the
// vararg parameter which may be empty.
func shape(fn *schema.Function, names []string) ([][]int, bool) {
	slots := make([][]int, len(fn.Params))
	next := 0

	for ai, name := range names {
		if name != "" {
			pi := slices.IndexFunc(fn.Params, func(p *schema.Parameter) bool { return p.Name == name })
			if pi < 0 || (len(slots[pi]) > 0 && !fn.Params[pi].Vararg) {
				return nil, false
			}

			slots[pi] = append(slots[pi], ai)

			continue
		}

		for next < len(fn.Params) && !fn.Params[next].Vararg && len(slots[next]) > 0 {
			next++
		}

		if next >= len(fn.Params) {
			return nil, false
		}

		slots[next] = append(slots[next], ai)
		if !fn.Params[next].Vararg {
			next++
		}
	}

	for pi, p := range fn.Params {
		if len(slots[pi]) == 0 && !p.Vararg && !p.HasDefault {
			return nil, false
		}
	}

	return slots, true
}

// applicable checks fn against the resolved arguments and binds them. Type
// variables are inferred from the expected type first, then from the
// arguments.
func (r *run) applicable(
	node dcl.NodeID,
	fn *schema.Function,
	receiver Origin,
	args []resolvedArg,
	hasLambda bool,
	expected schema.TypeRef,
) (*boundCall, bool) {
	if !acceptsLambda(fn, hasLambda) {
		return nil, false
	}

	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.name
	}

	slots, ok := shape(fn, names)
	if !ok {
		return nil, false
	}

	subst := make(map[string]schema.TypeRef)
	if len(fn.TypeParams) > 0 {
		unify(fn.Returns, expected, subst)

		for pi, p := range fn.Params {
			for _, ai := range slots[pi] {
				unify(p.Type, args[ai].value.Type(), subst)
			}
		}
	}

	bindings := make([]Binding, 0, len(fn.Params))

	for pi, p := range fn.Params {
		want := bound(p.Type, subst)

		if p.Vararg {
			group := &GroupedVararg{ID: node, Element: want}

			for _, ai := range slots[pi] {
				if !r.model.IsSubtype(args[ai].value.Type(), want) {
					return nil, false
				}

				group.Elements = append(group.Elements, args[ai].value)
			}

			bindings = append(bindings, Binding{Param: p, Arg: group})

			continue
		}

		if len(slots[pi]) == 0 {
			continue
		}

		arg := args[slots[pi][0]].value
		if !r.model.IsSubtype(arg.Type(), want) {
			return nil, false
		}

		bindings = append(bindings, Binding{Param: p, Arg: arg})
	}

	return &boundCall{
		fn:         fn,
		receiver:   receiver,
		bindings:   bindings,
		returns:    bound(fn.Returns, subst),
		configures: bound(fn.ConfiguredType(), subst),
	}, true
}

// mostSpecific keeps the candidates no other candidate is more specific than.
func (r *run) mostSpecific(calls []*boundCall) []*boundCall {
	if len(calls) == 1 {
		return calls
	}

	var out []*boundCall

	for i, a := range calls {
		dominated := false

		for j, b := range calls {
			if i != j && r.moreSpecific(b.fn, a.fn) {
				dominated = true

				break
			}
		}

		if !dominated {
			out = append(out, a)
		}
	}

	return out
}

// moreSpecific reports whether every parameter of a is a subtype of the
// corresponding parameter of b and at least one is strictly narrower.
func (r *run) moreSpecific(a, b *schema.Function) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}

	strict := false

	for i := range a.Params {
		pa, pb := a.Params[i], b.Params[i]
		if pa.Vararg != pb.Vararg || !r.model.IsSubtype(pa.Type, pb.Type) {
			return false
		}

		if !r.model.IsSubtype(pb.Type, pa.Type) {
			strict = true
		}
	}

	return strict
}
