package analysis

import (
	"go.uber.org/zap"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// augmentationCallName is the synthetic member function looked up when no
// augmentation applies, so the report also carries a call signature error.
const augmentationCallName = "+="

func (r *run) statements(stmts []dcl.Stmt) {
	for _, s := range stmts {
		r.statement(s)
	}
}

func (r *run) statement(s dcl.Stmt) {
	var (
		o Origin
		f Failure
	)

	switch s := s.(type) {
	case *dcl.Assignment:
		o, f = r.assignment(s)
	case *dcl.AugmentingAssignment:
		o, f = r.augmentingAssignment(s)
	case *dcl.LocalValue:
		o, f = r.localValue(s)
	case *dcl.ExprStatement:
		if s.Expr == nil {
			return
		}

		if call, ok := s.Expr.(*dcl.FunctionCall); ok && r.filter != nil && !r.filter(call, r.scope.depth()) {
			r.logger.Debug("statement excluded by filter",
				zap.String("call", call.Name),
				zap.Int("depth", r.scope.depth()))

			return
		}

		o, f = r.expr(s.Expr, schema.TypeRef{})
	}

	if f != nil {
		r.result.Errors = append(r.result.Errors, Flatten(f)...)
	}

	r.record(s.NodeID(), o, f)
}

// assignment resolves `lhs = rhs`. Both sides are resolved independently so
// that failures on either side are reported together.
func (r *run) assignment(s *dcl.Assignment) (Origin, Failure) {
	var fs Failures

	lhs, lf := r.assignmentTarget(s.ID, s.LHS)
	fs.Add(lf)

	var expected schema.TypeRef
	if lhs != nil {
		expected = lhs.Property.Type
	}

	rhs, rf := r.assignedValue(s.ID, s.RHS, expected)
	fs.Add(rf)

	if f := fs.Result(); f != nil {
		return nil, f
	}

	if !r.model.IsSubtype(rhs.Type(), lhs.Property.Type) {
		return nil, fail(s.ID, AssignmentTypeMismatch{Expected: lhs.Property.Type, Actual: rhs.Type()})
	}

	r.result.Assignments = append(r.result.Assignments, &Assignment{Property: lhs, Value: rhs, Node: s.ID})

	return rhs, nil
}

// augmentingAssignment resolves `lhs += rhs` through the augmentation operators
// registered for the property type.
func (r *run) augmentingAssignment(s *dcl.AugmentingAssignment) (Origin, Failure) {
	var fs Failures

	lhs, lf := r.assignmentTarget(s.ID, s.LHS)
	fs.Add(lf)

	var (
		augs     []*schema.Augmentation
		expected schema.TypeRef
	)

	if lhs != nil {
		augs = r.augmentationsOf(lhs.Property.Type)
		if len(augs) == 1 {
			expected = operandType(augs[0].Function, lhs.Property.Type)
		}
	}

	rhs, rf := r.assignedValue(s.ID, s.RHS, expected)
	fs.Add(rf)

	if f := fs.Result(); f != nil {
		return nil, f
	}

	for _, a := range augs {
		result, ok := r.applyAugmentation(s.ID, a.Function, lhs, rhs)
		if !ok {
			continue
		}

		if !r.model.IsSubtype(result.ValueType, lhs.Property.Type) {
			return nil, fail(s.ID, AssignmentTypeMismatch{Expected: lhs.Property.Type, Actual: result.ValueType})
		}

		o := &Augmentation{ID: s.ID, Property: lhs, Operand: rhs, Result: result}
		r.result.Assignments = append(r.result.Assignments, &Assignment{Property: lhs, Value: o, Node: s.ID})

		return o, nil
	}

	fs.Add(fail(s.ID, AugmentingAssignmentNotResolved{Property: lhs.Property}))

	// The synthetic operator call only contributes diagnostics.
	args := []resolvedArg{{value: rhs}}
	applies := false

	for _, fn := range r.functionsNamed(lhs.Property.Type, augmentationCallName) {
		if _, ok := r.applicable(s.ID, fn, lhs, args, false, schema.TypeRef{}); ok {
			applies = true

			break
		}
	}

	if !applies {
		fs.Add(fail(s.ID, UnresolvedFunctionCallSignature{Name: augmentationCallName}))
	}

	return nil, fs.Result()
}

// operandType is the expected type of the operand of an augmentation of t.
func operandType(fn *schema.Function, t schema.TypeRef) schema.TypeRef {
	subst := make(map[string]schema.TypeRef)
	unify(fn.Params[0].Type, t, subst)

	operand := fn.Params[1].Type.Substitute(subst)
	if operand.HasVars() {
		return schema.TypeRef{}
	}

	return operand
}

func (r *run) applyAugmentation(node dcl.NodeID, fn *schema.Function, lhs *PropertyReference, rhs Origin) (*FunctionInvocation, bool) {
	subst := make(map[string]schema.TypeRef)
	unify(fn.Params[0].Type, lhs.Type(), subst)
	unify(fn.Params[1].Type, rhs.Type(), subst)

	if !r.model.IsSubtype(lhs.Type(), bound(fn.Params[0].Type, subst)) ||
		!r.model.IsSubtype(rhs.Type(), bound(fn.Params[1].Type, subst)) {
		return nil, false
	}

	return &FunctionInvocation{
		ID:       node,
		Function: fn,
		Bindings: []Binding{
			{Param: fn.Params[0], Arg: lhs},
			{Param: fn.Params[1], Arg: rhs},
		},
		ValueType: bound(fn.Returns, subst),
	}, true
}

// localValue resolves `val name = rhs` and binds name in the current block.
func (r *run) localValue(s *dcl.LocalValue) (Origin, Failure) {
	var fs Failures

	if s.Name == "" {
		fs.Add(fail(s.ID, MissingLocalValueName{}))
	} else if r.scope.declared(s.Name) {
		fs.Add(fail(s.ID, DuplicateLocalValue{Name: s.Name}))
	}

	var rhs Origin
	if s.RHS == nil {
		fs.Add(fail(s.ID, MissingLocalValueInitializer{}))
	} else {
		var rf Failure

		rhs, rf = r.assignedValue(s.ID, s.RHS, schema.TypeRef{})
		fs.Add(rf)
	}

	if f := fs.Result(); f != nil {
		return nil, f
	}

	r.scope.bind(s.Name, s.ID, rhs)

	return rhs, nil
}

// assignmentTarget resolves the lhs of an assignment to a writable property.
// Local values are not assignable and are not considered.
func (r *run) assignmentTarget(stmt dcl.NodeID, lhs *dcl.PropertyAccess) (*PropertyReference, Failure) {
	if lhs == nil {
		return nil, fail(stmt, UnresolvedAssignmentLhs{})
	}

	ref, f := r.propertyTarget(lhs)
	r.record(lhs.ID, ref, f)

	if f != nil {
		return nil, r.wrap(f, stmt, UnresolvedAssignmentLhs{})
	}

	if !ref.Property.Access.CanWrite() {
		return nil, fail(stmt, ReadOnlyPropertyAssignment{Property: ref.Property})
	}

	return ref, nil
}

func (r *run) propertyTarget(lhs *dcl.PropertyAccess) (*PropertyReference, Failure) {
	if lhs.Receiver == nil {
		ref, f := r.lookupProperty(lhs.ID, lhs.Name)
		if ref == nil && f == nil {
			return nil, fail(lhs.ID, UnresolvedReference{Name: lhs.Name})
		}

		return ref, f
	}

	recv, f := r.expr(lhs.Receiver, schema.TypeRef{})
	if f != nil {
		return nil, f
	}

	return r.memberProperty(lhs.ID, recv, lhs.Name)
}

// assignedValue resolves the rhs of an assignment or declaration, wrapping a
// failure with UnresolvedAssignmentRhs.
func (r *run) assignedValue(stmt dcl.NodeID, rhs dcl.Expr, expected schema.TypeRef) (Origin, Failure) {
	if rhs == nil {
		return nil, fail(stmt, UnresolvedAssignmentRhs{})
	}

	o, f := r.expr(rhs, expected)
	if f != nil {
		return nil, r.wrap(f, stmt, UnresolvedAssignmentRhs{})
	}

	return o, nil
}

// wrap reports inner failures followed by the structurally dependent reason.
func (r *run) wrap(inner Failure, node dcl.NodeID, reason ErrorReason) Failure {
	var fs Failures

	fs.Add(inner)
	fs.Add(fail(node, reason))

	return fs.Result()
}
