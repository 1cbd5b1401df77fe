package analysis

import (
	"slices"

	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// expr resolves e, using expected (which may be zero) to interpret bare enum
// constants and generic calls, and records the outcome.
func (r *run) expr(e dcl.Expr, expected schema.TypeRef) (Origin, Failure) {
	o, f := r.resolveExpr(e, expected)
	r.record(e.NodeID(), o, f)

	return o, f
}

func (r *run) resolveExpr(e dcl.Expr, expected schema.TypeRef) (Origin, Failure) {
	switch e := e.(type) {
	case *dcl.Literal:
		return &Constant{ID: e.ID, ValueType: literalType(e.Kind), Value: e.Value}, nil
	case *dcl.Null:
		return &Constant{ID: e.ID, ValueType: schema.Null}, nil
	case *dcl.This:
		return r.scope.current().receiver, nil
	case *dcl.LocalValueRef:
		if o := r.localReference(e.ID, e.Name); o != nil {
			return o, nil
		}

		return nil, fail(e.ID, UnresolvedReference{Name: e.Name})
	case *dcl.PropertyAccess:
		if e.Receiver == nil {
			return r.bareName(e, expected)
		}

		return r.qualifiedProperty(e)
	case *dcl.FunctionCall:
		return r.call(e, expected)
	default:
		return nil, fail(e.NodeID(), UnresolvedReference{Name: dcl.Format(e)})
	}
}

func literalType(k dcl.LiteralKind) schema.TypeRef {
	switch k {
	case dcl.IntLiteral:
		return schema.Int
	case dcl.LongLiteral:
		return schema.Long
	case dcl.BooleanLiteral:
		return schema.Boolean
	default:
		return schema.String
	}
}

func (r *run) localReference(node dcl.NodeID, name string) Origin {
	l := r.scope.lookupLocal(name)
	if l == nil {
		return nil
	}

	return &LocalValueReference{ID: node, Name: name, Decl: l.decl, Value: l.value}
}

// bareName resolves an unqualified name: local values innermost-out, then
// properties along the receiver chain, then constants of the expected enum.
func (r *run) bareName(e *dcl.PropertyAccess, expected schema.TypeRef) (Origin, Failure) {
	if o := r.localReference(e.ID, e.Name); o != nil {
		return o, nil
	}

	ref, f := r.lookupProperty(e.ID, e.Name)
	if f != nil {
		return nil, f
	}

	if ref != nil {
		return readable(ref)
	}

	if r.model.IsEnum(expected) && slices.Contains(r.model.EnumConstantsOf(expected), e.Name) {
		return &EnumConstant{ID: e.ID, Enum: expected, Name: e.Name}, nil
	}

	return nil, fail(e.ID, UnresolvedReference{Name: e.Name})
}

func (r *run) qualifiedProperty(e *dcl.PropertyAccess) (Origin, Failure) {
	recv, f := r.expr(e.Receiver, schema.TypeRef{})
	if f != nil {
		return nil, f
	}

	ref, f := r.memberProperty(e.ID, recv, e.Name)
	if f != nil {
		return nil, f
	}

	return readable(ref)
}

func readable(ref *PropertyReference) (Origin, Failure) {
	if !ref.Property.Access.CanRead() {
		return nil, fail(ref.ID, NonReadableProperty{Property: ref.Property})
	}

	return ref, nil
}

// lookupProperty finds name on the receiver chain, innermost first. The first
// receiver declaring it wins. It returns nil and no failure when no receiver
// declares the name.
func (r *run) lookupProperty(node dcl.NodeID, name string) (*PropertyReference, Failure) {
	for i, recv := range r.scope.receivers() {
		p := r.findProperty(recv.Type(), name)
		if p == nil {
			continue
		}

		if p.CurrentReceiverOnly && i > 0 {
			return nil, fail(node, AccessOnCurrentReceiverOnlyViolation{Name: name})
		}

		return &PropertyReference{ID: node, Receiver: recv, Property: p}, nil
	}

	return nil, nil
}

// memberProperty finds name on an explicit receiver.
func (r *run) memberProperty(node dcl.NodeID, recv Origin, name string) (*PropertyReference, Failure) {
	p := r.findProperty(recv.Type(), name)
	if p == nil {
		return nil, fail(node, UnresolvedReference{Name: name})
	}

	if p.CurrentReceiverOnly {
		return nil, fail(node, AccessOnCurrentReceiverOnlyViolation{Name: name})
	}

	return &PropertyReference{ID: node, Receiver: recv, Property: p}, nil
}

// findProperty ignores properties hidden from the language, so they are
// reported like unknown names.
func (r *run) findProperty(t schema.TypeRef, name string) *schema.Property {
	for _, p := range r.model.PropertiesOf(t) {
		if p.Name == name && !p.HiddenInDSL {
			return p
		}
	}

	return nil
}
