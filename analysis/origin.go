package analysis

import (
	"github.com/rlch/dcl"
	"github.com/rlch/dcl/schema"
)

// Origin is the resolved meaning of an expression. The set of implementations
// is closed; every origin carries its declared type.
type Origin interface {
	Type() schema.TypeRef
	Node() dcl.NodeID
	origin()
}

// ImplicitReceiver is the receiver of the top level or of a configuring lambda.
// It is what `this` resolves to.
type ImplicitReceiver struct {
	ID        dcl.NodeID // the lambda block, 0 at the top level
	ValueType schema.TypeRef
}

// Constant is a literal value or null.
type Constant struct {
	ID        dcl.NodeID
	ValueType schema.TypeRef
	Value     any
}

// PropertyReference is a property read from (or assigned on) Receiver.
type PropertyReference struct {
	ID       dcl.NodeID
	Receiver Origin
	Property *schema.Property
}

// Binding pairs a formal parameter with the origin of its argument.
type Binding struct {
	Param *schema.Parameter
	Arg   Origin
}

// FunctionInvocation is a call to a pure or access-and-configure function.
// Receiver is nil for top-level functions.
type FunctionInvocation struct {
	ID        dcl.NodeID
	Receiver  Origin
	Function  *schema.Function
	Bindings  []Binding
	ValueType schema.TypeRef
}

// NewObjectFromFunction is a call to an adding or configuring function.
type NewObjectFromFunction struct {
	ID        dcl.NodeID
	Receiver  Origin
	Function  *schema.Function
	Bindings  []Binding
	ValueType schema.TypeRef
}

// EnumConstant is a bare name resolved against the expected enum type.
type EnumConstant struct {
	ID   dcl.NodeID
	Enum schema.TypeRef
	Name string
}

// LocalValueReference is a reference to a local value. Value is the origin the
// declaration's rhs resolved to.
type LocalValueReference struct {
	ID    dcl.NodeID
	Name  string
	Decl  dcl.NodeID
	Value Origin
}

// GroupedVararg collects the arguments passed to a vararg parameter.
type GroupedVararg struct {
	ID       dcl.NodeID
	Element  schema.TypeRef
	Elements []Origin
}

// Augmentation is the value of `property += operand`: Result invokes the
// augmentation function with the current property value and the operand.
type Augmentation struct {
	ID       dcl.NodeID
	Property *PropertyReference
	Operand  Origin
	Result   *FunctionInvocation
}

func (o *ImplicitReceiver) Type() schema.TypeRef      { return o.ValueType }
func (o *Constant) Type() schema.TypeRef              { return o.ValueType }
func (o *PropertyReference) Type() schema.TypeRef     { return o.Property.Type }
func (o *FunctionInvocation) Type() schema.TypeRef    { return o.ValueType }
func (o *NewObjectFromFunction) Type() schema.TypeRef { return o.ValueType }
func (o *EnumConstant) Type() schema.TypeRef          { return o.Enum }
func (o *LocalValueReference) Type() schema.TypeRef   { return o.Value.Type() }
func (o *GroupedVararg) Type() schema.TypeRef         { return schema.ListOf(o.Element) }
func (o *Augmentation) Type() schema.TypeRef          { return o.Result.ValueType }

func (o *ImplicitReceiver) Node() dcl.NodeID      { return o.ID }
func (o *Constant) Node() dcl.NodeID              { return o.ID }
func (o *PropertyReference) Node() dcl.NodeID     { return o.ID }
func (o *FunctionInvocation) Node() dcl.NodeID    { return o.ID }
func (o *NewObjectFromFunction) Node() dcl.NodeID { return o.ID }
func (o *EnumConstant) Node() dcl.NodeID          { return o.ID }
func (o *LocalValueReference) Node() dcl.NodeID   { return o.ID }
func (o *GroupedVararg) Node() dcl.NodeID         { return o.ID }
func (o *Augmentation) Node() dcl.NodeID          { return o.ID }

func (*ImplicitReceiver) origin()      {}
func (*Constant) origin()              {}
func (*PropertyReference) origin()     {}
func (*FunctionInvocation) origin()    {}
func (*NewObjectFromFunction) origin() {}
func (*EnumConstant) origin()          {}
func (*LocalValueReference) origin()   {}
func (*GroupedVararg) origin()         {}
func (*Augmentation) origin()          {}

// invocation builds the origin for a bound call according to the function's
// semantics.
func invocation(id dcl.NodeID, recv Origin, fn *schema.Function, bindings []Binding, typ schema.TypeRef) Origin {
	switch fn.Semantics {
	case schema.Adding, schema.Configuring:
		return &NewObjectFromFunction{ID: id, Receiver: recv, Function: fn, Bindings: bindings, ValueType: typ}
	default:
		return &FunctionInvocation{ID: id, Receiver: recv, Function: fn, Bindings: bindings, ValueType: typ}
	}
}

// Unwrap follows local value references to the origin they stand for.
func Unwrap(o Origin) Origin {
	for {
		ref, ok := o.(*LocalValueReference)
		if !ok {
			return o
		}

		o = ref.Value
	}
}
