// Package dcl holds the statement tree of the declarative configuration language.
//
// Trees are produced by a parser elsewhere and consumed read-only by the resolver in
// the analysis package. Every node carries a stable NodeID assigned once by Number.
package dcl

// NodeID identifies a node within a Program. Zero means the node has not been numbered.
type NodeID int

// Node is implemented by every statement and expression.
type Node interface {
	NodeID() NodeID
	NodeSpan() Span
}

// Stmt is a statement. The set of implementations is closed.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression. The set of implementations is closed.
type Expr interface {
	Node
	exprNode()
}

// Program is a complete statement tree.
type Program struct {
	Statements []Stmt
}

// Block is the body of a configuring lambda.
type Block struct {
	ID         NodeID
	Span       Span
	Statements []Stmt
}

// NodeID implements Node.
func (b *Block) NodeID() NodeID { return b.ID }

// NodeSpan implements Node.
func (b *Block) NodeSpan() Span { return b.Span }

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// Assignment is `lhs = rhs`.
type Assignment struct {
	ID   NodeID
	Span Span
	LHS  *PropertyAccess
	RHS  Expr
}

// AugmentationOp is the operator of an augmenting assignment.
type AugmentationOp int

// Augmentation operators.
const (
	PlusAssign AugmentationOp = iota
)

// Token returns the operator as written in source.
func (op AugmentationOp) Token() string {
	switch op {
	case PlusAssign:
		return "+="
	default:
		return "?="
	}
}

// AugmentingAssignment is `lhs += rhs`.
type AugmentingAssignment struct {
	ID   NodeID
	Span Span
	LHS  *PropertyAccess
	Op   AugmentationOp
	RHS  Expr
}

// LocalValue is `val name = rhs`. Name or RHS may be missing when the parser
// recovered from a syntax error.
type LocalValue struct {
	ID   NodeID
	Span Span
	Name string
	RHS  Expr
}

// ExprStatement is an expression used as a statement, normally a function call.
type ExprStatement struct {
	ID   NodeID
	Span Span
	Expr Expr
}

func (s *Assignment) NodeID() NodeID           { return s.ID }
func (s *Assignment) NodeSpan() Span           { return s.Span }
func (s *AugmentingAssignment) NodeID() NodeID { return s.ID }
func (s *AugmentingAssignment) NodeSpan() Span { return s.Span }
func (s *LocalValue) NodeID() NodeID           { return s.ID }
func (s *LocalValue) NodeSpan() Span           { return s.Span }
func (s *ExprStatement) NodeID() NodeID        { return s.ID }
func (s *ExprStatement) NodeSpan() Span        { return s.Span }

func (*Assignment) stmtNode()           {}
func (*AugmentingAssignment) stmtNode() {}
func (*LocalValue) stmtNode()           {}
func (*ExprStatement) stmtNode()        {}

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// LiteralKind is the intrinsic type of a literal.
type LiteralKind int

// Literal kinds.
const (
	StringLiteral LiteralKind = iota
	IntLiteral
	LongLiteral
	BooleanLiteral
)

// Literal is a constant value. Value holds a string, int32, int64 or bool
// depending on Kind.
type Literal struct {
	ID    NodeID
	Span  Span
	Kind  LiteralKind
	Value any
}

// PropertyAccess is `name` or `receiver.name`. An unqualified access is also how
// the parser represents bare identifiers, so it may resolve to a local value or an
// enum constant.
type PropertyAccess struct {
	ID       NodeID
	Span     Span
	Receiver Expr
	Name     string
}

// Argument is a function call argument. Name is empty for positional arguments.
type Argument struct {
	Name  string
	Value Expr
}

// FunctionCall is `receiver.name(args) { lambda }`.
type FunctionCall struct {
	ID       NodeID
	Span     Span
	Receiver Expr
	Name     string
	Args     []*Argument
	Lambda   *Block
}

// LocalValueRef is an explicit reference to a local value.
type LocalValueRef struct {
	ID   NodeID
	Span Span
	Name string
}

// This is the `this` keyword.
type This struct {
	ID   NodeID
	Span Span
}

// Null is the `null` literal.
type Null struct {
	ID   NodeID
	Span Span
}

func (e *Literal) NodeID() NodeID        { return e.ID }
func (e *Literal) NodeSpan() Span        { return e.Span }
func (e *PropertyAccess) NodeID() NodeID { return e.ID }
func (e *PropertyAccess) NodeSpan() Span { return e.Span }
func (e *FunctionCall) NodeID() NodeID   { return e.ID }
func (e *FunctionCall) NodeSpan() Span   { return e.Span }
func (e *LocalValueRef) NodeID() NodeID  { return e.ID }
func (e *LocalValueRef) NodeSpan() Span  { return e.Span }
func (e *This) NodeID() NodeID           { return e.ID }
func (e *This) NodeSpan() Span           { return e.Span }
func (e *Null) NodeID() NodeID           { return e.ID }
func (e *Null) NodeSpan() Span           { return e.Span }

func (*Literal) exprNode()        {}
func (*PropertyAccess) exprNode() {}
func (*FunctionCall) exprNode()   {}
func (*LocalValueRef) exprNode()  {}
func (*This) exprNode()           {}
func (*Null) exprNode()           {}

// PositionalArgs returns the values of the positional arguments in order.
func (c *FunctionCall) PositionalArgs() []Expr {
	var out []Expr

	for _, a := range c.Args {
		if a.Name == "" {
			out = append(out, a.Value)
		}
	}

	return out
}
