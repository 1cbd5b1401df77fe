package dcl

// Inspect traverses the tree rooted at n depth-first in document order. If f
// returns false the children of the node are skipped. Blocks are visited as nodes.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch n := n.(type) {
	case *Assignment:
		if n.LHS != nil {
			Inspect(n.LHS, f)
		}

		inspectExpr(n.RHS, f)
	case *AugmentingAssignment:
		if n.LHS != nil {
			Inspect(n.LHS, f)
		}

		inspectExpr(n.RHS, f)
	case *LocalValue:
		inspectExpr(n.RHS, f)
	case *ExprStatement:
		inspectExpr(n.Expr, f)
	case *PropertyAccess:
		inspectExpr(n.Receiver, f)
	case *FunctionCall:
		inspectExpr(n.Receiver, f)

		for _, a := range n.Args {
			inspectExpr(a.Value, f)
		}

		if n.Lambda != nil {
			Inspect(n.Lambda, f)
		}
	case *Block:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	}
}

// inspectExpr guards against typed nil expressions.
func inspectExpr(e Expr, f func(Node) bool) {
	if e == nil {
		return
	}

	Inspect(e, f)
}

// InspectProgram calls Inspect for every top-level statement.
func InspectProgram(p *Program, f func(Node) bool) {
	for _, s := range p.Statements {
		Inspect(s, f)
	}
}

// Number assigns NodeIDs depth-first in document order to every node that has
// none yet. Already numbered nodes keep their id, so numbering is stable when a
// tree is numbered twice.
func Number(p *Program) {
	next := NodeID(1)

	InspectProgram(p, func(n Node) bool {
		if id := n.NodeID(); id >= next {
			next = id + 1
		}

		return true
	})

	InspectProgram(p, func(n Node) bool {
		if n.NodeID() == 0 {
			setID(n, next)
			next++
		}

		return true
	})
}

func setID(n Node, id NodeID) {
	switch n := n.(type) {
	case *Assignment:
		n.ID = id
	case *AugmentingAssignment:
		n.ID = id
	case *LocalValue:
		n.ID = id
	case *ExprStatement:
		n.ID = id
	case *Literal:
		n.ID = id
	case *PropertyAccess:
		n.ID = id
	case *FunctionCall:
		n.ID = id
	case *LocalValueRef:
		n.ID = id
	case *This:
		n.ID = id
	case *Null:
		n.ID = id
	case *Block:
		n.ID = id
	}
}

// Index maps every NodeID in the program to its node.
func Index(p *Program) map[NodeID]Node {
	idx := make(map[NodeID]Node)

	InspectProgram(p, func(n Node) bool {
		idx[n.NodeID()] = n

		return true
	})

	return idx
}
