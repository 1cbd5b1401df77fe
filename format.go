package dcl

import (
	"strconv"
	"strings"
)

// Format renders a node back into source form. Configuring lambdas are rendered
// on multiple lines with tab indentation; everything else fits on one line.
func Format(n Node) string {
	var b strings.Builder

	f := &formatter{b: &b, indent: 0}
	f.formatNode(n)

	return b.String()
}

// FormatProgram renders a whole program, one statement per line.
func FormatProgram(p *Program) string {
	var b strings.Builder

	f := &formatter{b: &b, indent: 0}
	for _, s := range p.Statements {
		f.writeIndent()
		f.formatNode(s)
		f.write("\n")
	}

	return b.String()
}

type formatter struct {
	b      *strings.Builder
	indent int
}

func (f *formatter) write(s string) {
	f.b.WriteString(s)
}

func (f *formatter) writeIndent() {
	for range f.indent {
		f.write("\t")
	}
}

func (f *formatter) formatNode(n Node) {
	switch n := n.(type) {
	case *Assignment:
		f.formatExpr(n.LHS)
		f.write(" = ")
		f.formatExpr(n.RHS)
	case *AugmentingAssignment:
		f.formatExpr(n.LHS)
		f.write(" " + n.Op.Token() + " ")
		f.formatExpr(n.RHS)
	case *LocalValue:
		f.write("val " + n.Name + " = ")
		f.formatExpr(n.RHS)
	case *ExprStatement:
		f.formatExpr(n.Expr)
	case *Block:
		f.formatBlock(n)
	case Expr:
		f.formatExpr(n)
	}
}

func (f *formatter) formatExpr(e Expr) {
	switch e := e.(type) {
	case nil:
		f.write("<missing>")
	case *Literal:
		f.write(formatLiteral(e))
	case *PropertyAccess:
		if e == nil {
			f.write("<missing>")

			return
		}

		if e.Receiver != nil {
			f.formatExpr(e.Receiver)
			f.write(".")
		}

		f.write(e.Name)
	case *FunctionCall:
		if e.Receiver != nil {
			f.formatExpr(e.Receiver)
			f.write(".")
		}

		f.write(e.Name)

		if len(e.Args) > 0 || e.Lambda == nil {
			f.write("(")

			for i, a := range e.Args {
				if i > 0 {
					f.write(", ")
				}

				if a.Name != "" {
					f.write(a.Name + " = ")
				}

				f.formatExpr(a.Value)
			}

			f.write(")")
		}

		if e.Lambda != nil {
			f.write(" ")
			f.formatBlock(e.Lambda)
		}
	case *LocalValueRef:
		f.write(e.Name)
	case *This:
		f.write("this")
	case *Null:
		f.write("null")
	}
}

func (f *formatter) formatBlock(b *Block) {
	if len(b.Statements) == 0 {
		f.write("{ }")

		return
	}

	f.write("{\n")
	f.indent++

	for _, s := range b.Statements {
		f.writeIndent()
		f.formatNode(s)
		f.write("\n")
	}

	f.indent--
	f.writeIndent()
	f.write("}")
}

func formatLiteral(l *Literal) string {
	switch v := l.Value.(type) {
	case string:
		return strconv.Quote(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		if l.Kind == LongLiteral {
			return strconv.FormatInt(v, 10) + "L"
		}

		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return "<literal>"
	}
}
