package search

import (
	"github.com/komori-n/nananiji-calculator/operator"
	"github.com/komori-n/nananiji-calculator/rational"
)

// Entry is a discovered value with its expression.
type Entry struct {
	Value rational.Rat
	Expr  string
}

// PairExprs returns every value of (a op b) in operator order, each with
// the expression "(a<op>b)". Undefined results are omitted.
func PairExprs(a, b rational.Rat) []Entry {
	out := make([]Entry, 0, len(operator.All))
	for _, op := range operator.All {
		if v, ok := op.Invoke(a, b); ok {
			out = append(out, Entry{Value: v, Expr: "(" + a.String() + op.String() + b.String() + ")"})
		}
	}
	return out
}

// TripleExprs returns the values of ((a op1 b) op2 c) and (a op1 (b op2 c))
// for every operator pair. For each pair the left-associated form comes
// first. Inner parentheses are dropped where precedence makes them
// redundant.
func TripleExprs(a, b, c rational.Rat) []Entry {
	sa, sb, sc := a.String(), b.String(), c.String()
	out := make([]Entry, 0, 2*len(operator.All)*len(operator.All))

	for _, op1 := range operator.All {
		for _, op2 := range operator.All {
			if tmp, ok := op1.Invoke(a, b); ok {
				if v, ok := op2.Invoke(tmp, c); ok {
					var expr string
					if op1.Multiplicative() || (op1.Additive() && op2.Additive()) {
						expr = "(" + sa + op1.String() + sb + op2.String() + sc + ")"
					} else {
						expr = "((" + sa + op1.String() + sb + ")" + op2.String() + sc + ")"
					}
					out = append(out, Entry{Value: v, Expr: expr})
				}
			}

			if tmp, ok := op2.Invoke(b, c); ok {
				if v, ok := op1.Invoke(a, tmp); ok {
					var expr string
					if op1 == operator.Add || (op1 != operator.Div && op2.Multiplicative()) {
						expr = "(" + sa + op1.String() + sb + op2.String() + sc + ")"
					} else {
						expr = "(" + sa + op1.String() + "(" + sb + op2.String() + sc + "))"
					}
					out = append(out, Entry{Value: v, Expr: expr})
				}
			}
		}
	}
	return out
}

// render joins two known expressions. Products are left unparenthesized:
// both sides are atoms, fully parenthesized, or products themselves. A
// product on the right of a division is wrapped, since a/b*c reads as
// (a/b)*c.
func render(lexpr string, op operator.Operator, rexpr string) string {
	if op == operator.Mul {
		return lexpr + op.String() + rexpr
	}
	if op == operator.Div && bareProduct(rexpr) {
		rexpr = "(" + rexpr + ")"
	}
	return "(" + lexpr + op.String() + rexpr + ")"
}

// bareProduct reports whether expr has a * or / outside parentheses.
func bareProduct(expr string) bool {
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '*', '/':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
