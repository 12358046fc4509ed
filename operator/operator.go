// Package operator defines the four exact binary operators used to build
// expressions.
package operator

import (
	"fmt"

	"github.com/komori-n/nananiji-calculator/rational"
)

// Operator is one of + - * /.
type Operator int

const (
	Add Operator = iota
	Sub
	Mul
	Div
)

// All lists the operators in enumeration order.
// Search results depend on this order (first discovery wins).
var All = [...]Operator{Add, Sub, Mul, Div}

// Invoke applies the operator to x and y.
//
// ok is false when the operator has no value for the operands: division
// by zero, or a result that does not fit the fixed-width rational.
// Neither case is an error.
func (o Operator) Invoke(x, y rational.Rat) (rational.Rat, bool) {
	switch o {
	case Add:
		return x.Add(y)
	case Sub:
		return x.Sub(y)
	case Mul:
		return x.Mul(y)
	case Div:
		return x.Quo(y)
	default:
		return rational.Rat{}, false
	}
}

// Commutative reports whether operand order does not matter.
func (o Operator) Commutative() bool {
	return o == Add || o == Mul
}

// Multiplicative reports whether the operator is * or /.
func (o Operator) Multiplicative() bool {
	return o == Mul || o == Div
}

// Additive reports whether the operator is + or -.
func (o Operator) Additive() bool {
	return o == Add || o == Sub
}

func (o Operator) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}
