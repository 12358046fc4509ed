// Package evaluate parses and exactly evaluates generated expressions.
//
// It accepts integers, + - * /, unary minus and parentheses with the usual
// precedence, and evaluates over math/big rationals so that a result can be
// checked independently of the fixed-width arithmetic used to build it.
package evaluate

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrSyntax is returned for malformed input.
	ErrSyntax = errors.New("syntax error")
	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Eval evaluates expr exactly.
func Eval(expr string) (*big.Rat, error) {
	p := parser{src: expr}
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return v, nil
}

// Equals reports whether expr evaluates exactly to n.
func Equals(expr string, n int64) (bool, error) {
	v, err := Eval(expr)
	if err != nil {
		return false, err
	}
	return v.Cmp(new(big.Rat).SetInt64(n)) == 0, nil
}

// Literals returns the integer literals of expr in order of appearance.
func Literals(expr string) ([]string, error) {
	p := parser{src: expr, literals: []string{}}
	if _, err := p.expr(); err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return p.literals, nil
}

type parser struct {
	src      string
	pos      int
	literals []string
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// expr = term { ("+" | "-") term }
func (p *parser) expr() (*big.Rat, error) {
	v, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			r, err := p.term()
			if err != nil {
				return nil, err
			}
			v.Add(v, r)
		case '-':
			p.pos++
			r, err := p.term()
			if err != nil {
				return nil, err
			}
			v.Sub(v, r)
		default:
			return v, nil
		}
	}
}

// term = factor { ("*" | "/") factor }
func (p *parser) term() (*big.Rat, error) {
	v, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return nil, err
			}
			v.Mul(v, r)
		case '/':
			p.pos++
			r, err := p.factor()
			if err != nil {
				return nil, err
			}
			if r.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			v.Quo(v, r)
		default:
			return v, nil
		}
	}
}

// factor = "-" factor | "(" expr ")" | integer
func (p *parser) factor() (*big.Rat, error) {
	switch c := p.peek(); {
	case c == '-':
		p.pos++
		v, err := p.factor()
		if err != nil {
			return nil, err
		}
		return v.Neg(v), nil
	case c == '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("missing )")
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		lit := p.src[start:p.pos]
		if p.literals != nil {
			p.literals = append(p.literals, lit)
		}
		v, ok := new(big.Rat).SetString(lit)
		if !ok {
			return nil, p.errorf("bad integer %q", lit)
		}
		return v, nil
	case c == 0:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected %q", c)
	}
}
