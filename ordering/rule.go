// Package ordering builds the ranked list of multiplicative decomposition
// rules used to reduce targets that are not directly known.
//
// A rule is one of
//
//	Mul(m)       n = q*m      with q = n/m
//	MulAdd(m, a) n = q*m + a  with q = (n-a)/m
//	MulSub(m, s) n = q*m - s  with q = (n+s)/m
//
// where m, a and s are integers with known expressions.
package ordering

import (
	"fmt"
	"math"
)

// Kind selects the shape of a Rule.
type Kind uint8

const (
	KindMul Kind = iota
	KindMulAdd
	KindMulSub
)

func (k Kind) String() string {
	switch k {
	case KindMul:
		return "mul"
	case KindMulAdd:
		return "muladd"
	case KindMulSub:
		return "mulsub"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindMul, KindMulAdd, KindMulSub:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("ordering: invalid rule kind %d", uint8(k))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "mul":
		*k = KindMul
	case "muladd":
		*k = KindMulAdd
	case "mulsub":
		*k = KindMulSub
	default:
		return fmt.Errorf("ordering: invalid rule kind %q", b)
	}
	return nil
}

// Rule is a decomposition identity.
type Rule struct {
	Kind   Kind  `json:"kind"`
	Mul    int64 `json:"mul"`
	Offset int64 `json:"offset,omitempty"`
}

// Mul returns the rule n = q*m.
func Mul(m int64) Rule { return Rule{Kind: KindMul, Mul: m} }

// MulAdd returns the rule n = q*m + a.
func MulAdd(m, a int64) Rule { return Rule{Kind: KindMulAdd, Mul: m, Offset: a} }

// MulSub returns the rule n = q*m - s.
func MulSub(m, s int64) Rule { return Rule{Kind: KindMulSub, Mul: m, Offset: s} }

func (r Rule) String() string {
	switch r.Kind {
	case KindMul:
		return fmt.Sprintf("Mul(%d)", r.Mul)
	case KindMulAdd:
		return fmt.Sprintf("MulAdd(%d,%d)", r.Mul, r.Offset)
	case KindMulSub:
		return fmt.Sprintf("MulSub(%d,%d)", r.Mul, r.Offset)
	default:
		return r.Kind.String()
	}
}

// Match reports whether the rule applies to n and returns the sub-target q.
// A rule whose intermediate n-a or n+s overflows does not match.
func (r Rule) Match(n int64) (q int64, ok bool) {
	if r.Mul == 0 {
		return 0, false
	}

	d := n
	switch r.Kind {
	case KindMul:
	case KindMulAdd:
		if d, ok = sub(n, r.Offset); !ok {
			return 0, false
		}
	case KindMulSub:
		if d, ok = add(n, r.Offset); !ok {
			return 0, false
		}
	default:
		return 0, false
	}

	if d%r.Mul != 0 || (r.Mul == -1 && d == math.MinInt64) {
		return 0, false
	}
	return d / r.Mul, true
}

// Residue returns the class modulo mod of the targets the rule resolves.
// mod must be positive.
func (r Rule) Residue(mod int64) int64 {
	switch r.Kind {
	case KindMulAdd:
		return residue(r.Offset, mod)
	case KindMulSub:
		return negResidue(r.Offset, mod)
	default:
		return 0
	}
}

// residue returns a mod m in [0, m) without overflow.
func residue(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// negResidue returns -a mod m in [0, m) without negating a.
func negResidue(a, m int64) int64 {
	return (m - residue(a, m)) % m
}

func add(a, b int64) (int64, bool) {
	c := a + b
	if (a^c)&(b^c) < 0 {
		return 0, false
	}
	return c, true
}

func sub(a, b int64) (int64, bool) {
	c := a - b
	if (a^b)&(a^c) < 0 {
		return 0, false
	}
	return c, true
}
