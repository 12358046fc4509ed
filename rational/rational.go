// Package rational implements exact fixed-width rational numbers.
//
// Every arithmetic operation is checked: a result whose reduced numerator
// or denominator does not fit in an int64 is reported as not representable
// instead of wrapping around. Callers treat such results the same way they
// treat division by zero.
//
// Rat is a comparable value type and can be used directly as a map key.
// The zero value is not a valid Rat; use FromInt(0).
package rational

import (
	"math"
	"math/bits"
	"strconv"
)

// Rat is a reduced fraction num/den with den > 0.
//
// num is never math.MinInt64, so negation is always safe.
type Rat struct {
	num int64
	den int64
}

// New returns num/den in reduced form.
// ok is false when den is zero or either operand is math.MinInt64.
func New(num, den int64) (r Rat, ok bool) {
	if den == 0 || num == math.MinInt64 || den == math.MinInt64 {
		return Rat{}, false
	}
	if den < 0 {
		num, den = -num, -den
	}
	return reduce(num, den), true
}

// FromInt returns n/1. n must not be math.MinInt64.
func FromInt(n int64) Rat {
	return Rat{num: n, den: 1}
}

// Num returns the reduced numerator.
func (r Rat) Num() int64 { return r.num }

// Den returns the reduced denominator. It is always positive for valid values.
func (r Rat) Den() int64 { return r.den }

// IsInt reports whether r is an integer.
func (r Rat) IsInt() bool { return r.den == 1 }

// Int returns the integer value of r. It is only meaningful when IsInt is true.
func (r Rat) Int() int64 { return r.num }

// IsZero reports whether r equals zero.
func (r Rat) IsZero() bool { return r.num == 0 }

// Sign returns -1, 0 or +1.
func (r Rat) Sign() int {
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	default:
		return 0
	}
}

// String renders r as "n" for integers and "n/d" otherwise.
func (r Rat) String() string {
	if r.den == 1 {
		return strconv.FormatInt(r.num, 10)
	}
	return strconv.FormatInt(r.num, 10) + "/" + strconv.FormatInt(r.den, 10)
}

// Cmp compares r and o exactly and returns -1, 0 or +1.
func (r Rat) Cmp(o Rat) int {
	rs, ss := r.Sign(), o.Sign()
	if rs != ss {
		if rs < ss {
			return -1
		}
		return 1
	}
	if rs == 0 {
		return 0
	}

	// Same sign: compare |r.num|*o.den with |o.num|*r.den in 128 bits.
	lhi, llo := bits.Mul64(abs(r.num), uint64(o.den))
	rhi, rlo := bits.Mul64(abs(o.num), uint64(r.den))

	c := 0
	switch {
	case lhi < rhi || (lhi == rhi && llo < rlo):
		c = -1
	case lhi > rhi || (lhi == rhi && llo > rlo):
		c = 1
	}
	if rs < 0 {
		return -c
	}
	return c
}

// Add returns r+o.
func (r Rat) Add(o Rat) (Rat, bool) {
	g := int64(gcd(uint64(r.den), uint64(o.den)))
	rd, od := r.den/g, o.den/g

	n1, ok := mul(r.num, od)
	if !ok {
		return Rat{}, false
	}
	n2, ok := mul(o.num, rd)
	if !ok {
		return Rat{}, false
	}
	n, ok := add(n1, n2)
	if !ok {
		return Rat{}, false
	}
	d, ok := mul(rd, o.den)
	if !ok {
		return Rat{}, false
	}
	return reduce(n, d), true
}

// Sub returns r-o.
func (r Rat) Sub(o Rat) (Rat, bool) {
	return r.Add(Rat{num: -o.num, den: o.den})
}

// Mul returns r*o.
func (r Rat) Mul(o Rat) (Rat, bool) {
	if r.num == 0 || o.num == 0 {
		return Rat{num: 0, den: 1}, true
	}
	g1 := int64(gcd(abs(r.num), uint64(o.den)))
	g2 := int64(gcd(abs(o.num), uint64(r.den)))

	n, ok := mul(r.num/g1, o.num/g2)
	if !ok {
		return Rat{}, false
	}
	d, ok := mul(r.den/g2, o.den/g1)
	if !ok {
		return Rat{}, false
	}
	return Rat{num: n, den: d}, true
}

// Quo returns r/o. ok is false when o is zero.
func (r Rat) Quo(o Rat) (Rat, bool) {
	if o.num == 0 {
		return Rat{}, false
	}
	inv := Rat{num: o.den, den: o.num}
	if inv.den < 0 {
		inv.num, inv.den = -inv.num, -inv.den
	}
	return r.Mul(inv)
}

func reduce(num, den int64) Rat {
	if num == 0 {
		return Rat{num: 0, den: 1}
	}
	g := int64(gcd(abs(num), uint64(den)))
	return Rat{num: num / g, den: den / g}
}

func add(a, b int64) (int64, bool) {
	c := a + b
	if (a^c)&(b^c) < 0 || c == math.MinInt64 {
		return 0, false
	}
	return c, true
}

func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || c == math.MinInt64 || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func abs(x int64) uint64 {
	if x < 0 {
		return uint64(-x)
	}
	return uint64(x)
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
