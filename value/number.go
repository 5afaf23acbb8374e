package value

import "math"

type numberKind int

const (
	numberInteger numberKind = iota
	numberFloat
)

// Number is the numeric view of an Integer or Float value.
//
// Comparisons work across representations. Arithmetic stays in integer
// space when both operands are integers and promotes to float64 as soon
// as either operand is a float (or when integer arithmetic would
// overflow). Division and modulo by zero produce no result.
type Number struct {
	kind numberKind
	i    int64
	f    float64
}

// IntNumber creates an integer Number.
func IntNumber(i int64) Number {
	return Number{kind: numberInteger, i: i, f: float64(i)}
}

// FloatNumber creates a floating point Number.
func FloatNumber(f float64) Number {
	return Number{kind: numberFloat, f: f}
}

// AsNumber returns the numeric view of an Integer or Float value.
func (v Value) AsNumber() (Number, bool) {
	switch d := v.data.(type) {
	case int64:
		return IntNumber(d), true
	case float64:
		return FloatNumber(d), true
	}
	return Number{}, false
}

// TryNumber returns the numeric view or a type mismatch error naming op.
func (v Value) TryNumber(op string) (Number, error) {
	if n, ok := v.AsNumber(); ok {
		return n, nil
	}
	return Number{}, TypeMismatch(op, v, "a number")
}

// IsFloat reports whether the number is stored as a float.
func (n Number) IsFloat() bool {
	return n.kind == numberFloat
}

// IsFinite reports whether the number is neither NaN nor infinite.
func (n Number) IsFinite() bool {
	if n.kind == numberInteger {
		return true
	}
	return !math.IsNaN(n.f) && !math.IsInf(n.f, 0)
}

// Float returns the number as float64.
func (n Number) Float() float64 {
	return n.f
}

// Int returns the number as int64. Floats convert only when they hold a
// whole number in range.
func (n Number) Int() (int64, bool) {
	if n.kind == numberInteger {
		return n.i, true
	}
	if n.f != math.Trunc(n.f) || n.f < math.MinInt64 || n.f >= math.MaxInt64 {
		return 0, false
	}
	return int64(n.f), true
}

// Value converts the number back into a Value of the same representation.
func (n Number) Value() Value {
	if n.kind == numberInteger {
		return FromInt(n.i)
	}
	return FromFloat(n.f)
}

func (n Number) isZero() bool {
	if n.kind == numberInteger {
		return n.i == 0
	}
	return n.f == 0
}

// Cmp compares two numbers and returns -1, 0 or +1. The second result is
// false when either side is NaN.
func (n Number) Cmp(other Number) (int, bool) {
	if n.kind == numberInteger && other.kind == numberInteger {
		switch {
		case n.i < other.i:
			return -1, true
		case n.i > other.i:
			return 1, true
		}
		return 0, true
	}
	if math.IsNaN(n.f) || math.IsNaN(other.f) {
		return 0, false
	}
	if n.kind == numberInteger {
		return compareIntFloat(n.i, other.f), true
	}
	if other.kind == numberInteger {
		return -compareIntFloat(other.i, n.f), true
	}
	switch {
	case n.f < other.f:
		return -1, true
	case n.f > other.f:
		return 1, true
	}
	return 0, true
}

// compareIntFloat compares i with a non-NaN f without rounding i to a
// float64, which would lose precision above 2^53.
func compareIntFloat(i int64, f float64) int {
	switch {
	case f >= 1<<63:
		return -1
	case f < -(1 << 63):
		return 1
	}
	whole := math.Trunc(f)
	w := int64(whole)
	switch {
	case i < w:
		return -1
	case i > w:
		return 1
	case f > whole:
		return -1
	case f < whole:
		return 1
	}
	return 0
}

func (n Number) Eq(other Number) bool {
	c, ok := n.Cmp(other)
	return ok && c == 0
}

func (n Number) Ne(other Number) bool {
	return !n.Eq(other)
}

func (n Number) Lt(other Number) bool {
	c, ok := n.Cmp(other)
	return ok && c < 0
}

func (n Number) Lte(other Number) bool {
	c, ok := n.Cmp(other)
	return ok && c <= 0
}

func (n Number) Gt(other Number) bool {
	c, ok := n.Cmp(other)
	return ok && c > 0
}

func (n Number) Gte(other Number) bool {
	c, ok := n.Cmp(other)
	return ok && c >= 0
}

// Add returns n + other.
func (n Number) Add(other Number) (Number, bool) {
	if n.kind == numberInteger && other.kind == numberInteger {
		sum := n.i + other.i
		if (sum^n.i)&(sum^other.i) >= 0 {
			return IntNumber(sum), true
		}
	}
	return FloatNumber(n.f + other.f), true
}

// Sub returns n - other.
func (n Number) Sub(other Number) (Number, bool) {
	if n.kind == numberInteger && other.kind == numberInteger {
		diff := n.i - other.i
		if (n.i^other.i)&(diff^n.i) >= 0 {
			return IntNumber(diff), true
		}
	}
	return FloatNumber(n.f - other.f), true
}

// Mul returns n * other.
func (n Number) Mul(other Number) (Number, bool) {
	if n.kind == numberInteger && other.kind == numberInteger {
		if n.i == 0 || other.i == 0 {
			return IntNumber(0), true
		}
		prod := n.i * other.i
		if prod/other.i == n.i && !(n.i == -1 && other.i == math.MinInt64) && !(other.i == -1 && n.i == math.MinInt64) {
			return IntNumber(prod), true
		}
	}
	return FloatNumber(n.f * other.f), true
}

// Div returns n / other. Integer division truncates toward zero. There is
// no result when other is zero.
func (n Number) Div(other Number) (Number, bool) {
	if other.isZero() {
		return Number{}, false
	}
	if n.kind == numberInteger && other.kind == numberInteger {
		if n.i == math.MinInt64 && other.i == -1 {
			return FloatNumber(-n.f), true
		}
		return IntNumber(n.i / other.i), true
	}
	return FloatNumber(n.f / other.f), true
}

// Mod returns the remainder of n / other, with the sign of n. There is no
// result when other is zero.
func (n Number) Mod(other Number) (Number, bool) {
	if other.isZero() {
		return Number{}, false
	}
	if n.kind == numberInteger && other.kind == numberInteger {
		if other.i == -1 {
			return IntNumber(0), true
		}
		return IntNumber(n.i % other.i), true
	}
	return FloatNumber(math.Mod(n.f, other.f)), true
}
