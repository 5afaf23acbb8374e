package value

import (
	"fmt"
	"math"
)

// Arithmetic and comparison on Values, as used by expression evaluation.
// Both operands must be numbers; the result follows the promotion rules of
// Number.

func binaryOperands(op string, v, other Value) (Number, Number, error) {
	a, ok := v.AsNumber()
	if !ok {
		return Number{}, Number{}, TypeMismatch(op, v, "a number")
	}
	b, ok := other.AsNumber()
	if !ok {
		return Number{}, Number{}, TypeMismatch(op, other, "a number")
	}
	return a, b, nil
}

// Add performs addition.
func (v Value) Add(other Value) (Value, error) {
	a, b, err := binaryOperands("+", v, other)
	if err != nil {
		return Value{}, err
	}
	n, _ := a.Add(b)
	return n.Value(), nil
}

// Sub performs subtraction.
func (v Value) Sub(other Value) (Value, error) {
	a, b, err := binaryOperands("-", v, other)
	if err != nil {
		return Value{}, err
	}
	n, _ := a.Sub(b)
	return n.Value(), nil
}

// Mul performs multiplication.
func (v Value) Mul(other Value) (Value, error) {
	a, b, err := binaryOperands("*", v, other)
	if err != nil {
		return Value{}, err
	}
	n, _ := a.Mul(b)
	return n.Value(), nil
}

// Div performs division. Dividing by zero is a domain error.
func (v Value) Div(other Value) (Value, error) {
	a, b, err := binaryOperands("/", v, other)
	if err != nil {
		return Value{}, err
	}
	n, ok := a.Div(b)
	if !ok {
		return Value{}, Domain("/", fmt.Sprintf("division by zero: %s / %s", v.Repr(), other.Repr()))
	}
	return n.Value(), nil
}

// Rem computes the remainder. A zero divisor is a domain error.
func (v Value) Rem(other Value) (Value, error) {
	a, b, err := binaryOperands("%", v, other)
	if err != nil {
		return Value{}, err
	}
	n, ok := a.Mod(b)
	if !ok {
		return Value{}, Domain("%", fmt.Sprintf("modulo by zero: %s %% %s", v.Repr(), other.Repr()))
	}
	return n.Value(), nil
}

// Compare orders two values of the same comparable shape: numbers (across
// representations), strings and booleans (false < true). Other
// combinations, and NaN, are a type mismatch.
func (v Value) Compare(other Value) (int, error) {
	if a, ok := v.AsNumber(); ok {
		b, ok := other.AsNumber()
		if !ok {
			return 0, TypeMismatch("compare", other, "a number")
		}
		c, ok := a.Cmp(b)
		if !ok {
			if math.IsNaN(a.Float()) {
				return 0, NotSortable(v)
			}
			return 0, NotSortable(other)
		}
		return c, nil
	}
	switch v.Kind() {
	case KindString:
		a, _ := v.AsString()
		b, ok := other.AsString()
		if !ok {
			return 0, TypeMismatch("compare", other, "a string")
		}
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil
	case KindBool:
		a, _ := v.AsBool()
		b, ok := other.AsBool()
		if !ok {
			return 0, TypeMismatch("compare", other, "a bool")
		}
		switch {
		case a == b:
			return 0, nil
		case !a:
			return -1, nil
		}
		return 1, nil
	}
	return 0, TypeMismatch("compare", v, "a number, string or bool")
}
