package tmplcore

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/mitsuhiko/tmplcore/value"
)

// Built-in tests. A test receives nil when the tested variable is
// undefined; only `defined` and `undefined` accept that; the rest fail.

func checkArity(name string, max int, args []value.Value) error {
	if len(args) <= max {
		return nil
	}
	if max == 0 {
		return &value.Error{
			Kind:    value.ErrInvalidArgumentValue,
			Op:      name,
			Message: "test was called with some args but this test doesn't take args",
		}
	}
	return &value.Error{
		Kind:    value.ErrInvalidArgumentValue,
		Op:      name,
		Message: fmt.Sprintf("test was called with %d args, the max number is %d", len(args), max),
	}
}

func checkDefined(name string, val *value.Value) error {
	if val == nil {
		return &value.Error{
			Kind:    value.ErrUndefinedVariable,
			Op:      name,
			Message: "test was called on an undefined variable",
		}
	}
	return nil
}

// prepareTest runs the arity and definedness checks shared by every test
// except `defined` and `undefined`.
func prepareTest(name string, max int, val *value.Value, args []value.Value) error {
	if err := checkArity(name, max, args); err != nil {
		return err
	}
	return checkDefined(name, val)
}

func firstArg(name string, args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Value{}, value.MissingArgument(name, "0")
	}
	return args[0], nil
}

func stringParam(name string, args []value.Value) (string, error) {
	arg, err := firstArg(name, args)
	if err != nil {
		return "", err
	}
	s, ok := arg.AsString()
	if !ok {
		return "", value.ArgTypeMismatch(name, "0", arg, "a string")
	}
	return s, nil
}

// TestDefined checks if a value is defined.
//
// Example:
//
//	{% if my_variable is defined %}
func TestDefined(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := checkArity("defined", 0, args); err != nil {
		return false, err
	}
	return val != nil, nil
}

// TestUndefined checks if a value is undefined.
func TestUndefined(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := checkArity("undefined", 0, args); err != nil {
		return false, err
	}
	return val == nil, nil
}

// TestString checks if a value is a string.
func TestString(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("string", 0, val, args); err != nil {
		return false, err
	}
	return val.Kind() == value.KindString, nil
}

// TestNumber checks if a value is an integer or a float.
func TestNumber(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("number", 0, val, args); err != nil {
		return false, err
	}
	return val.IsNumber(), nil
}

// TestOdd checks if a number is odd.
func TestOdd(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("odd", 0, val, args); err != nil {
		return false, err
	}
	return isOdd("odd", *val)
}

// TestEven checks if a number is even.
func TestEven(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("even", 0, val, args); err != nil {
		return false, err
	}
	odd, err := isOdd("even", *val)
	return !odd, err
}

func isOdd(name string, v value.Value) (bool, error) {
	if i, ok := v.AsInt(); ok {
		return i%2 != 0, nil
	}
	f, err := v.TryFloat(name)
	if err != nil {
		return false, err
	}
	return math.Mod(f, 2) != 0, nil
}

// TestDivisibleBy checks if a number is divisible by the argument.
//
// Example:
//
//	{% if count is divisibleby(3) %}
func TestDivisibleBy(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("divisibleby", 1, val, args); err != nil {
		return false, err
	}
	n, err := val.TryNumber("divisibleby")
	if err != nil {
		return false, err
	}
	arg, err := firstArg("divisibleby", args)
	if err != nil {
		return false, err
	}
	d, ok := arg.AsNumber()
	if !ok {
		return false, value.ArgTypeMismatch("divisibleby", "0", arg, "a number")
	}
	rem, ok := n.Mod(d)
	if !ok {
		return false, nil
	}
	return rem.Eq(value.IntNumber(0)), nil
}

// TestIterable checks if a value is an array.
func TestIterable(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("iterable", 0, val, args); err != nil {
		return false, err
	}
	return val.Kind() == value.KindArray, nil
}

// TestStartingWith checks if a string starts with the argument.
func TestStartingWith(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("starting_with", 1, val, args); err != nil {
		return false, err
	}
	s, err := val.TryString("starting_with")
	if err != nil {
		return false, err
	}
	needle, err := stringParam("starting_with", args)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(s, needle), nil
}

// TestEndingWith checks if a string ends with the argument.
func TestEndingWith(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("ending_with", 1, val, args); err != nil {
		return false, err
	}
	s, err := val.TryString("ending_with")
	if err != nil {
		return false, err
	}
	needle, err := stringParam("ending_with", args)
	if err != nil {
		return false, err
	}
	return strings.HasSuffix(s, needle), nil
}

// TestContaining checks if a string contains a substring, an array an
// element or an object a key.
func TestContaining(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("containing", 1, val, args); err != nil {
		return false, err
	}
	switch val.Kind() {
	case value.KindString:
		s, _ := val.AsString()
		needle, err := stringParam("containing", args)
		if err != nil {
			return false, err
		}
		return strings.Contains(s, needle), nil
	case value.KindArray:
		needle, err := firstArg("containing", args)
		if err != nil {
			return false, err
		}
		items, _ := val.AsSlice()
		return slices.ContainsFunc(items, needle.Equal), nil
	case value.KindObject:
		key, err := stringParam("containing", args)
		if err != nil {
			return false, err
		}
		_, ok := val.Get(key)
		return ok, nil
	}
	return false, value.TypeMismatch("containing", *val, "a string, an array or an object")
}

// TestMatching checks if a string matches the regular expression given as
// argument.
func TestMatching(_ *State, val *value.Value, args []value.Value) (bool, error) {
	if err := prepareTest("matching", 1, val, args); err != nil {
		return false, err
	}
	s, err := val.TryString("matching")
	if err != nil {
		return false, err
	}
	pattern, err := stringParam("matching", args)
	if err != nil {
		return false, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, value.InvalidArgument("matching", "0", fmt.Sprintf("invalid regular expression: %v", err))
	}
	return re.MatchString(s), nil
}
