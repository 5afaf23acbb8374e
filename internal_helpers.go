package tmplcore

import (
	"github.com/spf13/cast"

	"github.com/mitsuhiko/tmplcore/value"
)

// Helpers for reading named call arguments. Every helper takes the name of
// the calling filter or function so errors point at it.

func requiredArg(op string, args map[string]value.Value, name string) (value.Value, error) {
	v, ok := args[name]
	if !ok {
		return value.Value{}, value.MissingArgument(op, name)
	}
	return v, nil
}

func stringArg(op string, args map[string]value.Value, name, def string) (string, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", value.ArgTypeMismatch(op, name, v, "a string")
	}
	return s, nil
}

func requiredStringArg(op string, args map[string]value.Value, name string) (string, error) {
	v, err := requiredArg(op, args, name)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", value.ArgTypeMismatch(op, name, v, "a string")
	}
	return s, nil
}

func boolArg(op string, args map[string]value.Value, name string, def bool) (bool, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	b, ok := v.AsBool()
	if !ok {
		return false, value.ArgTypeMismatch(op, name, v, "a bool")
	}
	return b, nil
}

func intArg(op string, args map[string]value.Value, name string, def int64) (int64, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, value.ArgTypeMismatch(op, name, v, "an integer")
	}
	return i, nil
}

// coercedIntArg accepts any number, or a string holding one, and truncates
// it to an integer.
func coercedIntArg(op string, args map[string]value.Value, name string, def int64) (int64, error) {
	v, ok := args[name]
	if !ok {
		return def, nil
	}
	switch v.Kind() {
	case value.KindInteger, value.KindFloat, value.KindString:
		i, err := cast.ToInt64E(v.Native())
		if err == nil {
			return i, nil
		}
	}
	return 0, value.ArgTypeMismatch(op, name, v, "a number")
}

// arrayInput returns the elements of val or a type mismatch naming op.
func arrayInput(op string, val value.Value) ([]value.Value, error) {
	return val.TryArray(op)
}

// stringInput returns the text of val or a type mismatch naming op.
func stringInput(op string, val value.Value) (string, error) {
	return val.TryString(op)
}
