// Package value provides the dynamic value type of the evaluation core.
//
// All data that flows through a render, whether it comes from the caller's
// context, from a literal in the template or from a filter, is represented
// as a Value. The set of kinds is closed:
//   - Bool: true or false
//   - Integer: a signed 64-bit integer
//   - Float: a 64-bit floating point number
//   - String: UTF-8 text
//   - Array: an ordered sequence of values
//   - Object: a mapping from string keys to values
//
// There is no null kind. A missing value is expressed by the absence of a
// result (an ok flag of false, or a nil *Value), never by a value of its own.
//
// # Example Usage
//
//	user := value.FromMap(map[string]value.Value{
//	    "name": value.FromString("Ada"),
//	    "tags": value.FromSlice([]value.Value{
//	        value.FromString("admin"),
//	        value.FromString("ops"),
//	    }),
//	})
//
//	tag, ok := user.Pointer("tags.1") // "ops", true
//
//	// Hard failure for operations that need a concrete type
//	name, err := user.TryString("upper") // type mismatch error
//
//	// Soft probe for callers that only want to know
//	a, _ := value.FromInt(2).AsNumber()
//	b, _ := value.FromFloat(2.0).AsNumber()
//	a.Eq(b) // true
//
// Values are immutable. Constructors copy the slices and maps they are
// given and accessors hand out copies, so no two values ever share mutable
// state.
package value

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind describes the type of a Value.
type Kind int

const (
	// KindString is also the kind of the zero Value.
	KindString Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value represents a dynamically typed value.
//
// The zero Value is the empty string.
type Value struct {
	data any
}

// FromBool creates a boolean value.
func FromBool(v bool) Value {
	return Value{data: v}
}

// FromInt creates an integer value.
func FromInt(v int64) Value {
	return Value{data: v}
}

// FromFloat creates a float value.
func FromFloat(v float64) Value {
	return Value{data: v}
}

// FromString creates a string value.
func FromString(v string) Value {
	return Value{data: v}
}

// FromSlice creates an array value. The slice is copied.
func FromSlice(v []Value) Value {
	if v == nil {
		return Value{data: []Value{}}
	}
	return Value{data: slices.Clone(v)}
}

// FromMap creates an object value. The map is copied.
func FromMap(v map[string]Value) Value {
	if v == nil {
		return Value{data: map[string]Value{}}
	}
	return Value{data: maps.Clone(v)}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind {
	switch v.data.(type) {
	case bool:
		return KindBool
	case int64:
		return KindInteger
	case float64:
		return KindFloat
	case []Value:
		return KindArray
	case map[string]Value:
		return KindObject
	default:
		return KindString
	}
}

// IsNumber reports whether the value is an Integer or a Float.
func (v Value) IsNumber() bool {
	switch v.data.(type) {
	case int64, float64:
		return true
	}
	return false
}

// AsBool returns the boolean if the value is a Bool.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok
}

// AsInt returns the integer if the value is an Integer.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok
}

// AsFloat returns the value as float64 if it is a Float or an Integer.
func (v Value) AsFloat() (float64, bool) {
	switch d := v.data.(type) {
	case float64:
		return d, true
	case int64:
		return float64(d), true
	}
	return 0, false
}

// AsString returns the string if the value is a String.
func (v Value) AsString() (string, bool) {
	switch d := v.data.(type) {
	case string:
		return d, true
	case nil:
		return "", true
	}
	return "", false
}

// AsSlice returns a copy of the elements if the value is an Array.
func (v Value) AsSlice() ([]Value, bool) {
	if s, ok := v.data.([]Value); ok {
		return slices.Clone(s), true
	}
	return nil, false
}

// AsMap returns a copy of the entries if the value is an Object.
func (v Value) AsMap() (map[string]Value, bool) {
	if m, ok := v.data.(map[string]Value); ok {
		return maps.Clone(m), true
	}
	return nil, false
}

// TryBool returns the boolean or a type mismatch error naming op.
func (v Value) TryBool(op string) (bool, error) {
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	return false, TypeMismatch(op, v, "a bool")
}

// TryInt returns the integer or a type mismatch error naming op.
func (v Value) TryInt(op string) (int64, error) {
	if i, ok := v.AsInt(); ok {
		return i, nil
	}
	return 0, TypeMismatch(op, v, "an integer")
}

// TryFloat returns the number as float64 or a type mismatch error naming op.
func (v Value) TryFloat(op string) (float64, error) {
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	return 0, TypeMismatch(op, v, "a number")
}

// TryString returns the string or a type mismatch error naming op.
func (v Value) TryString(op string) (string, error) {
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	return "", TypeMismatch(op, v, "a string")
}

// TryArray returns the elements or a type mismatch error naming op.
func (v Value) TryArray(op string) ([]Value, error) {
	if s, ok := v.AsSlice(); ok {
		return s, nil
	}
	return nil, TypeMismatch(op, v, "an array")
}

// TryObject returns the entries or a type mismatch error naming op.
func (v Value) TryObject(op string) (map[string]Value, error) {
	if m, ok := v.AsMap(); ok {
		return m, nil
	}
	return nil, TypeMismatch(op, v, "an object")
}

// Len returns the number of characters of a string, or the number of
// elements of an array or object.
func (v Value) Len() (int, bool) {
	switch d := v.data.(type) {
	case nil:
		return 0, true
	case string:
		return utf8.RuneCountInString(d), true
	case []Value:
		return len(d), true
	case map[string]Value:
		return len(d), true
	}
	return 0, false
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	s, ok := v.data.([]Value)
	if !ok || i < 0 || i >= len(s) {
		return Value{}, false
	}
	return s[i], true
}

// Get returns the entry stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	m, ok := v.data.(map[string]Value)
	if !ok {
		return Value{}, false
	}
	val, ok := m[key]
	return val, ok
}

// Keys returns the sorted keys of an object, or nil for other kinds.
func (v Value) Keys() []string {
	m, ok := v.data.(map[string]Value)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsTruthy checks if the value is considered true. False, zero, the empty
// string and empty containers are falsy.
func (v Value) IsTruthy() bool {
	switch d := v.data.(type) {
	case nil:
		return false
	case bool:
		return d
	case int64:
		return d != 0
	case float64:
		return d != 0
	case string:
		return d != ""
	case []Value:
		return len(d) > 0
	case map[string]Value:
		return len(d) > 0
	}
	return false
}

// String renders the value as text for interpolation.
//
// Strings render verbatim, numbers in their usual decimal notation and
// arrays as a bracketed, comma separated list of their rendered elements.
// Objects are not rendered deeply and always produce "[object]".
func (v Value) String() string {
	switch d := v.data.(type) {
	case nil:
		return ""
	case bool:
		if d {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(d, 10)
	case float64:
		return formatFloat(d)
	case string:
		return d
	case []Value:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range d {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	case map[string]Value:
		return "[object]"
	}
	return fmt.Sprint(v.data)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Repr returns a debug representation of the value. Unlike String it
// quotes strings and renders objects with their (sorted) entries.
func (v Value) Repr() string {
	switch d := v.data.(type) {
	case nil:
		return `""`
	case string:
		return strconv.Quote(d)
	case float64:
		s := formatFloat(d)
		if !strings.ContainsAny(s, ".naif") {
			s += ".0"
		}
		return s
	case []Value:
		parts := make([]string, len(d))
		for i, item := range d {
			parts[i] = item.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]Value:
		keys := v.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + d[k].Repr()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.String()
}

// GoString implements fmt.GoStringer so %#v prints the debug form.
func (v Value) GoString() string {
	return v.Repr()
}

// Equal reports whether two values are equal.
//
// Numbers compare across representations, so FromInt(2) equals
// FromFloat(2.0). Arrays and objects compare structurally.
func (v Value) Equal(other Value) bool {
	if a, ok := v.AsNumber(); ok {
		if b, ok := other.AsNumber(); ok {
			return a.Eq(b)
		}
		return false
	}
	switch d := v.data.(type) {
	case nil, string:
		s, _ := v.AsString()
		o, ok := other.AsString()
		return ok && s == o
	case bool:
		o, ok := other.data.(bool)
		return ok && d == o
	case []Value:
		o, ok := other.data.([]Value)
		if !ok || len(d) != len(o) {
			return false
		}
		for i := range d {
			if !d[i].Equal(o[i]) {
				return false
			}
		}
		return true
	case map[string]Value:
		o, ok := other.data.(map[string]Value)
		if !ok || len(d) != len(o) {
			return false
		}
		for k, a := range d {
			b, ok := o[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// Native converts the value back into plain Go data: bool, int64, float64,
// string, []any and map[string]any.
func (v Value) Native() any {
	switch d := v.data.(type) {
	case nil:
		return ""
	case []Value:
		out := make([]any, len(d))
		for i, item := range d {
			out[i] = item.Native()
		}
		return out
	case map[string]Value:
		out := make(map[string]any, len(d))
		for k, item := range d {
			out[k] = item.Native()
		}
		return out
	}
	return v.data
}
