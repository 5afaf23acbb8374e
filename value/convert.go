package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Conversions between Values and the outside world: arbitrary Go data,
// JSON and YAML documents.

var timeType = reflect.TypeOf(time.Time{})

// FromAny converts a Go value to a Value.
//
// Supported inputs are booleans, all integer and float types, strings,
// slices and arrays, maps (keys are formatted with fmt when they are not
// strings), structs (honouring json tags and promoting the fields of
// untagged embedded structs like encoding/json) and pointers or interfaces
// to any of those. A Value is returned unchanged. time.Time becomes its
// RFC 3339 string and json.Number is parsed as an integer when possible.
//
// As there is no null value, nil entries of maps and structs are left
// out. A nil at the top level or inside a slice cannot be represented and
// is reported as a type mismatch, as are channels and functions.
func FromAny(v any) (Value, error) {
	switch d := v.(type) {
	case Value:
		return d, nil
	case json.Number:
		return fromJSONNumber(d)
	}
	val, ok, err := fromReflectValue(reflect.ValueOf(v))
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, NewError(ErrTypeMismatch, "cannot convert nil to a value")
	}
	return val, nil
}

// MustFromAny is like FromAny but panics on error. It is meant for
// literals in tests and examples.
func MustFromAny(v any) Value {
	val, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return val
}

func fromJSONNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return FromInt(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, Errorf(ErrTypeMismatch, "invalid number %q", n.String())
	}
	return FromFloat(f), nil
}

// fromReflectValue returns ok == false for nil.
func fromReflectValue(rv reflect.Value) (Value, bool, error) {
	if !rv.IsValid() {
		return Value{}, false, nil
	}
	if rv.CanInterface() {
		switch d := rv.Interface().(type) {
		case Value:
			return d, true, nil
		case json.Number:
			val, err := fromJSONNumber(d)
			return val, err == nil, err
		}
	}
	if rv.Type() == timeType && rv.CanInterface() {
		t := rv.Interface().(time.Time)
		return FromString(t.Format(time.RFC3339Nano)), true, nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return FromBool(rv.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FromInt(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return FromFloat(float64(u)), true, nil
		}
		return FromInt(int64(u)), true, nil
	case reflect.Float32, reflect.Float64:
		return FromFloat(rv.Float()), true, nil
	case reflect.String:
		return FromString(rv.String()), true, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Value{data: []Value{}}, true, nil
		}
		items := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, ok, err := fromReflectValue(rv.Index(i))
			if err != nil {
				return Value{}, false, err
			}
			if !ok {
				return Value{}, false, Errorf(ErrTypeMismatch, "cannot convert nil at index %d to a value", i)
			}
			items[i] = item
		}
		return Value{data: items}, true, nil
	case reflect.Map:
		m := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			var key string
			if k.Kind() == reflect.String {
				key = k.String()
			} else {
				key = fmt.Sprintf("%v", k.Interface())
			}
			item, ok, err := fromReflectValue(iter.Value())
			if err != nil {
				return Value{}, false, err
			}
			if ok {
				m[key] = item
			}
		}
		return Value{data: m}, true, nil
	case reflect.Struct:
		val, err := fromStruct(rv)
		return val, err == nil, err
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Value{}, false, nil
		}
		return fromReflectValue(rv.Elem())
	}
	return Value{}, false, Errorf(ErrTypeMismatch, "cannot convert %s to a value", rv.Type())
}

func fromStruct(rv reflect.Value) (Value, error) {
	t := rv.Type()
	m := make(map[string]Value)
	var promoted []map[string]Value
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tagName, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tagName == "-" {
			continue
		}
		if field.Anonymous && tagName == "" {
			embedded, ok, err := fromEmbedded(rv.Field(i))
			if err != nil {
				return Value{}, err
			}
			if ok {
				promoted = append(promoted, embedded)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tagName != "" {
			name = tagName
		}
		item, ok, err := fromReflectValue(rv.Field(i))
		if err != nil {
			return Value{}, err
		}
		if ok {
			m[name] = item
		}
	}
	// Fields of the outer struct win over promoted ones.
	for _, embedded := range promoted {
		for k, item := range embedded {
			if _, ok := m[k]; !ok {
				m[k] = item
			}
		}
	}
	return Value{data: m}, nil
}

// fromEmbedded converts an untagged embedded struct (or pointer to one)
// whose fields get promoted into the outer object. ok is false when the
// field is not a struct and must be treated as a regular field.
func fromEmbedded(fv reflect.Value) (map[string]Value, bool, error) {
	if fv.Kind() == reflect.Ptr {
		if fv.Type().Elem().Kind() != reflect.Struct {
			return nil, false, nil
		}
		if fv.IsNil() {
			return nil, true, nil
		}
		fv = fv.Elem()
	}
	if fv.Kind() != reflect.Struct || fv.Type() == timeType {
		return nil, false, nil
	}
	val, err := fromStruct(fv)
	if err != nil {
		return nil, false, err
	}
	return val.data.(map[string]Value), true, nil
}

// FromJSON decodes a JSON document. Integral numbers become Integers.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, fmt.Errorf("decoding json: %w", err)
	}
	return FromAny(raw)
}

// FromYAML decodes a YAML document.
func FromYAML(data []byte) (Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Value{}, fmt.Errorf("decoding yaml: %w", err)
	}
	return FromAny(raw)
}

// MarshalJSON implements json.Marshaler. Object keys are emitted sorted.
func (v Value) MarshalJSON() ([]byte, error) {
	switch d := v.data.(type) {
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, Domain("json_encode", fmt.Sprintf("%s cannot be represented in JSON", formatFloat(d)))
		}
		s := strconv.FormatFloat(d, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return []byte(s), nil
	case []Value:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range d {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]Value:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			b, err := d[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return json.Marshal(v.Native())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	val, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
