package tmplcore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lestrrat-go/strftime"

	"github.com/mitsuhiko/tmplcore/sorting"
	"github.com/mitsuhiko/tmplcore/value"
)

// Built-in filters operating on arrays, numbers, objects and values of any
// kind. The string filters live in filters_string.go.

// filterFirst implements the built-in `first` filter.
func filterFirst(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("first", val)
	if err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return value.FromString(""), nil
	}
	return items[0], nil
}

// filterLast implements the built-in `last` filter.
func filterLast(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("last", val)
	if err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return value.FromString(""), nil
	}
	return items[len(items)-1], nil
}

// filterNth implements the built-in `nth` filter.
func filterNth(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("nth", val)
	if err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return value.FromString(""), nil
	}
	if _, err := requiredArg("nth", args, "n"); err != nil {
		return value.Value{}, err
	}
	n, err := coercedIntArg("nth", args, "n", 0)
	if err != nil {
		return value.Value{}, err
	}
	if n < 0 {
		return value.Value{}, value.InvalidArgument("nth", "n", fmt.Sprintf("index must not be negative, got %d", n))
	}
	if n >= int64(len(items)) {
		return value.FromString(""), nil
	}
	return items[n], nil
}

// filterJoin implements the built-in `join` filter.
func filterJoin(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("join", val)
	if err != nil {
		return value.Value{}, err
	}
	sep, err := stringArg("join", args, "sep", "")
	if err != nil {
		return value.Value{}, err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return value.FromString(strings.Join(parts, sep)), nil
}

// filterSort implements the built-in `sort` filter. The optional
// `attribute` argument is a dotted path into each element.
func filterSort(state *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("sort", val)
	if err != nil {
		return value.Value{}, err
	}
	attribute, err := stringArg("sort", args, "attribute", "")
	if err != nil {
		return value.Value{}, err
	}
	state.env.metrics.ObserveSort(len(items))
	sorted, err := sorting.SortNamed("sort", items, sorting.ByPointer("sort", attribute))
	if err != nil {
		return value.Value{}, err
	}
	return value.FromSlice(sorted), nil
}

// filterGroupBy implements the built-in `group_by` filter. Elements are
// grouped under the rendered value found at `attribute`; elements without
// it are dropped.
func filterGroupBy(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("group_by", val)
	if err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return value.FromMap(nil), nil
	}
	attribute, err := requiredStringArg("group_by", args, "attribute")
	if err != nil {
		return value.Value{}, err
	}
	groups := make(map[string][]value.Value)
	for _, item := range items {
		key, ok := item.Pointer(attribute)
		if !ok {
			continue
		}
		k := key.String()
		groups[k] = append(groups[k], item)
	}
	result := make(map[string]value.Value, len(groups))
	for k, group := range groups {
		result[k] = value.FromSlice(group)
	}
	return value.FromMap(result), nil
}

// filterFilter implements the built-in `filter` filter. It keeps the
// elements whose `attribute` equals `value`.
func filterFilter(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("filter", val)
	if err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return val, nil
	}
	attribute, err := requiredStringArg("filter", args, "attribute")
	if err != nil {
		return value.Value{}, err
	}
	want, err := requiredArg("filter", args, "value")
	if err != nil {
		return value.Value{}, err
	}
	result := make([]value.Value, 0, len(items))
	for _, item := range items {
		if got, ok := item.Pointer(attribute); ok && got.Equal(want) {
			result = append(result, item)
		}
	}
	return value.FromSlice(result), nil
}

// filterSlice implements the built-in `slice` filter. Bounds are clamped
// to the array; a start past the end gives an empty array.
func filterSlice(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("slice", val)
	if err != nil {
		return value.Value{}, err
	}
	start, err := coercedIntArg("slice", args, "start", 0)
	if err != nil {
		return value.Value{}, err
	}
	end, err := coercedIntArg("slice", args, "end", int64(len(items)))
	if err != nil {
		return value.Value{}, err
	}
	n := int64(len(items))
	start = max(start, 0)
	end = min(max(end, 0), n)
	if start >= end {
		return value.FromSlice(nil), nil
	}
	return value.FromSlice(items[start:end]), nil
}

// filterConcat implements the built-in `concat` filter. An array argument
// is appended element by element, anything else as a single element.
func filterConcat(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("concat", val)
	if err != nil {
		return value.Value{}, err
	}
	with, err := requiredArg("concat", args, "with")
	if err != nil {
		return value.Value{}, err
	}
	if more, ok := with.AsSlice(); ok {
		items = append(items, more...)
	} else {
		items = append(items, with)
	}
	return value.FromSlice(items), nil
}

// filterUnique implements the built-in `unique` filter. The first
// occurrence of each element is kept.
func filterUnique(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("unique", val)
	if err != nil {
		return value.Value{}, err
	}
	result := make([]value.Value, 0, len(items))
	for _, item := range items {
		if !slices.ContainsFunc(result, item.Equal) {
			result = append(result, item)
		}
	}
	return value.FromSlice(result), nil
}

// filterSum implements the built-in `sum` filter.
func filterSum(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	items, err := arrayInput("sum", val)
	if err != nil {
		return value.Value{}, err
	}
	total := value.IntNumber(0)
	for _, item := range items {
		n, err := item.TryNumber("sum")
		if err != nil {
			return value.Value{}, err
		}
		total, _ = total.Add(n)
	}
	return total.Value(), nil
}

func extremum(op string, val value.Value, want int) (value.Value, error) {
	items, err := arrayInput(op, val)
	if err != nil {
		return value.Value{}, err
	}
	if len(items) == 0 {
		return value.FromString(""), nil
	}
	best := items[0]
	for _, item := range items[1:] {
		c, err := item.Compare(best)
		if err != nil {
			return value.Value{}, err
		}
		if c == want {
			best = item
		}
	}
	return best, nil
}

// filterMin implements the built-in `min` filter.
func filterMin(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	return extremum("min", val, -1)
}

// filterMax implements the built-in `max` filter.
func filterMax(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	return extremum("max", val, 1)
}

// filterLength implements the built-in `length` filter. Values without a
// length count as zero.
func filterLength(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	switch val.Kind() {
	case value.KindString, value.KindArray:
		n, _ := val.Len()
		return value.FromInt(int64(n)), nil
	}
	return value.FromInt(0), nil
}

// filterReverse implements the built-in `reverse` filter.
func filterReverse(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	switch val.Kind() {
	case value.KindArray:
		items, _ := val.AsSlice()
		slices.Reverse(items)
		return value.FromSlice(items), nil
	case value.KindString:
		s, _ := val.AsString()
		runes := []rune(s)
		slices.Reverse(runes)
		return value.FromString(string(runes)), nil
	}
	return value.Value{}, value.TypeMismatch("reverse", val, "an array or a string")
}

// filterJSONEncode implements the built-in `json_encode` filter.
func filterJSONEncode(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	pretty, err := boolArg("json_encode", args, "pretty", false)
	if err != nil {
		return value.Value{}, err
	}
	data, err := val.MarshalJSON()
	if err != nil {
		return value.Value{}, err
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return value.Value{}, fmt.Errorf("indenting json: %w", err)
		}
		data = buf.Bytes()
	}
	return value.FromString(string(data)), nil
}

// filterDate implements the built-in `date` filter. It accepts a unix
// timestamp in seconds, an RFC 3339 (or zoneless) datetime string or a
// YYYY-MM-DD date and formats it with a strftime pattern.
func filterDate(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	format, err := stringArg("date", args, "format", "%Y-%m-%d")
	if err != nil {
		return value.Value{}, err
	}
	var t time.Time
	switch val.Kind() {
	case value.KindInteger:
		ts, _ := val.AsInt()
		t = time.Unix(ts, 0).UTC()
	case value.KindString:
		s, _ := val.AsString()
		t, err = parseDate(s)
		if err != nil {
			return value.Value{}, err
		}
	default:
		return value.Value{}, value.TypeMismatch("date", val, "an integer or a string")
	}
	out, err := strftime.Format(format, t)
	if err != nil {
		return value.Value{}, value.InvalidArgument("date", "format", err.Error())
	}
	return value.FromString(out), nil
}

func parseDate(s string) (time.Time, error) {
	if strings.Contains(s, "T") {
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, value.Errorf(value.ErrInvalidArgumentValue, "error parsing %q as rfc3339 date or naive datetime", s).WithOp("date")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, value.Errorf(value.ErrInvalidArgumentValue, "error parsing %q as YYYY-MM-DD date", s).WithOp("date")
	}
	return t, nil
}

// filterAsStr implements the built-in `as_str` filter.
func filterAsStr(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	return value.FromString(val.String()), nil
}

// filterPluralize implements the built-in `pluralize` filter. It returns
// the suffix unless the number is 1 or -1.
func filterPluralize(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	n, err := val.TryNumber("pluralize")
	if err != nil {
		return value.Value{}, err
	}
	var plural bool
	if i, ok := val.AsInt(); ok {
		plural = i != 1 && i != -1
	} else {
		plural = math.Abs(math.Abs(n.Float())-1) > epsilon
	}
	if !plural {
		return value.FromString(""), nil
	}
	suffix, err := stringArg("pluralize", args, "suffix", "s")
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(suffix), nil
}

const epsilon = 2.220446049250313e-16

// filterRound implements the built-in `round` filter. Integers are
// returned unchanged.
func filterRound(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	if val.Kind() == value.KindInteger {
		return val, nil
	}
	f, err := val.TryFloat("round")
	if err != nil {
		return value.Value{}, err
	}
	method, err := stringArg("round", args, "method", "common")
	if err != nil {
		return value.Value{}, err
	}
	precision, err := intArg("round", args, "precision", 0)
	if err != nil {
		return value.Value{}, err
	}

	multiplier := math.Pow(10, float64(precision))

	switch method {
	case "common":
		f = math.Round(f*multiplier) / multiplier
	case "ceil":
		f = math.Ceil(f*multiplier) / multiplier
	case "floor":
		f = math.Floor(f*multiplier) / multiplier
	default:
		return value.Value{}, value.InvalidArgument("round", "method",
			fmt.Sprintf("got %q, only common, ceil and floor are allowed", method))
	}
	return value.FromFloat(f), nil
}

// filterAbs implements the built-in `abs` filter.
func filterAbs(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	if i, ok := val.AsInt(); ok {
		if i == math.MinInt64 {
			return value.FromFloat(-float64(i)), nil
		}
		if i < 0 {
			return value.FromInt(-i), nil
		}
		return val, nil
	}
	f, err := val.TryFloat("abs")
	if err != nil {
		return value.Value{}, err
	}
	return value.FromFloat(math.Abs(f)), nil
}

// filterFilesizeformat implements the built-in `filesizeformat` filter.
func filterFilesizeformat(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	n, err := val.TryInt("filesizeformat")
	if err != nil {
		return value.Value{}, err
	}
	if n < 0 {
		return value.Value{}, value.InvalidArgument("filesizeformat", "value",
			fmt.Sprintf("called on a negative number: %d", n))
	}
	return value.FromString(humanize.Bytes(uint64(n))), nil
}

// filterGet implements the built-in `get` filter.
func filterGet(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	key, err := requiredStringArg("get", args, "key")
	if err != nil {
		return value.Value{}, err
	}
	obj, err := val.TryObject("get")
	if err != nil {
		return value.Value{}, err
	}
	v, ok := obj[key]
	if !ok {
		return value.Value{}, &value.Error{
			Kind:    value.ErrFieldNotFound,
			Op:      "get",
			Arg:     "key",
			Message: fmt.Sprintf("key `%s` was not found", key),
		}
	}
	return v, nil
}

// filterKeys implements the built-in `keys` filter.
func filterKeys(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	if _, err := val.TryObject("keys"); err != nil {
		return value.Value{}, err
	}
	keys := val.Keys()
	result := make([]value.Value, len(keys))
	for i, k := range keys {
		result[i] = value.FromString(k)
	}
	return value.FromSlice(result), nil
}

// filterValues implements the built-in `values` filter.
func filterValues(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	obj, err := val.TryObject("values")
	if err != nil {
		return value.Value{}, err
	}
	keys := val.Keys()
	result := make([]value.Value, len(keys))
	for i, k := range keys {
		result[i] = obj[k]
	}
	return value.FromSlice(result), nil
}

// filterItems implements the built-in `items` filter. It returns
// [key, value] pairs in key order.
func filterItems(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	obj, err := val.TryObject("items")
	if err != nil {
		return value.Value{}, err
	}
	keys := val.Keys()
	result := make([]value.Value, len(keys))
	for i, k := range keys {
		result[i] = value.FromSlice([]value.Value{value.FromString(k), obj[k]})
	}
	return value.FromSlice(result), nil
}
