package tmplcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsuhiko/tmplcore/value"
)

type args = map[string]value.Value

func applyFilter(t *testing.T, name string, val value.Value, a args) (value.Value, error) {
	t.Helper()
	return NewEnvironment().NewState(t.Name(), nil).ApplyFilter(name, val, a)
}

func mustFilter(t *testing.T, name string, val value.Value, a args) value.Value {
	t.Helper()
	got, err := applyFilter(t, name, val, a)
	require.NoError(t, err)
	return got
}

func strs(vals ...string) value.Value {
	items := make([]value.Value, len(vals))
	for i, v := range vals {
		items[i] = value.FromString(v)
	}
	return value.FromSlice(items)
}

func assertValue(t *testing.T, want, got value.Value) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want.Repr(), got.Repr())
}

func TestFilter_EmptyArrayDefaults(t *testing.T) {
	empty := value.FromSlice(nil)
	for _, name := range []string{"first", "last", "nth"} {
		t.Run(name, func(t *testing.T) {
			got := mustFilter(t, name, empty, args{"n": value.FromInt(1)})
			assertValue(t, value.FromString(""), got)
		})
	}
}

func TestFilter_FirstLastNth(t *testing.T) {
	arr := ints(1, 2, 3, 4)

	assertValue(t, value.FromInt(1), mustFilter(t, "first", arr, nil))
	assertValue(t, value.FromInt(4), mustFilter(t, "last", arr, nil))
	assertValue(t, value.FromInt(2), mustFilter(t, "nth", arr, args{"n": value.FromInt(1)}))
	assertValue(t, value.FromInt(3), mustFilter(t, "nth", arr, args{"n": value.FromString("2")}))
	assertValue(t, value.FromString(""), mustFilter(t, "nth", arr, args{"n": value.FromInt(10)}))

	_, err := applyFilter(t, "nth", arr, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = applyFilter(t, "nth", arr, args{"n": value.FromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidArgumentValue)
	_, err = applyFilter(t, "first", value.FromString("abc"), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Join(t *testing.T) {
	assertValue(t, value.FromString("123"), mustFilter(t, "join", ints(1, 2, 3), nil))
	assertValue(t, value.FromString("a, b"), mustFilter(t, "join", strs("a", "b"), args{"sep": value.FromString(", ")}))

	_, err := applyFilter(t, "join", strs("a"), args{"sep": value.FromInt(1)})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Sort(t *testing.T) {
	assertValue(t, ints(1, 2, 3), mustFilter(t, "sort", ints(3, 1, 2), nil))
	assertValue(t, value.FromSlice(nil), mustFilter(t, "sort", value.FromSlice(nil), nil))

	people := value.MustFromAny([]map[string]any{
		{"name": "bob", "age": 31},
		{"name": "ada", "age": 36},
		{"name": "cy", "age": 31},
	})
	got := mustFilter(t, "sort", people, args{"attribute": value.FromString("age")})
	names := make([]string, 0, 3)
	items, _ := got.AsSlice()
	for _, item := range items {
		n, _ := item.Get("name")
		names = append(names, n.String())
	}
	assert.Equal(t, []string{"bob", "cy", "ada"}, names)

	_, err := applyFilter(t, "sort", people, args{"attribute": value.FromString("email")})
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = applyFilter(t, "sort", value.FromSlice([]value.Value{value.FromInt(1), value.FromString("a")}), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	nested := value.MustFromAny([]map[string]any{
		{"k": 2},
		{"k": map[string]any{"a": 1}},
	})
	_, err = applyFilter(t, "sort", nested, args{"attribute": value.FromString("k")})
	assert.ErrorIs(t, err, ErrNotSortable)
	assert.Contains(t, err.Error(), "`sort`")
}

func TestFilter_GroupBy(t *testing.T) {
	posts := value.MustFromAny([]map[string]any{
		{"title": "a", "year": 2020},
		{"title": "b", "year": 2021},
		{"title": "c", "year": 2020},
		{"title": "d"},
	})
	got := mustFilter(t, "group_by", posts, args{"attribute": value.FromString("year")})

	assert.Equal(t, []string{"2020", "2021"}, got.Keys())
	group, _ := got.Get("2020")
	n, _ := group.Len()
	assert.Equal(t, 2, n)

	_, err := applyFilter(t, "group_by", posts, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)

	empty := mustFilter(t, "group_by", value.FromSlice(nil), nil)
	assert.Equal(t, value.KindObject, empty.Kind())
}

func TestFilter_Filter(t *testing.T) {
	posts := value.MustFromAny([]map[string]any{
		{"title": "a", "draft": true},
		{"title": "b", "draft": false},
		{"title": "c"},
	})
	got := mustFilter(t, "filter", posts, args{
		"attribute": value.FromString("draft"),
		"value":     value.FromBool(false),
	})
	items, _ := got.AsSlice()
	require.Len(t, items, 1)
	title, _ := items[0].Get("title")
	assert.Equal(t, "b", title.String())

	_, err := applyFilter(t, "filter", posts, args{"attribute": value.FromString("draft")})
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestFilter_Slice(t *testing.T) {
	arr := ints(1, 2, 3, 4, 5)
	tests := []struct {
		name string
		args args
		want value.Value
	}{
		{"no bounds", nil, arr},
		{"start", args{"start": value.FromInt(3)}, ints(4, 5)},
		{"end", args{"end": value.FromInt(2)}, ints(1, 2)},
		{"float bounds", args{"start": value.FromFloat(1), "end": value.FromFloat(3)}, ints(2, 3)},
		{"end past len", args{"end": value.FromInt(10)}, arr},
		{"start past len", args{"start": value.FromInt(10)}, value.FromSlice(nil)},
		{"negative start", args{"start": value.FromInt(-2)}, arr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValue(t, tt.want, mustFilter(t, "slice", arr, tt.args))
		})
	}

	_, err := applyFilter(t, "slice", arr, args{"start": value.FromBool(true)})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Concat(t *testing.T) {
	assertValue(t, ints(1, 2, 3), mustFilter(t, "concat", ints(1), args{"with": ints(2, 3)}))
	assertValue(t, ints(1, 2), mustFilter(t, "concat", ints(1), args{"with": value.FromInt(2)}))

	_, err := applyFilter(t, "concat", ints(1), nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestFilter_Aggregates(t *testing.T) {
	assertValue(t, ints(1, 2, 3), mustFilter(t, "unique", ints(1, 2, 1, 3, 2), nil))
	assertValue(t, value.FromInt(6), mustFilter(t, "sum", ints(1, 2, 3), nil))
	assertValue(t, value.FromFloat(3.5), mustFilter(t, "sum", value.FromSlice([]value.Value{value.FromInt(1), value.FromFloat(2.5)}), nil))
	assertValue(t, value.FromInt(1), mustFilter(t, "min", ints(3, 1, 2), nil))
	assertValue(t, value.FromInt(3), mustFilter(t, "max", ints(3, 1, 2), nil))
	assertValue(t, value.FromString(""), mustFilter(t, "max", value.FromSlice(nil), nil))

	_, err := applyFilter(t, "sum", strs("a"), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_LengthReverse(t *testing.T) {
	assertValue(t, value.FromInt(3), mustFilter(t, "length", ints(1, 2, 3), nil))
	assertValue(t, value.FromInt(2), mustFilter(t, "length", value.FromString("日本"), nil))
	assertValue(t, value.FromInt(0), mustFilter(t, "length", value.FromInt(5), nil))

	assertValue(t, ints(3, 2, 1), mustFilter(t, "reverse", ints(1, 2, 3), nil))
	assertValue(t, value.FromString("cba"), mustFilter(t, "reverse", value.FromString("abc"), nil))

	_, err := applyFilter(t, "reverse", value.FromInt(1), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_JSONEncode(t *testing.T) {
	v := value.MustFromAny(map[string]any{"b": []int{1, 2}, "a": 1.5})

	assertValue(t, value.FromString(`{"a":1.5,"b":[1,2]}`), mustFilter(t, "json_encode", v, nil))
	assertValue(t, value.FromString("{\n  \"a\": 1.5,\n  \"b\": [\n    1,\n    2\n  ]\n}"),
		mustFilter(t, "json_encode", v, args{"pretty": value.FromBool(true)}))

	_, err := applyFilter(t, "json_encode", value.FromFloat(1), args{"pretty": value.FromString("yes")})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Date(t *testing.T) {
	tests := []struct {
		name string
		val  value.Value
		args args
		want string
	}{
		{"timestamp", value.FromInt(1482720453), nil, "2016-12-26"},
		{"timestamp with format", value.FromInt(1482720453), args{"format": value.FromString("%Y-%m-%d %H:%M")}, "2016-12-26 02:47"},
		{"rfc3339", value.FromString("1996-12-19T16:39:57-08:00"), args{"format": value.FromString("%H:%M")}, "16:39"},
		{"naive", value.FromString("2017-03-05T00:00:00.602"), args{"format": value.FromString("%Y%m%d")}, "20170305"},
		{"date only", value.FromString("2017-03-05"), args{"format": value.FromString("%d/%m/%Y")}, "05/03/2017"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertValue(t, value.FromString(tt.want), mustFilter(t, "date", tt.val, tt.args))
		})
	}

	_, err := applyFilter(t, "date", value.FromString("yesterday"), nil)
	assert.ErrorIs(t, err, ErrInvalidArgumentValue)
	_, err = applyFilter(t, "date", value.FromBool(true), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_AsStr(t *testing.T) {
	assertValue(t, value.FromString("[1, 2]"), mustFilter(t, "as_str", ints(1, 2), nil))
	assertValue(t, value.FromString("2.5"), mustFilter(t, "as_str", value.FromFloat(2.5), nil))
}

func TestFilter_Pluralize(t *testing.T) {
	tests := []struct {
		val  value.Value
		want string
	}{
		{value.FromInt(0), "s"},
		{value.FromInt(1), ""},
		{value.FromInt(-1), ""},
		{value.FromInt(2), "s"},
		{value.FromFloat(1.0), ""},
		{value.FromFloat(1.5), "s"},
	}
	for _, tt := range tests {
		t.Run(tt.val.Repr(), func(t *testing.T) {
			assertValue(t, value.FromString(tt.want), mustFilter(t, "pluralize", tt.val, nil))
		})
	}
	assertValue(t, value.FromString("es"), mustFilter(t, "pluralize", value.FromInt(2), args{"suffix": value.FromString("es")}))

	_, err := applyFilter(t, "pluralize", value.FromString("x"), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Round(t *testing.T) {
	tests := []struct {
		name string
		val  value.Value
		args args
		want value.Value
	}{
		{"integer untouched", value.FromInt(2), nil, value.FromInt(2)},
		{"common", value.FromFloat(2.1), nil, value.FromFloat(2)},
		{"common half", value.FromFloat(2.5), nil, value.FromFloat(3)},
		{"ceil", value.FromFloat(2.1), args{"method": value.FromString("ceil")}, value.FromFloat(3)},
		{"floor", value.FromFloat(2.9), args{"method": value.FromString("floor")}, value.FromFloat(2)},
		{"precision", value.FromFloat(2.1234), args{"precision": value.FromInt(2)}, value.FromFloat(2.12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustFilter(t, "round", tt.val, tt.args)
			assertValue(t, tt.want, got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}

	_, err := applyFilter(t, "round", value.FromFloat(1), args{"method": value.FromString("banker")})
	assert.ErrorIs(t, err, ErrInvalidArgumentValue)
}

func TestFilter_Abs(t *testing.T) {
	assertValue(t, value.FromInt(3), mustFilter(t, "abs", value.FromInt(-3), nil))
	assertValue(t, value.FromFloat(1.5), mustFilter(t, "abs", value.FromFloat(-1.5), nil))
}

func TestFilter_Filesizeformat(t *testing.T) {
	assertValue(t, value.FromString("5 B"), mustFilter(t, "filesizeformat", value.FromInt(5), nil))
	assertValue(t, value.FromString("1.0 MB"), mustFilter(t, "filesizeformat", value.FromInt(1000000), nil))

	_, err := applyFilter(t, "filesizeformat", value.FromInt(-1), nil)
	assert.ErrorIs(t, err, ErrInvalidArgumentValue)
	_, err = applyFilter(t, "filesizeformat", value.FromFloat(1), nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Object(t *testing.T) {
	obj := value.MustFromAny(map[string]any{"b": 2, "a": 1})

	assertValue(t, value.FromInt(1), mustFilter(t, "get", obj, args{"key": value.FromString("a")}))
	_, err := applyFilter(t, "get", obj, args{"key": value.FromString("z")})
	assert.ErrorIs(t, err, ErrFieldNotFound)
	_, err = applyFilter(t, "get", obj, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = applyFilter(t, "get", ints(1), args{"key": value.FromString("a")})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assertValue(t, strs("a", "b"), mustFilter(t, "keys", obj, nil))
	assertValue(t, ints(1, 2), mustFilter(t, "values", obj, nil))
	assertValue(t, value.FromSlice([]value.Value{
		value.FromSlice([]value.Value{value.FromString("a"), value.FromInt(1)}),
		value.FromSlice([]value.Value{value.FromString("b"), value.FromInt(2)}),
	}), mustFilter(t, "items", obj, nil))
}
