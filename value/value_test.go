package value

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	tests := []struct {
		val  Value
		want Kind
	}{
		{FromBool(true), KindBool},
		{FromInt(1), KindInteger},
		{FromFloat(1.5), KindFloat},
		{FromString("x"), KindString},
		{Value{}, KindString},
		{FromSlice(nil), KindArray},
		{FromMap(nil), KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.val.Kind())
		})
	}
}

func TestFloatToString(t *testing.T) {
	tests := []struct {
		val  Value
		want string
	}{
		{FromFloat(42.4242), "42.4242"},
		{FromFloat(42.0), "42"},
		{FromFloat(-0.5), "-0.5"},
		{FromFloat(1e21), "1000000000000000000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.val.String())
	}
}

func TestRender(t *testing.T) {
	arr := FromSlice([]Value{FromInt(1), FromString("a"), FromBool(false), FromSlice([]Value{FromFloat(2.5)})})
	assert.Equal(t, "[1, a, false, [2.5]]", arr.String())
	assert.Equal(t, "[]", FromSlice(nil).String())

	obj := FromMap(map[string]Value{"a": FromInt(1)})
	assert.Equal(t, "[object]", obj.String())
	assert.Equal(t, "[[object]]", FromSlice([]Value{obj}).String())
	assert.Equal(t, "", Value{}.String())
}

func TestRepr(t *testing.T) {
	obj := FromMap(map[string]Value{
		"b": FromString("x"),
		"a": FromSlice([]Value{FromFloat(2), FromBool(true)}),
	})
	assert.Equal(t, `{"a": [2.0, true], "b": "x"}`, obj.Repr())
}

func TestValueEquality(t *testing.T) {
	assert.True(t, FromInt(2).Equal(FromFloat(2.0)))
	assert.True(t, FromFloat(2.0).Equal(FromInt(2)))
	assert.False(t, FromInt(2).Equal(FromFloat(2.5)))
	assert.False(t, FromInt(1).Equal(FromString("1")))
	assert.True(t, FromString("").Equal(Value{}))
	assert.False(t, FromBool(true).Equal(FromInt(1)))

	s1 := FromSlice([]Value{FromInt(1)})
	assert.True(t, s1.Equal(FromSlice([]Value{FromFloat(1)})))
	assert.False(t, s1.Equal(FromSlice([]Value{FromInt(2)})))

	o1 := FromMap(map[string]Value{"a": FromInt(1)})
	assert.True(t, o1.Equal(FromMap(map[string]Value{"a": FromInt(1)})))
	assert.False(t, o1.Equal(FromMap(map[string]Value{"b": FromInt(1)})))
}

func TestFloatEquality(t *testing.T) {
	a := FromInt(1 << 53)
	b := FromFloat(float64(1 << 53))
	assert.True(t, a.Equal(b))
}

func TestTryAccessors(t *testing.T) {
	_, err := FromInt(1).TryString("upper")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Equal(t, "type mismatch in `upper`: got 1 but expected a string", err.Error())

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "upper", e.Op)
	assert.Equal(t, "1", e.Got)

	f, err := FromInt(3).TryFloat("round")
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)

	_, err = FromFloat(3).TryInt("nth")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = FromString("x").TryArray("first")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = FromSlice(nil).TryObject("get")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	b, err := FromBool(true).TryBool("now")
	require.NoError(t, err)
	assert.True(t, b)
}

func TestErrorWithCall(t *testing.T) {
	_, err := FromInt(1).TryString("upper")
	var e *Error
	require.ErrorAs(t, err, &e)

	called := e.WithCall("shout")
	assert.Equal(t, "type mismatch in `shout` (`upper`): got 1 but expected a string", called.Error())
	assert.Equal(t, "upper", e.Op)
	assert.Empty(t, e.Call)

	same := e.WithCall("upper")
	assert.Equal(t, "type mismatch in `upper`: got 1 but expected a string", same.Error())

	bare := NewError(ErrUser, "boom").WithCall("throw")
	assert.Equal(t, "throw", bare.Op)
	assert.Equal(t, "error in `throw`: boom", bare.Error())
}

func TestSoftProbes(t *testing.T) {
	_, ok := FromString("1").AsInt()
	assert.False(t, ok)

	f, ok := FromInt(2).AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 2.0, f)

	s, ok := Value{}.AsString()
	assert.True(t, ok)
	assert.Empty(t, s)
}

func TestImmutability(t *testing.T) {
	items := []Value{FromInt(1), FromInt(2)}
	arr := FromSlice(items)
	items[0] = FromInt(99)
	first, _ := arr.Index(0)
	assert.True(t, first.Equal(FromInt(1)))

	got, _ := arr.AsSlice()
	got[1] = FromInt(42)
	second, _ := arr.Index(1)
	assert.True(t, second.Equal(FromInt(2)))

	m := map[string]Value{"a": FromInt(1)}
	obj := FromMap(m)
	m["a"] = FromInt(2)
	a, _ := obj.Get("a")
	assert.True(t, a.Equal(FromInt(1)))
}

func TestLen(t *testing.T) {
	n, ok := FromString("héllo").Len()
	assert.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = FromSlice([]Value{FromInt(1)}).Len()
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = FromInt(1).Len()
	assert.False(t, ok)
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, FromInt(0).IsTruthy())
	assert.False(t, FromFloat(0).IsTruthy())
	assert.False(t, FromString("").IsTruthy())
	assert.False(t, FromSlice(nil).IsTruthy())
	assert.False(t, FromMap(nil).IsTruthy())
	assert.False(t, FromBool(false).IsTruthy())
	assert.True(t, FromString("x").IsTruthy())
	assert.True(t, FromInt(-1).IsTruthy())
}

func TestKeysSorted(t *testing.T) {
	obj := FromMap(map[string]Value{"c": {}, "a": {}, "b": {}})
	assert.Equal(t, []string{"a", "b", "c"}, obj.Keys())
	assert.Nil(t, FromInt(1).Keys())
}
