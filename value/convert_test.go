package value

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type product struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Tags     []string `json:"tags"`
	Internal string   `json:"-"`
	Owner    *product `json:"owner,omitempty"`
	Count    uint8
	secret   string
}

func TestFromAnyStruct(t *testing.T) {
	v, err := FromAny(product{Name: "lamp", Price: 9.5, Tags: []string{"a"}, Internal: "x", Count: 3, secret: "y"})
	require.NoError(t, err)
	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, []string{"Count", "name", "price", "tags"}, v.Keys())

	price, _ := v.Get("price")
	assert.Equal(t, KindFloat, price.Kind())
	count, _ := v.Get("Count")
	assert.Equal(t, KindInteger, count.Kind())
}

func TestFromAnyNative(t *testing.T) {
	in := map[string]any{
		"b":     true,
		"i":     int64(3),
		"f":     2.5,
		"s":     "x",
		"arr":   []any{int64(1), "two"},
		"obj":   map[string]any{"k": "v"},
		"empty": []any{},
	}
	v, err := FromAny(in)
	require.NoError(t, err)

	if diff := cmp.Diff(in, v.Native()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromAnyNil(t *testing.T) {
	_, err := FromAny(nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = FromAny([]any{1, nil})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	v, err := FromAny(map[string]any{"a": nil, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, v.Keys())

	_, err = FromAny(make(chan int))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFromAnySpecialTypes(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v, err := FromAny(ts)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T12:00:00Z", v.String())

	v, err = FromAny(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, KindFloat, v.Kind())

	v, err = FromAny(json.Number("12"))
	require.NoError(t, err)
	assert.Equal(t, KindInteger, v.Kind())

	inner := FromString("kept")
	v, err = FromAny(map[string]any{"v": inner})
	require.NoError(t, err)
	got, _ := v.Get("v")
	assert.True(t, got.Equal(inner))
}

type auditInfo struct {
	CreatedBy string `json:"created_by"`
	Name      string `json:"name"`
}

type tagged struct {
	Label string `json:"label"`
}

type document struct {
	auditInfo
	*tagged
	Meta  auditInfo `json:"meta"`
	Name  string    `json:"name"`
	Title string
}

func TestFromAnyEmbeddedStructs(t *testing.T) {
	v, err := FromAny(document{
		auditInfo: auditInfo{CreatedBy: "ada", Name: "inner"},
		Meta:      auditInfo{CreatedBy: "bob"},
		Name:      "outer",
		Title:     "Report",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Title", "created_by", "meta", "name"}, v.Keys())
	name, _ := v.Get("name")
	assert.Equal(t, "outer", name.String())
	by, _ := v.Pointer("created_by")
	assert.Equal(t, "ada", by.String())
	meta, _ := v.Pointer("meta.created_by")
	assert.Equal(t, "bob", meta.String())

	v, err = FromAny(document{tagged: &tagged{Label: "x"}})
	require.NoError(t, err)
	label, ok := v.Get("label")
	require.True(t, ok)
	assert.Equal(t, "x", label.String())
}

func TestFromJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"a": 1, "b": 1.5, "c": [true, "x"], "d": null}`))
	require.NoError(t, err)

	a, _ := v.Get("a")
	assert.Equal(t, KindInteger, a.Kind())
	b, _ := v.Get("b")
	assert.Equal(t, KindFloat, b.Kind())
	_, ok := v.Get("d")
	assert.False(t, ok)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

func TestFromYAML(t *testing.T) {
	v, err := FromYAML([]byte("name: Ada\nage: 36\nscores: [1.5, 2]\n"))
	require.NoError(t, err)

	age, ok := v.Pointer("age")
	require.True(t, ok)
	assert.Equal(t, KindInteger, age.Kind())

	score, ok := v.Pointer("scores.0")
	require.True(t, ok)
	assert.Equal(t, KindFloat, score.Kind())
}

func TestMarshalJSON(t *testing.T) {
	v := FromMap(map[string]Value{
		"b": FromFloat(2),
		"a": FromSlice([]Value{FromInt(1), FromString("x"), FromBool(true)}),
	})
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,"x",true],"b":2.0}`, string(out))
	assert.Equal(t, `{"a":[1,"x",true],"b":2.0}`, string(out))

	_, err = json.Marshal(FromFloat(math.Inf(1)))
	assert.Error(t, err)
}

func TestUnmarshal(t *testing.T) {
	var doc struct {
		JSON Value `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"payload": {"x": [1, 2]}}`), &doc))
	x, ok := doc.JSON.Pointer("x.1")
	require.True(t, ok)
	assert.Equal(t, "2", x.String())

	var ydoc struct {
		Payload Value `yaml:"payload"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("payload:\n  x: hello\n"), &ydoc))
	assert.Equal(t, "[object]", ydoc.Payload.String())
}
