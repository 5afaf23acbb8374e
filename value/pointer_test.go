package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointer(t *testing.T) {
	data := MustFromAny(map[string]any{
		"company": map[string]any{
			"id":    7,
			"staff": []any{map[string]any{"name": "Ada"}, map[string]any{"name": "Bob"}},
		},
		"tags": []any{"a", "b"},
	})

	tests := []struct {
		path  string
		want  Value
		found bool
	}{
		{"company.id", FromInt(7), true},
		{"company.staff.1.name", FromString("Bob"), true},
		{"tags.0", FromString("a"), true},
		{"tags", MustFromAny([]any{"a", "b"}), true},
		{"", data, true},
		{"company.missing", Value{}, false},
		{"company.staff.2.name", Value{}, false},
		{"company.staff.-1", Value{}, false},
		{"company.staff.01", Value{}, false},
		{"company.staff.x", Value{}, false},
		{"company.id.deeper", Value{}, false},
		{"tags.0.x", Value{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := data.Pointer(tt.path)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.True(t, got.Equal(tt.want), "got %s", got.Repr())
			}
		})
	}
}

func TestPointerNumericObjectKey(t *testing.T) {
	data := MustFromAny(map[string]any{"1": "first"})
	got, ok := data.Pointer("1")
	assert.True(t, ok)
	assert.Equal(t, "first", got.String())
}

func TestSplitPath(t *testing.T) {
	head, tail := SplitPath("item.a.b")
	assert.Equal(t, "item", head)
	assert.Equal(t, "a.b", tail)

	head, tail = SplitPath("item")
	assert.Equal(t, "item", head)
	assert.Empty(t, tail)
}
