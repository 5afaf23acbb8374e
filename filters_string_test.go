package tmplcore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitsuhiko/tmplcore/value"
)

func TestStringFilters(t *testing.T) {
	tests := []struct {
		filter string
		input  string
		args   args
		want   string
	}{
		{"upper", "hello", nil, "HELLO"},
		{"lower", "HELLO", nil, "hello"},
		{"trim", "  hello \n", nil, "hello"},
		{"replace", "Hello world!", args{"from": value.FromString("world"), "to": value.FromString("Go")}, "Hello Go!"},
		{"capitalize", "CAPITAL IZE", nil, "Capital ize"},
		{"capitalize", "", nil, ""},
		{"capitalize", "élan", nil, "Élan"},
		{"addslashes", `I'm "here" \o/`, nil, `I\'m \"here\" \\o/`},
		{"slugify", "Hello World!", nil, "hello-world"},
		{"title", "foo bar-baz_qux", nil, "Foo Bar-Baz_qux"},
		{"title", "HELLO wORLD", nil, "Hello World"},
		{"striptags", `<b>Joel</b> <button>is</button> a <span>slug</span><!-- comment -->`, nil, "Joel is a slug"},
		{"escape_html", `<a href="/x">'&'</a>`, nil, "&lt;a href=&quot;&#x2F;x&quot;&gt;&#x27;&amp;&#x27;&lt;&#x2F;a&gt;"},
		{"urlencode", "https://www.example.org/foo?a=b&c=d", nil, "https%3A//www.example.org/foo%3Fa%3Db%26c%3Dd"},
		{"urlencode", "https://www.example.org/", args{"safe": value.FromString(":/")}, "https://www.example.org/"},
		{"urlencode", "a b~é", nil, "a%20b%7E%C3%A9"},
	}
	for _, tt := range tests {
		t.Run(tt.filter+"/"+tt.input, func(t *testing.T) {
			got := mustFilter(t, tt.filter, value.FromString(tt.input), tt.args)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestStringFilters_RejectNonStrings(t *testing.T) {
	for _, name := range []string{
		"upper", "lower", "trim", "truncate", "wordcount", "capitalize",
		"urlencode", "addslashes", "slugify", "title", "striptags", "escape_html",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := applyFilter(t, name, value.FromInt(1), nil)
			assert.ErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestFilter_Truncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  args
		want  string
	}{
		{"shorter than default", "hello", nil, "hello"},
		{"cut", "hello", args{"length": value.FromInt(2)}, "he…"},
		{"custom end", "hello", args{"length": value.FromInt(2), "end": value.FromString("...")}, "he..."},
		{"exact length", "hello", args{"length": value.FromInt(5)}, "hello"},
		{"zero", "hello", args{"length": value.FromInt(0)}, "…"},
		{"graphemes", "日本語😀👨‍👩‍👧x", args{"length": value.FromInt(4)}, "日本語😀…"},
		{"combining", "e\u0301e\u0301e\u0301", args{"length": value.FromInt(2)}, "e\u0301e\u0301…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustFilter(t, "truncate", value.FromString(tt.input), tt.args)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := applyFilter(t, "truncate", value.FromString("x"), args{"length": value.FromInt(-1)})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFilter_Wordcount(t *testing.T) {
	assertValue(t, value.FromInt(4), mustFilter(t, "wordcount", value.FromString("Joel is  a\tslug"), nil))
}

func TestFilter_Split(t *testing.T) {
	assertValue(t, strs("a", "b", "c"), mustFilter(t, "split", value.FromString("a/b/c"), args{"pat": value.FromString("/")}))

	_, err := applyFilter(t, "split", value.FromString("a"), nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &amp; b", EscapeHTML("a & b"))
	assert.Equal(t, "plain", EscapeHTML("plain"))
}
