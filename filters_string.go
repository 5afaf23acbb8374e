package tmplcore

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/rivo/uniseg"

	"github.com/mitsuhiko/tmplcore/value"
)

var (
	striptagsRe = regexp.MustCompile(`(<!--.*?-->|<[^>]*>)`)
	wordRe      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// filterUpper implements the built-in `upper` filter.
func filterUpper(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("upper", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(strings.ToUpper(s)), nil
}

// filterLower implements the built-in `lower` filter.
func filterLower(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("lower", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(strings.ToLower(s)), nil
}

// filterTrim implements the built-in `trim` filter.
func filterTrim(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("trim", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(strings.TrimSpace(s)), nil
}

// filterTruncate implements the built-in `truncate` filter. length counts
// grapheme clusters and end is appended after the cut, so the result may
// be longer than length.
func filterTruncate(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	s, err := stringInput("truncate", val)
	if err != nil {
		return value.Value{}, err
	}
	length, err := intArg("truncate", args, "length", 255)
	if err != nil {
		return value.Value{}, err
	}
	if length < 0 {
		return value.Value{}, value.ArgTypeMismatch("truncate", "length", args["length"], "a non-negative integer")
	}
	end, err := stringArg("truncate", args, "end", "…")
	if err != nil {
		return value.Value{}, err
	}

	g := uniseg.NewGraphemes(s)
	var n int64
	for g.Next() {
		if n == length {
			from, _ := g.Positions()
			return value.FromString(s[:from] + end), nil
		}
		n++
	}
	return val, nil
}

// filterWordcount implements the built-in `wordcount` filter.
func filterWordcount(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("wordcount", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromInt(int64(len(strings.Fields(s)))), nil
}

// filterReplace implements the built-in `replace` filter.
func filterReplace(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	s, err := stringInput("replace", val)
	if err != nil {
		return value.Value{}, err
	}
	from, err := requiredStringArg("replace", args, "from")
	if err != nil {
		return value.Value{}, err
	}
	to, err := requiredStringArg("replace", args, "to")
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(strings.ReplaceAll(s, from, to)), nil
}

// filterCapitalize implements the built-in `capitalize` filter.
func filterCapitalize(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("capitalize", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(capitalize(s)), nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// filterUrlencode implements the built-in `urlencode` filter. ASCII
// letters, digits, `-`, `.`, `_` and the bytes in `safe` are kept, every
// other byte is percent-encoded.
func filterUrlencode(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	s, err := stringInput("urlencode", val)
	if err != nil {
		return value.Value{}, err
	}
	safe, err := stringArg("urlencode", args, "safe", "/")
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(urlencodeString(s, safe)), nil
}

func urlencodeString(input, safe string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z',
			c == '-', c == '.', c == '_', strings.IndexByte(safe, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

// filterAddslashes implements the built-in `addslashes` filter.
func filterAddslashes(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("addslashes", val)
	if err != nil {
		return value.Value{}, err
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `'`, `\'`)
	return value.FromString(r.Replace(s)), nil
}

// filterSlugify implements the built-in `slugify` filter.
func filterSlugify(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("slugify", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(slug.Make(s)), nil
}

// filterTitle implements the built-in `title` filter.
func filterTitle(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("title", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(wordRe.ReplaceAllStringFunc(s, capitalize)), nil
}

// filterStriptags implements the built-in `striptags` filter.
func filterStriptags(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("striptags", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(striptagsRe.ReplaceAllString(s, "")), nil
}

// filterEscapeHTML implements the built-in `escape_html` filter.
func filterEscapeHTML(_ *State, val value.Value, _ map[string]value.Value) (value.Value, error) {
	s, err := stringInput("escape_html", val)
	if err != nil {
		return value.Value{}, err
	}
	return value.FromString(EscapeHTML(s)), nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML escapes text for use in HTML content and attribute values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// filterSplit implements the built-in `split` filter.
func filterSplit(_ *State, val value.Value, args map[string]value.Value) (value.Value, error) {
	s, err := stringInput("split", val)
	if err != nil {
		return value.Value{}, err
	}
	pat, err := requiredStringArg("split", args, "pat")
	if err != nil {
		return value.Value{}, err
	}
	parts := strings.Split(s, pat)
	result := make([]value.Value, len(parts))
	for i, p := range parts {
		result[i] = value.FromString(p)
	}
	return value.FromSlice(result), nil
}
