package value

import (
	"strconv"
	"strings"
)

// Pointer looks up a nested value by a dot separated path such as
// "company.id" or "items.0.name".
//
// Each segment indexes into the value reached so far: arrays require a
// non-negative integer within bounds, objects a key. The lookup fails as
// soon as one segment does not resolve. An empty path yields the value
// itself.
func (v Value) Pointer(path string) (Value, bool) {
	if path == "" {
		return v, true
	}
	cur := v
	for {
		seg, rest, more := strings.Cut(path, ".")
		next, ok := cur.segment(seg)
		if !ok {
			return Value{}, false
		}
		cur = next
		if !more {
			return cur, true
		}
		path = rest
	}
}

func (v Value) segment(seg string) (Value, bool) {
	switch d := v.data.(type) {
	case []Value:
		idx, ok := parseIndex(seg)
		if !ok || idx >= len(d) {
			return Value{}, false
		}
		return d[idx], true
	case map[string]Value:
		val, ok := d[seg]
		return val, ok
	}
	return Value{}, false
}

// parseIndex accepts canonical non-negative decimal integers only, so
// "01" and "+1" are not array indices.
func parseIndex(seg string) (int, bool) {
	if seg == "" || (len(seg) > 1 && seg[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// SplitPath splits a dotted path into its first segment and the remaining
// path. The remainder is empty when the path has a single segment.
func SplitPath(path string) (head, tail string) {
	head, tail, _ = strings.Cut(path, ".")
	return head, tail
}
