package tmplcore

import "github.com/mitsuhiko/tmplcore/value"

// ForLoop holds the iteration state of a for loop frame.
//
// The collection is materialized when the loop is created, so the length
// (and with it loop.last) is always known. Iterating never modifies the
// source value.
type ForLoop struct {
	keyName   string
	valueName string
	keys      []value.Value
	values    []value.Value
	current   int
}

// NewForLoop creates a loop binding valueName to each element of items,
// which must be an array.
func NewForLoop(valueName string, items value.Value) (*ForLoop, error) {
	values, err := items.TryArray("for")
	if err != nil {
		return nil, err
	}
	return &ForLoop{valueName: valueName, values: values}, nil
}

// NewKeyValueForLoop creates a loop over the entries of an object, binding
// keyName to each key and valueName to its value. Keys are visited in
// sorted order.
func NewKeyValueForLoop(keyName, valueName string, obj value.Value) (*ForLoop, error) {
	m, err := obj.TryObject("for")
	if err != nil {
		return nil, err
	}
	names := obj.Keys()
	loop := &ForLoop{
		keyName:   keyName,
		valueName: valueName,
		keys:      make([]value.Value, len(names)),
		values:    make([]value.Value, len(names)),
	}
	for i, k := range names {
		loop.keys[i] = value.FromString(k)
		loop.values[i] = m[k]
	}
	return loop, nil
}

// KeyName returns the name bound to the current key, or "" when the loop
// iterates an array.
func (l *ForLoop) KeyName() string { return l.keyName }

// ValueName returns the name bound to the current element.
func (l *ForLoop) ValueName() string { return l.valueName }

// Len returns the number of iterations.
func (l *ForLoop) Len() int { return len(l.values) }

// Index0 returns the zero-based position.
func (l *ForLoop) Index0() int { return l.current }

// Index returns the one-based position.
func (l *ForLoop) Index() int { return l.current + 1 }

// First reports whether this is the first iteration.
func (l *ForLoop) First() bool { return l.current == 0 }

// Last reports whether this is the final iteration.
func (l *ForLoop) Last() bool { return l.current == len(l.values)-1 }

// Done reports whether all elements have been visited.
func (l *ForLoop) Done() bool { return l.current >= len(l.values) }

// IsKey reports whether name is the key name of a key/value loop.
func (l *ForLoop) IsKey(name string) bool {
	return l.keyName != "" && name == l.keyName
}

// CurrentValue returns the element at the current position.
func (l *ForLoop) CurrentValue() (value.Value, bool) {
	if l.Done() {
		return value.Value{}, false
	}
	return l.values[l.current], true
}

// CurrentKey returns the key at the current position of a key/value loop.
func (l *ForLoop) CurrentKey() (value.Value, bool) {
	if l.keys == nil || l.Done() {
		return value.Value{}, false
	}
	return l.keys[l.current], true
}

// Advance moves to the next element and reports whether there is one.
func (l *ForLoop) Advance() bool {
	if l.current < len(l.values) {
		l.current++
	}
	return !l.Done()
}

// loopVar resolves the tail of a `loop.<attr>` reference.
func (l *ForLoop) loopVar(attr string) (value.Value, bool) {
	switch attr {
	case "index":
		return value.FromInt(int64(l.Index())), true
	case "index0":
		return value.FromInt(int64(l.Index0())), true
	case "first":
		return value.FromBool(l.First()), true
	case "last":
		return value.FromBool(l.Last()), true
	}
	return value.Value{}, false
}
