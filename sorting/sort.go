// Package sorting implements type-homogeneous stable sorting of values.
//
// The type of the first sort key decides how the whole collection is
// ordered: booleans (false before true), numbers (integers and floats
// compared as one numeric type), strings (byte-wise lexical order) or
// arrays (by length). Every other key must have the same shape; a key of a
// different type fails the sort instead of being coerced. Objects and
// non-finite floats can never be sort keys.
//
//	sorted, err := sorting.Sort(items, sorting.ByPointer("sort", "age"))
package sorting

import (
	"cmp"
	"slices"

	"github.com/mitsuhiko/tmplcore/value"
)

// Strategy collects (item, key) pairs and sorts the items by key.
type Strategy interface {
	// Add records an item with its sort key. It fails if the key does not
	// match the strategy.
	Add(item, key value.Value) error
	// Sort returns the items ordered by key. Items with equal keys keep
	// the order in which they were added.
	Sort() []value.Value
}

type pair[K any] struct {
	item value.Value
	key  K
}

type pairs[K any] struct {
	op      string
	entries []pair[K]
	extract func(op string, key value.Value) (K, error)
	compare func(a, b K) int
}

func (p *pairs[K]) Add(item, key value.Value) error {
	// Objects are never sortable, whatever the strategy expects.
	if key.Kind() == value.KindObject {
		return value.NotSortable(key).WithOp(p.op)
	}
	k, err := p.extract(p.op, key)
	if err != nil {
		return err
	}
	p.entries = append(p.entries, pair[K]{item: item, key: k})
	return nil
}

func (p *pairs[K]) Sort() []value.Value {
	sorted := slices.Clone(p.entries)
	slices.SortStableFunc(sorted, func(a, b pair[K]) int {
		return p.compare(a.key, b.key)
	})
	out := make([]value.Value, len(sorted))
	for i, e := range sorted {
		out[i] = e.item
	}
	return out
}

func boolKey(op string, key value.Value) (bool, error) {
	return key.TryBool(op)
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func numberKey(op string, key value.Value) (value.Number, error) {
	n, err := key.TryNumber(op)
	if err != nil {
		return value.Number{}, err
	}
	if !n.IsFinite() {
		return value.Number{}, value.NotSortable(key).WithOp(op)
	}
	return n, nil
}

func compareNumbers(a, b value.Number) int {
	c, _ := a.Cmp(b)
	return c
}

func stringKey(op string, key value.Value) (string, error) {
	return key.TryString(op)
}

func arrayLenKey(op string, key value.Value) (int, error) {
	if key.Kind() != value.KindArray {
		return 0, value.TypeMismatch(op, key, "an array")
	}
	n, _ := key.Len()
	return n, nil
}

// StrategyFor selects the strategy for a collection whose first key is
// key. Objects and non-finite numbers are rejected immediately.
func StrategyFor(key value.Value) (Strategy, error) {
	return strategyFor("sort", key)
}

func strategyFor(op string, key value.Value) (Strategy, error) {
	switch key.Kind() {
	case value.KindBool:
		return &pairs[bool]{op: op, extract: boolKey, compare: compareBools}, nil
	case value.KindInteger, value.KindFloat:
		if n, _ := key.AsNumber(); !n.IsFinite() {
			return nil, value.NotSortable(key).WithOp(op)
		}
		return &pairs[value.Number]{op: op, extract: numberKey, compare: compareNumbers}, nil
	case value.KindString:
		return &pairs[string]{op: op, extract: stringKey, compare: cmp.Compare[string]}, nil
	case value.KindArray:
		return &pairs[int]{op: op, extract: arrayLenKey, compare: cmp.Compare[int]}, nil
	}
	return nil, value.NewError(value.ErrNotSortable, "object is not a sortable value").WithOp(op)
}

// KeyFunc derives the sort key of an item.
type KeyFunc func(item value.Value) (value.Value, error)

// Identity uses each item as its own key.
func Identity(item value.Value) (value.Value, error) {
	return item, nil
}

// ByPointer uses the value found at the dotted attribute path of each item
// as its key. An empty attribute is the item itself. Items where the path
// does not resolve fail the sort with a field-not-found error naming op.
func ByPointer(op, attribute string) KeyFunc {
	return func(item value.Value) (value.Value, error) {
		key, ok := item.Pointer(attribute)
		if !ok {
			return value.Value{}, value.FieldNotFound(op, attribute)
		}
		return key, nil
	}
}

// Sort returns a new slice holding items stably ordered by the keys keyOf
// derives from them. All keys are derived and validated before any
// comparison happens; items is never modified.
func Sort(items []value.Value, keyOf KeyFunc) ([]value.Value, error) {
	return SortNamed("sort", items, keyOf)
}

// SortNamed is Sort with the operation name used in errors.
func SortNamed(op string, items []value.Value, keyOf KeyFunc) ([]value.Value, error) {
	if len(items) == 0 {
		return []value.Value{}, nil
	}
	if keyOf == nil {
		keyOf = Identity
	}
	var strategy Strategy
	for i, item := range items {
		key, err := keyOf(item)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			strategy, err = strategyFor(op, key)
			if err != nil {
				return nil, err
			}
		}
		if err := strategy.Add(item, key); err != nil {
			return nil, err
		}
	}
	return strategy.Sort(), nil
}
