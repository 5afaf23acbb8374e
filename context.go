package tmplcore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitsuhiko/tmplcore/value"
)

// Context holds the top-level variables of a render call.
//
// Entries keep the order in which they were first inserted, which makes
// serialization deterministic. A Context is filled by the caller before
// rendering starts and only read afterwards.
//
//	ctx := tmplcore.NewContext()
//	_ = ctx.Insert("user", User{Name: "Ada"})
//	_ = ctx.Insert("count", 42)
type Context struct {
	keys []string
	data map[string]value.Value
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{data: make(map[string]value.Value)}
}

// ContextFromValue creates a context from an object value. Entries are
// inserted in sorted key order.
func ContextFromValue(v value.Value) (*Context, error) {
	m, err := v.TryObject("context")
	if err != nil {
		return nil, err
	}
	ctx := NewContext()
	for _, k := range v.Keys() {
		ctx.InsertValue(k, m[k])
	}
	return ctx, nil
}

// Insert converts val with value.FromAny and stores it under name.
func (c *Context) Insert(name string, val any) error {
	v, err := value.FromAny(val)
	if err != nil {
		return fmt.Errorf("inserting %q: %w", name, err)
	}
	c.InsertValue(name, v)
	return nil
}

// InsertValue stores v under name. Re-inserting a name replaces the value
// but keeps its original position.
func (c *Context) InsertValue(name string, v value.Value) {
	if c.data == nil {
		c.data = make(map[string]value.Value)
	}
	if _, exists := c.data[name]; !exists {
		c.keys = append(c.keys, name)
	}
	c.data[name] = v
}

// Extend moves all entries of source into c. Entries of source win over
// existing ones. source is empty afterwards.
func (c *Context) Extend(source *Context) {
	if source == nil || source == c {
		return
	}
	for _, k := range source.keys {
		c.InsertValue(k, source.data[k])
	}
	source.keys = nil
	source.data = make(map[string]value.Value)
}

// Get returns the top-level binding called name.
func (c *Context) Get(name string) (value.Value, bool) {
	v, ok := c.data[name]
	return v, ok
}

// Lookup resolves a dotted path: the first segment names a binding and
// the rest is followed with value.Pointer.
func (c *Context) Lookup(path string) (value.Value, bool) {
	head, tail := value.SplitPath(path)
	v, ok := c.data[head]
	if !ok {
		return value.Value{}, false
	}
	return v.Pointer(tail)
}

// Contains reports whether name is bound.
func (c *Context) Contains(name string) bool {
	_, ok := c.data[name]
	return ok
}

// Remove deletes the binding called name.
func (c *Context) Remove(name string) {
	if _, ok := c.data[name]; !ok {
		return
	}
	delete(c.data, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the names in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of bindings.
func (c *Context) Len() int {
	return len(c.keys)
}

// ToValue returns the context as an object value.
func (c *Context) ToValue() value.Value {
	return value.FromMap(c.data)
}

// MarshalJSON implements json.Marshaler, keeping insertion order.
func (c *Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := c.data[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
