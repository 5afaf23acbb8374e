package tmplcore

import (
	"fmt"
	"strings"

	"github.com/mitsuhiko/tmplcore/value"
)

// VisibleVariables returns the names the state can currently resolve
// together with their values. Inner frames shadow outer frames and the
// context. Active loops contribute their key and value names and a `loop`
// object holding index, index0, first and last.
func (s *State) VisibleVariables() map[string]value.Value {
	vars := make(map[string]value.Value)
	add := func(name string, v value.Value) {
		if _, shadowed := vars[name]; !shadowed {
			vars[name] = v
		}
	}

	frames := s.stack.frames
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		for name, v := range f.locals {
			add(name, v)
		}
		loop := f.forLoop
		if loop == nil || loop.Done() {
			continue
		}
		if loop.keyName != "" {
			if k, ok := loop.CurrentKey(); ok {
				add(loop.keyName, k)
			}
		}
		if v, ok := loop.CurrentValue(); ok {
			add(loop.valueName, v)
		}
		add(loopVarName, loopObject(loop))
	}

	for _, name := range s.ctx.Keys() {
		v, _ := s.ctx.Get(name)
		add(name, v)
	}
	return vars
}

func loopObject(loop *ForLoop) value.Value {
	m := make(map[string]value.Value, 4)
	for _, attr := range []string{"index", "index0", "first", "last"} {
		v, _ := loop.loopVar(attr)
		m[attr] = v
	}
	return value.FromMap(m)
}

// DebugString renders the state for the `debug` function: the name of
// the render, the frames from innermost to outermost and every visible
// variable.
func (s *State) DebugString() string {
	var b strings.Builder
	b.WriteString("State {\n")
	fmt.Fprintf(&b, "  name: %q,\n", s.Name())

	b.WriteString("  frames: [")
	frames := s.stack.frames
	for i := len(frames) - 1; i >= 0; i-- {
		if i < len(frames)-1 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %q", frames[i].Kind, frames[i].Name)
	}
	b.WriteString("],\n")

	b.WriteString("  current variables: {\n")
	vars := value.FromMap(s.VisibleVariables())
	for _, name := range vars.Keys() {
		v, _ := vars.Get(name)
		fmt.Fprintf(&b, "    %s: %s,\n", name, v.Repr())
	}
	b.WriteString("  }\n}")
	return b.String()
}
