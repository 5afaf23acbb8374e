package tmplcore

import (
	"maps"

	"github.com/mitsuhiko/tmplcore/value"
)

// FrameKind identifies what kind of construct pushed a frame.
type FrameKind int

const (
	// FrameOrigin is the frame of the render entry point.
	FrameOrigin FrameKind = iota
	// FrameMacro is pushed for a macro call. Its bindings are exactly the
	// call arguments.
	FrameMacro
	// FrameForLoop is pushed for a for loop and owns its ForLoop.
	FrameForLoop
	// FrameInclude is pushed for an included template.
	FrameInclude
)

func (k FrameKind) String() string {
	switch k {
	case FrameOrigin:
		return "origin"
	case FrameMacro:
		return "macro"
	case FrameForLoop:
		return "for loop"
	case FrameInclude:
		return "include"
	default:
		return "unknown"
	}
}

// loopVarName is the reserved name under which loop state is exposed.
const loopVarName = "loop"

// StackFrame is one lexical scope on the render stack.
type StackFrame struct {
	Kind FrameKind
	// Name is used for debugging and error messages, usually the template
	// or macro name.
	Name string

	locals         map[string]value.Value
	forLoop        *ForLoop
	macroNamespace string
}

// NewOriginFrame creates the root frame of a render.
func NewOriginFrame(name string) *StackFrame {
	return &StackFrame{Kind: FrameOrigin, Name: name, locals: make(map[string]value.Value)}
}

// NewMacroFrame creates a frame for a macro call in namespace. args are
// the only local bindings of the frame.
func NewMacroFrame(name, namespace string, args map[string]value.Value) *StackFrame {
	locals := maps.Clone(args)
	if locals == nil {
		locals = make(map[string]value.Value)
	}
	return &StackFrame{Kind: FrameMacro, Name: name, locals: locals, macroNamespace: namespace}
}

// NewForLoopFrame creates a frame owning loop.
func NewForLoopFrame(name string, loop *ForLoop) *StackFrame {
	return &StackFrame{Kind: FrameForLoop, Name: name, locals: make(map[string]value.Value), forLoop: loop}
}

// NewIncludeFrame creates a frame for an included template.
func NewIncludeFrame(name string) *StackFrame {
	return &StackFrame{Kind: FrameInclude, Name: name, locals: make(map[string]value.Value)}
}

// ForLoop returns the loop state of a for loop frame, or nil.
func (f *StackFrame) ForLoop() *ForLoop {
	return f.forLoop
}

// MacroNamespace returns the namespace of a macro frame.
func (f *StackFrame) MacroNamespace() (string, bool) {
	if f.Kind != FrameMacro {
		return "", false
	}
	return f.macroNamespace, true
}

// Insert binds name in this frame.
func (f *StackFrame) Insert(name string, v value.Value) {
	if f.locals == nil {
		f.locals = make(map[string]value.Value)
	}
	f.locals[name] = v
}

// Locals returns a copy of the frame's local bindings.
func (f *StackFrame) Locals() map[string]value.Value {
	return maps.Clone(f.locals)
}

// ClearLocalBindings drops the local bindings of a for loop frame. It is
// called at every iteration boundary and leaves the loop state alone.
// Other frames are not affected.
func (f *StackFrame) ClearLocalBindings() {
	if f.forLoop == nil {
		return
	}
	clear(f.locals)
}

// FindValue resolves a dotted path within this frame only.
//
// Local bindings are consulted first. For loop frames then check, in
// order, the key name of a key/value loop, the loop.index, loop.index0,
// loop.first and loop.last variables, the value name itself and finally a
// path into the current element.
func (f *StackFrame) FindValue(path string) (value.Value, bool) {
	if v, ok := f.findLocal(path); ok {
		return v, true
	}
	return f.findInForLoop(path)
}

func (f *StackFrame) findLocal(path string) (value.Value, bool) {
	head, tail := value.SplitPath(path)
	v, ok := f.locals[head]
	if !ok {
		return value.Value{}, false
	}
	return v.Pointer(tail)
}

func (f *StackFrame) findInForLoop(path string) (value.Value, bool) {
	loop := f.forLoop
	if loop == nil {
		return value.Value{}, false
	}
	if loop.IsKey(path) {
		return loop.CurrentKey()
	}

	head, tail := value.SplitPath(path)
	// The reserved loop name shadows a value name of "loop", bare or not.
	if head == loopVarName {
		return loop.loopVar(tail)
	}

	if head != loop.valueName {
		return value.Value{}, false
	}
	current, ok := loop.CurrentValue()
	if !ok {
		return value.Value{}, false
	}
	return current.Pointer(tail)
}
