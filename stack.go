package tmplcore

import (
	"sync/atomic"

	"github.com/mitsuhiko/tmplcore/value"
)

// Stack is the ordered list of frames active during a render. The renderer
// pushes a frame when it enters a loop body, macro call or include and pops
// it when it leaves.
//
// Scopes are a plain slice rather than a chain of parent links: a macro
// frame only ever sees its own arguments plus whatever frames sit below it
// on the stack, never bindings that belonged to the call site's closure.
type Stack struct {
	frames     []*StackFrame
	iterations atomic.Uint64
}

// NewStack creates a stack holding an origin frame called name.
func NewStack(name string) *Stack {
	return &Stack{frames: []*StackFrame{NewOriginFrame(name)}}
}

// Push enters a new scope.
func (s *Stack) Push(f *StackFrame) {
	if f == nil {
		panic("tmplcore: push of nil frame")
	}
	s.frames = append(s.frames, f)
}

// Pop leaves the current scope and returns its frame. Popping the origin
// frame is a programming error.
func (s *Stack) Pop() *StackFrame {
	if len(s.frames) <= 1 {
		panic("tmplcore: cannot pop the origin frame")
	}
	f := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

// Current returns the innermost frame.
func (s *Stack) Current() *StackFrame {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames including the origin frame.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Frames returns the frames from outermost to innermost.
func (s *Stack) Frames() []*StackFrame {
	return append([]*StackFrame(nil), s.frames...)
}

// Set binds name in the innermost frame, like `{% set %}`.
func (s *Stack) Set(name string, v value.Value) {
	s.Current().Insert(name, v)
}

// FindValue searches the frames from innermost to outermost.
func (s *Stack) FindValue(path string) (value.Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].FindValue(path); ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// Resolve looks path up in the frames and then in ctx. A nil ctx is
// treated as empty.
func (s *Stack) Resolve(path string, ctx *Context) (value.Value, bool) {
	if v, ok := s.FindValue(path); ok {
		return v, true
	}
	if ctx == nil {
		return value.Value{}, false
	}
	return ctx.Lookup(path)
}

// MustResolve is Resolve returning an undefined variable error when path
// does not resolve.
func (s *Stack) MustResolve(path string, ctx *Context) (value.Value, error) {
	if v, ok := s.Resolve(path, ctx); ok {
		return v, nil
	}
	return value.Value{}, value.Undefined(path)
}

// Advance moves the innermost for loop frame to its next element, clearing
// the bindings made during the previous iteration. It reports whether
// there is another element. The innermost frame must be a for loop frame.
func (s *Stack) Advance() bool {
	f := s.Current()
	if f.forLoop == nil {
		panic("tmplcore: Advance called without a for loop frame on top")
	}
	s.iterations.Add(1)
	f.ClearLocalBindings()
	return f.forLoop.Advance()
}

// Iterations returns the number of loop iterations completed on this
// stack. It can be read from another goroutine, for example by a watchdog
// that aborts runaway renders.
func (s *Stack) Iterations() uint64 {
	return s.iterations.Load()
}
