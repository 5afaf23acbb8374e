package tmplcore

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/mitsuhiko/tmplcore/value"
)

// State holds the evaluation state of a single render call: the caller's
// context, the frame stack and the environment's registries.
//
// A State is not safe for concurrent use. Concurrent renders each get their
// own State from the shared Environment.
type State struct {
	env    *Environment
	id     uuid.UUID
	ctx    *Context
	stack  *Stack
	logger *slog.Logger
	fuel   *fuelTracker
}

func newState(env *Environment, name string, ctx *Context) *State {
	if env == nil {
		panic("tmplcore: state without environment")
	}
	if ctx == nil {
		ctx = NewContext()
	}
	id := uuid.New()
	s := &State{
		env:    env,
		id:     id,
		ctx:    ctx,
		stack:  NewStack(name),
		logger: env.logger.With("render_id", id.String(), "template", name),
	}
	if env.fuel > 0 {
		s.fuel = newFuelTracker(env.fuel)
	}
	return s
}

// ID returns the unique identifier of this render call.
func (s *State) ID() string {
	return s.id.String()
}

// Name returns the name of the origin frame.
func (s *State) Name() string {
	return s.stack.frames[0].Name
}

// Env returns the environment the state was created from.
func (s *State) Env() *Environment {
	return s.env
}

// Context returns the render context.
func (s *State) Context() *Context {
	return s.ctx
}

// Stack returns the frame stack.
func (s *State) Stack() *Stack {
	return s.stack
}

// Logger returns the render scoped logger.
func (s *State) Logger() *slog.Logger {
	return s.logger
}

// Resolve looks up a dotted path in the frames and then the context.
func (s *State) Resolve(path string) (value.Value, bool) {
	v, ok := s.stack.Resolve(path, s.ctx)
	s.env.metrics.RecordResolution(ok)
	return v, ok
}

// MustResolve is like Resolve but fails with an undefined variable error.
func (s *State) MustResolve(path string) (value.Value, error) {
	v, ok := s.Resolve(path)
	if !ok {
		return value.Value{}, value.Undefined(path)
	}
	return v, nil
}

// Set binds name in the current frame.
func (s *State) Set(name string, val value.Value) {
	s.stack.Set(name, val)
}

// FuelLevels returns the consumed and remaining fuel. ok is false when the
// environment has no fuel limit.
func (s *State) FuelLevels() (consumed, remaining uint64, ok bool) {
	if s.fuel == nil {
		return 0, 0, false
	}
	return s.fuel.consumedFuel(), s.fuel.remainingFuel(), true
}

// enter pushes f unless the stack is already at the recursion limit.
func (s *State) enter(f *StackFrame) error {
	if s.env.maxDepth > 0 && s.stack.Depth() >= s.env.maxDepth {
		return value.NewError(value.ErrInvalidOperation, "recursion limit exceeded")
	}
	s.stack.Push(f)
	return nil
}

// PushFrame enters a new scope. Unlike ForEach, CallMacro and Include it
// does not check the recursion limit.
func (s *State) PushFrame(f *StackFrame) {
	s.stack.Push(f)
}

// PopFrame leaves the current scope.
func (s *State) PopFrame() *StackFrame {
	return s.stack.Pop()
}

// Iterations returns the number of loop iterations performed so far.
func (s *State) Iterations() uint64 {
	return s.stack.Iterations()
}

// ForEach runs body once per element of loop inside a for loop frame. The
// frame is popped again when ForEach returns, also on error.
func (s *State) ForEach(name string, loop *ForLoop, body func() error) error {
	if err := s.enter(NewForLoopFrame(name, loop)); err != nil {
		return err
	}
	defer s.stack.Pop()

	for !loop.Done() {
		if err := s.fuel.consume(1); err != nil {
			return err
		}
		if err := body(); err != nil {
			return err
		}
		s.stack.Advance()
	}
	return nil
}

// CallMacro runs body inside a macro frame whose bindings are args.
func (s *State) CallMacro(name, namespace string, args map[string]value.Value, body func() error) error {
	if err := s.enter(NewMacroFrame(name, namespace, args)); err != nil {
		return err
	}
	defer s.stack.Pop()
	return body()
}

// Include runs body inside an include frame.
func (s *State) Include(name string, body func() error) error {
	if err := s.enter(NewIncludeFrame(name)); err != nil {
		return err
	}
	defer s.stack.Pop()
	return body()
}

// ApplyFilter applies the filter registered as name to val.
func (s *State) ApplyFilter(name string, val value.Value, args map[string]value.Value) (value.Value, error) {
	f, ok := s.env.getFilter(name)
	if !ok {
		return value.Value{}, &Error{Kind: ErrUnknownFilter, Op: name, Message: "filter is not registered"}
	}
	if err := s.fuel.consume(1); err != nil {
		return value.Value{}, err
	}
	if args == nil {
		args = map[string]value.Value{}
	}
	result, err := f(s, val, args)
	s.env.metrics.RecordFilter(name, err)
	if err != nil {
		err = wrapCallError(name, err)
		s.logger.Debug("filter failed", "filter", name, "error", err)
		return value.Value{}, err
	}
	return result, nil
}

// CallFunction calls the function registered as name.
func (s *State) CallFunction(name string, args map[string]value.Value) (value.Value, error) {
	f, ok := s.env.getFunction(name)
	if !ok {
		return value.Value{}, &Error{Kind: ErrUnknownFunction, Op: name, Message: "function is not registered"}
	}
	if err := s.fuel.consume(1); err != nil {
		return value.Value{}, err
	}
	if args == nil {
		args = map[string]value.Value{}
	}
	s.env.metrics.RecordFunction(name)
	result, err := f(s, args)
	if err != nil {
		err = wrapCallError(name, err)
		s.logger.Debug("function failed", "function", name, "error", err)
		return value.Value{}, err
	}
	return result, nil
}

// PerformTest resolves path and runs the test registered as name on the
// result. An unresolved path is passed to the test as nil, which is what
// lets `defined` and `undefined` work.
func (s *State) PerformTest(name, path string, args []value.Value) (bool, error) {
	var target *value.Value
	if v, ok := s.Resolve(path); ok {
		target = &v
	}
	return s.TestValue(name, target, args)
}

// TestValue runs the test registered as name on val, which may be nil.
func (s *State) TestValue(name string, val *value.Value, args []value.Value) (bool, error) {
	t, ok := s.env.getTest(name)
	if !ok {
		return false, &Error{Kind: ErrUnknownTest, Op: name, Message: "test is not registered"}
	}
	if err := s.fuel.consume(1); err != nil {
		return false, err
	}
	s.env.metrics.RecordTest(name)
	result, err := t(s, val, args)
	if err != nil {
		err = wrapCallError(name, err)
		s.logger.Debug("test failed", "test", name, "error", err)
		return false, err
	}
	return result, nil
}
