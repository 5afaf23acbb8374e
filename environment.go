package tmplcore

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/mitsuhiko/tmplcore/metrics"
	"github.com/mitsuhiko/tmplcore/value"
)

// FilterFunc is the signature for filter functions. It receives the value
// being filtered and its named arguments and returns a new value.
type FilterFunc func(state *State, val value.Value, args map[string]value.Value) (value.Value, error)

// TestFunc is the signature for test functions. val is nil when the tested
// expression is undefined.
type TestFunc func(state *State, val *value.Value, args []value.Value) (bool, error)

// FunctionFunc is the signature for global functions.
type FunctionFunc func(state *State, args map[string]value.Value) (value.Value, error)

// Environment holds the registries of filters, tests and functions.
//
// Registration happens while the environment is being set up. The first
// call to NewState seals it; from then on the registries are only read and
// the environment may be shared by any number of concurrent renders.
// Registering after that point panics.
type Environment struct {
	filters   map[string]FilterFunc
	tests     map[string]TestFunc
	functions map[string]FunctionFunc
	logger    *slog.Logger
	metrics   *metrics.Metrics
	fuel      uint64
	maxDepth  int
	sealed    atomic.Bool
}

// Option configures an Environment.
type Option func(*envOptions)

type envOptions struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	fuel     uint64
	maxDepth int
	defaults bool
}

// defaultRecursionLimit bounds the number of frames on a render stack.
const defaultRecursionLimit = 500

// WithLogger sets the logger used by render states. Filter, test and
// function failures are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *envOptions) { o.logger = logger }
}

// WithMetrics enables instrumentation of registry calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *envOptions) { o.metrics = m }
}

// WithFuel limits every render state to fuel units of work. Each filter,
// test and function call and each loop iteration costs one unit. Zero
// disables the limit.
func WithFuel(fuel uint64) Option {
	return func(o *envOptions) { o.fuel = fuel }
}

// WithRecursionLimit sets how many frames a render stack may hold before
// entering another macro, include or loop fails.
func WithRecursionLimit(depth int) Option {
	return func(o *envOptions) { o.maxDepth = depth }
}

// WithoutDefaults skips registration of the builtin filters, tests and
// functions.
func WithoutDefaults() Option {
	return func(o *envOptions) { o.defaults = false }
}

// NewEnvironment creates a new environment. Unless WithoutDefaults is
// given, the builtin filters, tests and functions are registered.
func NewEnvironment(opts ...Option) *Environment {
	o := envOptions{defaults: true, maxDepth: defaultRecursionLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	env := &Environment{
		filters:   make(map[string]FilterFunc),
		tests:     make(map[string]TestFunc),
		functions: make(map[string]FunctionFunc),
		logger:    o.logger,
		metrics:   o.metrics,
		fuel:      o.fuel,
		maxDepth:  o.maxDepth,
	}
	if o.defaults {
		registerDefaultFilters(env)
		registerDefaultTests(env)
		registerDefaultFunctions(env)
	}
	return env
}

// EmptyEnvironment creates an environment with no defaults.
func EmptyEnvironment() *Environment {
	return NewEnvironment(WithoutDefaults())
}

func (e *Environment) mustNotBeSealed(what string) {
	if e.sealed.Load() {
		panic(fmt.Sprintf("tmplcore: cannot %s after the environment has been used for rendering", what))
	}
}

// AddFilter registers a filter function.
func (e *Environment) AddFilter(name string, f FilterFunc) {
	e.mustNotBeSealed("add filter " + name)
	e.filters[name] = f
}

// AddTest registers a test function.
func (e *Environment) AddTest(name string, f TestFunc) {
	e.mustNotBeSealed("add test " + name)
	e.tests[name] = f
}

// AddFunction registers a global function.
func (e *Environment) AddFunction(name string, f FunctionFunc) {
	e.mustNotBeSealed("add function " + name)
	e.functions[name] = f
}

// Sealed reports whether the environment has been used for rendering.
func (e *Environment) Sealed() bool {
	return e.sealed.Load()
}

// getFilter returns a filter by name.
func (e *Environment) getFilter(name string) (FilterFunc, bool) {
	f, ok := e.filters[name]
	return f, ok
}

// getTest returns a test by name.
func (e *Environment) getTest(name string) (TestFunc, bool) {
	t, ok := e.tests[name]
	return t, ok
}

// getFunction returns a function by name.
func (e *Environment) getFunction(name string) (FunctionFunc, bool) {
	f, ok := e.functions[name]
	return f, ok
}

// FilterNames returns the names of all registered filters, sorted.
func (e *Environment) FilterNames() []string { return sortedKeys(e.filters) }

// TestNames returns the names of all registered tests, sorted.
func (e *Environment) TestNames() []string { return sortedKeys(e.tests) }

// FunctionNames returns the names of all registered functions, sorted.
func (e *Environment) FunctionNames() []string { return sortedKeys(e.functions) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewState starts a render call against ctx and seals the environment.
// A nil ctx is treated as an empty context.
func (e *Environment) NewState(name string, ctx *Context) *State {
	e.sealed.Store(true)
	return newState(e, name, ctx)
}
