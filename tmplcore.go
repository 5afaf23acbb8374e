// Package tmplcore is the evaluation core of a Jinja-like template engine.
//
// It owns everything a renderer needs once a template has been parsed:
// the dynamic value model (package value), the sort engine (package
// sorting), the render context, the frame stack that resolves variables
// in loops, macros and includes, and the registries of filters, tests and
// functions.
//
// # Quick Start
//
//	env := tmplcore.NewEnvironment()
//
//	ctx := tmplcore.NewContext()
//	ctx.Insert("users", []map[string]any{
//	    {"name": "Bob", "age": 31},
//	    {"name": "Ada", "age": 36},
//	})
//
//	state := env.NewState("hello.txt", ctx)
//	users, _ := state.Resolve("users")
//	sorted, _ := state.ApplyFilter("sort", users, map[string]value.Value{
//	    "attribute": value.FromString("name"),
//	})
//
// # Variable Resolution
//
// A path such as "user.address.city" is resolved against the frames of
// the stack from the innermost to the outermost and finally against the
// context. Inside a for loop frame the loop variables are visible:
//
//	loop, _ := tmplcore.NewForLoop("user", sorted)
//	state.ForEach("users", loop, func() error {
//	    name, _ := state.Resolve("user.name")
//	    index, _ := state.Resolve("loop.index")
//	    fmt.Println(index, name)
//	    return nil
//	})
//
// # Environment Configuration
//
// Filters, tests and functions are registered before the first render.
// The first call to NewState seals the environment, after which it can be
// shared between goroutines:
//
//	env := tmplcore.NewEnvironment(
//	    tmplcore.WithLogger(logger),
//	    tmplcore.WithMetrics(metrics.New(registry)),
//	)
//	env.AddFilter("shout", func(_ *tmplcore.State, v value.Value, _ map[string]value.Value) (value.Value, error) {
//	    s, err := v.TryString("shout")
//	    if err != nil {
//	        return value.Value{}, err
//	    }
//	    return value.FromString(strings.ToUpper(s) + "!"), nil
//	})
//
// # Resource Limits
//
// WithFuel bounds the work a single State may do: every filter, test and
// function call and every loop iteration costs one unit. WithRecursionLimit
// bounds the depth of the frame stack:
//
//	env := tmplcore.NewEnvironment(tmplcore.WithFuel(10000))
//	state := env.NewState("page.html", ctx)
//	// ...
//	consumed, remaining, _ := state.FuelLevels()
//
// # Error Handling
//
// Every failure is an *Error carrying an ErrorKind. Kinds can be matched
// with errors.Is:
//
//	_, err := state.ApplyFilter("sort", mixed, nil)
//	if errors.Is(err, tmplcore.ErrTypeMismatch) {
//	    // keys of different types
//	}
package tmplcore
