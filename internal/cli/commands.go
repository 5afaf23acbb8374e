package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mitsuhiko/tmplcore"
	"github.com/mitsuhiko/tmplcore/value"
)

// newResolveCommand creates the "resolve" subcommand that looks up dotted
// paths, optionally once per element of a loop.
func newResolveCommand(opts *Options) *cobra.Command {
	var (
		strict bool
		each   string
	)

	cmd := &cobra.Command{
		Use:   "resolve PATH...",
		Short: "Resolve variable paths against the context",
		Example: `  tmplcore resolve --context ctx.yaml user.name
  tmplcore resolve --context ctx.yaml --each user=users user.name loop.index
  tmplcore resolve --context ctx.yaml --each key,val=settings key val`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			s, err := newSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			state := s.state()
			out := cmd.OutOrStdout()

			printAll := func() error {
				for _, path := range paths {
					v, ok := state.Resolve(path)
					if !ok {
						if strict {
							return value.Undefined(path)
						}
						fmt.Fprintf(out, "%s: <undefined>\n", path)
						continue
					}
					fmt.Fprintf(out, "%s: %s\n", path, v.Repr())
				}
				return nil
			}

			if each == "" {
				return printAll()
			}
			loop, err := parseLoop(state, each)
			if err != nil {
				return err
			}
			err = state.ForEach("each", loop, printAll)
			s.logger.Debug("loop finished", "iterations", state.Iterations())
			return err
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on paths that do not resolve")
	cmd.Flags().StringVar(&each, "each", "", "Resolve once per element: NAME=PATH or KEY,VALUE=PATH")
	return cmd
}

// parseLoop builds a for loop from NAME=PATH or KEY,VALUE=PATH.
func parseLoop(state *tmplcore.State, expr string) (*tmplcore.ForLoop, error) {
	names, path, ok := strings.Cut(expr, "=")
	if !ok || names == "" || path == "" {
		return nil, fmt.Errorf("invalid loop %q: expected NAME=PATH or KEY,VALUE=PATH", expr)
	}
	items, err := state.MustResolve(path)
	if err != nil {
		return nil, err
	}
	if key, val, isPair := strings.Cut(names, ","); isPair {
		return tmplcore.NewKeyValueForLoop(key, val, items)
	}
	return tmplcore.NewForLoop(names, items)
}

// newSortCommand creates the "sort" subcommand.
func newSortCommand(opts *Options) *cobra.Command {
	var attribute string

	cmd := &cobra.Command{
		Use:   "sort PATH",
		Short: "Sort the array found at PATH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			state := s.state()
			items, err := state.MustResolve(args[0])
			if err != nil {
				return err
			}
			filterArgs := map[string]value.Value{}
			if attribute != "" {
				filterArgs["attribute"] = value.FromString(attribute)
			}
			sorted, err := state.ApplyFilter("sort", items, filterArgs)
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), sorted, true)
		},
	}

	cmd.Flags().StringVarP(&attribute, "attribute", "a", "", "Dotted path of the sort key inside each element")
	return cmd
}

// newFilterCommand creates the "filter" subcommand.
func newFilterCommand(opts *Options) *cobra.Command {
	var (
		input   string
		literal string
		pairs   []string
		asJSON  bool
		repeat  int
	)

	cmd := &cobra.Command{
		Use:   "filter NAME",
		Short: "Apply a filter to a context value or a literal",
		Example: `  tmplcore filter upper --value '"hello"'
  tmplcore filter join --context ctx.yaml --input tags --arg sep=", "`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if input != "" && literal != "" {
				return fmt.Errorf("--input and --value are mutually exclusive")
			}
			filterArgs, err := parseNamedArgs(pairs)
			if err != nil {
				return err
			}
			s, err := newSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			name := args[0]
			result, err := runRepeated(cmd.Context(), s, repeat, func(state *tmplcore.State) (value.Value, error) {
				val := parseLiteral(literal)
				if input != "" {
					v, err := state.MustResolve(input)
					if err != nil {
						return value.Value{}, err
					}
					val = v
				}
				return state.ApplyFilter(name, val, filterArgs)
			})
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), result, asJSON)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Context path of the filtered value")
	cmd.Flags().StringVar(&literal, "value", "", "Literal filtered value (JSON, or a plain string)")
	cmd.Flags().StringArrayVar(&pairs, "arg", nil, "Filter argument as key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Run concurrently this many times and check the results agree")
	return cmd
}

// newTestCommand creates the "test" subcommand.
func newTestCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "test NAME PATH [ARG...]",
		Short:   "Run a test on the value at PATH",
		Example: `  tmplcore test divisibleby --context ctx.yaml count 3`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			testArgs := make([]value.Value, 0, len(args)-2)
			for _, a := range args[2:] {
				testArgs = append(testArgs, parseLiteral(a))
			}
			ok, err := s.state().PerformTest(args[0], args[1], testArgs)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), ok)
			return err
		},
	}
	return cmd
}

// newCallCommand creates the "call" subcommand.
func newCallCommand(opts *Options) *cobra.Command {
	var (
		pairs  []string
		asJSON bool
		repeat int
	)

	cmd := &cobra.Command{
		Use:     "call NAME",
		Short:   "Call a global function",
		Example: `  tmplcore call range --arg end=5 --json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fnArgs, err := parseNamedArgs(pairs)
			if err != nil {
				return err
			}
			s, err := newSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			result, err := runRepeated(cmd.Context(), s, repeat, func(state *tmplcore.State) (value.Value, error) {
				return state.CallFunction(args[0], fnArgs)
			})
			if err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), result, asJSON)
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "arg", nil, "Function argument as key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "Run concurrently this many times and check the results agree")
	return cmd
}

// newListCommand creates the "list" subcommand that prints the registered
// filters, tests and functions.
func newListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered filters, tests and functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, section := range []struct {
				title string
				names []string
			}{
				{"filters", s.env.FilterNames()},
				{"tests", s.env.TestNames()},
				{"functions", s.env.FunctionNames()},
			} {
				fmt.Fprintf(out, "%s: %s\n", section.title, strings.Join(section.names, ", "))
			}
			return nil
		},
	}
}
