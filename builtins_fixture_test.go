package tmplcore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitsuhiko/tmplcore/internal/testutil"
	"github.com/mitsuhiko/tmplcore/value"
)

func runCase(state *State, c testutil.Case) (value.Value, error) {
	switch {
	case c.Filter != "":
		var input value.Value
		if c.Input != nil {
			input = *c.Input
		}
		return state.ApplyFilter(c.Filter, input, c.Args)
	case c.Test != "":
		ok, err := state.TestValue(c.Test, c.Input, c.TestArgs)
		return value.FromBool(ok), err
	}
	return state.CallFunction(c.Function, c.Args)
}

func TestBuiltinFixtures(t *testing.T) {
	files, names, err := testutil.LoadDir(filepath.Join("testdata", "builtins"))
	require.NoError(t, err)
	require.NotEmpty(t, names)

	env := NewEnvironment()
	for _, file := range names {
		t.Run(file, func(t *testing.T) {
			for _, c := range files[file] {
				t.Run(c.Name, func(t *testing.T) {
					got, err := runCase(env.NewState(c.Name, nil), c)
					if c.Error != "" {
						require.Error(t, err)
						kind, ok := value.KindOf(err)
						require.True(t, ok, "not a core error: %v", err)
						assert.Equal(t, c.Error, kind.String(), "error: %v", err)
						return
					}
					require.NoError(t, err)
					assertValue(t, *c.Expected, got)
				})
			}
		})
	}
}
