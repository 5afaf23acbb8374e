// Package testutil loads data-driven test cases for the builtin filters,
// tests and functions.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mitsuhiko/tmplcore/value"
)

// Case is one builtin invocation read from a fixture file. Exactly one of
// Filter, Test and Function names the builtin.
type Case struct {
	Name     string                 `yaml:"name"`
	Filter   string                 `yaml:"filter"`
	Test     string                 `yaml:"test"`
	Function string                 `yaml:"function"`
	Input    *value.Value           `yaml:"input"`
	Args     map[string]value.Value `yaml:"args"`
	TestArgs []value.Value          `yaml:"test_args"`
	Expected *value.Value           `yaml:"expected"`
	// Error is the expected error kind, for example "type mismatch".
	Error string `yaml:"error"`
}

// Builtin returns the name of the builtin the case exercises.
func (c Case) Builtin() string {
	switch {
	case c.Filter != "":
		return c.Filter
	case c.Test != "":
		return c.Test
	}
	return c.Function
}

func (c Case) validate() error {
	set := 0
	for _, name := range []string{c.Filter, c.Test, c.Function} {
		if name != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("case %q: exactly one of filter, test and function must be set", c.Name)
	}
	if (c.Expected == nil) == (c.Error == "") {
		return fmt.Errorf("case %q: exactly one of expected and error must be set", c.Name)
	}
	return nil
}

// LoadCases reads the cases of a single YAML fixture file.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []Case
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range cases {
		if cases[i].Name == "" {
			cases[i].Name = fmt.Sprintf("%s#%d", cases[i].Builtin(), i)
		}
		if err := cases[i].validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return cases, nil
}

// LoadDir reads every *.yaml file in dir. The result is keyed by file name
// without extension.
func LoadDir(dir string) (map[string][]Case, []string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(paths)

	out := make(map[string][]Case, len(paths))
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		cases, err := LoadCases(path)
		if err != nil {
			return nil, nil, err
		}
		name := filepath.Base(path)
		name = name[:len(name)-len(filepath.Ext(name))]
		out[name] = cases
		names = append(names, name)
	}
	return out, names, nil
}
