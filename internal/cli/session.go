package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sync/errgroup"

	"github.com/mitsuhiko/tmplcore"
	"github.com/mitsuhiko/tmplcore/internal/config"
	"github.com/mitsuhiko/tmplcore/metrics"
	"github.com/mitsuhiko/tmplcore/value"
)

// session bundles what a command needs to create render states.
type session struct {
	env    *tmplcore.Environment
	ctx    *tmplcore.Context
	name   string
	logger *slog.Logger
}

func newSession(ctx context.Context, opts *Options) (*session, error) {
	logger := LoggerFromContext(ctx)

	envOpts := []tmplcore.Option{
		tmplcore.WithLogger(logger),
		tmplcore.WithFuel(opts.Config.Fuel),
	}
	if opts.registry != nil {
		envOpts = append(envOpts, tmplcore.WithMetrics(metrics.New(opts.registry)))
	}

	renderCtx, err := loadContext(opts.Config.ContextFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("context loaded", "file", opts.Config.ContextFile, "variables", renderCtx.Len())

	return &session{
		env:    tmplcore.NewEnvironment(envOpts...),
		ctx:    renderCtx,
		name:   opts.Config.TemplateName,
		logger: logger,
	}, nil
}

func (s *session) state() *tmplcore.State {
	st := s.env.NewState(s.name, s.ctx)
	st.Logger().Debug("render state created")
	return st
}

// loadContext reads a JSON or YAML document whose top level is an object.
// An empty path yields an empty context.
func loadContext(path string) (*tmplcore.Context, error) {
	if path == "" {
		return tmplcore.NewContext(), nil
	}
	format, err := config.ContextFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context %q: %w", path, err)
	}
	var doc value.Value
	if format == "json" {
		doc, err = value.FromJSON(data)
	} else {
		doc, err = value.FromYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load context %q: %w", path, err)
	}
	renderCtx, err := tmplcore.ContextFromValue(doc)
	if err != nil {
		return nil, fmt.Errorf("load context %q: %w", path, err)
	}
	return renderCtx, nil
}

// parseLiteral reads a command line value as JSON and falls back to the
// plain string when that fails, so `--arg sep=,` and `--arg n=3` both
// work.
func parseLiteral(s string) value.Value {
	if v, err := value.FromJSON([]byte(s)); err == nil {
		return v
	}
	return value.FromString(s)
}

// parseNamedArgs turns key=value pairs into keyword arguments.
func parseNamedArgs(pairs []string) (map[string]value.Value, error) {
	args := make(map[string]value.Value, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", pair)
		}
		args[k] = parseLiteral(v)
	}
	return args, nil
}

// runRepeated evaluates fn n times concurrently, each time on a fresh
// state, and fails unless every run produced the same value.
func runRepeated(ctx context.Context, s *session, n int, fn func(*tmplcore.State) (value.Value, error)) (value.Value, error) {
	if n < 1 {
		n = 1
	}
	results := make([]value.Value, n)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range n {
		g.Go(func() error {
			v, err := fn(s.state())
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return value.Value{}, err
	}

	for i := 1; i < n; i++ {
		if !results[i].Equal(results[0]) {
			return value.Value{}, fmt.Errorf("run %d produced %s, run 0 produced %s", i, results[i].Repr(), results[0].Repr())
		}
	}
	if n > 1 {
		s.logger.Info("repeated runs agree", "runs", n)
	}
	return results[0], nil
}

func writeValue(w io.Writer, v value.Value, asJSON bool) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, v.String())
		return err
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
