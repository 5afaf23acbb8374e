// Package config loads the settings of the tmplcore command.
//
// Settings are layered: built-in defaults, then an optional YAML file, then
// an optional .env file and finally the process environment. Later layers
// override earlier ones. Environment variables carry the TMPLCORE_ prefix.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "TMPLCORE_"

// DefaultEnvFile is the .env file consulted when none is given explicitly.
const DefaultEnvFile = ".env"

// Config holds the command settings.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// NoColor disables ANSI colours in log output.
	NoColor bool `yaml:"no_color" env:"NO_COLOR"`
	// ContextFile is the JSON or YAML file providing the render context.
	ContextFile string `yaml:"context" env:"CONTEXT"`
	// TemplateName names the origin frame of the render state.
	TemplateName string `yaml:"template_name" env:"TEMPLATE_NAME"`
	// Metrics dumps the collected metrics after a command ran.
	Metrics bool `yaml:"metrics" env:"METRICS"`
	// Fuel limits the work of each render state. Zero means unlimited.
	Fuel uint64 `yaml:"fuel" env:"FUEL"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:     "info",
		TemplateName: "<cli>",
	}
}

// Options selects the files Load reads.
type Options struct {
	// Path of the YAML file. Empty skips the file; a missing file is an
	// error when the path was given.
	Path string
	// EnvFile is the .env file. A missing file is skipped.
	EnvFile string
	// Environ replaces os.Environ when non-nil.
	Environ []string
}

// Load builds the configuration from all layers.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		if err := loadYAML(opts.Path, &cfg); err != nil {
			return Config{}, err
		}
	}

	vars := map[string]string{}
	if opts.EnvFile != "" {
		fileVars, err := godotenv.Read(opts.EnvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("load env file %q: %w", opts.EnvFile, err)
		default:
			for k, v := range fileVars {
				vars[k] = v
			}
		}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.ContextFile != "" {
		if _, err := ContextFormat(c.ContextFile); err != nil {
			return err
		}
	}
	return nil
}

// ContextFormat returns "json" or "yaml" depending on the extension of a
// context file.
func ContextFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("unsupported context file %q: expected .json, .yaml or .yml", path)
}
