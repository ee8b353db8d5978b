// Package config loads the sqltyper configuration from, in increasing
// precedence: built-in defaults, a sqltyper.yaml file, SQLTYPER_*
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds the resolved configuration.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	Output      string `koanf:"output"` // text | json
	Jobs        int    `koanf:"jobs"`   // concurrent file analyses
	Verbose     bool   `koanf:"verbose"`
}

// defaults are the built-in settings, overridden by file, env, and flags.
var defaults = map[string]any{
	"database_url": "postgres://localhost:5432/postgres",
	"output":       "text",
	"jobs":         4,
	"verbose":      false,
}

// findConfigFile finds the config file to use.
// Priority: explicit path > sqltyper.yaml > sqltyper.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("sqltyper.yaml"); err == nil {
		return "sqltyper.yaml"
	}
	if _, err := os.Stat("sqltyper.yml"); err == nil {
		return "sqltyper.yml"
	}
	return ""
}

// Load resolves the configuration. flags may be nil.
func Load(explicitFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(explicitFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	} else if explicitFile != "" {
		return nil, fmt.Errorf("config file %s not found", explicitFile)
	}

	// SQLTYPER_DATABASE_URL -> database_url
	if err := k.Load(env.Provider("SQLTYPER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLTYPER_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Flag names use dashes; config keys use underscores.
	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Output != "text" && cfg.Output != "json" {
		return nil, fmt.Errorf("invalid output format %q (want text or json)", cfg.Output)
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}

	return &cfg, nil
}
