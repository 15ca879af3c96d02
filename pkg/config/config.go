// Package config defines the generation options and loads them from
// built-in defaults, an optional YAML config file, and CLI flags, in that
// precedence order (flags win).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ModelOptions are passed through to datamodel-code-generator.
type ModelOptions struct {
	FieldConstraints         bool `koanf:"field_constraints"`
	UseStandardTyping        bool `koanf:"use_standard_typing"`
	UseGenericContainerTypes bool `koanf:"use_generic_container_types"`
}

// GenerationConfig carries every option consumed by the generation pipeline.
// It is treated as immutable for the duration of a run.
type GenerationConfig struct {
	Spec             string       `koanf:"spec"`
	OutputDir        string       `koanf:"output_dir"`
	PackageName      string       `koanf:"package_name"`
	BaseURL          string       `koanf:"base_url"`
	Timeout          int          `koanf:"timeout"`
	UserAgent        string       `koanf:"user_agent"`
	ClientClassName  string       `koanf:"client_class_name"`
	UseUnionOperator bool         `koanf:"use_union_operator"`
	Verbose          bool         `koanf:"verbose"`
	ModelOptions     ModelOptions `koanf:"model_options"`
}

// Default returns the built-in configuration layer.
func Default() GenerationConfig {
	return GenerationConfig{
		OutputDir:        ".",
		Timeout:          30,
		ClientClassName:  "Client",
		UseUnionOperator: true,
		ModelOptions: ModelOptions{
			FieldConstraints:         true,
			UseGenericContainerTypes: true,
		},
	}
}

// flagKeys maps CLI flag names onto config keys. Flags not listed here
// (e.g. --config) never reach the merged configuration.
var flagKeys = map[string]string{
	"spec":        "spec",
	"out":         "output_dir",
	"package":     "package_name",
	"base-url":    "base_url",
	"timeout":     "timeout",
	"user-agent":  "user_agent",
	"client-name": "client_class_name",
	"verbose":     "verbose",
}

// Load merges defaults, the optional YAML config file, and the given flag
// set. Flags that were not set on the command line never override file
// values.
func Load(configPath string, flags *pflag.FlagSet) (*GenerationConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, err
	}

	if configPath != "" {
		suffix := strings.ToLower(filepath.Ext(configPath))
		if suffix != ".yaml" && suffix != ".yml" {
			return nil, fmt.Errorf("unsupported config file format %q: use .yaml or .yml", suffix)
		}
		if err := k.Load(file.Provider(configPath), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if flags != nil {
		cb := func(key, value string) (string, any) {
			if mapped, ok := flagKeys[key]; ok {
				return mapped, value
			}
			return "", nil
		}
		if err := k.Load(posflag.ProviderWithValue(flags, ".", k, cb), nil); err != nil {
			return nil, err
		}
	}

	var cfg GenerationConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !filepath.IsAbs(cfg.OutputDir) {
		if abs, err := filepath.Abs(cfg.OutputDir); err == nil {
			cfg.OutputDir = abs
		}
	}
	// Do not absolutize when spec is an HTTP(S) URL
	if u, err := url.Parse(cfg.Spec); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		if !filepath.IsAbs(cfg.Spec) {
			if abs, err := filepath.Abs(cfg.Spec); err == nil {
				cfg.Spec = abs
			}
		}
	}
	return &cfg, nil
}

func (c *GenerationConfig) validate() error {
	if c.Spec == "" {
		return errors.New("spec is required (set --spec or the spec key in the config file)")
	}
	if c.PackageName == "" {
		return errors.New("package_name is required (set --package or the package_name key in the config file)")
	}
	return nil
}
