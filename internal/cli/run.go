// Package cli wires the cobra commands to the generation pipeline.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/config"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/generator/python"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/openapi"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/parser"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/utils"
)

// RunGenerateParams carries everything the generate command collected.
type RunGenerateParams struct {
	ConfigPath string
	Flags      *pflag.FlagSet
	Logger     zerolog.Logger
}

// RunGenerate executes the full pipeline: load config, load spec, normalize,
// generate the package.
func RunGenerate(p RunGenerateParams) error {
	cfg, err := config.Load(p.ConfigPath, p.Flags)
	if err != nil {
		return err
	}

	logger := p.Logger
	if cfg.Verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	logger.Debug().Str("spec", cfg.Spec).Msg("loading OpenAPI specification")
	doc, err := openapi.Load(cfg.Spec)
	if err != nil {
		return err
	}

	spec := parser.Extract(doc)

	if cfg.ClientClassName == "" {
		cfg.ClientClassName = DeriveClientClassName(spec.Info.Title)
	}

	logger.Info().
		Str("title", spec.Info.Title).
		Str("version", spec.Info.Version).
		Strs("tags", spec.Tags).
		Int("operations", len(spec.Operations)).
		Msg("specification loaded")

	gen, err := python.NewGenerator(logger)
	if err != nil {
		return err
	}
	if err := gen.Generate(spec, doc, cfg); err != nil {
		return err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spec.BaseURL()
	}
	if baseURL == "" {
		baseURL = "https://api.example.com"
	}
	logger.Info().Msgf("usage: from %s import %s; client = %s(base_url=%q)",
		cfg.PackageName, cfg.ClientClassName, cfg.ClientClassName, baseURL)
	return nil
}

// RunValidate validates a spec through kin-openapi.
func RunValidate(input string) error {
	return openapi.Validate(input)
}

// DeriveClientClassName builds a client class name from the API title when
// the configuration leaves it empty.
func DeriveClientClassName(title string) string {
	if name := utils.ToPascalCase(title); name != "" {
		return name + "Client"
	}
	return "Client"
}
