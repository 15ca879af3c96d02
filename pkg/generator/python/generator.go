// Package python generates a typed Python SDK package from a normalized
// OpenAPI specification: pydantic models via datamodel-code-generator, one
// api module per tag, and templated client/exceptions modules.
package python

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/rs/zerolog"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/config"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/models"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/utils"
)

//go:embed templates/*
var templatesFS embed.FS

// Generator assembles the complete generated package on disk.
type Generator struct {
	logger    zerolog.Logger
	models    *models.Generator
	templates *template.Template
}

// NewGenerator parses the embedded templates and returns a ready generator.
func NewGenerator(logger zerolog.Logger) (*Generator, error) {
	tmpl, err := template.New("python").Funcs(sprig.TxtFuncMap()).ParseFS(templatesFS, "templates/*.gotmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Generator{
		logger:    logger,
		models:    models.NewGenerator(logger),
		templates: tmpl,
	}, nil
}

// Generate lays out <output_dir>/<package_name>/: the models package (via
// the external generator, whose failure aborts the run), one api module per
// tag, and the templated client, exceptions, and __init__ modules. Files
// already written are left on disk when a later step fails.
func (g *Generator) Generate(spec ir.Specification, doc ir.Document, cfg *config.GenerationConfig) error {
	packageDir := filepath.Join(cfg.OutputDir, cfg.PackageName)
	apiDir := filepath.Join(packageDir, "api")
	if err := os.MkdirAll(apiDir, 0o755); err != nil {
		return err
	}

	modelsFile, err := g.models.Generate(doc, cfg, packageDir)
	if err != nil {
		return err
	}
	registry, err := models.BuildRegistry(modelsFile)
	if err != nil {
		return err
	}
	g.logger.Debug().Int("models", len(registry)).Msg("built model registry")

	emitter := NewEmitter(NewResolver(registry, g.logger), cfg, g.logger)

	// spec.Tags is sorted; module generation and __init__ exports share
	// that order.
	grouped := groupByTag(spec.Operations)
	moduleNames := make([]string, 0, len(spec.Tags))
	for _, tag := range spec.Tags {
		name := utils.ToSnakeCase(tag)
		moduleNames = append(moduleNames, name)
		data := emitter.buildModule(tag, grouped[tag])
		if err := g.renderTo(filepath.Join(apiDir, name+".py"), "module.py.gotmpl", data); err != nil {
			return err
		}
	}
	sort.Strings(moduleNames)

	if err := g.renderTo(filepath.Join(apiDir, "__init__.py"), "api_init.py.gotmpl", nil); err != nil {
		return err
	}
	if err := g.renderTo(filepath.Join(packageDir, "exceptions.py"), "exceptions.py.gotmpl", nil); err != nil {
		return err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spec.BaseURL()
	}
	if err := g.renderTo(filepath.Join(packageDir, "client.py"), "client.py.gotmpl", map[string]any{
		"ClientClassName": cfg.ClientClassName,
		"DefaultTimeout":  cfg.Timeout,
		"UserAgent":       cfg.UserAgent,
		"BaseURL":         baseURL,
	}); err != nil {
		return err
	}

	title := spec.Info.Title
	if title == "" {
		title = "API"
	}
	version := spec.Info.Version
	if version == "" {
		version = "0.1.0"
	}
	if err := g.renderTo(filepath.Join(packageDir, "__init__.py"), "init.py.gotmpl", map[string]any{
		"Title":           title,
		"Version":         version,
		"ClientClassName": cfg.ClientClassName,
		"Modules":         moduleNames,
	}); err != nil {
		return err
	}

	g.logger.Info().Str("package", packageDir).Int("modules", len(moduleNames)).Msg("SDK generated")
	return nil
}

// groupByTag replicates each operation into every group its tags name.
func groupByTag(ops []ir.Operation) map[string][]ir.Operation {
	grouped := map[string][]ir.Operation{}
	for _, op := range ops {
		for _, tag := range op.Tags {
			grouped[tag] = append(grouped[tag], op)
		}
	}
	return grouped
}

func (g *Generator) renderTo(path, templateName string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := g.templates.ExecuteTemplate(f, templateName, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", templateName, err)
	}
	return nil
}
