// Package models drives the external datamodel-code-generator program that
// produces the pydantic models package, and indexes the type names it
// declared.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/config"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
)

// Command is the executable invoked to generate pydantic models.
const Command = "datamodel-codegen"

// GenerationError reports a failed model-generation run. Stderr carries the
// collaborator's diagnostic output verbatim.
type GenerationError struct {
	Stderr string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("model generation failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("model generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator wraps one datamodel-codegen invocation per run.
type Generator struct {
	logger  zerolog.Logger
	command string
}

// NewGenerator returns a Generator logging through the given sink.
func NewGenerator(logger zerolog.Logger) *Generator {
	return &Generator{logger: logger, command: Command}
}

// Generate writes the spec document to a temporary JSON file, runs
// datamodel-codegen into <packageDir>/models/__init__.py, and returns the
// path of the generated file. A non-zero exit aborts with *GenerationError.
func (g *Generator) Generate(doc ir.Document, cfg *config.GenerationConfig, packageDir string) (string, error) {
	modelsDir := filepath.Join(packageDir, "models")
	if err := os.MkdirAll(modelsDir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "openapi-spec-*.json")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temporary spec: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	outFile := filepath.Join(modelsDir, "__init__.py")
	args := buildArgs(tmp.Name(), outFile, cfg)

	g.logger.Debug().Str("command", g.command).Strs("args", args).Msg("generating models")

	var stderr bytes.Buffer
	cmd := exec.Command(g.command, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &GenerationError{Stderr: stderr.String(), Err: err}
	}
	return outFile, nil
}

// buildArgs maps the model options onto datamodel-codegen flags.
func buildArgs(specPath, outPath string, cfg *config.GenerationConfig) []string {
	args := []string{
		"--input", specPath,
		"--input-file-type", "openapi",
		"--output", outPath,
		"--target-python-version", "3.10",
		"--enum-field-as-literal", "one",
		"--reuse-model",
		"--output-model-type", "pydantic_v2.BaseModel",
	}

	opts := cfg.ModelOptions
	if opts.FieldConstraints {
		args = append(args, "--field-constraints")
	}
	if opts.UseGenericContainerTypes {
		args = append(args, "--use-generic-container-types")
	} else {
		args = append(args, "--use-standard-collections")
	}
	if opts.UseStandardTyping {
		args = append(args, "--use-standard-typing")
	}
	if cfg.UseUnionOperator {
		args = append(args, "--use-union-operator")
	}
	return args
}
