package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/config"
)

const generatedModels = `# generated by datamodel-code-generator
from __future__ import annotations

from enum import Enum
from typing import Optional

from pydantic import BaseModel, Field


class Category(BaseModel):
    id: Optional[int] = None
    name: Optional[str] = None


class Status(str, Enum):
    available = 'available'
    pending = 'pending'


class Pet(BaseModel):
    id: Optional[int] = None
    name: str = Field(..., examples=['doggie'])
    category: Optional[Category] = None
    status: Optional[Status] = None


class Pet1(BaseModel):
    value: str


OrderList = list[Pet]
`

func TestParseRegistry(t *testing.T) {
	reg := parseRegistry(generatedModels)

	assert.True(t, reg.Has("Pet"))
	assert.True(t, reg.Has("Pet1"))
	assert.True(t, reg.Has("Category"))
	assert.True(t, reg.Has("Status"))
	assert.True(t, reg.Has("OrderList"))

	// class attributes and imports must not leak into the registry
	assert.False(t, reg.Has("id"))
	assert.False(t, reg.Has("name"))
	assert.False(t, reg.Has("BaseModel"))
	assert.False(t, reg.Has("available"))
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := parseRegistry(generatedModels)
	assert.Equal(t, []string{"Category", "OrderList", "Pet", "Pet1", "Status"}, reg.Names())
}

func TestBuildRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "__init__.py")
	require.NoError(t, os.WriteFile(path, []byte(generatedModels), 0o644))

	reg, err := BuildRegistry(path)
	require.NoError(t, err)
	assert.True(t, reg.Has("Pet"))
}

func TestBuildRegistryMissingFile(t *testing.T) {
	_, err := BuildRegistry(filepath.Join(t.TempDir(), "missing.py"))
	require.Error(t, err)
}

func TestBuildArgs(t *testing.T) {
	cfg := config.Default()
	args := buildArgs("/tmp/spec.json", "/out/models/__init__.py", &cfg)

	assert.Contains(t, args, "--field-constraints")
	assert.Contains(t, args, "--use-generic-container-types")
	assert.Contains(t, args, "--use-union-operator")
	assert.NotContains(t, args, "--use-standard-collections")
	assert.NotContains(t, args, "--use-standard-typing")

	cfg.ModelOptions.UseGenericContainerTypes = false
	cfg.ModelOptions.UseStandardTyping = true
	cfg.UseUnionOperator = false
	args = buildArgs("/tmp/spec.json", "/out/models/__init__.py", &cfg)

	assert.Contains(t, args, "--use-standard-collections")
	assert.Contains(t, args, "--use-standard-typing")
	assert.NotContains(t, args, "--use-generic-container-types")
	assert.NotContains(t, args, "--use-union-operator")
}

func TestGenerateFailurePropagatesStderr(t *testing.T) {
	g := NewGenerator(zerolog.Nop())
	g.command = "false" // exits non-zero with no output

	cfg := config.Default()
	_, err := g.Generate(map[string]any{"openapi": "3.0.3"}, &cfg, t.TempDir())
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}
