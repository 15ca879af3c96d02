package python

import (
	"github.com/rs/zerolog"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/models"
)

// Resolver maps schema fragments to Python type expressions, consulting the
// registry of names the model generator actually produced.
type Resolver struct {
	registry models.Registry
	logger   zerolog.Logger
	refMemo  map[string]string
}

// NewResolver returns a Resolver over the given registry.
func NewResolver(registry models.Registry, logger zerolog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		logger:   logger,
		refMemo:  map[string]string{},
	}
}

// refVariants are the naming fallbacks datamodel-code-generator is known to
// produce when component schema names collide.
func refVariants(name string) []string {
	return []string{name, name + "1", name + "Model"}
}

// Resolve returns the Python type expression for a schema fragment.
func (r *Resolver) Resolve(frag ir.Fragment) string {
	if name := frag.Ref(); name != "" {
		return r.resolveRef(name)
	}
	switch frag.Type() {
	case "array":
		inner := "Any"
		if items := frag.Items(); len(items) > 0 {
			inner = r.Resolve(items)
		}
		return "List[" + inner + "]"
	case "object":
		return "Dict[str, Any]"
	case "string":
		return "str"
	case "integer":
		return "int"
	case "number":
		return "float"
	case "boolean":
		return "bool"
	}
	return "Any"
}

// resolveRef looks the schema name up in the registry, trying the known
// collision variants. Unresolved names degrade to the literal schema name;
// the generated code may then reference a type that does not exist, which is
// surfaced here rather than hidden.
func (r *Resolver) resolveRef(name string) string {
	if cached, ok := r.refMemo[name]; ok {
		return cached
	}
	resolved := name
	matched := false
	for _, candidate := range refVariants(name) {
		if r.registry.Has(candidate) {
			resolved = candidate
			matched = true
			break
		}
	}
	if !matched {
		r.logger.Debug().Str("schema", name).Msg("no generated model for schema, emitting literal name")
	}
	r.refMemo[name] = resolved
	return resolved
}

// IsModel reports whether a resolved type expression is a generated model
// name.
func (r *Resolver) IsModel(expr string) bool {
	return r.registry.Has(expr)
}
