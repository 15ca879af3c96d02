package python

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/config"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/utils"
)

// successCodes are consulted in this order to pick the return shape.
var successCodes = []string{"200", "201", "202"}

// funcSpec is the synthesized plan for one generated function: signature,
// path template, query handling, and response handling. It is what the
// module template renders.
type funcSpec struct {
	Name        string
	Summary     string
	Description string
	Params      []string
	ReturnType  string
	Method      string
	PathExpr    string
	Query       []querySpec
	HasBody     bool
	BodyArg     string
	ReturnsJSON bool
}

// querySpec keeps both names of a query parameter: the local binding is
// normalized, the wire name goes out on the request unchanged.
type querySpec struct {
	WireName  string
	LocalName string
	Required  bool
}

// moduleData is the template payload for one api/<tag>.py module.
type moduleData struct {
	Tag             string
	ClientClassName string
	ModelImports    []string
	Functions       []funcSpec
}

// Emitter synthesizes function-level specifications for API operations.
// It performs no I/O; diagnostics go through the injected logger.
type Emitter struct {
	resolver *Resolver
	cfg      *config.GenerationConfig
	logger   zerolog.Logger
}

// NewEmitter returns an Emitter bound to one resolver and config.
func NewEmitter(resolver *Resolver, cfg *config.GenerationConfig, logger zerolog.Logger) *Emitter {
	return &Emitter{resolver: resolver, cfg: cfg, logger: logger}
}

// buildModule assembles the template payload for one tag's module.
func (e *Emitter) buildModule(tag string, ops []ir.Operation) moduleData {
	specs := make([]funcSpec, 0, len(ops))
	for _, op := range ops {
		specs = append(specs, e.buildFuncSpec(op))
	}
	return moduleData{
		Tag:             tag,
		ClientClassName: e.cfg.ClientClassName,
		ModelImports:    e.usedModels(specs),
		Functions:       specs,
	}
}

// buildFuncSpec plans one generated function from an operation record.
func (e *Emitter) buildFuncSpec(op ir.Operation) funcSpec {
	name := functionName(op)
	e.logger.Debug().Str("operation", name).Str("method", op.Method).Str("path", op.Path).Msg("emitting operation")

	pathParams := op.PathParams()
	queryParams := op.QueryParams()

	params := []string{fmt.Sprintf("client: %s", e.cfg.ClientClassName)}
	for _, p := range pathParams {
		params = append(params, fmt.Sprintf("%s: %s", utils.ToSnakeCase(p.Name), e.resolver.Resolve(p.Schema)))
	}
	for _, p := range queryParams {
		if p.Required {
			params = append(params, fmt.Sprintf("%s: %s", utils.ToSnakeCase(p.Name), e.resolver.Resolve(p.Schema)))
		}
	}

	// A required body has no default, so it must precede the defaulted
	// optional query parameters to stay valid Python.
	bodyArg := ""
	if op.RequestBody != nil && op.RequestBody.Required {
		params = append(params, "body: "+e.bodyType(op.RequestBody))
		bodyArg = e.bodyExpression(op.RequestBody)
	}
	for _, p := range queryParams {
		if !p.Required {
			params = append(params, fmt.Sprintf("%s: %s = None", utils.ToSnakeCase(p.Name), e.optional(e.resolver.Resolve(p.Schema))))
		}
	}
	if op.RequestBody != nil && !op.RequestBody.Required {
		params = append(params, "body: "+e.optional(e.bodyType(op.RequestBody))+" = None")
		bodyArg = e.bodyExpression(op.RequestBody)
	}

	query := make([]querySpec, 0, len(queryParams))
	for _, p := range queryParams {
		query = append(query, querySpec{
			WireName:  p.Name,
			LocalName: utils.ToSnakeCase(p.Name),
			Required:  p.Required,
		})
	}

	returnType, returnsJSON := e.returnShape(op)

	summary := op.Summary
	if summary == "" {
		summary = "API operation"
	}

	return funcSpec{
		Name:        name,
		Summary:     summary,
		Description: op.Description,
		Params:      params,
		ReturnType:  returnType,
		Method:      strings.ToLower(op.Method),
		PathExpr:    pathTemplate(op.Path),
		Query:       query,
		HasBody:     op.RequestBody != nil,
		BodyArg:     bodyArg,
		ReturnsJSON: returnsJSON,
	}
}

// returnShape picks the first success response with a typed body; anything
// else falls back to the TypedResponse wrapper.
func (e *Emitter) returnShape(op ir.Operation) (string, bool) {
	for _, code := range successCodes {
		resp, ok := op.Responses[code]
		if !ok || resp.Schema.IsEmpty() {
			continue
		}
		return e.resolver.Resolve(resp.Schema), true
	}
	return "TypedResponse", false
}

// bodyType unions the resolved body type with the raw-map fallback so
// callers may pass either a model instance or a plain dict.
func (e *Emitter) bodyType(body *ir.RequestBody) string {
	resolved := e.resolver.Resolve(body.Schema)
	if resolved == "Dict[str, Any]" || resolved == "Any" {
		return "Dict[str, Any]"
	}
	return e.union(resolved, "Dict[str, Any]")
}

// bodyExpression decides at emission time how the body is serialized: model
// instances dump to a dict, opaque maps pass through verbatim.
func (e *Emitter) bodyExpression(body *ir.RequestBody) string {
	if name := body.Schema.Ref(); name != "" {
		resolved := e.resolver.Resolve(body.Schema)
		if e.resolver.IsModel(resolved) {
			return fmt.Sprintf("body.model_dump(exclude_none=True) if isinstance(body, %s) else body", resolved)
		}
	}
	return "body"
}

func (e *Emitter) union(types ...string) string {
	if e.cfg.UseUnionOperator {
		return strings.Join(types, " | ")
	}
	return "Union[" + strings.Join(types, ", ") + "]"
}

func (e *Emitter) optional(t string) string {
	if e.cfg.UseUnionOperator {
		return t + " | None"
	}
	return "Optional[" + t + "]"
}

// functionName derives the generated function name: the normalized
// operationId, or method plus last literal path segment when none is given.
func functionName(op ir.Operation) string {
	if op.OperationID != "" {
		return utils.ToSnakeCase(op.OperationID)
	}
	name := strings.ToLower(op.Method)
	if segment := lastLiteralSegment(op.Path); segment != "" {
		name += "_" + segment
	}
	return utils.ToSnakeCase(name)
}

func lastLiteralSegment(path string) string {
	last := ""
	for _, part := range strings.Split(path, "/") {
		if part != "" && !strings.HasPrefix(part, "{") {
			last = part
		}
	}
	return last
}

// pathTemplate renders the path as a Python f-string, rewriting each
// {placeholder} to the normalized local variable name. Only the local
// binding changes; query keys keep the wire name.
func pathTemplate(path string) string {
	var b strings.Builder
	b.WriteString(`f"`)
	for i := 0; i < len(path); i++ {
		if path[i] == '{' {
			j := i + 1
			for j < len(path) && path[j] != '}' {
				j++
			}
			if j < len(path) {
				b.WriteString("{")
				b.WriteString(utils.ToSnakeCase(path[i+1 : j]))
				b.WriteString("}")
				i = j
				continue
			}
		}
		b.WriteByte(path[i])
	}
	b.WriteString(`"`)
	return b.String()
}

var identifier = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// usedModels extracts the generated model names a module references, for the
// explicit import list.
func (e *Emitter) usedModels(specs []funcSpec) []string {
	uniq := map[string]struct{}{}
	collect := func(expr string) {
		for _, id := range identifier.FindAllString(expr, -1) {
			if e.resolver.IsModel(id) {
				uniq[id] = struct{}{}
			}
		}
	}
	for _, fs := range specs {
		collect(fs.ReturnType)
		collect(fs.BodyArg)
		for _, p := range fs.Params {
			collect(p)
		}
	}
	out := make([]string, 0, len(uniq))
	for name := range uniq {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
