// Package parser normalizes a decoded OpenAPI document tree into the flat
// operation list the generators work from. Extraction is a pure function of
// the tree: missing sections default to empty rather than failing.
package parser

import (
	"sort"
	"strings"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
)

// methods are the only path-item keys treated as operations; anything else
// (summary, shared parameters, extensions) is skipped.
var methods = []string{"get", "post", "put", "delete", "patch", "head", "options"}

// defaultTag groups operations that declare no tags.
const defaultTag = "default"

// Extract builds the normalized Specification from a raw document tree.
func Extract(doc ir.Document) ir.Specification {
	spec := ir.Specification{
		Info:            extractInfo(doc),
		Servers:         extractServers(doc),
		Operations:      extractOperations(doc),
		Schemas:         componentSection(doc, "schemas"),
		SecuritySchemes: componentSection(doc, "securitySchemes"),
	}
	spec.Tags = collectTags(spec.Operations)
	return spec
}

func extractInfo(doc ir.Document) ir.Info {
	info := asMap(doc["info"])
	return ir.Info{
		Title:       asString(info["title"]),
		Version:     asString(info["version"]),
		Description: asString(info["description"]),
	}
}

func extractServers(doc ir.Document) []string {
	var out []string
	for _, entry := range asSlice(doc["servers"]) {
		if u := asString(asMap(entry)["url"]); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// extractOperations walks paths in sorted order so the resulting operation
// list is deterministic across runs.
func extractOperations(doc ir.Document) []ir.Operation {
	paths := asMap(doc["paths"])
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var ops []ir.Operation
	for _, path := range pathKeys {
		item := asMap(paths[path])
		for _, method := range methods {
			raw, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			ops = append(ops, extractOperation(path, method, raw))
		}
	}
	return ops
}

func extractOperation(path, method string, raw map[string]any) ir.Operation {
	tags := asStringSlice(raw["tags"])
	if len(tags) == 0 {
		tags = []string{defaultTag}
	}
	return ir.Operation{
		Path:        path,
		Method:      strings.ToUpper(method),
		OperationID: asString(raw["operationId"]),
		Summary:     asString(raw["summary"]),
		Description: asString(raw["description"]),
		Tags:        tags,
		Parameters:  extractParameters(raw["parameters"]),
		RequestBody: extractRequestBody(raw["requestBody"]),
		Responses:   extractResponses(raw["responses"]),
		Security:    asSlice(raw["security"]),
	}
}

func extractParameters(raw any) []ir.Parameter {
	var out []ir.Parameter
	for _, entry := range asSlice(raw) {
		p := asMap(entry)
		if len(p) == 0 {
			continue
		}
		required, _ := p["required"].(bool)
		out = append(out, ir.Parameter{
			Name:        asString(p["name"]),
			In:          asString(p["in"]),
			Required:    required,
			Description: asString(p["description"]),
			Schema:      ir.Fragment(asMap(p["schema"])),
		})
	}
	return out
}

// extractRequestBody keeps only application/json content; other media types
// yield no request body at all.
func extractRequestBody(raw any) *ir.RequestBody {
	body := asMap(raw)
	if len(body) == 0 {
		return nil
	}
	jsonContent := asMap(asMap(body["content"])["application/json"])
	if len(jsonContent) == 0 {
		return nil
	}
	required, _ := body["required"].(bool)
	return &ir.RequestBody{
		Required:    required,
		Description: asString(body["description"]),
		Schema:      ir.Fragment(asMap(jsonContent["schema"])),
	}
}

func extractResponses(raw any) map[string]ir.Response {
	out := map[string]ir.Response{}
	for code, entry := range asMap(raw) {
		resp := asMap(entry)
		schema := ir.Fragment{}
		if jsonContent := asMap(asMap(resp["content"])["application/json"]); len(jsonContent) > 0 {
			schema = ir.Fragment(asMap(jsonContent["schema"]))
		}
		out[code] = ir.Response{
			Description: asString(resp["description"]),
			Schema:      schema,
		}
	}
	return out
}

// collectTags unions every operation's tags, sorted. An empty union still
// yields {"default"} so every spec produces at least one module.
func collectTags(ops []ir.Operation) []string {
	uniq := map[string]struct{}{}
	for _, op := range ops {
		for _, t := range op.Tags {
			uniq[t] = struct{}{}
		}
	}
	if len(uniq) == 0 {
		uniq[defaultTag] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for t := range uniq {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func componentSection(doc ir.Document, key string) map[string]any {
	return asMap(asMap(doc["components"])[key])
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	var out []string
	for _, entry := range asSlice(v) {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
