// Package ir holds the intermediate representation produced by parsing an
// OpenAPI document, consumed by the code generators.
package ir

import "strings"

// Document is the raw decoded OpenAPI document tree.
type Document = map[string]any

// Specification is the normalized view of an OpenAPI document.
type Specification struct {
	Info            Info
	Servers         []string
	Tags            []string
	Operations      []Operation
	Schemas         map[string]any
	SecuritySchemes map[string]any
}

// Info carries the identifying fields of the spec's info section.
type Info struct {
	Title       string
	Version     string
	Description string
}

// BaseURL returns the first declared server URL, or "" when no servers are
// declared.
func (s Specification) BaseURL() string {
	if len(s.Servers) > 0 {
		return s.Servers[0]
	}
	return ""
}

// Operation represents a single HTTP verb bound to a URL path template.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   map[string]Response
	Security    []any
}

// PathParams returns the operation's path parameters in declaration order.
// Path parameters are always required, whatever the spec declares.
func (o Operation) PathParams() []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == "path" {
			p.Required = true
			out = append(out, p)
		}
	}
	return out
}

// QueryParams returns the operation's query parameters in declaration order.
func (o Operation) QueryParams() []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == "query" {
			out = append(out, p)
		}
	}
	return out
}

// Parameter represents one declared operation parameter.
type Parameter struct {
	Name        string
	In          string
	Required    bool
	Description string
	Schema      Fragment
}

// RequestBody represents an application/json request body.
type RequestBody struct {
	Required    bool
	Description string
	Schema      Fragment
}

// Response represents one response entry, keyed by status code on the
// operation. Schema is empty when the response declares no JSON content.
type Response struct {
	Description string
	Schema      Fragment
}

// Fragment is a JSON-Schema-like type description taken verbatim from the
// spec: a $ref, a primitive, an array, an object, or nothing at all.
type Fragment map[string]any

const schemaRefPrefix = "#/components/schemas/"

// Ref returns the component schema name a $ref fragment points at, or ""
// when the fragment is not a local component reference.
func (f Fragment) Ref() string {
	raw, _ := f["$ref"].(string)
	if strings.HasPrefix(raw, schemaRefPrefix) {
		return raw[len(schemaRefPrefix):]
	}
	return ""
}

// Type returns the declared JSON schema type, or "".
func (f Fragment) Type() string {
	t, _ := f["type"].(string)
	return t
}

// Items returns the items fragment of an array schema, or nil.
func (f Fragment) Items() Fragment {
	if m, ok := f["items"].(map[string]any); ok {
		return Fragment(m)
	}
	return nil
}

// IsEmpty reports whether the fragment carries no type information.
func (f Fragment) IsEmpty() bool {
	return len(f) == 0
}
