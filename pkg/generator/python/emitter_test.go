package python

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orangekame3/pydantic-openapi-sdk/pkg/config"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/ir"
	"github.com/orangekame3/pydantic-openapi-sdk/pkg/models"
)

func testEmitter(t *testing.T, reg models.Registry, mutate func(*config.GenerationConfig)) *Emitter {
	t.Helper()
	cfg := config.Default()
	cfg.PackageName = "petstore_sdk"
	if mutate != nil {
		mutate(&cfg)
	}
	return NewEmitter(NewResolver(reg, zerolog.Nop()), &cfg, zerolog.Nop())
}

func renderModule(t *testing.T, e *Emitter, tag string, ops []ir.Operation) string {
	t.Helper()
	g, err := NewGenerator(zerolog.Nop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, g.templates.ExecuteTemplate(&buf, "module.py.gotmpl", e.buildModule(tag, ops)))
	return buf.String()
}

func getPetByID() ir.Operation {
	return ir.Operation{
		Path:        "/pet/{petId}",
		Method:      "GET",
		OperationID: "getPetById",
		Summary:     "Find pet by ID",
		Tags:        []string{"pet"},
		Parameters: []ir.Parameter{
			{Name: "petId", In: "path", Required: true, Schema: ir.Fragment{"type": "integer"}},
		},
		Responses: map[string]ir.Response{
			"200": {Schema: ir.Fragment{"$ref": "#/components/schemas/Pet"}},
		},
	}
}

func TestEmitGetPetByID(t *testing.T) {
	e := testEmitter(t, models.Registry{"Pet": {}}, nil)
	source := renderModule(t, e, "pet", []ir.Operation{getPetByID()})

	assert.Contains(t, source, "def get_pet_by_id(client: Client, pet_id: int) -> Pet:")
	assert.Contains(t, source, `path = f"/pet/{pet_id}"`)
	assert.Contains(t, source, "params = None")
	assert.Contains(t, source, `client.request("get", path, params=params)`)
	assert.Contains(t, source, "return response.json()")
	assert.Contains(t, source, "from ..models import Pet")
	assert.NotContains(t, source, "TypedResponse(")
}

func TestEmitNoContentResponse(t *testing.T) {
	op := ir.Operation{
		Path:        "/pet/{petId}",
		Method:      "DELETE",
		OperationID: "deletePet",
		Tags:        []string{"pet"},
		Parameters: []ir.Parameter{
			{Name: "petId", In: "path", Schema: ir.Fragment{"type": "integer"}},
		},
		Responses: map[string]ir.Response{
			"204": {Description: "deleted"},
		},
	}

	e := testEmitter(t, models.Registry{}, nil)
	spec := e.buildFuncSpec(op)
	assert.Equal(t, "TypedResponse", spec.ReturnType)
	assert.False(t, spec.ReturnsJSON)

	source := renderModule(t, e, "pet", []ir.Operation{op})
	assert.Contains(t, source, "-> TypedResponse:")
	assert.Contains(t, source, "data=response.json() if response.text else None,")
}

func TestEmitSuccessWithEmptySchemaFallsBack(t *testing.T) {
	op := getPetByID()
	op.Responses = map[string]ir.Response{
		"200": {Description: "untyped"},
		"201": {Schema: ir.Fragment{"$ref": "#/components/schemas/Pet"}},
	}

	e := testEmitter(t, models.Registry{"Pet": {}}, nil)
	spec := e.buildFuncSpec(op)
	assert.Equal(t, "Pet", spec.ReturnType)
	assert.True(t, spec.ReturnsJSON)
}

func TestEmitQueryParams(t *testing.T) {
	op := ir.Operation{
		Path:        "/pet/findByStatus",
		Method:      "GET",
		OperationID: "findPetsByStatus",
		Tags:        []string{"pet"},
		Parameters: []ir.Parameter{
			{Name: "status", In: "query", Required: true, Schema: ir.Fragment{"type": "string"}},
			{Name: "maxResults", In: "query", Schema: ir.Fragment{"type": "integer"}},
		},
		Responses: map[string]ir.Response{
			"200": {Schema: ir.Fragment{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Pet"}}},
		},
	}

	e := testEmitter(t, models.Registry{"Pet": {}}, nil)
	source := renderModule(t, e, "pet", []ir.Operation{op})

	assert.Contains(t, source, "def find_pets_by_status(client: Client, status: str, max_results: int | None = None) -> List[Pet]:")
	assert.Contains(t, source, "params = {}")
	assert.Contains(t, source, `params["status"] = status`)
	// the wire name keeps its camelCase while the local binding is normalized
	assert.Contains(t, source, "if max_results is not None:")
	assert.Contains(t, source, `params["maxResults"] = max_results`)
}

func TestEmitRequiredBody(t *testing.T) {
	op := ir.Operation{
		Path:        "/pet",
		Method:      "POST",
		OperationID: "addPet",
		Tags:        []string{"pet"},
		RequestBody: &ir.RequestBody{
			Required: true,
			Schema:   ir.Fragment{"$ref": "#/components/schemas/Pet"},
		},
		Responses: map[string]ir.Response{
			"200": {Schema: ir.Fragment{"$ref": "#/components/schemas/Pet"}},
		},
	}

	e := testEmitter(t, models.Registry{"Pet": {}}, nil)
	source := renderModule(t, e, "pet", []ir.Operation{op})

	assert.Contains(t, source, "body: Pet | Dict[str, Any]")
	assert.Contains(t, source, `json=body.model_dump(exclude_none=True) if isinstance(body, Pet) else body`)
}

func TestEmitBodyWithoutUnionOperator(t *testing.T) {
	op := ir.Operation{
		Path:        "/pet",
		Method:      "POST",
		OperationID: "addPet",
		Tags:        []string{"pet"},
		RequestBody: &ir.RequestBody{
			Required: true,
			Schema:   ir.Fragment{"$ref": "#/components/schemas/Pet"},
		},
	}

	e := testEmitter(t, models.Registry{"Pet": {}}, func(c *config.GenerationConfig) {
		c.UseUnionOperator = false
	})
	spec := e.buildFuncSpec(op)
	assert.Contains(t, spec.Params, "body: Union[Pet, Dict[str, Any]]")
}

func TestEmitOptionalBodyAfterOptionalQuery(t *testing.T) {
	op := ir.Operation{
		Path:        "/pet",
		Method:      "PATCH",
		OperationID: "patchPet",
		Tags:        []string{"pet"},
		Parameters: []ir.Parameter{
			{Name: "dryRun", In: "query", Schema: ir.Fragment{"type": "boolean"}},
		},
		RequestBody: &ir.RequestBody{
			Schema: ir.Fragment{"type": "object"},
		},
	}

	e := testEmitter(t, models.Registry{}, nil)
	spec := e.buildFuncSpec(op)
	assert.Equal(t, []string{
		"client: Client",
		"dry_run: bool | None = None",
		"body: Dict[str, Any] | None = None",
	}, spec.Params)
	assert.Equal(t, "body", spec.BodyArg)
}

func TestEmitRequiredBodyPrecedesOptionalQuery(t *testing.T) {
	op := ir.Operation{
		Path:        "/pet",
		Method:      "PUT",
		OperationID: "updatePet",
		Tags:        []string{"pet"},
		Parameters: []ir.Parameter{
			{Name: "notify", In: "query", Schema: ir.Fragment{"type": "boolean"}},
		},
		RequestBody: &ir.RequestBody{
			Required: true,
			Schema:   ir.Fragment{"$ref": "#/components/schemas/Pet"},
		},
	}

	e := testEmitter(t, models.Registry{"Pet": {}}, nil)
	spec := e.buildFuncSpec(op)
	assert.Equal(t, []string{
		"client: Client",
		"body: Pet | Dict[str, Any]",
		"notify: bool | None = None",
	}, spec.Params)
}

func TestFunctionNameFallback(t *testing.T) {
	tests := []struct {
		method   string
		path     string
		expected string
	}{
		{"GET", "/pet/findByStatus", "get_find_by_status"},
		{"POST", "/store/order", "post_order"},
		{"GET", "/{id}", "get"},
		{"DELETE", "/pet/{petId}", "delete_pet"},
	}
	for _, test := range tests {
		op := ir.Operation{Method: test.method, Path: test.path}
		if got := functionName(op); got != test.expected {
			t.Errorf("functionName(%s %s) = %q, expected %q", test.method, test.path, got, test.expected)
		}
	}
}

func TestPathTemplate(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/pet", `f"/pet"`},
		{"/pet/{petId}", `f"/pet/{pet_id}"`},
		{"/store/{orderId}/items/{itemId}", `f"/store/{order_id}/items/{item_id}"`},
		{"/broken/{unclosed", `f"/broken/{unclosed"`},
	}
	for _, test := range tests {
		if got := pathTemplate(test.path); got != test.expected {
			t.Errorf("pathTemplate(%q) = %q, expected %q", test.path, got, test.expected)
		}
	}
}

func TestResolverCollisionVariants(t *testing.T) {
	tests := []struct {
		name     string
		registry models.Registry
		expected string
	}{
		{"plain name wins", models.Registry{"Pet": {}, "Pet1": {}}, "Pet"},
		{"numeric suffix", models.Registry{"Pet1": {}}, "Pet1"},
		{"model suffix", models.Registry{"PetModel": {}}, "PetModel"},
		{"unresolved degrades to literal", models.Registry{}, "Pet"},
	}
	frag := ir.Fragment{"$ref": "#/components/schemas/Pet"}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := NewResolver(test.registry, zerolog.Nop())
			assert.Equal(t, test.expected, r.Resolve(frag))
		})
	}
}

func TestResolverStable(t *testing.T) {
	r := NewResolver(models.Registry{"Pet1": {}}, zerolog.Nop())
	frag := ir.Fragment{"$ref": "#/components/schemas/Pet"}
	first := r.Resolve(frag)
	second := r.Resolve(frag)
	assert.Equal(t, first, second)
}

func TestResolvePrimitivesAndContainers(t *testing.T) {
	r := NewResolver(models.Registry{}, zerolog.Nop())
	tests := []struct {
		frag     ir.Fragment
		expected string
	}{
		{ir.Fragment{"type": "string"}, "str"},
		{ir.Fragment{"type": "integer"}, "int"},
		{ir.Fragment{"type": "number"}, "float"},
		{ir.Fragment{"type": "boolean"}, "bool"},
		{ir.Fragment{"type": "object"}, "Dict[str, Any]"},
		{ir.Fragment{"type": "array", "items": map[string]any{"type": "string"}}, "List[str]"},
		{ir.Fragment{"type": "array"}, "List[Any]"},
		{ir.Fragment{}, "Any"},
		{nil, "Any"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, r.Resolve(test.frag))
	}
}
