package llmschema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/harun/rentdesk/pkg/schema"
)

func compile(t *testing.T, doc map[string]any) *gojsonschema.Schema {
	t.Helper()
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	require.NoError(t, err)
	return compiled
}

func valid(t *testing.T, compiled *gojsonschema.Schema, v any) bool {
	t.Helper()
	result, err := compiled.Validate(gojsonschema.NewGoLoader(v))
	require.NoError(t, err)
	return result.Valid()
}

// TestTranslate_Date tests that dates become non-empty strings
func TestTranslate_Date(t *testing.T) {
	out := Translate(schema.Date())
	assert.Equal(t, schema.KindString, out.Kind)
	assert.Equal(t, dateDescription, out.Description)

	doc := Render(out)
	assert.Equal(t, "string", doc["type"])
	assert.Equal(t, 1, doc["minLength"])

	described := Translate(schema.Date().Describe("move-in day"))
	assert.Equal(t, "move-in day", described.Description)
}

// TestTranslate_OptionalBecomesNullable tests wrapper handling for object fields
func TestTranslate_OptionalBecomesNullable(t *testing.T) {
	node := schema.Object(
		schema.Prop("city", schema.String().Optional()),
		schema.Prop("limit", schema.Integer().Default(10)),
		schema.Prop("notes", schema.String().Nullable().Optional()),
		schema.Prop("name", schema.String()),
	)

	out := Translate(node)
	require.Equal(t, schema.KindObject, out.Kind)
	for _, f := range out.Fields[:3] {
		assert.Equal(t, schema.KindNullable, f.Schema.Kind, f.Name)
		assert.NotEqual(t, schema.KindNullable, f.Schema.Inner.Kind, f.Name)
	}

	doc := Render(out)
	assert.ElementsMatch(t, []string{"city", "limit", "notes", "name"}, doc["required"])

	compiled := compile(t, doc)
	assert.True(t, valid(t, compiled, map[string]any{"city": nil, "limit": nil, "notes": nil, "name": "x"}))
	assert.False(t, valid(t, compiled, map[string]any{"city": nil, "limit": 1.5, "notes": nil, "name": "x"}))
}

// TestTranslate_DropsRefinements tests that only describable checks survive
func TestTranslate_DropsRefinements(t *testing.T) {
	node := schema.Number().Min(1).Positive().Int()
	out := Translate(node)

	require.Len(t, out.Checks, 2)
	for _, check := range out.Checks {
		assert.NotEqual(t, schema.CheckRefine, check.Kind)
	}
	assert.Len(t, node.Checks, 3, "original is untouched")

	doc := Render(out)
	assert.Equal(t, "integer", doc["type"])
	assert.Equal(t, float64(1), doc["minimum"])
}

// TestTranslate_AnyBecomesUnknownShape tests the bounded unknown stand-in
func TestTranslate_AnyBecomesUnknownShape(t *testing.T) {
	for _, node := range []*schema.Node{schema.Any(), schema.Unknown()} {
		out := Translate(node)
		require.Equal(t, schema.KindNullable, out.Kind)
		require.Equal(t, schema.KindUnion, out.Inner.Kind)
		assert.Len(t, out.Inner.Options, 5)
	}

	compiled := compile(t, Render(Translate(schema.Any())))
	assert.True(t, valid(t, compiled, "x"))
	assert.True(t, valid(t, compiled, nil))
	assert.True(t, valid(t, compiled, []any{1, "a", nil}))
	assert.True(t, valid(t, compiled, map[string]any{"a": true}))
	assert.False(t, valid(t, compiled, []any{[]any{1}}))
}

// TestTranslate_Union tests never-pruning and collapsing
func TestTranslate_Union(t *testing.T) {
	out := Translate(schema.Union(schema.Never(), schema.String()))
	assert.Equal(t, schema.KindString, out.Kind)

	out = Translate(schema.Union(schema.Never(), schema.Never()))
	assert.Equal(t, schema.KindNever, out.Kind)

	out = Translate(schema.Union(schema.String(), schema.Date(), schema.Never()))
	require.Equal(t, schema.KindUnion, out.Kind)
	assert.Len(t, out.Options, 2)
}

// TestTranslate_ObjectClosedness tests strict objects and catchalls
func TestTranslate_ObjectClosedness(t *testing.T) {
	base := schema.Object(schema.Prop("id", schema.String()))

	doc := Render(Translate(base.Strict()))
	assert.Equal(t, false, doc["additionalProperties"])

	doc = Render(Translate(base.WithCatchall(schema.Never())))
	assert.Equal(t, false, doc["additionalProperties"])

	doc = Render(Translate(base.WithCatchall(schema.Number())))
	assert.Equal(t, map[string]any{"type": "number"}, doc["additionalProperties"])

	doc = Render(Translate(base.Passthrough()))
	assert.Equal(t, true, doc["additionalProperties"])

	doc = Render(Translate(base))
	assert.NotContains(t, doc, "additionalProperties")
}

// TestTranslate_TransformAndPipe tests which side of a pipeline is described
func TestTranslate_TransformAndPipe(t *testing.T) {
	upper := func(v any) (any, error) { return strings.ToUpper(v.(string)), nil }

	out := Translate(schema.String().MinLen(2).Transform(upper))
	assert.Equal(t, schema.KindString, out.Kind)

	out = Translate(schema.Pipe(schema.String(), schema.String().Transform(upper)))
	assert.Equal(t, schema.KindString, out.Kind)

	out = Translate(schema.Pipe(schema.Number().Transform(upper), schema.Boolean()))
	assert.Equal(t, schema.KindBoolean, out.Kind)

	out = Translate(schema.Pipe(schema.String().Transform(upper), schema.String().Transform(upper)))
	assert.Equal(t, schema.KindNullable, out.Kind, "falls back to the unknown shape")
}

// TestTranslate_Recursive tests lazy schemas render as definitions
func TestTranslate_Recursive(t *testing.T) {
	var category *schema.Node
	category = schema.Object(
		schema.Prop("name", schema.String()),
		schema.Prop("children", schema.Array(schema.Lazy(func() *schema.Node { return category })).Optional()),
	)

	doc := Render(Translate(category))
	defs, ok := doc["definitions"].(map[string]any)
	require.True(t, ok)
	require.Len(t, defs, 1)

	compiled := compile(t, doc)
	assert.True(t, valid(t, compiled, map[string]any{
		"name": "root",
		"children": []any{
			map[string]any{"name": "leaf", "children": nil},
		},
	}))
	assert.False(t, valid(t, compiled, map[string]any{
		"name":     "root",
		"children": []any{map[string]any{"name": 1, "children": nil}},
	}))
}

// TestTranslate_LazyGetterTiming tests when translation resolves lazy nodes
func TestTranslate_LazyGetterTiming(t *testing.T) {
	calls := 0
	getter := func() *schema.Node {
		calls++
		return schema.String()
	}

	out := Translate(schema.Object(schema.Prop("name", schema.Lazy(getter))))
	assert.Zero(t, calls, "object fields keep lazy nodes deferred")

	Render(out)
	assert.NotZero(t, calls, "rendering resolves the deferred node")

	calls = 0
	Translate(schema.Pipe(schema.Lazy(getter), schema.String()))
	assert.NotZero(t, calls, "pipelines inspect their sides for transforms")
}

// TestTranslate_SharedLazyIsMemoized tests that one lazy node maps to one wrapper
func TestTranslate_SharedLazyIsMemoized(t *testing.T) {
	calls := 0
	leaf := schema.Lazy(func() *schema.Node {
		calls++
		return schema.String()
	})
	out := Translate(schema.Object(schema.Prop("a", leaf), schema.Prop("b", leaf)))
	assert.Same(t, out.Fields[0].Schema, out.Fields[1].Schema)
	assert.Zero(t, calls, "getters are not evaluated during translation")

	resolved := out.Fields[0].Schema.Resolve()
	assert.Same(t, resolved, out.Fields[1].Schema.Resolve())
	assert.Equal(t, 1, calls)
}

// TestTranslate_RecordTupleIntersection tests structural kinds
func TestTranslate_RecordTupleIntersection(t *testing.T) {
	rec := Translate(schema.Record(schema.Enum("es", "en"), schema.Date()))
	require.Equal(t, schema.KindRecord, rec.Kind)
	assert.Equal(t, schema.KindEnum, rec.Key.Kind)
	assert.Equal(t, schema.KindString, rec.Value.Kind)
	doc := Render(rec)
	assert.Equal(t, map[string]any{"type": "string", "enum": []any{"es", "en"}}, doc["propertyNames"])

	tuple := Render(Translate(schema.Tuple(schema.String(), schema.Number())))
	assert.Equal(t, false, tuple["additionalItems"])
	assert.Equal(t, 2, tuple["maxItems"])

	both := Render(Translate(schema.Intersection(
		schema.Object(schema.Prop("a", schema.String())),
		schema.Object(schema.Prop("b", schema.Number())),
	)))
	assert.Len(t, both["allOf"], 2)
}

// TestTranslate_JSONPassesThrough tests raw JSON Schema leaves
func TestTranslate_JSONPassesThrough(t *testing.T) {
	doc := map[string]any{"type": "object", "properties": map[string]any{"q": map[string]any{"type": "string"}}}
	node := schema.MustJSON(doc)
	out := Translate(node)
	assert.Same(t, node, out)

	rendered := Render(out)
	assert.Equal(t, doc, rendered)
	rendered["type"] = "array"
	assert.Equal(t, "object", doc["type"], "render copies the document")
}

// TestRender_NullableMergesAnyOf tests that null joins an existing anyOf
func TestRender_NullableMergesAnyOf(t *testing.T) {
	doc := Render(schema.Union(schema.String(), schema.Number()).Nullable())
	assert.Len(t, doc["anyOf"], 3)

	doc = Render(schema.String().Nullable().Describe("note"))
	assert.Len(t, doc["anyOf"], 2)
	assert.Equal(t, "note", doc["description"])
}
