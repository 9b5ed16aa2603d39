package aitools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/rentdesk/pkg/schema"
)

// TestSanitize_RemovesSensitiveKeysAtAnyDepth tests nested maps and arrays
func TestSanitize_RemovesSensitiveKeysAtAnyDepth(t *testing.T) {
	input := map[string]any{
		"id":           "usr_1",
		"passwordHash": "$2a$10$abc",
		"profile": map[string]any{
			"name":     "Ana",
			"Password": "hunter2",
			"sessions": []any{
				map[string]any{"token": "t1", "password_hash": "x"},
				"plain",
				int64(7),
			},
		},
		"history": []map[string]any{
			{"hashedPassword": "y", "at": "2024-01-01"},
		},
	}

	out, err := Sanitize(input)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"id": "usr_1",
		"profile": map[string]any{
			"name": "Ana",
			"sessions": []any{
				map[string]any{"token": "t1"},
				"plain",
				int64(7),
			},
		},
		"history": []any{
			map[string]any{"at": "2024-01-01"},
		},
	}, out)

	assert.Contains(t, input, "passwordHash", "input is not modified")
}

// TestSanitize_Structs tests tagged struct fields
func TestSanitize_Structs(t *testing.T) {
	type user struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		PasswordHash string `json:"passwordHash"`
	}

	out, err := Sanitize([]user{{ID: "u1", Email: "a@b.co", PasswordHash: "h"}})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"id": "u1", "email": "a@b.co"}}, out)

	out, err = Sanitize(&user{ID: "u2", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "u2", "email": ""}, out)
}

// TestSanitize_Unencodable tests results that cannot be represented as JSON
func TestSanitize_Unencodable(t *testing.T) {
	_, err := Sanitize(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

// TestStripNulls tests recursive null normalization
func TestStripNulls(t *testing.T) {
	input := map[string]any{
		"city":  nil,
		"limit": float64(5),
		"filter": map[string]any{
			"status": nil,
			"tags":   []any{"a", nil},
		},
	}

	out, changed := StripNulls(input)
	assert.True(t, changed)
	assert.Equal(t, map[string]any{
		"limit": float64(5),
		"filter": map[string]any{
			"tags": []any{"a", schema.Undefined},
		},
	}, out)
	assert.Contains(t, input, "city", "input is not modified")

	_, changed = StripNulls(map[string]any{"a": []any{"b"}})
	assert.False(t, changed)
}

// TestNormalizeNulls tests that only nulls rejected by the schema are dropped
func TestNormalizeNulls(t *testing.T) {
	var tree *schema.Node
	tree = schema.Object(
		schema.Prop("label", schema.String().Nullable()),
		schema.Prop("parent", schema.Lazy(func() *schema.Node { return tree }).Optional()),
	)

	params := schema.Object(
		schema.Prop("note", schema.String().Nullable()),
		schema.Prop("city", schema.String().Optional()),
		schema.Prop("limit", schema.Integer().Default(20)),
		schema.Prop("tags", schema.Array(schema.String().Nullable())),
		schema.Prop("ids", schema.Array(schema.String().Optional()).Optional()),
		schema.Prop("labels", schema.Record(schema.String(), schema.String().Optional())),
		schema.Prop("tree", tree.Optional()),
		schema.Prop("extra", schema.Any().Optional()),
	)

	input := map[string]any{
		"note":      nil,
		"city":      nil,
		"limit":     nil,
		"tags":      []any{"a", nil},
		"ids":       []any{"x", nil},
		"labels":    map[string]any{"en": "Lima", "es": nil},
		"tree":      map[string]any{"label": nil, "parent": map[string]any{"label": "root", "parent": nil}},
		"extra":     map[string]any{"k": nil},
		"undeclare": nil,
	}

	out, changed := NormalizeNulls(params, input)
	assert.True(t, changed)
	assert.Equal(t, map[string]any{
		"note":      nil,
		"tags":      []any{"a", nil},
		"ids":       []any{"x", schema.Undefined},
		"labels":    map[string]any{"en": "Lima"},
		"tree":      map[string]any{"label": nil, "parent": map[string]any{"label": "root"}},
		"extra":     map[string]any{},
		"undeclare": nil,
	}, out)

	parsed, err := params.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, float64(20), parsed.(map[string]any)["limit"])

	_, changed = NormalizeNulls(params, map[string]any{"note": nil})
	assert.False(t, changed, "a null the schema accepts is not a change")
}

// TestNormalizeNulls_Union tests that union members pick the first shape
// that validates after normalization
func TestNormalizeNulls_Union(t *testing.T) {
	params := schema.Union(
		schema.Object(schema.Prop("id", schema.String())).Strict(),
		schema.Object(
			schema.Prop("name", schema.String().Nullable()),
			schema.Prop("city", schema.String().Optional()),
		),
	)

	out, changed := NormalizeNulls(params, map[string]any{"name": nil, "city": nil})
	assert.True(t, changed)
	assert.Equal(t, map[string]any{"name": nil}, out)
}

// TestDecodeArguments tests raw LLM argument parsing
func TestDecodeArguments(t *testing.T) {
	args, err := DecodeArguments("")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, args)

	args, err = DecodeArguments(`{"city": "Quito"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Quito"}, args)

	args, err = DecodeArguments(`{city: 'Quito', "limit": 3,}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Quito", "limit": float64(3)}, args)
}
