package aitools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCatalog_OrderAndLookup tests that every definition is found exactly once
func TestCatalog_OrderAndLookup(t *testing.T) {
	first := ProviderFunc(func() []Definition {
		return []Definition{readTool("list_properties", echoHandler), writeTool("create_property", echoHandler)}
	})
	empty := ProviderFunc(func() []Definition { return nil })
	second := ProviderFunc(func() []Definition {
		return []Definition{readTool("list_leases", echoHandler)}
	})

	catalog, err := NewCatalog(first, empty, nil, second)
	require.NoError(t, err)

	defs := catalog.Definitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	assert.Equal(t, []string{"list_properties", "create_property", "list_leases"}, names)
	assert.Equal(t, 3, catalog.Len())

	seen := map[string]int{}
	for _, def := range defs {
		found, ok := catalog.DefinitionByName(def.Name)
		require.True(t, ok)
		assert.Same(t, def, found)
		seen[def.Name]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, name)
	}

	_, ok := catalog.DefinitionByName("missing")
	assert.False(t, ok)
}

// TestCatalog_RejectsDuplicates tests duplicate name detection
func TestCatalog_RejectsDuplicates(t *testing.T) {
	provider := ProviderFunc(func() []Definition {
		return []Definition{readTool("get_user", echoHandler), readTool("get_user", echoHandler)}
	})

	_, err := NewCatalog(provider)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDuplicateTool))
	assert.Panics(t, func() { MustCatalog(provider) })
}

// TestCatalog_RejectsIncompleteDefinitions tests construction-time checks
func TestCatalog_RejectsIncompleteDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{name: "no name", def: Definition{AllowedRoles: StaffRoles, Execute: echoHandler}},
		{name: "no roles", def: Definition{Name: "x", Execute: echoHandler}},
		{name: "no handler", def: Definition{Name: "x", AllowedRoles: StaffRoles}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(ProviderFunc(func() []Definition { return []Definition{tt.def} }))
			assert.Error(t, err)
		})
	}
}

// TestCatalog_CopiesDefinitions tests that provider slices are not aliased
func TestCatalog_CopiesDefinitions(t *testing.T) {
	roles := []Role{RoleAdmin}
	defs := []Definition{{Name: "x", AllowedRoles: roles, Execute: echoHandler}}
	catalog := MustCatalog(ProviderFunc(func() []Definition { return defs }))

	roles[0] = RoleTenant
	defs[0].Name = "changed"

	def, ok := catalog.DefinitionByName("x")
	require.True(t, ok)
	assert.True(t, def.Allows(RoleAdmin))
	assert.False(t, def.Allows(RoleTenant))
}

// TestBind tests typed argument decoding
func TestBind(t *testing.T) {
	type args struct {
		City  string `json:"city"`
		Limit int    `json:"limit"`
	}

	handler := Bind(func(_ context.Context, a args, ec ExecutionContext) (any, error) {
		return map[string]any{"city": a.City, "limit": a.Limit, "user": ec.UserID}, nil
	})

	out, err := handler(context.Background(), map[string]any{"city": "Lima", "limit": float64(5)}, staffContext())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Lima", "limit": 5, "user": "usr_1"}, out)

	_, err = handler(context.Background(), map[string]any{"limit": "five"}, staffContext())
	assert.Error(t, err)
}

// TestParseRole tests role parsing
func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Manager ")
	assert.True(t, ok)
	assert.Equal(t, RoleManager, role)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}
