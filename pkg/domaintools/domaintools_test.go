package domaintools

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/propertystore"
)

const company = "cmp_test"

func setup(t *testing.T, mode aitools.Mode) (*aitools.Registry, *propertystore.Store) {
	t.Helper()

	store, err := propertystore.Open(propertystore.Config{Path: filepath.Join(t.TempDir(), "rentdesk.db"), Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Seed(context.Background(), company))

	catalog, err := NewCatalog(store)
	require.NoError(t, err)

	executor, err := aitools.NewExecutor(aitools.ExecutorConfig{
		Catalog: catalog,
		Modes:   aitools.StaticMode(mode),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	registry, err := aitools.NewRegistry(aitools.RegistryConfig{Catalog: catalog, Executor: executor, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return registry, store
}

func manager() aitools.ExecutionContext {
	return aitools.ExecutionContext{UserID: propertystore.DemoUserID, CompanyID: company, Role: aitools.RoleManager}
}

func TestCatalog_Names(t *testing.T) {
	catalog, err := NewCatalog(nil)
	require.NoError(t, err)

	var names []string
	for _, def := range catalog.Definitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{
		"list_properties", "get_property", "create_property",
		"list_tenants", "create_tenant",
		"list_leases", "create_lease",
		"list_payments", "record_payment",
		"get_user", "list_users",
	}, names)
}

// TestManifest_AllSchemasObjectRooted tests the manifest built from the real catalog
func TestManifest_AllSchemasObjectRooted(t *testing.T) {
	registry, _ := setup(t, aitools.ModeFull)

	manifest := registry.BuildManifest(context.Background(), manager(), "registrar un pago")
	require.Equal(t, 11, manifest.Len())
	assert.Equal(t, "list_properties", manifest.Names()[0], "under the limit the catalog order is kept")

	for _, entry := range manifest.Entries {
		assert.Equal(t, "object", entry.Parameters["type"], entry.Name)
		assert.NotEqual(t, aitools.PassthroughSchema(), entry.Parameters, entry.Name)
	}
}

// TestListProperties_NullArguments tests the strict-mode null retry on a real tool
func TestListProperties_NullArguments(t *testing.T) {
	registry, _ := setup(t, aitools.ModeReadOnly)
	manifest := registry.BuildManifest(context.Background(), manager(), "")

	out, err := manifest.Dispatch(context.Background(), "list_properties", `{"city": null, "limit": null}`)
	require.NoError(t, err)
	assert.Len(t, out, 3)

	out, err = manifest.Dispatch(context.Background(), "list_properties", `{"city": "cusco"}`)
	require.NoError(t, err)
	items, ok := out.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Casa San Blas", items[0].(map[string]any)["name"])
}

// TestGetUser_PasswordHashStripped tests output sanitization end to end
func TestGetUser_PasswordHashStripped(t *testing.T) {
	registry, _ := setup(t, aitools.ModeReadOnly)

	out, err := registry.Executor().Execute(context.Background(), "get_user", map[string]any{}, manager())
	require.NoError(t, err)

	user, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, propertystore.DemoUserID, user["id"])
	assert.NotContains(t, user, "passwordHash")

	out, err = registry.Executor().Execute(context.Background(), "list_users", nil, manager())
	require.NoError(t, err)
	for _, u := range out.([]any) {
		assert.NotContains(t, u, "passwordHash")
	}
}

// TestWriteTools_ModeAndRoles tests gates over domain tools
func TestWriteTools_ModeAndRoles(t *testing.T) {
	args := map[string]any{"name": "Nuevo", "address": "Calle 1", "city": "Arequipa", "monthlyRent": 500}

	readonly, _ := setup(t, aitools.ModeReadOnly)
	_, err := readonly.Executor().Execute(context.Background(), "create_property", args, manager())
	assert.True(t, errors.Is(err, aitools.ErrForbidden))

	full, store := setup(t, aitools.ModeFull)
	tenantCtx := manager()
	tenantCtx.Role = aitools.RoleTenant
	_, err = full.Executor().Execute(context.Background(), "create_property", args, tenantCtx)
	assert.True(t, errors.Is(err, aitools.ErrForbidden))

	out, err := full.Executor().Execute(context.Background(), "create_property", args, manager())
	require.NoError(t, err)
	assert.Equal(t, "Arequipa", out.(map[string]any)["city"])
	assert.EqualValues(t, 1, out.(map[string]any)["units"])

	props, err := store.ListProperties(context.Background(), company, propertystore.PropertyFilter{City: "Arequipa"})
	require.NoError(t, err)
	assert.Len(t, props, 1)

	args["extra"] = true
	_, err = full.Executor().Execute(context.Background(), "create_property", args, manager())
	assert.True(t, errors.Is(err, aitools.ErrValidation), "create_property is strict")
}

// TestCreateLease_Flow tests dates, refinements and store references
func TestCreateLease_Flow(t *testing.T) {
	registry, store := setup(t, aitools.ModeFull)
	ctx := context.Background()

	props, err := store.ListProperties(ctx, company, propertystore.PropertyFilter{City: "Quito"})
	require.NoError(t, err)
	tenants, err := store.ListTenants(ctx, company, "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, tenants)

	exec := registry.Executor()
	_, err = exec.Execute(ctx, "create_lease", map[string]any{
		"propertyId": props[0].ID, "tenantId": tenants[0].ID,
		"startDate": "2025-06-01", "endDate": "2025-01-01", "monthlyRent": 700,
	}, manager())
	assert.True(t, errors.Is(err, aitools.ErrValidation))

	out, err := exec.Execute(ctx, "create_lease", map[string]any{
		"propertyId": props[0].ID, "tenantId": tenants[0].ID,
		"startDate": "2025-06-01", "endDate": nil, "monthlyRent": 700,
	}, manager())
	require.NoError(t, err)
	lease := out.(map[string]any)
	assert.Equal(t, "2025-06-01", lease["startDate"])
	assert.NotContains(t, lease, "endDate")

	_, err = exec.Execute(ctx, "create_lease", map[string]any{
		"propertyId": "prp_missing", "tenantId": tenants[0].ID,
		"startDate": "2025-06-01", "monthlyRent": 700,
	}, manager())
	assert.ErrorIs(t, err, propertystore.ErrInvalidReference, "upstream errors pass through")

	out, err = exec.Execute(ctx, "record_payment", map[string]any{"leaseId": lease["id"], "amount": 700}, manager())
	require.NoError(t, err)
	assert.Equal(t, "transfer", out.(map[string]any)["method"])

	out, err = exec.Execute(ctx, "list_payments", map[string]any{"leaseId": lease["id"]}, manager())
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

// TestHandlers_RequireCompany tests callers without a company
func TestHandlers_RequireCompany(t *testing.T) {
	registry, _ := setup(t, aitools.ModeFull)

	ec := manager()
	ec.CompanyID = ""
	_, err := registry.Executor().Execute(context.Background(), "list_tenants", nil, ec)
	require.Error(t, err)
	assert.Same(t, errNoCompany, err)
}
