package propertystore

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: filepath.Join(t.TempDir(), "data", "rentdesk.db"), Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestProperties_CompanyScoped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lima, err := s.CreateProperty(ctx, Property{CompanyID: "cmp_a", Name: "Larco", Address: "Av. Larco 1", City: "Lima", MonthlyRent: 1000})
	require.NoError(t, err)
	assert.NotEmpty(t, lima.ID)
	assert.Equal(t, 1, lima.Units)

	_, err = s.CreateProperty(ctx, Property{CompanyID: "cmp_a", Name: "Blas", Address: "San Blas", City: "Cusco"})
	require.NoError(t, err)
	_, err = s.CreateProperty(ctx, Property{CompanyID: "cmp_b", Name: "Other", Address: "x", City: "Lima"})
	require.NoError(t, err)

	all, err := s.ListProperties(ctx, "cmp_a", PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inLima, err := s.ListProperties(ctx, "cmp_a", PropertyFilter{City: "lima"})
	require.NoError(t, err)
	require.Len(t, inLima, 1)
	assert.Equal(t, lima.ID, inLima[0].ID)

	got, err := s.GetProperty(ctx, "cmp_a", lima.ID)
	require.NoError(t, err)
	assert.Equal(t, "Larco", got.Name)

	_, err = s.GetProperty(ctx, "cmp_b", lima.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateProperty(ctx, Property{CompanyID: "cmp_a", Name: "Larco", Address: "dup", City: "Lima"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLeasesAndPayments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prop, err := s.CreateProperty(ctx, Property{CompanyID: "cmp_a", Name: "Larco", Address: "a", City: "Lima"})
	require.NoError(t, err)
	tenant, err := s.CreateTenant(ctx, Tenant{CompanyID: "cmp_a", FullName: "Ana Torres", Email: " Ana@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", tenant.Email)

	_, err = s.CreateLease(ctx, Lease{CompanyID: "cmp_b", PropertyID: prop.ID, TenantID: tenant.ID, StartDate: "2025-01-01"})
	assert.ErrorIs(t, err, ErrInvalidReference, "cross-company references are rejected")

	lease, err := s.CreateLease(ctx, Lease{CompanyID: "cmp_a", PropertyID: prop.ID, TenantID: tenant.ID, StartDate: "2025-01-01", MonthlyRent: 900})
	require.NoError(t, err)
	assert.Equal(t, LeaseActive, lease.Status)

	leases, err := s.ListLeases(ctx, "cmp_a", LeaseFilter{TenantID: tenant.ID})
	require.NoError(t, err)
	require.Len(t, leases, 1)

	paidAt := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	payment, err := s.RecordPayment(ctx, Payment{CompanyID: "cmp_a", LeaseID: lease.ID, Amount: 900, PaidAt: paidAt})
	require.NoError(t, err)
	assert.Equal(t, "transfer", payment.Method)

	_, err = s.RecordPayment(ctx, Payment{CompanyID: "cmp_a", LeaseID: "lea_missing", Amount: 1})
	assert.ErrorIs(t, err, ErrInvalidReference)

	payments, err := s.ListPayments(ctx, "cmp_a", PaymentFilter{LeaseID: lease.ID})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, paidAt.Equal(payments[0].PaidAt))

	later, err := s.ListPayments(ctx, "cmp_a", PaymentFilter{Since: paidAt.Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestTenants_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Ana Torres", "Bruno Díaz"} {
		_, err := s.CreateTenant(ctx, Tenant{CompanyID: "cmp_a", FullName: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	found, err := s.ListTenants(ctx, "cmp_a", "bruno", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bruno Díaz", found[0].FullName)
}

func TestSeed_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, "cmp_demo"))
	require.NoError(t, s.Seed(ctx, "cmp_demo"))

	props, err := s.ListProperties(ctx, "cmp_demo", PropertyFilter{})
	require.NoError(t, err)
	assert.Len(t, props, 3)

	user, err := s.GetUser(ctx, "cmp_demo", DemoUserID)
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.Equal(t, "manager", user.Role)

	users, err := s.ListUsers(ctx, "cmp_demo", "manager")
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestError_StatusCode(t *testing.T) {
	var coded interface{ StatusCode() int }
	require.True(t, errors.As(ErrNotFound, &coded))
	assert.Equal(t, http.StatusNotFound, coded.StatusCode())
	assert.Equal(t, http.StatusConflict, ErrConflict.StatusCode())
}
