// Package domaintools contributes the rental-management tools to the AI
// tool catalog. Each domain is a separate aitools.Provider backed by the
// property store.
package domaintools

import (
	"context"
	"net/http"
	"time"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/propertystore"
)

// Store is the subset of the property store the tools use.
type Store interface {
	ListProperties(ctx context.Context, companyID string, f propertystore.PropertyFilter) ([]propertystore.Property, error)
	GetProperty(ctx context.Context, companyID, id string) (propertystore.Property, error)
	CreateProperty(ctx context.Context, p propertystore.Property) (propertystore.Property, error)

	ListTenants(ctx context.Context, companyID, search string, limit int) ([]propertystore.Tenant, error)
	CreateTenant(ctx context.Context, t propertystore.Tenant) (propertystore.Tenant, error)

	ListLeases(ctx context.Context, companyID string, f propertystore.LeaseFilter) ([]propertystore.Lease, error)
	CreateLease(ctx context.Context, l propertystore.Lease) (propertystore.Lease, error)

	ListPayments(ctx context.Context, companyID string, f propertystore.PaymentFilter) ([]propertystore.Payment, error)
	RecordPayment(ctx context.Context, p propertystore.Payment) (propertystore.Payment, error)

	ListUsers(ctx context.Context, companyID, role string) ([]propertystore.User, error)
	GetUser(ctx context.Context, companyID, id string) (propertystore.User, error)
}

// Providers returns every domain provider in catalog order.
func Providers(store Store) []aitools.Provider {
	return []aitools.Provider{
		Properties{Store: store},
		Tenants{Store: store},
		Leases{Store: store},
		Payments{Store: store},
		Users{Store: store},
	}
}

// NewCatalog builds the catalog of all domain tools.
func NewCatalog(store Store) (*aitools.Catalog, error) {
	return aitools.NewCatalog(Providers(store)...)
}

// requestError is a business error the HTTP layer reports with its status.
type requestError struct {
	msg  string
	code int
}

func (e *requestError) Error() string   { return e.msg }
func (e *requestError) StatusCode() int { return e.code }

var errNoCompany = &requestError{msg: "caller has no company", code: http.StatusBadRequest}

// companyOf returns the caller's company or errNoCompany.
func companyOf(ec aitools.ExecutionContext) (string, error) {
	if ec.CompanyID == "" {
		return "", errNoCompany
	}
	return ec.CompanyID, nil
}

var (
	readers = []aitools.Role{aitools.RoleAdmin, aitools.RoleManager, aitools.RoleAgent, aitools.RoleOwner}
	writers = aitools.StaffRoles
	admins  = []aitools.Role{aitools.RoleAdmin, aitools.RoleManager}
)

const isoDate = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoDate)
}
