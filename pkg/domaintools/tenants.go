package domaintools

import (
	"context"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/propertystore"
	"github.com/harun/rentdesk/pkg/schema"
)

// Tenants provides tenant tools.
type Tenants struct {
	Store Store
}

type listTenantsArgs struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
}

type createTenantArgs struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Tools implements aitools.Provider.
func (t Tenants) Tools() []aitools.Definition {
	return []aitools.Definition{
		{
			Name:         "list_tenants",
			Description:  "List tenants, optionally searching by name or email",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: writers,
			Parameters: schema.Object(
				schema.Prop("search", schema.String().Optional()),
				schema.Prop("limit", schema.Integer().Min(1).Max(200).Optional()),
			),
			Execute: aitools.Bind(t.list),
		},
		{
			Name:         "create_tenant",
			Description:  "Register a new tenant",
			Mutability:   aitools.Mutable,
			AllowedRoles: writers,
			Parameters: schema.Object(
				schema.Prop("fullName", schema.String().NonEmpty()),
				schema.Prop("email", schema.String().Email()),
				schema.Prop("phone", schema.String().Nullish()),
			),
			Execute: aitools.Bind(t.create),
		},
	}
}

func (t Tenants) list(ctx context.Context, args listTenantsArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return t.Store.ListTenants(ctx, companyID, args.Search, args.Limit)
}

func (t Tenants) create(ctx context.Context, args createTenantArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return t.Store.CreateTenant(ctx, propertystore.Tenant{
		CompanyID: companyID,
		FullName:  args.FullName,
		Email:     args.Email,
		Phone:     args.Phone,
	})
}
