package domaintools

import (
	"context"
	"time"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/propertystore"
	"github.com/harun/rentdesk/pkg/schema"
)

// Leases provides lease tools.
type Leases struct {
	Store Store
}

type listLeasesArgs struct {
	PropertyID string `json:"propertyId"`
	TenantID   string `json:"tenantId"`
	Status     string `json:"status"`
	Limit      int    `json:"limit"`
}

type createLeaseArgs struct {
	PropertyID  string     `json:"propertyId"`
	TenantID    string     `json:"tenantId"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	MonthlyRent float64    `json:"monthlyRent"`
}

var leaseStatus = schema.Enum(propertystore.LeaseActive, propertystore.LeaseEnded, propertystore.LeaseTerminated)

// endsAfterStart rejects leases whose end date is not after the start date.
func endsAfterStart(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return true
	}
	start, _ := m["startDate"].(time.Time)
	end, ok := m["endDate"].(time.Time)
	if !ok {
		return true
	}
	return end.After(start)
}

// Tools implements aitools.Provider.
func (l Leases) Tools() []aitools.Definition {
	return []aitools.Definition{
		{
			Name:         "list_leases",
			Description:  "List leases, optionally filtered by property, tenant or status",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: readers,
			Parameters: schema.Object(
				schema.Prop("propertyId", schema.String().Optional()),
				schema.Prop("tenantId", schema.String().Optional()),
				schema.Prop("status", leaseStatus.Optional()),
				schema.Prop("limit", schema.Integer().Min(1).Max(200).Optional()),
			),
			Execute: aitools.Bind(l.list),
		},
		{
			Name:         "create_lease",
			Description:  "Create a lease binding a tenant to a property",
			Mutability:   aitools.Mutable,
			AllowedRoles: writers,
			Parameters: schema.Object(
				schema.Prop("propertyId", schema.String().NonEmpty()),
				schema.Prop("tenantId", schema.String().NonEmpty()),
				schema.Prop("startDate", schema.Date()),
				schema.Prop("endDate", schema.Date().Optional()),
				schema.Prop("monthlyRent", schema.Number().Positive()),
			).Refine(endsAfterStart, "endDate must be after startDate"),
			Execute: aitools.Bind(l.create),
		},
	}
}

func (l Leases) list(ctx context.Context, args listLeasesArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return l.Store.ListLeases(ctx, companyID, propertystore.LeaseFilter{
		PropertyID: args.PropertyID,
		TenantID:   args.TenantID,
		Status:     args.Status,
		Limit:      args.Limit,
	})
}

func (l Leases) create(ctx context.Context, args createLeaseArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	lease := propertystore.Lease{
		CompanyID:   companyID,
		PropertyID:  args.PropertyID,
		TenantID:    args.TenantID,
		StartDate:   formatDate(args.StartDate),
		MonthlyRent: args.MonthlyRent,
	}
	if args.EndDate != nil {
		lease.EndDate = formatDate(*args.EndDate)
	}
	return l.Store.CreateLease(ctx, lease)
}
