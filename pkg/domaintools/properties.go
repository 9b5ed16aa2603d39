package domaintools

import (
	"context"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/propertystore"
	"github.com/harun/rentdesk/pkg/schema"
)

// Properties provides property tools.
type Properties struct {
	Store Store
}

type listPropertiesArgs struct {
	City  string `json:"city"`
	Limit int    `json:"limit"`
}

type getPropertyArgs struct {
	PropertyID string `json:"propertyId"`
}

type createPropertyArgs struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Units       int     `json:"units"`
	MonthlyRent float64 `json:"monthlyRent"`
}

// Tools implements aitools.Provider.
func (p Properties) Tools() []aitools.Definition {
	return []aitools.Definition{
		{
			Name:         "list_properties",
			Description:  "List the company's rental properties, optionally filtered by city",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: readers,
			Parameters: schema.Object(
				schema.Prop("city", schema.String().Describe("City name, case-insensitive").Optional()),
				schema.Prop("limit", schema.Integer().Min(1).Max(200).Default(50)),
			),
			Execute: aitools.Bind(p.list),
		},
		{
			Name:         "get_property",
			Description:  "Get one property by id",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: readers,
			Parameters:   schema.Object(schema.Prop("propertyId", schema.String().NonEmpty())),
			Execute:      aitools.Bind(p.get),
		},
		{
			Name:         "create_property",
			Description:  "Register a new rental property for the company",
			Mutability:   aitools.Mutable,
			AllowedRoles: writers,
			Parameters: schema.Object(
				schema.Prop("name", schema.String().NonEmpty().MaxLen(120)),
				schema.Prop("address", schema.String().NonEmpty()),
				schema.Prop("city", schema.String().NonEmpty()),
				schema.Prop("units", schema.Integer().Min(1).Default(1)),
				schema.Prop("monthlyRent", schema.Number().Min(0).Describe("Reference monthly rent per unit")),
			).Strict(),
			Execute: aitools.Bind(p.create),
		},
	}
}

func (p Properties) list(ctx context.Context, args listPropertiesArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return p.Store.ListProperties(ctx, companyID, propertystore.PropertyFilter{City: args.City, Limit: args.Limit})
}

func (p Properties) get(ctx context.Context, args getPropertyArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return p.Store.GetProperty(ctx, companyID, args.PropertyID)
}

func (p Properties) create(ctx context.Context, args createPropertyArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return p.Store.CreateProperty(ctx, propertystore.Property{
		CompanyID:   companyID,
		Name:        args.Name,
		Address:     args.Address,
		City:        args.City,
		Units:       args.Units,
		MonthlyRent: args.MonthlyRent,
	})
}
