package domaintools

import (
	"context"
	"time"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/propertystore"
	"github.com/harun/rentdesk/pkg/schema"
)

// Payments provides payment tools.
type Payments struct {
	Store Store
}

type listPaymentsArgs struct {
	LeaseID string     `json:"leaseId"`
	Since   *time.Time `json:"since"`
	Limit   int        `json:"limit"`
}

type recordPaymentArgs struct {
	LeaseID string     `json:"leaseId"`
	Amount  float64    `json:"amount"`
	Method  string     `json:"method"`
	PaidAt  *time.Time `json:"paidAt"`
}

// Tools implements aitools.Provider.
func (p Payments) Tools() []aitools.Definition {
	return []aitools.Definition{
		{
			Name:         "list_payments",
			Description:  "List rent payments, optionally for one lease or since a date",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: readers,
			Parameters: schema.Object(
				schema.Prop("leaseId", schema.String().Optional()),
				schema.Prop("since", schema.Date().Optional()),
				schema.Prop("limit", schema.Integer().Min(1).Max(200).Optional()),
			),
			Execute: aitools.Bind(p.list),
		},
		{
			Name:         "record_payment",
			Description:  "Record a rent payment for a lease",
			Mutability:   aitools.Mutable,
			AllowedRoles: writers,
			Parameters: schema.Object(
				schema.Prop("leaseId", schema.String().NonEmpty()),
				schema.Prop("amount", schema.Number().Positive()),
				schema.Prop("method", schema.Enum("transfer", "cash", "card", "check").Default("transfer")),
				schema.Prop("paidAt", schema.Date().Optional()),
			),
			Execute: aitools.Bind(p.record),
		},
	}
}

func (p Payments) list(ctx context.Context, args listPaymentsArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	filter := propertystore.PaymentFilter{LeaseID: args.LeaseID, Limit: args.Limit}
	if args.Since != nil {
		filter.Since = *args.Since
	}
	return p.Store.ListPayments(ctx, companyID, filter)
}

func (p Payments) record(ctx context.Context, args recordPaymentArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	payment := propertystore.Payment{
		CompanyID: companyID,
		LeaseID:   args.LeaseID,
		Amount:    args.Amount,
		Method:    args.Method,
	}
	if args.PaidAt != nil {
		payment.PaidAt = *args.PaidAt
	}
	return p.Store.RecordPayment(ctx, payment)
}
