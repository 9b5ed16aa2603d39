package propertystore

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var paymentColumns = []string{"id", "company_id", "lease_id", "amount", "method", "paid_at", "created_at"}

// ListPayments returns the company's payments, most recent first.
func (s *Store) ListPayments(ctx context.Context, companyID string, f PaymentFilter) ([]Payment, error) {
	query := s.sb.
		Select(paymentColumns...).
		From("payments").
		Where(sq.Eq{"company_id": companyID}).
		OrderBy("paid_at DESC", "id").
		Limit(limitOf(f.Limit))

	if f.LeaseID != "" {
		query = query.Where(sq.Eq{"lease_id": f.LeaseID})
	}
	if !f.Since.IsZero() {
		query = query.Where(sq.GtOrEq{"paid_at": f.Since.UTC()})
	}

	rows, err := s.query(ctx, query, "listing payments")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.LeaseID, &p.Amount, &p.Method, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}
	return items, nil
}

// RecordPayment inserts p against one of the company's leases. A zero
// PaidAt means now.
func (s *Store) RecordPayment(ctx context.Context, p Payment) (Payment, error) {
	if _, err := s.GetLease(ctx, p.CompanyID, p.LeaseID); err != nil {
		return Payment{}, referenceError(err)
	}

	id, err := newID("pay")
	if err != nil {
		return Payment{}, err
	}
	p.ID = id
	p.CreatedAt = s.now()
	if p.PaidAt.IsZero() {
		p.PaidAt = p.CreatedAt
	}
	p.PaidAt = p.PaidAt.UTC()
	if p.Method == "" {
		p.Method = "transfer"
	}

	query := s.sb.
		Insert("payments").
		Columns(paymentColumns...).
		Values(p.ID, p.CompanyID, p.LeaseID, p.Amount, p.Method, p.PaidAt, p.CreatedAt)

	if err := s.exec(ctx, query, "inserting payment"); err != nil {
		return Payment{}, err
	}
	return p, nil
}
