package propertystore

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var leaseColumns = []string{"id", "company_id", "property_id", "tenant_id", "start_date", "end_date", "monthly_rent", "status", "created_at"}

// ListLeases returns the company's leases, newest first.
func (s *Store) ListLeases(ctx context.Context, companyID string, f LeaseFilter) ([]Lease, error) {
	where := sq.Eq{"company_id": companyID}
	if f.PropertyID != "" {
		where["property_id"] = f.PropertyID
	}
	if f.TenantID != "" {
		where["tenant_id"] = f.TenantID
	}
	if f.Status != "" {
		where["status"] = f.Status
	}

	query := s.sb.
		Select(leaseColumns...).
		From("leases").
		Where(where).
		OrderBy("start_date DESC", "id").
		Limit(limitOf(f.Limit))

	rows, err := s.query(ctx, query, "listing leases")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Lease{}
	for rows.Next() {
		var l Lease
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.PropertyID, &l.TenantID, &l.StartDate, &l.EndDate, &l.MonthlyRent, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning lease: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leases: %w", err)
	}
	return items, nil
}

// GetLease returns one lease of the company.
func (s *Store) GetLease(ctx context.Context, companyID, id string) (Lease, error) {
	query := s.sb.
		Select(leaseColumns...).
		From("leases").
		Where(sq.Eq{"company_id": companyID, "id": id})

	var l Lease
	err := s.queryRow(ctx, query, "querying lease",
		&l.ID, &l.CompanyID, &l.PropertyID, &l.TenantID, &l.StartDate, &l.EndDate, &l.MonthlyRent, &l.Status, &l.CreatedAt)
	return l, err
}

// CreateLease inserts l. The property and tenant must belong to the same
// company as the lease.
func (s *Store) CreateLease(ctx context.Context, l Lease) (Lease, error) {
	if _, err := s.GetProperty(ctx, l.CompanyID, l.PropertyID); err != nil {
		return Lease{}, referenceError(err)
	}
	if _, err := s.GetTenant(ctx, l.CompanyID, l.TenantID); err != nil {
		return Lease{}, referenceError(err)
	}

	id, err := newID("lea")
	if err != nil {
		return Lease{}, err
	}
	l.ID = id
	l.CreatedAt = s.now()
	if l.Status == "" {
		l.Status = LeaseActive
	}

	query := s.sb.
		Insert("leases").
		Columns(leaseColumns...).
		Values(l.ID, l.CompanyID, l.PropertyID, l.TenantID, l.StartDate, l.EndDate, l.MonthlyRent, l.Status, l.CreatedAt)

	if err := s.exec(ctx, query, "inserting lease"); err != nil {
		return Lease{}, err
	}
	return l, nil
}

func referenceError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidReference
	}
	return err
}
