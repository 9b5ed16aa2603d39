package propertystore

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var tenantColumns = []string{"id", "company_id", "full_name", "email", "phone", "created_at"}

// ListTenants returns the company's tenants. A non-empty search matches
// name or email.
func (s *Store) ListTenants(ctx context.Context, companyID, search string, limit int) ([]Tenant, error) {
	query := s.sb.
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"company_id": companyID}).
		OrderBy("full_name").
		Limit(limitOf(limit))

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(sq.Or{sq.Like{"full_name": pattern}, sq.Like{"email": pattern}})
	}

	rows, err := s.query(ctx, query, "listing tenants")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Tenant{}
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.FullName, &t.Email, &t.Phone, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}
	return items, nil
}

// GetTenant returns one tenant of the company.
func (s *Store) GetTenant(ctx context.Context, companyID, id string) (Tenant, error) {
	query := s.sb.
		Select(tenantColumns...).
		From("tenants").
		Where(sq.Eq{"company_id": companyID, "id": id})

	var t Tenant
	err := s.queryRow(ctx, query, "querying tenant", &t.ID, &t.CompanyID, &t.FullName, &t.Email, &t.Phone, &t.CreatedAt)
	return t, err
}

// CreateTenant inserts t. Emails are unique per company.
func (s *Store) CreateTenant(ctx context.Context, t Tenant) (Tenant, error) {
	id, err := newID("ten")
	if err != nil {
		return Tenant{}, err
	}
	t.ID = id
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	t.CreatedAt = s.now()

	query := s.sb.
		Insert("tenants").
		Columns(tenantColumns...).
		Values(t.ID, t.CompanyID, t.FullName, t.Email, t.Phone, t.CreatedAt)

	if err := s.exec(ctx, query, "inserting tenant"); err != nil {
		return Tenant{}, err
	}
	return t, nil
}
