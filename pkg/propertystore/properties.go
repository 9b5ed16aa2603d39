package propertystore

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var propertyColumns = []string{"id", "company_id", "name", "address", "city", "units", "monthly_rent", "created_at"}

// ListProperties returns the company's properties ordered by name.
func (s *Store) ListProperties(ctx context.Context, companyID string, f PropertyFilter) ([]Property, error) {
	query := s.sb.
		Select(propertyColumns...).
		From("properties").
		Where(sq.Eq{"company_id": companyID}).
		OrderBy("name").
		Limit(limitOf(f.Limit))

	if city := strings.TrimSpace(f.City); city != "" {
		query = query.Where("city = ? COLLATE NOCASE", city)
	}

	rows, err := s.query(ctx, query, "listing properties")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Property{}
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Address, &p.City, &p.Units, &p.MonthlyRent, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}
	return items, nil
}

// GetProperty returns one property of the company.
func (s *Store) GetProperty(ctx context.Context, companyID, id string) (Property, error) {
	query := s.sb.
		Select(propertyColumns...).
		From("properties").
		Where(sq.Eq{"company_id": companyID, "id": id})

	var p Property
	err := s.queryRow(ctx, query, "querying property",
		&p.ID, &p.CompanyID, &p.Name, &p.Address, &p.City, &p.Units, &p.MonthlyRent, &p.CreatedAt)
	return p, err
}

// CreateProperty inserts p and returns it with its id and timestamp set.
func (s *Store) CreateProperty(ctx context.Context, p Property) (Property, error) {
	id, err := newID("prp")
	if err != nil {
		return Property{}, err
	}
	p.ID = id
	p.CreatedAt = s.now()
	if p.Units <= 0 {
		p.Units = 1
	}

	query := s.sb.
		Insert("properties").
		Columns(propertyColumns...).
		Values(p.ID, p.CompanyID, p.Name, p.Address, p.City, p.Units, p.MonthlyRent, p.CreatedAt)

	if err := s.exec(ctx, query, "inserting property"); err != nil {
		return Property{}, err
	}
	return p, nil
}
