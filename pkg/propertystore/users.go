package propertystore

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"id", "company_id", "email", "name", "role", "password_hash", "created_at"}

// ListUsers returns the company's staff accounts.
func (s *Store) ListUsers(ctx context.Context, companyID, role string) ([]User, error) {
	query := s.sb.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"company_id": companyID}).
		OrderBy("name")

	if role != "" {
		query = query.Where(sq.Eq{"role": role})
	}

	rows, err := s.query(ctx, query, "listing users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.CompanyID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		items = append(items, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return items, nil
}

// GetUser returns one user of the company, including the password hash.
func (s *Store) GetUser(ctx context.Context, companyID, id string) (User, error) {
	query := s.sb.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"company_id": companyID, "id": id})

	var u User
	err := s.queryRow(ctx, query, "querying user", &u.ID, &u.CompanyID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUser inserts u. A non-empty ID is kept so that accounts can be
// provisioned with ids issued elsewhere.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		id, err := newID("usr")
		if err != nil {
			return User{}, err
		}
		u.ID = id
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = s.now()

	query := s.sb.
		Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.CompanyID, u.Email, u.Name, u.Role, u.PasswordHash, u.CreatedAt)

	if err := s.exec(ctx, query, "inserting user"); err != nil {
		return User{}, err
	}
	return u, nil
}
