package propertystore

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DemoUserID is the staff account created by Seed.
const DemoUserID = "usr_demo_manager"

// Seed fills an empty company with a small demo portfolio. It does nothing
// when the company already has properties.
func (s *Store) Seed(ctx context.Context, companyID string) error {
	existing, err := s.ListProperties(ctx, companyID, PropertyFilter{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("change-me"), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	if _, err := s.CreateUser(ctx, User{
		ID:           DemoUserID,
		CompanyID:    companyID,
		Email:        "manager@example.com",
		Name:         "Demo Manager",
		Role:         "manager",
		PasswordHash: string(hash),
	}); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	properties := []Property{
		{Name: "Edificio Miraflores", Address: "Av. Larco 1200", City: "Lima", Units: 12, MonthlyRent: 1800},
		{Name: "Casa San Blas", Address: "Cuesta San Blas 45", City: "Cusco", Units: 1, MonthlyRent: 950},
		{Name: "Torre La Carolina", Address: "Av. Amazonas N35", City: "Quito", Units: 20, MonthlyRent: 720},
	}
	var created []Property
	for _, p := range properties {
		p.CompanyID = companyID
		out, err := s.CreateProperty(ctx, p)
		if err != nil {
			return fmt.Errorf("seed property %q: %w", p.Name, err)
		}
		created = append(created, out)
	}

	tenant, err := s.CreateTenant(ctx, Tenant{CompanyID: companyID, FullName: "Lucía Quispe", Email: "lucia@example.com", Phone: "+51 999 111 222"})
	if err != nil {
		return fmt.Errorf("seed tenant: %w", err)
	}

	lease, err := s.CreateLease(ctx, Lease{
		CompanyID:   companyID,
		PropertyID:  created[0].ID,
		TenantID:    tenant.ID,
		StartDate:   "2025-01-01",
		MonthlyRent: created[0].MonthlyRent,
	})
	if err != nil {
		return fmt.Errorf("seed lease: %w", err)
	}

	if _, err := s.RecordPayment(ctx, Payment{
		CompanyID: companyID,
		LeaseID:   lease.ID,
		Amount:    lease.MonthlyRent,
		PaidAt:    time.Date(2025, 1, 5, 15, 0, 0, 0, time.UTC),
	}); err != nil {
		return fmt.Errorf("seed payment: %w", err)
	}

	s.logger.Info().Str("company_id", companyID).Msg("Seeded demo portfolio")
	return nil
}
