package propertystore

import "time"

// Property is a rentable building or unit group.
type Property struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Units       int       `json:"units"`
	MonthlyRent float64   `json:"monthlyRent"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Tenant is a person renting a property.
type Tenant struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Lease statuses.
const (
	LeaseActive     = "active"
	LeaseEnded      = "ended"
	LeaseTerminated = "terminated"
)

// Lease binds a tenant to a property. Dates are ISO 8601 calendar dates.
type Lease struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"companyId"`
	PropertyID  string    `json:"propertyId"`
	TenantID    string    `json:"tenantId"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate,omitempty"`
	MonthlyRent float64   `json:"monthlyRent"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Payment is a rent payment recorded against a lease.
type Payment struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	LeaseID   string    `json:"leaseId"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	PaidAt    time.Time `json:"paidAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a staff account. PasswordHash is serialized on purpose so that
// callers handing users to untrusted consumers must strip it.
type User struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"companyId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PropertyFilter narrows ListProperties.
type PropertyFilter struct {
	City  string
	Limit int
}

// LeaseFilter narrows ListLeases.
type LeaseFilter struct {
	PropertyID string
	TenantID   string
	Status     string
	Limit      int
}

// PaymentFilter narrows ListPayments.
type PaymentFilter struct {
	LeaseID string
	Since   time.Time
	Limit   int
}
