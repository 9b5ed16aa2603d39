package aitools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harun/rentdesk/pkg/schema"
)

// Mutability tells whether a tool may change persisted state.
type Mutability string

const (
	ReadOnly Mutability = "readonly"
	Mutable  Mutability = "mutable"
)

// Role is the caller's role inside their company.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleOwner   Role = "owner"
	RoleAgent   Role = "agent"
	RoleTenant  Role = "tenant"
)

// AllRoles lists every known role.
var AllRoles = []Role{RoleAdmin, RoleManager, RoleOwner, RoleAgent, RoleTenant}

// StaffRoles are the roles that manage a portfolio on behalf of a company.
var StaffRoles = []Role{RoleAdmin, RoleManager, RoleAgent}

// ParseRole returns the role named by s, case-insensitively.
func ParseRole(s string) (Role, bool) {
	candidate := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, role := range AllRoles {
		if role == candidate {
			return role, true
		}
	}
	return "", false
}

// ExecutionContext identifies who is calling a tool. It is built per call
// and never persisted.
type ExecutionContext struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId,omitempty"`
	Role      Role   `json:"role"`
}

// Handler runs a tool's business operation with arguments that already
// passed the tool's parameter schema.
type Handler func(ctx context.Context, args any, ec ExecutionContext) (any, error)

// Definition describes one tool. Definitions are owned by the Catalog and
// must not be modified after the catalog is built.
type Definition struct {
	Name         string
	Description  string
	Mutability   Mutability
	AllowedRoles []Role
	// Parameters is the authoritative argument schema. A nil schema accepts
	// any arguments.
	Parameters *schema.Node
	Execute    Handler
}

// Allows reports whether role may invoke the tool.
func (d *Definition) Allows(role Role) bool {
	for _, allowed := range d.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// IsReadOnly reports whether the tool is declared read-only. Anything else
// is treated as mutable.
func (d *Definition) IsReadOnly() bool {
	return d.Mutability == ReadOnly
}

// Bind adapts a handler that takes typed arguments. The parsed arguments
// are decoded into T through their JSON form.
func Bind[T any](fn func(ctx context.Context, args T, ec ExecutionContext) (any, error)) Handler {
	return func(ctx context.Context, args any, ec ExecutionContext) (any, error) {
		var typed T
		if err := decodeInto(args, &typed); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		return fn(ctx, typed, ec)
	}
}

func decodeInto(v any, target any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
