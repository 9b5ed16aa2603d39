package domaintools

import (
	"context"

	"github.com/harun/rentdesk/pkg/aitools"
	"github.com/harun/rentdesk/pkg/schema"
)

// Users provides staff account tools. The store returns password hashes;
// the executor strips them before results reach the caller.
type Users struct {
	Store Store
}

type getUserArgs struct {
	UserID string `json:"userId"`
}

type listUsersArgs struct {
	Role string `json:"role"`
}

// Tools implements aitools.Provider.
func (u Users) Tools() []aitools.Definition {
	roles := make([]string, 0, len(aitools.AllRoles))
	for _, role := range aitools.AllRoles {
		roles = append(roles, string(role))
	}

	return []aitools.Definition{
		{
			Name:         "get_user",
			Description:  "Get a staff user account by id. Omit userId for the caller",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: admins,
			Parameters:   schema.Object(schema.Prop("userId", schema.String().Optional())),
			Execute:      aitools.Bind(u.get),
		},
		{
			Name:         "list_users",
			Description:  "List the company's staff users",
			Mutability:   aitools.ReadOnly,
			AllowedRoles: admins,
			Parameters:   schema.Object(schema.Prop("role", schema.Enum(roles...).Optional())),
			Execute:      aitools.Bind(u.list),
		},
	}
}

func (u Users) get(ctx context.Context, args getUserArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	id := args.UserID
	if id == "" {
		id = ec.UserID
	}
	return u.Store.GetUser(ctx, companyID, id)
}

func (u Users) list(ctx context.Context, args listUsersArgs, ec aitools.ExecutionContext) (any, error) {
	companyID, err := companyOf(ec)
	if err != nil {
		return nil, err
	}
	return u.Store.ListUsers(ctx, companyID, args.Role)
}
