package model

import "github.com/google/uuid"

const (
	RoleAdmin      = "ADMIN"
	RoleDispatcher = "DISPATCHER"
	RoleAccountant = "ACCOUNTANT"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// HasRole reports whether the principal holds any of the roles. ADMIN
// passes every check.
func (p Principal) HasRole(roles ...string) bool {
	if p.Role == RoleAdmin {
		return true
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}
