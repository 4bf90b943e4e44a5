package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Role represents the authorization role of a principal.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleViewer Role = "VIEWER"
)

// ParseRole validates and converts a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleViewer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Principal represents the authenticated actor for a single request.
// It is produced by the authentication layer after verifying a bearer
// credential and is immutable for the lifetime of the request.
type Principal struct {
	UserID uuid.UUID
	Email  string // optional, carried from the token for audit display
	Role   Role
	OrgID  uuid.UUID
}
