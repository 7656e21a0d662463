package enums

import (
	"fmt"
	"strings"
)

// Role is the closed classification of a user governing endpoint access.
type Role string

const (
	RoleSystemAdmin Role = "system_admin"
	RoleNormalUser  Role = "normal_user"
	RoleStoreOwner  Role = "store_owner"
)

var validRoles = []Role{
	RoleSystemAdmin,
	RoleNormalUser,
	RoleStoreOwner,
}

// Roles returns every known role in declaration order.
func Roles() []Role {
	return append([]Role(nil), validRoles...)
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// RoleSet is an allow-set of roles declared by a route group.
type RoleSet map[Role]struct{}

// NewRoleSet builds an allow-set, ignoring unknown roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		if role.IsValid() {
			set[role] = struct{}{}
		}
	}
	return set
}

// Allows reports whether role is a member of the set.
func (s RoleSet) Allows(role Role) bool {
	_, ok := s[role]
	return ok
}
