package models

import "fmt"

// Role is the closed set of user roles. Permission decisions go through
// the predicates below instead of ad hoc string comparisons in handlers.
type Role string

const (
	RoleSuperAdmin Role = "SuperAdmin"
	RoleAdmin      Role = "Admin"
	RoleVoter      Role = "Voter"
)

// DefaultRole is assigned to every public registrant.
const DefaultRole = RoleVoter

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleVoter:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanManageUsers reports whether the role may list, create, update and
// delete other users.
func (r Role) CanManageUsers() bool {
	return r.IsAdmin()
}

// CanManageAthletes reports whether the role may create, update and
// delete athletes.
func (r Role) CanManageAthletes() bool {
	return r.IsAdmin()
}
