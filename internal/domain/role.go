package domain

import "fmt"

// Role is a user's place in the permission hierarchy. Each role includes
// every permission of the roles ranked below it.
type Role string

const (
	RoleGuest          Role = "guest"
	RoleRegisteredUser Role = "registered_user"
	RoleEditor         Role = "editor"
	RoleAdministrator  Role = "administrator"
)

// DefaultRole is assigned to accounts created without an explicit role.
const DefaultRole = RoleRegisteredUser

// Roles lists the roles from least to most privileged.
var Roles = []Role{RoleGuest, RoleRegisteredUser, RoleEditor, RoleAdministrator}

// ParseRole converts a stored or submitted role name. Empty means DefaultRole.
// Guest describes a caller with no account and is never stored on a user.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if r == RoleGuest {
		return "", fmt.Errorf("role %q cannot be assigned to an account", s)
	}
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() >= 0
}

func (r Role) rank() int {
	for i, known := range Roles {
		if known == r {
			return i
		}
	}
	return -1
}

// Includes reports whether r carries every permission of other.
func (r Role) Includes(other Role) bool {
	return r.Valid() && other.Valid() && r.rank() >= other.rank()
}

// IsEditor is an exact match; administrators are not editors here.
func (r Role) IsEditor() bool { return r == RoleEditor }

// IsAdministrator is an exact match.
func (r Role) IsAdministrator() bool { return r == RoleAdministrator }

func (r Role) String() string { return string(r) }
