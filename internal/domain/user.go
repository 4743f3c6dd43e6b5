package domain

import "strings"

// Gender is the self-reported gender stored on a profile.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is empty or one of the known values.
func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is an account. Users with a Provider signed in through an external
// identity provider and have no local password.
type User struct {
	Record
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Gender       Gender `json:"gender,omitempty"`
	Role         Role   `json:"role"`
	Provider     string `json:"provider,omitempty"`
	UID          string `json:"uid,omitempty"`
}

// FullName joins first and last name with a single space.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// EffectiveRole returns the role used for authorization. A nil user is a guest.
func (u *User) EffectiveRole() Role {
	if u == nil {
		return RoleGuest
	}
	if u.Role == "" {
		return DefaultRole
	}
	return u.Role
}

// IsEditor reports whether the user's role is exactly editor.
func (u *User) IsEditor() bool { return u.EffectiveRole().IsEditor() }

// IsAdministrator reports whether the user's role is exactly administrator.
func (u *User) IsAdministrator() bool { return u.EffectiveRole().IsAdministrator() }

// CanCurate reports whether the user may work on newsletters.
func (u *User) CanCurate() bool { return u.EffectiveRole().Includes(RoleEditor) }

// IsExternal reports whether the account authenticates through a provider.
func (u *User) IsExternal() bool { return u != nil && u.Provider != "" }

// ChangeRole sets a new role and returns the event describing the change.
// The bool is false when the role did not change.
func (u *User) ChangeRole(to Role) (RoleChanged, bool) {
	from := u.EffectiveRole()
	if from == to {
		return RoleChanged{}, false
	}
	u.Role = to
	u.Touch()
	return RoleChanged{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName(),
		From:     from,
		To:       to,
		At:       u.UpdatedAt,
	}, true
}
