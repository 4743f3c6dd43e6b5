package domain

import "time"

// Event is a fact about the domain that other components react to.
type Event interface {
	EventName() string
}

// EventRoleChanged is the name of RoleChanged.
const EventRoleChanged = "user.role_changed"

// RoleChanged records that an account moved between roles.
type RoleChanged struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	From     Role      `json:"from"`
	To       Role      `json:"to"`
	At       time.Time `json:"at"`
}

// EventName implements Event.
func (RoleChanged) EventName() string { return EventRoleChanged }

// PromotedToEditor reports a transition into the editor role.
func (e RoleChanged) PromotedToEditor() bool {
	return e.To == RoleEditor && e.From != RoleEditor
}
