// Package authz decides which actions a role may perform on which resources.
//
// Each role's permission set is the set of the role below it plus its own
// grants. Grants that depend on the record carry a predicate.
package authz

import (
	"github.com/baraza/baraza-server/internal/domain"
)

// Resource names.
const (
	ResourceHome        = "home"
	ResourceArticles    = "articles"
	ResourceTags        = "tags"
	ResourceCategories  = "categories"
	ResourceNewsletters = "newsletters"
	ResourceSubscribers = "subscribers"
	ResourceUsers       = "users"
)

// Action names.
const (
	ActionIndex           = "index"
	ActionShow            = "show"
	ActionSearch          = "search"
	ActionNew             = "new"
	ActionCreate          = "create"
	ActionEdit            = "edit"
	ActionUpdate          = "update"
	ActionDestroy         = "destroy"
	ActionApprove         = "approve"
	ActionReject          = "reject"
	ActionSend            = "send"
	ActionChangeEmailForm = "change_email_form"
	ActionChangeEmail     = "change_email"
)

// Permission names one action on one resource.
type Permission struct {
	Resource string
	Action   string
}

func (p Permission) String() string { return p.Resource + ":" + p.Action }

// Attrs describes the record an action targets.
type Attrs struct {
	// ID is the record's own ID.
	ID string
	// OwnerID is the user that owns the record, when it has one.
	OwnerID string
}

// Predicate limits a grant to some records.
type Predicate func(user *domain.User, record Attrs) bool

// Grant allows a permission, optionally only where When holds.
type Grant struct {
	Permission
	When Predicate
}

// Allows reports whether the grant covers the request.
func (g Grant) Allows(user *domain.User, record Attrs) bool {
	return g.When == nil || g.When(user, record)
}

// Set is a role's grants keyed by permission. Several grants for the same
// permission combine with OR.
type Set map[Permission][]Grant

// Has reports whether any grant exists for p, ignoring predicates.
func (s Set) Has(resource, action string) bool {
	return len(s[Permission{resource, action}]) > 0
}

// Permissions lists the permissions in the set.
func (s Set) Permissions() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

func (s Set) add(grants ...Grant) Set {
	for _, g := range grants {
		s[g.Permission] = append(s[g.Permission], g)
	}
	return s
}

// IsSelf matches records that are the acting user.
func IsSelf(user *domain.User, record Attrs) bool {
	return user != nil && record.ID != "" && record.ID == user.ID
}

// IsOwner matches records owned by the acting user.
func IsOwner(user *domain.User, record Attrs) bool {
	return user != nil && record.OwnerID != "" && record.OwnerID == user.ID
}

func allow(resource string, actions ...string) []Grant {
	grants := make([]Grant, len(actions))
	for i, a := range actions {
		grants[i] = Grant{Permission: Permission{resource, a}}
	}
	return grants
}

func allowWhen(when Predicate, resource string, actions ...string) []Grant {
	grants := allow(resource, actions...)
	for i := range grants {
		grants[i].When = when
	}
	return grants
}

func guestGrants() []Grant {
	var g []Grant
	g = append(g, allow(ResourceHome, ActionIndex)...)
	g = append(g, allow(ResourceArticles, ActionIndex, ActionShow, ActionSearch)...)
	g = append(g, allow(ResourceCategories, ActionIndex)...)
	g = append(g, allow(ResourceSubscribers, ActionCreate)...)
	return g
}

func registeredUserGrants() []Grant {
	var g []Grant
	g = append(g, allowWhen(IsSelf, ResourceUsers, ActionChangeEmailForm, ActionChangeEmail)...)
	g = append(g, allow(ResourceArticles, ActionNew, ActionCreate)...)
	g = append(g, allowWhen(IsOwner, ResourceArticles, ActionEdit, ActionUpdate, ActionDestroy)...)
	g = append(g, allow(ResourceTags, ActionIndex)...)
	return g
}

func editorGrants() []Grant {
	var g []Grant
	g = append(g, allow(ResourceNewsletters,
		ActionIndex, ActionShow, ActionNew, ActionCreate, ActionEdit, ActionUpdate, ActionApprove, ActionReject)...)
	g = append(g, allow(ResourceCategories, ActionCreate)...)
	return g
}

func administratorGrants() []Grant {
	var g []Grant
	g = append(g, allow(ResourceUsers,
		ActionNew, ActionCreate, ActionEdit, ActionUpdate, ActionShow, ActionDestroy, ActionIndex)...)
	g = append(g, allow(ResourceNewsletters, ActionSend)...)
	g = append(g, allow(ResourceSubscribers, ActionIndex, ActionDestroy)...)
	return g
}

// PermissionsFor builds the permission set of role. Unknown roles get the
// guest set.
func PermissionsFor(role domain.Role) Set {
	layers := [][]Grant{guestGrants()}
	if role.Includes(domain.RoleRegisteredUser) {
		layers = append(layers, registeredUserGrants())
	}
	if role.Includes(domain.RoleEditor) {
		layers = append(layers, editorGrants())
	}
	if role.Includes(domain.RoleAdministrator) {
		layers = append(layers, administratorGrants())
	}

	set := Set{}
	for _, layer := range layers {
		set.add(layer...)
	}
	return set
}

// Allows reports whether user (nil for guests) may perform action on
// resource for the given record.
func Allows(user *domain.User, resource, action string, record Attrs) bool {
	for _, g := range PermissionsFor(user.EffectiveRole())[Permission{resource, action}] {
		if g.Allows(user, record) {
			return true
		}
	}
	return false
}
