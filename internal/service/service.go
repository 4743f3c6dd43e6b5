// Package service holds the application's use cases. Services validate
// input, check permissions, run one store transaction per operation and
// push side effects (search index, events, mail) after commit.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/store"
)

// authorize returns a Forbidden error unless actor may perform action.
// A nil actor is a guest.
func authorize(actor *domain.User, resource, action string, record authz.Attrs) error {
	if authz.Allows(actor, resource, action, record) {
		return nil
	}
	if actor == nil {
		return domainerrors.Unauthorized("sign in to continue")
	}
	return domainerrors.Forbiddenf("not allowed to %s %s", action, resource)
}

// notFound converts store.ErrNotFound into a domain NotFound error and
// wraps anything else.
func notFound(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("%s %s not found", what, id)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}

// invalidReference is notFound for IDs submitted as part of a larger write.
func invalidReference(err error, what, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.InvalidReferencef("%s %s does not exist", what, id)
	}
	return fmt.Errorf("get %s %s: %w", what, id, err)
}

func errorsIsInvalidCursor(err error) bool {
	return errors.Is(err, store.ErrInvalidCursor)
}

func nowUTC() time.Time { return time.Now().UTC() }
