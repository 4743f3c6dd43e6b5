package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/baraza/baraza-server/internal/errors"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("update newsletter: %w", domainerrors.InvalidReferencef("article %s is not attached", "art-1"))

	assert.ErrorIs(t, err, domainerrors.ErrInvalidReference)
	assert.NotErrorIs(t, err, domainerrors.ErrValidation)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("smtp down")
	err := domainerrors.Wrap(cause, domainerrors.CodeDelivery, "mail delivery failed")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, domainerrors.ErrDelivery)
	assert.Equal(t, "mail delivery failed: smtp down", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *domainerrors.Error
		want int
	}{
		{domainerrors.Validation("bad"), http.StatusBadRequest},
		{domainerrors.InvalidReferencef("missing %s", "x"), http.StatusUnprocessableEntity},
		{domainerrors.InvalidTransitionf("approved"), http.StatusConflict},
		{domainerrors.AlreadyExists("dup"), http.StatusConflict},
		{domainerrors.Unauthorized("who"), http.StatusUnauthorized},
		{domainerrors.InvalidCredentials("no"), http.StatusUnauthorized},
		{domainerrors.Forbiddenf("not allowed to %s", "send"), http.StatusForbidden},
		{domainerrors.NotFoundf("article %s", "art-1"), http.StatusNotFound},
		{domainerrors.ErrDelivery, http.StatusBadGateway},
		{domainerrors.IndexWrite(errors.New("closed"), "index article"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestPlainMessagesAreLiteral(t *testing.T) {
	for _, err := range []*domainerrors.Error{
		domainerrors.Validation("must be 100% unique"),
		domainerrors.AlreadyExists("must be 100% unique"),
		domainerrors.Conflict("must be 100% unique"),
		domainerrors.Unauthorized("must be 100% unique"),
		domainerrors.InvalidCredentials("must be 100% unique"),
	} {
		assert.Equal(t, "must be 100% unique", err.Message, err.Code)
	}
}
