package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baraza/baraza-server/internal/auth"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/events"
	"github.com/baraza/baraza-server/internal/logger"
	"github.com/baraza/baraza-server/internal/validation"
)

func newAuthService(t *testing.T, env *testEnv) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService(make([]byte, auth.KeySize), time.Hour)
	require.NoError(t, err)
	return NewAuthService(env.store, tokens, validation.New(), logger.Discard())
}

func TestRegister_ForcesDefaultRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterRequest{
		Email:                "amina@example.com",
		Password:             "Passw0rd!",
		PasswordConfirmation: "Passw0rd!",
		FirstName:            "Amina",
		LastName:             "Njoroge",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRegisteredUser, res.User.Role)
	assert.NotEmpty(t, res.AccessToken)

	me, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, me.ID)

	_, err = svc.Register(ctx, RegisterRequest{Email: "AMINA@example.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "Passw0rd!"}},
		{"bad email", RegisterRequest{Email: "nope", Password: "Passw0rd!"}},
		{"weak password", RegisterRequest{Email: "a@example.com", Password: "password"}},
		{"too long", RegisterRequest{Email: "a@example.com", Password: "Passw0rd!xyz"}},
		{"mismatch", RegisterRequest{Email: "a@example.com", Password: "Passw0rd!", PasswordConfirmation: "Passw0rd?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "baraka@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, LoginRequest{Email: "baraka@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	_, err = svc.Login(ctx, LoginRequest{Email: "baraka@example.com", Password: "Wrong0rd!"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	ctx := context.Background()
	res, err := svc.Register(ctx, RegisterRequest{Email: "gone@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	require.NoError(t, env.store.DeleteUser(ctx, res.User.ID))

	_, err = svc.Authenticate(ctx, res.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestCreateUser_ProviderAccountSkipsPassword(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, domain.RoleAdministrator)

	u, err := env.users.CreateUser(context.Background(), admin, CreateUserRequest{
		FirstName: "Kamau",
		Provider:  "github",
		UID:       "4242",
	})
	require.NoError(t, err)
	assert.True(t, u.IsExternal())
	assert.Empty(t, u.PasswordHash)
	assert.Empty(t, env.emitter.emitted())

	_, err = env.users.CreateUser(context.Background(), admin, CreateUserRequest{Provider: "github"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation, "uid is required with a provider")
}

func TestUpdateUser_RoleChangeEmitsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, domain.RoleAdministrator)
	user := env.seedUser(t, domain.RoleRegisteredUser)

	editor := string(domain.RoleEditor)
	_, err := env.users.UpdateUser(ctx, admin, user.ID, UpdateUserRequest{Role: &editor})
	require.NoError(t, err)
	_, err = env.users.UpdateUser(ctx, admin, user.ID, UpdateUserRequest{Role: &editor})
	require.NoError(t, err)

	emitted := env.emitter.emitted()
	require.Len(t, emitted, 1)
	changed := emitted[0].(domain.RoleChanged)
	assert.Equal(t, domain.RoleRegisteredUser, changed.From)
	assert.True(t, changed.PromotedToEditor())

	_, err = env.users.UpdateUser(ctx, user, admin.ID, UpdateUserRequest{Role: &editor})
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestGuestRoleCannotBeAssigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, domain.RoleAdministrator)
	user := env.seedUser(t, domain.RoleRegisteredUser)

	_, err := env.users.CreateUser(ctx, admin, CreateUserRequest{
		Email:                "visitor@baraza.test",
		Password:             "Secret1!",
		PasswordConfirmation: "Secret1!",
		FirstName:            "Visiting",
		LastName:             "Reader",
		Role:                 string(domain.RoleGuest),
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	guest := string(domain.RoleGuest)
	_, err = env.users.UpdateUser(ctx, admin, user.ID, UpdateUserRequest{Role: &guest})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	stored, err := env.store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRegisteredUser, stored.Role)
}

func TestUserAdministration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, domain.RoleAdministrator)
	user := env.seedUser(t, domain.RoleRegisteredUser)

	assert.ErrorIs(t, env.users.DeleteUser(ctx, admin, admin.ID), domainerrors.ErrConflict)

	all, err := env.users.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.users.ListUsers(ctx, user)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	updated, err := env.users.ChangeEmail(ctx, user, user.ID, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = env.users.ChangeEmail(ctx, user, admin.ID, "hijack@example.com")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.users.DeleteUser(ctx, admin, user.ID))
	_, err = env.users.GetUser(ctx, admin, user.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

// fakeWelcomeMailer counts welcome mails per address.
type fakeWelcomeMailer struct {
	mu   sync.Mutex
	sent map[string]int
}

func (f *fakeWelcomeMailer) SendEditorWelcome(_ context.Context, email, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[email]++
	return "msg-1", nil
}

func (f *fakeWelcomeMailer) count(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[email]
}

func TestPromotionSendsWelcomeOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, domain.RoleAdministrator)
	user := env.seedUser(t, domain.RoleRegisteredUser)

	mailer := &fakeWelcomeMailer{sent: map[string]int{}}
	dispatcher := events.NewDispatcher(logger.Discard(), 16)
	NewNotificationHandler(mailer, logger.Discard()).Register(dispatcher)
	go dispatcher.Start(ctx)

	users := NewUserService(env.store, dispatcher, validation.New(), logger.Discard())
	editor := string(domain.RoleEditor)
	admin2 := string(domain.RoleAdministrator)
	for _, role := range []*string{&editor, &editor, &admin2} {
		_, err := users.UpdateUser(ctx, admin, user.ID, UpdateUserRequest{Role: role})
		require.NoError(t, err)
	}
	require.NoError(t, dispatcher.Shutdown(ctx))

	assert.Equal(t, 1, mailer.count(user.Email))
}

func TestNotificationHandler_IgnoresOtherChanges(t *testing.T) {
	mailer := &fakeWelcomeMailer{sent: map[string]int{}}
	h := NewNotificationHandler(mailer, logger.Discard())
	ctx := context.Background()

	require.NoError(t, h.HandleRoleChanged(ctx, domain.RoleChanged{
		Email: "x@example.com", From: domain.RoleEditor, To: domain.RoleAdministrator,
	}))
	require.NoError(t, h.HandleRoleChanged(ctx, domain.RoleChanged{
		Email: "x@example.com", From: domain.RoleEditor, To: domain.RoleEditor,
	}))
	assert.Zero(t, mailer.count("x@example.com"))

	err := h.HandleRoleChanged(ctx, domain.RoleChanged{UserID: "usr-1", From: domain.RoleRegisteredUser, To: domain.RoleEditor})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSubscribers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, domain.RoleAdministrator)

	first, err := env.subscribers.Subscribe(ctx, nil, " reader@example.com ")
	require.NoError(t, err)
	again, err := env.subscribers.Subscribe(ctx, nil, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = env.subscribers.Subscribe(ctx, nil, "not-an-email")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.subscribers.ListSubscribers(ctx, nil)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	list, err := env.subscribers.ListSubscribers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.subscribers.DeleteSubscriber(ctx, admin, first.ID))
	assert.ErrorIs(t, env.subscribers.DeleteSubscriber(ctx, admin, first.ID), domainerrors.ErrNotFound)
}
