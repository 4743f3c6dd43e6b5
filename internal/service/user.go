package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baraza/baraza-server/internal/auth"
	"github.com/baraza/baraza-server/internal/authz"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/events"
	"github.com/baraza/baraza-server/internal/id"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/validation"
)

// UserService manages accounts. Role changes are published as events.
type UserService struct {
	store     store.Store
	emitter   events.Emitter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(store store.Store, emitter events.Emitter, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{store: store, emitter: emitter, validator: validator, logger: logger}
}

// CreateUserRequest describes a new account. Accounts with a Provider
// authenticate elsewhere and skip the email and password checks.
type CreateUserRequest struct {
	Email                string `json:"email,omitempty"`
	Password             string `json:"password,omitempty"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
	FirstName            string `json:"first_name" validate:"max=100"`
	LastName             string `json:"last_name" validate:"max=100"`
	Gender               string `json:"gender,omitempty" validate:"omitempty,oneof=M F Other"`
	Role                 string `json:"role,omitempty" validate:"omitempty,oneof=registered_user editor administrator"`
	Provider             string `json:"provider,omitempty" validate:"max=50"`
	UID                  string `json:"uid,omitempty" validate:"required_with=Provider,max=255"`
}

// UpdateUserRequest changes the fields that are set.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Gender    *string `json:"gender,omitempty" validate:"omitempty,oneof=M F Other"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=registered_user editor administrator"`
}

// newUser validates req and builds an unsaved user with a hashed password.
func newUser(v *validation.Validator, req CreateUserRequest) (*domain.User, error) {
	if err := v.Validate(req); err != nil {
		return nil, err
	}

	req.Email = strings.TrimSpace(req.Email)
	external := req.Provider != ""
	switch {
	case !external:
		if err := v.Var("email", req.Email, "required,email"); err != nil {
			return nil, err
		}
		if err := v.Var("password", req.Password, "required,password_policy"); err != nil {
			return nil, err
		}
		if req.PasswordConfirmation != "" && req.PasswordConfirmation != req.Password {
			return nil, domainerrors.ValidationWithDetails("validation failed: password_confirmation",
				map[string]string{"password_confirmation": "does not match password"})
		}
	case req.Email != "":
		if err := v.Var("email", req.Email, "email"); err != nil {
			return nil, err
		}
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Record:    domain.Record{ID: userID},
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    domain.Gender(req.Gender),
		Role:      role,
		Provider:  req.Provider,
		UID:       req.UID,
	}
	if req.Password != "" {
		if user.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	user.InitTimestamps()
	return user, nil
}

func createUser(ctx context.Context, s store.Store, user *domain.User) error {
	if err := s.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.AlreadyExists("an account with this email already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Me returns the signed-in user's current record.
func (s *UserService) Me(ctx context.Context, actor *domain.User) (*domain.User, error) {
	if actor == nil {
		return nil, domainerrors.Unauthorized("sign in to continue")
	}
	u, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "user", actor.ID)
	}
	return u, nil
}

// ChangeEmail sets a user's own email. Accounts created through a
// provider without an email use this to complete their profile.
func (s *UserService) ChangeEmail(ctx context.Context, actor *domain.User, userID, email string) (*domain.User, error) {
	if err := authorize(actor, authz.ResourceUsers, authz.ActionChangeEmail, authz.Attrs{ID: userID}); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if err := s.validator.Var("email", email, "required,email"); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, func(u *domain.User) {
		u.Email = email
		u.Touch()
	})
}

// CreateUser adds an account on behalf of an administrator.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.User, req CreateUserRequest) (*domain.User, error) {
	if err := authorize(actor, authz.ResourceUsers, authz.ActionCreate, authz.Attrs{}); err != nil {
		return nil, err
	}
	user, err := newUser(s.validator, req)
	if err != nil {
		return nil, err
	}
	if err := createUser(ctx, s.store, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))

	// A new editor is welcomed the same way as a promoted one.
	if user.Role == domain.RoleEditor {
		s.emitter.Emit(domain.RoleChanged{
			UserID: user.ID, Email: user.Email, FullName: user.FullName(),
			From: domain.RoleGuest, To: user.Role, At: user.CreatedAt,
		})
	}
	return user, nil
}

// GetUser returns any user to an administrator.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if err := authorize(actor, authz.ResourceUsers, authz.ActionShow, authz.Attrs{ID: userID}); err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	return u, nil
}

// ListUsers returns all users to an administrator.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if err := authorize(actor, authz.ResourceUsers, authz.ActionIndex, authz.Attrs{}); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// UpdateUser changes profile fields and, for administrators, the role.
// A role change emits domain.RoleChanged after the save commits.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, userID string, req UpdateUserRequest) (*domain.User, error) {
	if err := authorize(actor, authz.ResourceUsers, authz.ActionUpdate, authz.Attrs{ID: userID}); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var role domain.Role
	if req.Role != nil {
		var err error
		if role, err = domain.ParseRole(*req.Role); err != nil {
			return nil, domainerrors.Validation(err.Error())
		}
	}

	var (
		event   domain.RoleChanged
		changed bool
	)
	user, err := s.update(ctx, userID, func(u *domain.User) {
		if req.Email != nil {
			u.Email = strings.TrimSpace(*req.Email)
		}
		if req.FirstName != nil {
			u.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			u.LastName = *req.LastName
		}
		if req.Gender != nil {
			u.Gender = domain.Gender(*req.Gender)
		}
		if req.Role != nil {
			event, changed = u.ChangeRole(role)
		}
		u.Touch()
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.emitter.Emit(event)
		s.logger.Info("user role changed",
			slog.String("user_id", user.ID),
			slog.String("from", string(event.From)),
			slog.String("to", string(event.To)),
		)
	}
	return user, nil
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if err := authorize(actor, authz.ResourceUsers, authz.ActionDestroy, authz.Attrs{ID: userID}); err != nil {
		return err
	}
	if actor.ID == userID {
		return domainerrors.Conflict("you cannot delete your own account")
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return notFound(err, "user", userID)
	}
	s.logger.Info("user deleted", slog.String("user_id", userID), slog.String("by", actor.ID))
	return nil
}

func (s *UserService) update(ctx context.Context, userID string, fn func(u *domain.User)) (*domain.User, error) {
	var out *domain.User
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		u, err := tx.GetUser(ctx, userID)
		if err != nil {
			return notFound(err, "user", userID)
		}
		fn(u)
		if err := tx.UpdateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.AlreadyExists("an account with this email already exists")
			}
			return fmt.Errorf("update user: %w", err)
		}
		out = u
		return nil
	})
	return out, err
}
