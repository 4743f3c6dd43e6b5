package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/baraza/baraza-server/internal/auth"
	"github.com/baraza/baraza-server/internal/domain"
	domainerrors "github.com/baraza/baraza-server/internal/errors"
	"github.com/baraza/baraza-server/internal/store"
	"github.com/baraza/baraza-server/internal/validation"
)

// AuthService registers accounts, checks credentials and resolves access
// tokens to users.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(store store.Store, tokenService *auth.TokenService, validator *validation.Validator, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		validator:    validator,
		logger:       logger,
	}
}

// RegisterRequest is a self-service sign-up.
type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Gender               string `json:"gender,omitempty"`
}

// LoginRequest holds credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned after a successful register or login.
type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates a registered_user account and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	user, err := newUser(s.validator, CreateUserRequest{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Gender:               req.Gender,
	})
	if err != nil {
		return nil, err
	}
	if err := createUser(ctx, s.store, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return s.issue(user)
}

// Login verifies credentials and issues an access token. Unknown emails
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login failed", slog.String("email", req.Email))
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}
	return s.issue(user)
}

// Authenticate resolves an access token to the current user record, so
// role changes apply without waiting for the token to expire.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expires, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "issue access token")
	}
	return &AuthResult{User: user, AccessToken: token, ExpiresAt: expires}, nil
}
