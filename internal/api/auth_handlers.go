package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baraza/baraza-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/auth/register",
		Summary:       "Register",
		Description:   "Creates a registered_user account and returns an access token",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Exchanges email and password for an access token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleLogin)
}

// === DTOs ===

// RegisterRequest is the request body for self-service sign-up.
type RegisterRequest struct {
	Email                string `json:"email" doc:"Email address"`
	Password             string `json:"password" doc:"6 to 10 characters with upper and lower case, a digit and a symbol"`
	PasswordConfirmation string `json:"password_confirmation,omitempty" doc:"Must equal password when given"`
	FirstName            string `json:"first_name,omitempty" doc:"First name"`
	LastName             string `json:"last_name,omitempty" doc:"Last name"`
	Gender               string `json:"gender,omitempty" enum:"M,F,Other" doc:"Gender"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// AuthResponse contains a token and the signed-in user.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Always Bearer"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry"`
	User        UserResponse `json:"user" doc:"Signed-in user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	res, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:                input.Body.Email,
		Password:             input.Body.Password,
		PasswordConfirmation: input.Body.PasswordConfirmation,
		FirstName:            input.Body.FirstName,
		LastName:             input.Body.LastName,
		Gender:               input.Body.Gender,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: mapAuthResponse(res)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	res, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: mapAuthResponse(res)}, nil
}

func mapAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        mapUser(res.User),
	}
}
