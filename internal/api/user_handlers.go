package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/baraza/baraza-server/internal/domain"
	"github.com/baraza/baraza-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "changeEmail",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}/email",
		Summary:     "Change email",
		Description: "Sets the email of the signed-in user. Users may only change their own.",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleChangeEmail)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Create user",
		Description:   "Creates an account with any role. Administrators only.",
		Tags:          []string{"Users"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/{id}",
		Summary:     "Update user",
		Description: "Changes profile fields and role. Promotion to editor sends a welcome email.",
		Tags:        []string{"Users"},
		Security:    bearer,
	}, s.handleUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          "/api/v1/users/{id}",
		Summary:       "Delete user",
		Tags:          []string{"Users"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteUser)
}

// === DTOs ===

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email,omitempty" doc:"Email address"`
	FirstName string    `json:"first_name" doc:"First name"`
	LastName  string    `json:"last_name" doc:"Last name"`
	FullName  string    `json:"full_name" doc:"First and last name"`
	Gender    string    `json:"gender,omitempty" doc:"Gender"`
	Role      string    `json:"role" doc:"guest, registered_user, editor or administrator"`
	Provider  string    `json:"provider,omitempty" doc:"External identity provider"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Gender:    string(u.Gender),
		Role:      string(u.EffectiveRole()),
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

// ListUsersOutput wraps a list of users for Huma.
type ListUsersOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"All users"`
	}
}

// UserIDInput addresses one user.
type UserIDInput struct {
	ID string `path:"id" doc:"User ID"`
}

// ChangeEmailInput wraps the change email request for Huma.
type ChangeEmailInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body struct {
		Email string `json:"email" format:"email" doc:"New email address"`
	}
}

// CreateUserRequest is the request body for creating a user.
type CreateUserRequest struct {
	Email                string `json:"email,omitempty" doc:"Email address; optional for provider accounts"`
	Password             string `json:"password,omitempty" doc:"Password; optional for provider accounts"`
	PasswordConfirmation string `json:"password_confirmation,omitempty" doc:"Must equal password when given"`
	FirstName            string `json:"first_name,omitempty" doc:"First name"`
	LastName             string `json:"last_name,omitempty" doc:"Last name"`
	Gender               string `json:"gender,omitempty" enum:"M,F,Other" doc:"Gender"`
	Role                 string `json:"role,omitempty" enum:"guest,registered_user,editor,administrator" doc:"Role, registered_user when empty"`
	Provider             string `json:"provider,omitempty" doc:"External identity provider"`
	UID                  string `json:"uid,omitempty" doc:"Account ID at the provider"`
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UpdateUserRequest is the request body for updating a user.
type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" doc:"Email address"`
	FirstName *string `json:"first_name,omitempty" doc:"First name"`
	LastName  *string `json:"last_name,omitempty" doc:"Last name"`
	Gender    *string `json:"gender,omitempty" doc:"Gender"`
	Role      *string `json:"role,omitempty" doc:"Role"`
}

// UpdateUserInput wraps the update user request for Huma.
type UpdateUserInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body UpdateUserRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	u, err := s.services.User.Me(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(u)}, nil
}

func (s *Server) handleChangeEmail(ctx context.Context, input *ChangeEmailInput) (*UserOutput, error) {
	u, err := s.services.User.ChangeEmail(ctx, currentUser(ctx), input.ID, input.Body.Email)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(u)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	users, err := s.services.User.ListUsers(ctx, currentUser(ctx))
	if err != nil {
		return nil, err
	}
	out := &ListUsersOutput{}
	out.Body.Users = make([]UserResponse, len(users))
	for i, u := range users {
		out.Body.Users[i] = mapUser(u)
	}
	return out, nil
}

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	u, err := s.services.User.CreateUser(ctx, currentUser(ctx), service.CreateUserRequest{
		Email:                input.Body.Email,
		Password:             input.Body.Password,
		PasswordConfirmation: input.Body.PasswordConfirmation,
		FirstName:            input.Body.FirstName,
		LastName:             input.Body.LastName,
		Gender:               input.Body.Gender,
		Role:                 input.Body.Role,
		Provider:             input.Body.Provider,
		UID:                  input.Body.UID,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(u)}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	u, err := s.services.User.GetUser(ctx, currentUser(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(u)}, nil
}

func (s *Server) handleUpdateUser(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
	u, err := s.services.User.UpdateUser(ctx, currentUser(ctx), input.ID, service.UpdateUserRequest{
		Email:     input.Body.Email,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Gender:    input.Body.Gender,
		Role:      input.Body.Role,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(u)}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *UserIDInput) (*struct{}, error) {
	if err := s.services.User.DeleteUser(ctx, currentUser(ctx), input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
