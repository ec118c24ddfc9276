package client

import (
	"context"

	"github.com/dmitrijs2005/postboard/internal/client/models"
)

// Client is the Remote Auth Gateway contract.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	// Logout notifies the backend that token is no longer in use. The token is
	// passed explicitly because the local session is already gone by then.
	Logout(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error)
	// Me fetches the current profile for the held token.
	Me(ctx context.Context) (*models.User, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is a successful login exchange. Both fields are always set.
type LoginResponse struct {
	AccessToken string
	User        *models.User
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required,max=50"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,nefield=CurrentPassword"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=50"`
	Bio         string `json:"bio" validate:"max=500"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
