package service

import (
	"context"

	"print-shop-mis/models"
)

// AuthServiceInterface defines the contract for signin and account management
type AuthServiceInterface interface {
	Signin(ctx context.Context, email, password string) (*models.SigninResponse, *models.Session, error)
	Signout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	// UpdateProfile edits a user on behalf of actor. Self-edits need the current password.
	UpdateProfile(ctx context.Context, actor *models.User, id int64, req *models.UpdateProfileRequest) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id int64) error
}

var _ AuthServiceInterface = (*AuthService)(nil)
