package auth

import (
	"context"

	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/models"
)

// AuthServiceInterface defines the contract for identity operations.
type AuthServiceInterface interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*SignupResult, error)
	Verify(ctx context.Context, req dto.VerifyRequest) (*models.User, error)
	Signin(ctx context.Context, req dto.SigninRequest) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error

	CheckUsername(ctx context.Context, username string) (bool, error)
	GetProfile(ctx context.Context, username string) (*models.User, error)

	ValidateToken(ctx context.Context, tokenString string) (*models.User, error)
}

// Ensure Service implements AuthServiceInterface
var _ AuthServiceInterface = (*Service)(nil)
