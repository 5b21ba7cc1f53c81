package auth

import (
	apperrors "github.com/verity/backend/internal/errors"
)

// Sentinel errors returned by Service. They already carry their HTTP category,
// so handlers pass them straight to util.RespondWithError.
var (
	ErrMissingFields      = apperrors.BadRequest("All fields are required")
	ErrAccountExists      = apperrors.Conflict("An account with this email or username already exists")
	ErrUserNotFound       = apperrors.NotFound("User")
	ErrAlreadyVerified    = apperrors.Conflict("Account is already verified")
	ErrCodeExpired        = apperrors.BadRequest("Verification code expired")
	ErrCodeIncorrect      = apperrors.BadRequest("Incorrect verification code")
	ErrInvalidCredentials = apperrors.Unauthorized("Invalid credentials")
	ErrEmailNotVerified   = apperrors.Forbidden("Please verify your account before signing in")
	ErrAccountBlocked     = apperrors.Forbidden("This account has been blocked")
	ErrPasswordMismatch   = apperrors.BadRequest("Passwords do not match")
	ErrPasswordTooShort   = apperrors.ValidationError("password", "Password must be at least 8 characters")
	ErrInvalidReset       = apperrors.BadRequest("Invalid or expired reset request")
	ErrResetCodeExpired   = apperrors.Unauthorized("Reset code expired")
	ErrResetCodeIncorrect = apperrors.Unauthorized("Incorrect reset code")
	ErrPasswordReused     = apperrors.BadRequest("New password must be different from the old password")
	ErrEmailDelivery      = apperrors.Upstream("Failed to send email, please try again")
	ErrInvalidToken       = apperrors.Unauthorized("Invalid or expired token")
	ErrInvalidUsername    = apperrors.ValidationError("username", "Username must be 3-20 characters of lowercase letters, numbers, '.' or '_'")
)
