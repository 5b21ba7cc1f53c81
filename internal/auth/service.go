package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/email"
	apperrors "github.com/verity/backend/internal/errors"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const dateOfBirthLayout = "2006-01-02"

// Service implements signup, verification, sign-in and password reset
type Service struct {
	users     repository.UserRepository
	mailer    email.Sender
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// AuthResponse is returned by Signin
type AuthResponse struct {
	Token     string       `json:"token"`
	User      *models.User `json:"-"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// SignupResult reports whether a new account was created or an unverified one was refreshed
type SignupResult struct {
	User    *models.User
	Created bool
}

// NewService creates an auth service
func NewService(users repository.UserRepository, mailer email.Sender, jwtSecret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		users:     users,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Signup registers an unverified account and emails a verification code.
// Re-signing up over an unverified account refreshes it and resends the code.
func (s *Service) Signup(ctx context.Context, req dto.SignupRequest) (*SignupResult, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Username = util.NormalizeUsername(req.Username)
	req.Email = util.NormalizeEmail(req.Email)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	req.VerifyURL = strings.TrimSpace(req.VerifyURL)

	if req.FullName == "" || req.Username == "" || req.Email == "" || req.Password == "" ||
		req.DateOfBirth == "" || req.Gender == "" || req.VerifyURL == "" {
		return nil, ErrMissingFields
	}

	dob, err := s.validateSignup(req)
	if err != nil {
		return nil, err
	}

	matches, err := s.users.FindSignupMatches(ctx, req.Email, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing users: %w", err)
	}
	for _, m := range matches {
		if m.IsVerified {
			metrics.RecordAuthEvent("signup", "conflict")
			return nil, ErrAccountExists
		}
	}
	if len(matches) > 1 {
		// Email and username belong to two different pending accounts.
		metrics.RecordAuthEvent("signup", "conflict")
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(VerifyCodeTTL)

	user := &models.User{}
	created := len(matches) == 0
	if !created {
		user = &matches[0]
	}
	user.FullName = req.FullName
	user.Username = req.Username
	user.Email = req.Email
	user.PasswordHash = string(hash)
	user.DateOfBirth = dob
	user.Gender = req.Gender
	user.VerifyCode = code
	user.VerifyCodeExpiresAt = &expiresAt

	if created {
		err = s.users.CreateUser(ctx, user)
	} else {
		err = s.users.UpdateUser(ctx, user)
	}
	if database.IsDuplicateKey(err) {
		metrics.RecordAuthEvent("signup", "conflict")
		return nil, ErrAccountExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	err = s.mailer.SendVerificationCode(ctx, email.CodeMessage{
		To:        user.Email,
		Username:  user.Username,
		Code:      code,
		Link:      req.VerifyURL,
		ExpiresIn: VerifyCodeTTL,
	})
	metrics.RecordEmail("verification", err)
	if err != nil {
		logger.Log.Error("Failed to send verification email", logger.WithUserID(user.ID), zap.Error(err))
		return nil, ErrEmailDelivery
	}

	outcome := "resent"
	if created {
		outcome = "created"
	}
	metrics.RecordAuthEvent("signup", outcome)
	logger.Log.Info("Signup accepted", logger.WithUserID(user.ID), logger.WithUsername(user.Username), zap.Bool("created", created))

	return &SignupResult{User: user, Created: created}, nil
}

func (s *Service) validateSignup(req dto.SignupRequest) (time.Time, error) {
	if !util.IsValidUsername(req.Username) {
		return time.Time{}, ErrInvalidUsername
	}
	if !util.IsValidEmail(req.Email) {
		return time.Time{}, apperrors.ValidationError("email", "Please use a valid email address")
	}
	if util.CharLen(req.FullName) > models.MaxFullNameLength {
		return time.Time{}, apperrors.ValidationError("fullName", "Full name must be at most 50 characters")
	}
	if len(req.Password) < models.MinPasswordLength {
		return time.Time{}, ErrPasswordTooShort
	}
	switch req.Gender {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
	default:
		return time.Time{}, apperrors.ValidationError("gender", "Gender must be male, female or other")
	}

	dob, err := time.Parse(dateOfBirthLayout, strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return time.Time{}, apperrors.ValidationError("dateOfBirth", "Date of birth must be formatted as YYYY-MM-DD")
	}
	if !dob.Before(s.now()) {
		return time.Time{}, apperrors.ValidationError("dateOfBirth", "Date of birth must be in the past")
	}
	return dob, nil
}

// Verify marks the account verified when the code matches before expiry
func (s *Service) Verify(ctx context.Context, req dto.VerifyRequest) (*models.User, error) {
	username := util.NormalizeUsername(req.Username)
	code := strings.TrimSpace(req.VerifyCode)
	if username == "" || code == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if user.VerifyCode == "" || user.VerifyCodeExpiresAt == nil || s.now().After(*user.VerifyCodeExpiresAt) {
		metrics.RecordAuthEvent("verify", "expired")
		return nil, ErrCodeExpired
	}
	if !codesMatch(user.VerifyCode, code) {
		metrics.RecordAuthEvent("verify", "incorrect")
		return nil, ErrCodeIncorrect
	}

	user.IsVerified = true
	user.VerifyCode = ""
	user.VerifyCodeExpiresAt = nil
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}

	metrics.RecordAuthEvent("verify", "ok")
	return user, nil
}

// Signin checks credentials for an email or username and issues a token
func (s *Service) Signin(ctx context.Context, req dto.SigninRequest) (*AuthResponse, error) {
	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	if identifier == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.RecordAuthEvent("signin", "unknown_user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.IsBlocked {
		metrics.RecordAuthEvent("signin", "blocked")
		return nil, ErrAccountBlocked
	}
	if !user.IsVerified {
		metrics.RecordAuthEvent("signin", "unverified")
		return nil, ErrEmailNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordAuthEvent("signin", "bad_password")
		return nil, ErrInvalidCredentials
	}

	resp, err := s.generateAuthResponse(user)
	if err != nil {
		return nil, err
	}
	metrics.RecordAuthEvent("signin", "ok")
	return resp, nil
}

// ForgotPassword emails a reset code. Unknown and unverified identities get the
// same nil result so callers cannot tell them apart.
func (s *Service) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	resetURL := strings.TrimSpace(req.ResetPasswordURL)
	if identifier == "" || resetURL == "" {
		return ErrMissingFields
	}

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		metrics.RecordAuthEvent("forgot_password", "unknown_user")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsVerified {
		metrics.RecordAuthEvent("forgot_password", "unverified")
		return nil
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(ResetPasswordTTL)
	user.ResetPasswordCode = code
	user.ResetPasswordExpiresAt = &expiresAt
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	err = s.mailer.SendPasswordResetCode(ctx, email.CodeMessage{
		To:        user.Email,
		Username:  user.Username,
		Code:      code,
		Link:      resetURL,
		ExpiresIn: ResetPasswordTTL,
	})
	metrics.RecordEmail("password_reset", err)
	if err != nil {
		logger.Log.Error("Failed to send password reset email", logger.WithUserID(user.ID), zap.Error(err))
		return ErrEmailDelivery
	}

	metrics.RecordAuthEvent("forgot_password", "sent")
	return nil
}

// ResetPassword replaces the password when the reset code matches before expiry
func (s *Service) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	identifier := strings.ToLower(strings.TrimSpace(req.Identifier))
	code := strings.TrimSpace(req.ResetPasswordCode)
	if identifier == "" || code == "" || req.Password == "" || req.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(req.Password) < models.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrInvalidReset
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsVerified || user.ResetPasswordCode == "" || user.ResetPasswordExpiresAt == nil {
		return ErrInvalidReset
	}
	if s.now().After(*user.ResetPasswordExpiresAt) {
		metrics.RecordAuthEvent("reset_password", "expired")
		return ErrResetCodeExpired
	}
	if !codesMatch(user.ResetPasswordCode, code) {
		metrics.RecordAuthEvent("reset_password", "incorrect")
		return ErrResetCodeIncorrect
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) == nil {
		return ErrPasswordReused
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordCode = ""
	user.ResetPasswordExpiresAt = nil
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	metrics.RecordAuthEvent("reset_password", "ok")
	return nil
}

// CheckUsername reports whether the username is free. Handles held only by
// unverified accounts count as free since signup can take them over.
func (s *Service) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = util.NormalizeUsername(username)
	if !util.IsValidUsername(username) {
		return false, ErrInvalidUsername
	}
	taken, err := s.users.IsUsernameTaken(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return !taken, nil
}

// GetProfile loads a public profile; blocked users are reported as not found
func (s *Service) GetProfile(ctx context.Context, username string) (*models.User, error) {
	username = util.NormalizeUsername(username)
	if len(username) < 3 {
		return nil, ErrInvalidUsername
	}
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user.IsBlocked {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) generateAuthResponse(user *models.User) (*AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		User:      user,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses a JWT and loads the current user. Blocked and vanished
// users are rejected even while their token is unexpired.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user.IsBlocked || !user.IsVerified {
		return nil, ErrInvalidToken
	}
	return user, nil
}
