package repository

import (
	"context"
	"errors"

	"github.com/verity/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository handles all database operations for users
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByIdentifier resolves a sign-in identifier that may be an email or a username.
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// FindSignupMatches returns every user holding the email or the username.
	FindSignupMatches(ctx context.Context, email, username string) ([]models.User, error)

	// IsUsernameTaken reports whether a verified user owns the username.
	IsUsernameTaken(ctx context.Context, username string) (bool, error)

	SetBlocked(ctx context.Context, userID string, blocked bool) error
	AdjustCounter(ctx context.Context, userID, column string, delta int64) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Save(user).Error
}

// GetUser gets a user by ID
func (r *userRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return r.first(ctx, "id = ?", userID)
}

// GetUserByUsername expects an already-normalized (lowercase) username.
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.first(ctx, "email = ? OR username = ?", identifier, identifier)
}

func (r *userRepository) FindSignupMatches(ctx context.Context, email, username string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? AND is_verified = ?", username, true).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("is_blocked", blocked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) AdjustCounter(ctx context.Context, userID, column string, delta int64) error {
	return adjustCounter(ctx, r.db, &models.User{}, userID, column, delta)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
