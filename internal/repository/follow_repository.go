package repository

import (
	"context"

	"github.com/verity/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository persists directed follow edges. Edge existence is the source
// of truth for "is following"; user counters only cache the aggregates.
type FollowRepository interface {
	CreateFollow(ctx context.Context, followerID, followingID string) error
	// DeleteFollow returns the number of edges removed (0 or 1).
	DeleteFollow(ctx context.Context, followerID, followingID string) (int64, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)

	GetFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.User, error)
	GetFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.User, error)
	GetFollowerCount(ctx context.Context, userID string) (int64, error)
	GetFollowingCount(ctx context.Context, userID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) CreateFollow(ctx context.Context, followerID, followingID string) error {
	if followerID == "" || followingID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(&models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}).Error
}

func (r *followRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	return result.RowsAffected, result.Error
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// GetFollowers lists users following userID, newest edge first
func (r *followRepository) GetFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ? AND users.is_blocked = ?", userID, false).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

// GetFollowing lists users that userID follows, newest edge first
func (r *followRepository) GetFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ? AND users.is_blocked = ?", userID, false).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *followRepository) GetFollowerCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) GetFollowingCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}
