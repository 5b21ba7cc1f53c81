package repository

import (
	"context"

	"github.com/verity/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository persists (user, post) likes.
type LikeRepository interface {
	CreateLike(ctx context.Context, userID, postID string) error
	// DeleteLike returns the number of likes removed (0 or 1).
	DeleteLike(ctx context.Context, userID, postID string) (int64, error)
	HasLiked(ctx context.Context, userID, postID string) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) CreateLike(ctx context.Context, userID, postID string) error {
	if userID == "" || postID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(&models.Like{UserID: userID, PostID: postID}).Error
}

func (r *likeRepository) DeleteLike(ctx context.Context, userID, postID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	return result.RowsAffected, result.Error
}

func (r *likeRepository) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
