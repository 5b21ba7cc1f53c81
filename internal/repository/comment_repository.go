package repository

import (
	"context"
	"errors"

	"github.com/verity/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository persists comments as a flat parent-pointer list.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, commentID string) (*models.Comment, error)
	// GetCommentOnPost returns the comment only if it belongs to postID.
	GetCommentOnPost(ctx context.Context, commentID, postID string) (*models.Comment, error)
	// ListByPost returns the post's comments ordered by creation time ascending.
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	// DeleteWithReplies removes the comment and its direct replies only; replies
	// of replies are left in place. Returns the number of rows removed.
	DeleteWithReplies(ctx context.Context, commentID string) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil || comment.PostID == "" || comment.UserID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetComment(ctx context.Context, commentID string) (*models.Comment, error) {
	return r.first(ctx, "id = ?", commentID)
}

func (r *commentRepository) GetCommentOnPost(ctx context.Context, commentID, postID string) (*models.Comment, error) {
	return r.first(ctx, "id = ? AND post_id = ?", commentID, postID)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "full_name", "avatar_url")
		}).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) DeleteWithReplies(ctx context.Context, commentID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? OR parent_id = ?", commentID, commentID).
		Delete(&models.Comment{})
	return result.RowsAffected, result.Error
}

func (r *commentRepository) first(ctx context.Context, query string, args ...interface{}) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Where(query, args...).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
