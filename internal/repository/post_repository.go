package repository

import (
	"context"
	"errors"

	"github.com/verity/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository handles posts and their visibility-scoped reads.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	// GetPost returns a post that is not soft-deleted.
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	// GetVisiblePost returns the post only if viewerID may see it.
	GetVisiblePost(ctx context.Context, viewerID, postID string) (*models.Post, error)
	// Feed returns up to limit posts visible to viewerID, newest first.
	Feed(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, error)
	// ListByAuthor returns the author's posts that viewerID may see, newest first.
	ListByAuthor(ctx context.Context, viewerID, authorID string, limit, offset int) ([]*models.Post, error)
	// SoftDeletePost flags the post deleted and returns the rows changed.
	SoftDeletePost(ctx context.Context, postID string) (int64, error)
	AdjustCounter(ctx context.Context, postID, column string, delta int64) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// VisibleTo scopes a posts query to what viewerID may see: non-deleted posts that
// are public, followers-only from someone the viewer follows, or authored by the
// viewer. An empty viewerID sees public posts only.
func VisibleTo(viewerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("posts.is_deleted = ?", false)
		if viewerID == "" {
			return db.Where("posts.visibility = ?", models.VisibilityPublic)
		}

		fresh := db.Session(&gorm.Session{NewDB: true})
		following := fresh.Model(&models.Follow{}).
			Select("following_id").
			Where("follower_id = ?", viewerID)

		return db.Where(
			fresh.Where("posts.visibility = ?", models.VisibilityPublic).
				Or("posts.visibility = ? AND posts.user_id IN (?)", models.VisibilityFollowers, following).
				Or("posts.user_id = ?", viewerID),
		)
	}
}

// withAuthor preloads only the public author summary.
func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username", "full_name", "avatar_url")
	})
}

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil || post.UserID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", postID, false).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetVisiblePost(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Scopes(VisibleTo(viewerID), withAuthor).
		Where("posts.id = ?", postID).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Feed(ctx context.Context, viewerID string, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(VisibleTo(viewerID), withAuthor).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, viewerID, authorID string, limit, offset int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, limit)
	err := r.db.WithContext(ctx).
		Scopes(VisibleTo(viewerID), withAuthor).
		Where("posts.user_id = ?", authorID).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) SoftDeletePost(ctx context.Context, postID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", postID, false).
		UpdateColumn("is_deleted", true)
	return result.RowsAffected, result.Error
}

func (r *postRepository) AdjustCounter(ctx context.Context, postID, column string, delta int64) error {
	return adjustCounter(ctx, r.db, &models.Post{}, postID, column, delta)
}
