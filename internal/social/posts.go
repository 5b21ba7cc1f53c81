package social

import (
	"context"
	"errors"
	"strings"

	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/storage"
	"github.com/verity/backend/internal/telemetry"
	"github.com/verity/backend/internal/util"
	"go.uber.org/zap"
)

// PublishInput is a new post. Media is already sniffed and size-checked by
// storage.DetectMedia.
type PublishInput struct {
	Content    string
	Visibility models.Visibility
	Media      *storage.MediaUpload
}

// PublishPost uploads any attachment, then inserts the post and bumps the
// author's post counter in one transaction. The upload is removed again if the
// transaction fails.
func (s *Service) PublishPost(ctx context.Context, userID string, in PublishInput) (_ *models.Post, err error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyPost
	}
	if util.CharLen(content) > models.MaxPostContentLength {
		return nil, ErrPostTooLong
	}

	visibility := models.Visibility(strings.ToLower(strings.TrimSpace(string(in.Visibility))))
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, ErrInvalidVisibility
	}

	post := &models.Post{
		UserID:     userID,
		Content:    content,
		Visibility: visibility,
	}

	ctx, span := telemetry.Events().TracePublish(ctx, userID, in.Media != nil)
	defer func() { telemetry.EndSpan(span, err) }()

	if in.Media != nil {
		if s.media == nil {
			return nil, ErrStorageUnavailable
		}
		in.Media.UserID = userID
		result, err := s.media.UploadMedia(ctx, in.Media)
		metrics.RecordMediaUpload(string(in.Media.Kind), err)
		if err != nil {
			logger.Log.Error("Media upload failed", logger.WithUserID(userID), zap.Error(err))
			return nil, ErrMediaUpload
		}
		post.MediaURL = result.URL
		post.MediaKey = result.Key
		post.MediaType = result.Kind
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Posts.CreatePost(ctx, post); err != nil {
			return err
		}
		return tx.Users.AdjustCounter(ctx, userID, repository.CounterPosts, 1)
	})
	if err != nil {
		if post.HasMedia() {
			s.deleteMedia(ctx, post)
		}
		return nil, err
	}

	logger.Log.Info("Post published",
		logger.WithUserID(userID),
		logger.WithPostID(post.ID),
		zap.String("visibility", string(post.Visibility)),
		zap.Bool("has_media", post.HasMedia()),
	)
	return post, nil
}

// GetPost returns the post if viewerID may see it
func (s *Service) GetPost(ctx context.Context, viewerID, postID string) (*models.Post, error) {
	if postID == "" {
		return nil, ErrPostNotFound
	}
	post, err := s.store.Posts.GetVisiblePost(ctx, viewerID, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// ListUserPosts returns a page of username's posts that viewerID may see
func (s *Service) ListUserPosts(ctx context.Context, viewerID, username string, page, limit int) ([]*models.Post, dto.PageMeta, error) {
	page, limit = util.NormalizePage(page, limit)
	meta := dto.PageMeta{Page: page, Limit: limit}

	author, err := s.visibleUser(ctx, username)
	if err != nil {
		return nil, meta, err
	}

	posts, err := s.store.Posts.ListByAuthor(ctx, viewerID, author.ID, limit+1, util.Offset(page, limit))
	if err != nil {
		return nil, meta, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
		meta.HasMore = true
	}
	return posts, meta, nil
}

// DeletePost soft-deletes the caller's post, then removes its media. A media
// cleanup failure is logged and does not fail the request.
func (s *Service) DeletePost(ctx context.Context, userID, postID string) error {
	if postID == "" {
		return ErrPostNotFound
	}
	post, err := s.store.Posts.GetPost(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotPostOwner
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		rows, err := tx.Posts.SoftDeletePost(ctx, post.ID)
		if err != nil || rows == 0 {
			return err
		}
		return tx.Users.AdjustCounter(ctx, post.UserID, repository.CounterPosts, -rows)
	})
	if err != nil {
		return err
	}

	if post.HasMedia() {
		s.deleteMedia(ctx, post)
	}
	logger.Log.Info("Post deleted", logger.WithUserID(userID), logger.WithPostID(post.ID))
	return nil
}

func (s *Service) deleteMedia(ctx context.Context, post *models.Post) {
	if s.media == nil {
		return
	}
	if err := s.media.DeleteMedia(ctx, post.MediaKey); err != nil {
		logger.Log.Warn("Failed to delete post media",
			logger.WithPostID(post.ID),
			zap.String("key", post.MediaKey),
			zap.Error(err),
		)
	}
}
