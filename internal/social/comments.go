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
	"github.com/verity/backend/internal/telemetry"
	"github.com/verity/backend/internal/util"
	"go.uber.org/zap"
)

// CreateComment adds a comment, optionally as a reply to another comment on the
// same post, and bumps the post's comment counter by one.
func (s *Service) CreateComment(ctx context.Context, userID, postID, content string, parentID *string) (_ *models.Comment, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if util.CharLen(content) > models.MaxCommentContentLength {
		return nil, ErrCommentTooLong
	}
	if parentID != nil && strings.TrimSpace(*parentID) == "" {
		parentID = nil
	}

	comment := &models.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  content,
		ParentID: parentID,
	}

	ctx, span := telemetry.Events().TraceComment(ctx, "create", postID)
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := requirePost(ctx, tx, postID); err != nil {
			return err
		}

		if parentID != nil {
			// A parent on another post is indistinguishable from a missing one.
			_, err := tx.Comments.GetCommentOnPost(ctx, *parentID, postID)
			if errors.Is(err, repository.ErrCommentNotFound) {
				return ErrParentNotFound
			}
			if err != nil {
				return err
			}
		}

		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		return tx.Posts.AdjustCounter(ctx, postID, repository.CounterComments, 1)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordComments("created", 1)
	return comment, nil
}

// DeleteComment removes the comment and its direct replies. Replies deeper than
// one level stay stored and surface as roots in the tree. The post counter drops
// by the number of rows actually removed.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) (removed int64, err error) {
	comment, err := s.store.Comments.GetComment(ctx, commentID)
	if errors.Is(err, repository.ErrCommentNotFound) {
		return 0, ErrCommentNotFound
	}
	if err != nil {
		return 0, err
	}
	if comment.UserID != userID {
		return 0, ErrNotCommentAuthor
	}

	ctx, span := telemetry.Events().TraceComment(ctx, "delete", comment.PostID)
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		rows, err := tx.Comments.DeleteWithReplies(ctx, comment.ID)
		if err != nil {
			return err
		}
		removed = rows
		return tx.Posts.AdjustCounter(ctx, comment.PostID, repository.CounterComments, -rows)
	})
	if err != nil {
		return 0, err
	}

	metrics.RecordComments("deleted", removed)
	logger.Log.Debug("Comment deleted",
		logger.WithCommentID(comment.ID),
		logger.WithPostID(comment.PostID),
		zap.Int64("rows", removed),
	)
	return removed, nil
}

// ListComments returns the post's comments as a reply forest
func (s *Service) ListComments(ctx context.Context, postID string) ([]*dto.CommentNode, error) {
	if err := requirePost(ctx, s.store, postID); err != nil {
		return nil, err
	}
	comments, err := s.store.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}
