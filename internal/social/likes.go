package social

import (
	"context"
	"errors"

	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/telemetry"
)

// ToggleLike likes the post when the user has not liked it yet and unlikes it
// otherwise. It returns the resulting state.
func (s *Service) ToggleLike(ctx context.Context, userID, postID string) (liked bool, err error) {
	ctx, span := telemetry.Events().TraceToggle(ctx, "like", userID, postID)
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := requirePost(ctx, tx, postID); err != nil {
			return err
		}

		exists, err := tx.Likes.HasLiked(ctx, userID, postID)
		if err != nil {
			return err
		}

		if exists {
			liked = false
			return removeLike(ctx, tx, userID, postID)
		}

		liked = true
		if err := tx.Likes.CreateLike(ctx, userID, postID); err != nil {
			if database.IsDuplicateKey(err) {
				metrics.RecordToggleConflict("like")
				return ErrConcurrentChange
			}
			return err
		}
		return tx.Posts.AdjustCounter(ctx, postID, repository.CounterLikes, 1)
	})
	if err != nil {
		return false, err
	}

	if liked {
		metrics.RecordToggle("like", "liked")
	} else {
		metrics.RecordToggle("like", "unliked")
	}
	return liked, nil
}

// Like is the idempotent form of liking a post
func (s *Service) Like(ctx context.Context, userID, postID string) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := requirePost(ctx, tx, postID); err != nil {
			return err
		}
		exists, err := tx.Likes.HasLiked(ctx, userID, postID)
		if err != nil || exists {
			return err
		}
		if err := tx.Likes.CreateLike(ctx, userID, postID); err != nil {
			return err
		}
		return tx.Posts.AdjustCounter(ctx, postID, repository.CounterLikes, 1)
	})
	if database.IsDuplicateKey(err) {
		metrics.RecordToggleConflict("like")
		return nil
	}
	return err
}

// Unlike is the idempotent form of removing a like
func (s *Service) Unlike(ctx context.Context, userID, postID string) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := requirePost(ctx, tx, postID); err != nil {
			return err
		}
		return removeLike(ctx, tx, userID, postID)
	})
}

// IsLiked reports whether userID currently likes postID
func (s *Service) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return s.store.Likes.HasLiked(ctx, userID, postID)
}

func removeLike(ctx context.Context, tx *repository.Store, userID, postID string) error {
	rows, err := tx.Likes.DeleteLike(ctx, userID, postID)
	if err != nil || rows == 0 {
		return err
	}
	return tx.Posts.AdjustCounter(ctx, postID, repository.CounterLikes, -rows)
}

// requirePost fails with ErrPostNotFound unless the post exists and is not deleted
func requirePost(ctx context.Context, tx *repository.Store, postID string) error {
	if postID == "" {
		return ErrPostNotFound
	}
	_, err := tx.Posts.GetPost(ctx, postID)
	if errors.Is(err, repository.ErrPostNotFound) {
		return ErrPostNotFound
	}
	return err
}
