// Package social implements the write side of the social graph and content:
// follows, posts, likes and threaded comments. Every mutation that touches a
// relation also adjusts its denormalized counters inside the same transaction.
package social

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/verity/backend/internal/database"
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

// Service coordinates graph and engagement mutations
type Service struct {
	store *repository.Store
	media storage.MediaStore
}

// NewService creates a social service. media may be nil when no storage is configured;
// publishing with an attachment then fails with ErrStorageUnavailable.
func NewService(store *repository.Store, media storage.MediaStore) *Service {
	return &Service{
		store: store,
		media: media,
	}
}

// ToggleFollow follows the target when no edge exists and unfollows otherwise.
// It returns the resulting state.
func (s *Service) ToggleFollow(ctx context.Context, followerID, targetUsername string) (following bool, err error) {
	target, err := s.followTarget(ctx, followerID, targetUsername)
	if err != nil {
		return false, err
	}

	ctx, span := telemetry.Events().TraceToggle(ctx, "follow", followerID, target.ID)
	defer func() { telemetry.EndSpan(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Follows.IsFollowing(ctx, followerID, target.ID)
		if err != nil {
			return err
		}

		if exists {
			following = false
			return removeFollow(ctx, tx, followerID, target.ID)
		}

		following = true
		if err := tx.Follows.CreateFollow(ctx, followerID, target.ID); err != nil {
			if database.IsDuplicateKey(err) {
				metrics.RecordToggleConflict("follow")
				return ErrConcurrentChange
			}
			return err
		}
		return adjustFollowCounters(ctx, tx, followerID, target.ID, 1)
	})
	if err != nil {
		return false, err
	}

	metrics.RecordToggle("follow", followAction(following))
	logger.Log.Debug("Follow toggled",
		logger.WithUserID(followerID),
		zap.String("target_id", target.ID),
		zap.Bool("following", following),
	)
	return following, nil
}

// Follow creates the edge if it does not exist yet. Repeating it is a no-op.
func (s *Service) Follow(ctx context.Context, followerID, targetUsername string) error {
	target, err := s.followTarget(ctx, followerID, targetUsername)
	if err != nil {
		return err
	}

	created := false
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		exists, err := tx.Follows.IsFollowing(ctx, followerID, target.ID)
		if err != nil || exists {
			return err
		}
		if err := tx.Follows.CreateFollow(ctx, followerID, target.ID); err != nil {
			return err
		}
		created = true
		return adjustFollowCounters(ctx, tx, followerID, target.ID, 1)
	})
	if database.IsDuplicateKey(err) {
		// A concurrent request created the same edge; the end state is what was asked for.
		metrics.RecordToggleConflict("follow")
		return nil
	}
	if err != nil {
		return err
	}
	if created {
		metrics.RecordToggle("follow", "followed")
	}
	return nil
}

// Unfollow removes the edge if present. Repeating it is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, targetUsername string) error {
	target, err := s.followTarget(ctx, followerID, targetUsername)
	if err != nil {
		return err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return removeFollow(ctx, tx, followerID, target.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordToggle("follow", "unfollowed")
	return nil
}

// IsFollowing reports whether followerID follows the named user. Anonymous
// viewers and unknown targets are simply not following.
func (s *Service) IsFollowing(ctx context.Context, followerID, targetUsername string) (bool, error) {
	if followerID == "" {
		return false, nil
	}
	target, err := s.store.Users.GetUserByUsername(ctx, util.NormalizeUsername(targetUsername))
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.store.Follows.IsFollowing(ctx, followerID, target.ID)
}

// ListFollowers returns the non-blocked users following username
func (s *Service) ListFollowers(ctx context.Context, username string, page, limit int) ([]*models.User, dto.PageMeta, error) {
	return s.listConnections(ctx, username, page, limit, s.store.Follows.GetFollowers)
}

// ListFollowing returns the non-blocked users username follows
func (s *Service) ListFollowing(ctx context.Context, username string, page, limit int) ([]*models.User, dto.PageMeta, error) {
	return s.listConnections(ctx, username, page, limit, s.store.Follows.GetFollowing)
}

type connectionLister func(ctx context.Context, userID string, limit, offset int) ([]*models.User, error)

func (s *Service) listConnections(ctx context.Context, username string, page, limit int, list connectionLister) ([]*models.User, dto.PageMeta, error) {
	page, limit = util.NormalizePage(page, limit)
	meta := dto.PageMeta{Page: page, Limit: limit}

	user, err := s.visibleUser(ctx, username)
	if err != nil {
		return nil, meta, err
	}
	users, err := list(ctx, user.ID, limit+1, util.Offset(page, limit))
	if err != nil {
		return nil, meta, err
	}
	if len(users) > limit {
		users = users[:limit]
		meta.HasMore = true
	}
	return users, meta, nil
}

// ReconcileCounters recomputes every counter from its relation
func (s *Service) ReconcileCounters(ctx context.Context) (*repository.ReconcileResult, error) {
	result, err := repository.RecomputeCounters(ctx, s.store.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile counters: %w", err)
	}
	metrics.RecordReconcile("users", result.Users)
	metrics.RecordReconcile("posts", result.Posts)
	logger.Log.Info("Counters reconciled",
		zap.Int64("users", result.Users),
		zap.Int64("posts", result.Posts),
	)
	return result, nil
}

func (s *Service) followTarget(ctx context.Context, followerID, targetUsername string) (*models.User, error) {
	target, err := s.visibleUser(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	if target.ID == followerID {
		return nil, ErrSelfFollow
	}
	return target, nil
}

// visibleUser resolves a username to a user that is not blocked
func (s *Service) visibleUser(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.store.Users.GetUserByUsername(ctx, util.NormalizeUsername(username))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.IsBlocked {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// removeFollow deletes the edge and only adjusts counters when a row was removed
func removeFollow(ctx context.Context, tx *repository.Store, followerID, followingID string) error {
	rows, err := tx.Follows.DeleteFollow(ctx, followerID, followingID)
	if err != nil || rows == 0 {
		return err
	}
	return adjustFollowCounters(ctx, tx, followerID, followingID, -rows)
}

func adjustFollowCounters(ctx context.Context, tx *repository.Store, followerID, followingID string, delta int64) error {
	if err := tx.Users.AdjustCounter(ctx, followingID, repository.CounterFollowers, delta); err != nil {
		return err
	}
	return tx.Users.AdjustCounter(ctx, followerID, repository.CounterFollowing, delta)
}

func followAction(following bool) string {
	if following {
		return "followed"
	}
	return "unfollowed"
}
