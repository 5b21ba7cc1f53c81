package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Counter columns that may be adjusted. Column names are never taken from input.
const (
	CounterFollowers = "followers_count"
	CounterFollowing = "following_count"
	CounterPosts     = "posts_count"
	CounterLikes     = "likes_count"
	CounterComments  = "comments_count"
)

// counterDelta builds "column + delta" floored at zero. CASE is used instead of
// GREATEST so the expression also runs on SQLite.
func counterDelta(column string, delta int64) interface{} {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta)
}

func adjustCounter(ctx context.Context, db *gorm.DB, model interface{}, id, column string, delta int64) error {
	if delta == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		UpdateColumn(column, counterDelta(column, delta)).Error
}

// ReconcileResult reports how many rows each recount touched.
type ReconcileResult struct {
	Users int64 `json:"users"`
	Posts int64 `json:"posts"`
}

// RecomputeCounters rewrites every denormalized counter from its source relation.
func RecomputeCounters(ctx context.Context, db *gorm.DB) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := tx.Exec(`UPDATE users SET
			followers_count = (SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id),
			following_count = (SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id),
			posts_count = (SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id AND posts.is_deleted = ?)`, false)
		if users.Error != nil {
			return fmt.Errorf("recount users: %w", users.Error)
		}
		result.Users = users.RowsAffected

		posts := tx.Exec(`UPDATE posts SET
			likes_count = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id),
			comments_count = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)`)
		if posts.Error != nil {
			return fmt.Errorf("recount posts: %w", posts.Error)
		}
		result.Posts = posts.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
