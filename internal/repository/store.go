package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Store groups the repositories over one database handle. Inside Transaction
// every repository shares the transaction.
type Store struct {
	db *gorm.DB

	Users    UserRepository
	Follows  FollowRepository
	Posts    PostRepository
	Likes    LikeRepository
	Comments CommentRepository
}

// NewStore creates a store backed by db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Follows:  NewFollowRepository(db),
		Posts:    NewPostRepository(db),
		Likes:    NewLikeRepository(db),
		Comments: NewCommentRepository(db),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a store bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
