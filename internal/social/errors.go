package social

import (
	apperrors "github.com/verity/backend/internal/errors"
)

var (
	ErrUserNotFound       = apperrors.NotFound("User")
	ErrPostNotFound       = apperrors.NotFound("Post")
	ErrCommentNotFound    = apperrors.NotFound("Comment")
	ErrParentNotFound     = apperrors.NotFound("Parent comment")
	ErrSelfFollow         = apperrors.BadRequest("You cannot follow yourself")
	ErrConcurrentChange   = apperrors.Conflict("Request conflicted with a concurrent change, please retry")
	ErrNotCommentAuthor   = apperrors.Forbidden("You can only delete your own comments")
	ErrNotPostOwner       = apperrors.Forbidden("You can only delete your own posts")
	ErrEmptyComment       = apperrors.ValidationError("content", "Comment cannot be empty")
	ErrCommentTooLong     = apperrors.ValidationError("content", "Comment must be at most 500 characters")
	ErrEmptyPost          = apperrors.ValidationError("content", "Post content is required")
	ErrPostTooLong        = apperrors.ValidationError("content", "Post must be at most 1000 characters")
	ErrInvalidVisibility  = apperrors.ValidationError("visibility", "Visibility must be public, followers or private")
	ErrStorageUnavailable = apperrors.ServiceUnavailable("Media storage")
	ErrMediaUpload        = apperrors.Upstream("Failed to upload media, please try again")
)
