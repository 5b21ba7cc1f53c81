package dto

import (
	"time"

	"github.com/verity/backend/internal/models"
)

// MediaResponse describes a post attachment
type MediaResponse struct {
	URL  string           `json:"url"`
	Type models.MediaType `json:"type"`
}

// PostResponse is a post as seen by clients
type PostResponse struct {
	ID            string            `json:"id"`
	Content       string            `json:"content"`
	Media         *MediaResponse    `json:"media,omitempty"`
	Visibility    models.Visibility `json:"visibility"`
	LikesCount    int               `json:"likesCount"`
	CommentsCount int               `json:"commentsCount"`
	Author        *AuthorSummary    `json:"author"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// PageMeta accompanies offset-paginated lists
type PageMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

type LikeRequest struct {
	PostID string `json:"postId" form:"postId"`
}

type DeletePostRequest struct {
	PostID string `json:"postId" form:"postId"`
}

type CreateCommentRequest struct {
	PostID        string  `json:"postId" form:"postId"`
	Content       string  `json:"content" form:"content"`
	ParentComment *string `json:"parentComment" form:"parentComment"`
}

type DeleteCommentRequest struct {
	CommentID string `json:"commentId" form:"commentId"`
}

// CommentNode is one comment in a reply forest
type CommentNode struct {
	ID            string         `json:"id"`
	PostID        string         `json:"postId"`
	Content       string         `json:"content"`
	ParentComment *string        `json:"parentComment"`
	Author        *AuthorSummary `json:"author"`
	CreatedAt     time.Time      `json:"createdAt"`
	Replies       []*CommentNode `json:"replies"`
}

func ToPostResponse(post *models.Post) *PostResponse {
	if post == nil {
		return nil
	}
	resp := &PostResponse{
		ID:            post.ID,
		Content:       post.Content,
		Visibility:    post.Visibility,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		Author:        ToAuthorSummary(post.Author),
		CreatedAt:     post.CreatedAt,
	}
	if post.MediaURL != "" {
		resp.Media = &MediaResponse{URL: post.MediaURL, Type: post.MediaType}
	}
	return resp
}

// ToPostResponses converts a slice, preserving order. Never returns nil.
func ToPostResponses(posts []*models.Post) []*PostResponse {
	out := make([]*PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, ToPostResponse(p))
	}
	return out
}

// NewCommentNode creates a node with an empty (non-nil) replies list
func NewCommentNode(c *models.Comment) *CommentNode {
	return &CommentNode{
		ID:            c.ID,
		PostID:        c.PostID,
		Content:       c.Content,
		ParentComment: c.ParentID,
		Author:        ToAuthorSummary(c.Author),
		CreatedAt:     c.CreatedAt,
		Replies:       []*CommentNode{},
	}
}
