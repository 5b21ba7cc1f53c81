package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/util"
)

// CreateComment adds a comment to a post, optionally replying to another
// comment on the same post
// POST /api/v1/posts/comments/create
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !bind(c, &req) {
		return
	}
	postID := strings.TrimSpace(req.PostID)
	if postID == "" {
		util.RespondValidationError(c, "postId", "postId is required")
		return
	}

	comment, err := h.social.CreateComment(c.Request.Context(), userID, postID, req.Content, req.ParentComment)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	comment.Author = currentUser(c)
	util.RespondSuccess(c, http.StatusCreated, gin.H{
		"commentId": comment.ID,
		"comment":   dto.NewCommentNode(comment),
	})
}

// DeleteComment removes one of the caller's comments together with its direct
// replies and reports how many comments were removed
// DELETE /api/v1/posts/comments/delete
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	commentID := strings.TrimSpace(c.Query("commentId"))
	if commentID == "" {
		var req dto.DeleteCommentRequest
		if !bind(c, &req) {
			return
		}
		commentID = strings.TrimSpace(req.CommentID)
	}
	if commentID == "" {
		util.RespondValidationError(c, "commentId", "commentId is required")
		return
	}

	removed, err := h.social.DeleteComment(c.Request.Context(), userID, commentID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"deleted": removed})
}

// GetComments returns a post's comments as a reply forest
// GET /api/v1/posts/comments?postId=
func (h *Handlers) GetComments(c *gin.Context) {
	postID := strings.TrimSpace(c.Query("postId"))
	if postID == "" {
		util.RespondValidationError(c, "postId", "postId is required")
		return
	}

	forest, err := h.social.ListComments(c.Request.Context(), postID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"comments": forest})
}
