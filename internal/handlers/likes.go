package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/util"
)

// ToggleLike likes the post, or unlikes it when the caller already liked it
// POST /api/v1/posts/like
func (h *Handlers) ToggleLike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req dto.LikeRequest
	if !bind(c, &req) {
		return
	}
	postID := strings.TrimSpace(req.PostID)
	if postID == "" {
		util.RespondValidationError(c, "postId", "postId is required")
		return
	}

	liked, err := h.social.ToggleLike(c.Request.Context(), userID, postID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if liked {
		util.RespondSuccess(c, http.StatusCreated, gin.H{"action": "liked", "liked": true})
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"action": "unliked", "liked": false})
}

// Like
// PUT /api/v1/posts/like/:postId
func (h *Handlers) Like(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.Like(c.Request.Context(), userID, c.Param("postId")); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"liked": true})
}

// Unlike
// DELETE /api/v1/posts/like/:postId
func (h *Handlers) Unlike(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.Unlike(c.Request.Context(), userID, c.Param("postId")); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"liked": false})
}

// LikeStatus reports whether the caller likes ?postId
// GET /api/v1/posts/like/status?postId=
func (h *Handlers) LikeStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID := strings.TrimSpace(c.Query("postId"))
	if postID == "" {
		util.RespondValidationError(c, "postId", "postId is required")
		return
	}

	liked, err := h.social.IsLiked(c.Request.Context(), userID, postID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"liked": liked})
}
