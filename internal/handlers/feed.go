package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/util"
)

// GetFeed returns the caller's home feed, newest first
// GET /api/v1/feed?page=&limit=
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	result, err := h.feed.Feed(c.Request.Context(), userID, page, limit)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondPosts(c, result.Posts, result.Meta)
}

func respondPosts(c *gin.Context, posts []*models.Post, meta dto.PageMeta) {
	util.RespondSuccess(c, http.StatusOK, gin.H{
		"posts":   dto.ToPostResponses(posts),
		"page":    meta.Page,
		"limit":   meta.Limit,
		"hasMore": meta.HasMore,
	})
}

func respondUsers(c *gin.Context, users []*models.User, meta dto.PageMeta) {
	util.RespondSuccess(c, http.StatusOK, gin.H{
		"users":   dto.ToUserResponses(users),
		"page":    meta.Page,
		"limit":   meta.Limit,
		"hasMore": meta.HasMore,
	})
}
