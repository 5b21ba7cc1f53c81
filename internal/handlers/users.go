package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/util"
)

// ToggleFollow follows the target when the caller does not follow them yet and
// unfollows otherwise
// POST /api/v1/follow
func (h *Handlers) ToggleFollow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req dto.FollowRequest
	if !bind(c, &req) {
		return
	}
	if strings.TrimSpace(req.FollowingUserName) == "" {
		util.RespondValidationError(c, "followingUserName", "followingUserName is required")
		return
	}

	following, err := h.social.ToggleFollow(c.Request.Context(), userID, req.FollowingUserName)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	if following {
		util.RespondSuccess(c, http.StatusCreated, gin.H{"action": "followed", "following": true})
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"action": "unfollowed", "following": false})
}

// Follow makes the caller follow :username. Repeating it changes nothing.
// PUT /api/v1/follow/:username
func (h *Handlers) Follow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.Follow(c.Request.Context(), userID, c.Param("username")); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"following": true})
}

// Unfollow removes the caller's follow of :username, if there is one
// DELETE /api/v1/follow/:username
func (h *Handlers) Unfollow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.social.Unfollow(c.Request.Context(), userID, c.Param("username")); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"following": false})
}

// FollowStatus reports whether the caller follows ?username. Anonymous callers
// follow nobody.
// GET /api/v1/follow/status?username=
func (h *Handlers) FollowStatus(c *gin.Context) {
	following, err := h.social.IsFollowing(c.Request.Context(), util.OptionalUserID(c), c.Query("username"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"following": following})
}

// GetFollowers lists the accounts following :username
// GET /api/v1/users/:username/followers
func (h *Handlers) GetFollowers(c *gin.Context) {
	page, limit := pageParams(c)
	users, meta, err := h.social.ListFollowers(c.Request.Context(), c.Param("username"), page, limit)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondUsers(c, users, meta)
}

// GetFollowing lists the accounts :username follows
// GET /api/v1/users/:username/following
func (h *Handlers) GetFollowing(c *gin.Context) {
	page, limit := pageParams(c)
	users, meta, err := h.social.ListFollowing(c.Request.Context(), c.Param("username"), page, limit)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondUsers(c, users, meta)
}
