// Package handlers exposes the identity, social graph, feed and post services
// over HTTP. Handlers bind and validate input, call one service operation with
// the caller's identity, and translate the result.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/auth"
	"github.com/verity/backend/internal/feed"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/social"
	"github.com/verity/backend/internal/util"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth   auth.AuthServiceInterface
	social *social.Service
	feed   *feed.Composer
}

// NewHandlers creates a new handlers instance
func NewHandlers(authService auth.AuthServiceInterface, socialService *social.Service, composer *feed.Composer) *Handlers {
	return &Handlers{
		auth:   authService,
		social: socialService,
		feed:   composer,
	}
}

// RouteMiddleware is the per-group middleware RegisterRoutes attaches. Nil
// entries are skipped.
type RouteMiddleware struct {
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
	UploadLimit  gin.HandlerFunc
}

// RegisterRoutes mounts every API route on api (normally /api/v1)
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, mw RouteMiddleware) {
	identity := api.Group("", chain(mw.AuthLimit)...)
	{
		identity.POST("/signup", h.Signup)
		identity.POST("/verify", h.Verify)
		identity.POST("/signin", h.Signin)
		identity.POST("/forgot-password", h.ForgotPassword)
		identity.POST("/reset-password", h.ResetPassword)
		identity.GET("/check-username", h.CheckUsername)
	}
	api.GET("/profile", h.GetProfile)

	follow := api.Group("/follow")
	{
		follow.POST("", chain(mw.RequireAuth, h.ToggleFollow)...)
		follow.GET("/status", chain(mw.OptionalAuth, h.FollowStatus)...)
		follow.PUT("/:username", chain(mw.RequireAuth, h.Follow)...)
		follow.DELETE("/:username", chain(mw.RequireAuth, h.Unfollow)...)
	}

	users := api.Group("/users/:username")
	{
		users.GET("/followers", h.GetFollowers)
		users.GET("/following", h.GetFollowing)
	}

	api.GET("/feed", chain(mw.RequireAuth, h.GetFeed)...)

	posts := api.Group("/posts")
	{
		posts.POST("/create", chain(mw.RequireAuth, mw.UploadLimit, h.CreatePost)...)
		posts.GET("/get-single", chain(mw.OptionalAuth, h.GetPost)...)
		posts.GET("/all-posts", chain(mw.OptionalAuth, h.GetUserPosts)...)
		posts.DELETE("/delete", chain(mw.RequireAuth, h.DeletePost)...)

		posts.POST("/like", chain(mw.RequireAuth, h.ToggleLike)...)
		posts.GET("/like/status", chain(mw.RequireAuth, h.LikeStatus)...)
		posts.PUT("/like/:postId", chain(mw.RequireAuth, h.Like)...)
		posts.DELETE("/like/:postId", chain(mw.RequireAuth, h.Unlike)...)

		posts.GET("/comments", h.GetComments)
		posts.POST("/comments/create", chain(mw.RequireAuth, h.CreateComment)...)
		posts.DELETE("/comments/delete", chain(mw.RequireAuth, h.DeleteComment)...)
	}
}

// chain drops nil middleware
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// currentUser returns the account loaded by the auth middleware, if any
func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// bind decodes a JSON or form body into req, answering 400 on failure
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		util.RespondBadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// pageParams reads page and limit; util.NormalizePage clamps them later
func pageParams(c *gin.Context) (int, int) {
	return util.ParseInt(c.Query("page"), 1), util.ParseInt(c.Query("limit"), util.DefaultPageLimit)
}
