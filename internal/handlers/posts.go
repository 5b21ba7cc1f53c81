package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/dto"
	apperrors "github.com/verity/backend/internal/errors"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/social"
	"github.com/verity/backend/internal/storage"
	"github.com/verity/backend/internal/util"
)

// maxPostRequestBytes bounds the whole multipart body: the largest attachment
// plus room for the text fields.
const maxPostRequestBytes = storage.MaxVideoBytes + 1<<20

// CreatePost publishes a post with an optional image or video attachment
// POST /api/v1/posts/create (multipart: content, visibility, media)
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPostRequestBytes)

	media, err := readMedia(c, userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	post, err := h.social.PublishPost(c.Request.Context(), userID, social.PublishInput{
		Content:    c.PostForm("content"),
		Visibility: models.Visibility(c.PostForm("visibility")),
		Media:      media,
	})
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	post.Author = currentUser(c)
	util.RespondSuccess(c, http.StatusCreated, gin.H{
		"postId": post.ID,
		"post":   dto.ToPostResponse(post),
	})
}

// readMedia buffers the optional "media" part and sniffs it. A request with no
// media part yields nil.
func readMedia(c *gin.Context, userID string) (*storage.MediaUpload, error) {
	fileHeader, err := c.FormFile("media")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, mediaError(storage.ErrMediaTooLarge)
		}
		// Not multipart at all; text-only posts may still arrive form-encoded
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, mediaError(err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, mediaError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, mediaError(err)
	}

	upload, err := storage.DetectMedia(userID, fileHeader.Filename, data)
	if err != nil {
		return nil, mediaError(err)
	}
	return upload, nil
}

func mediaError(err error) error {
	return apperrors.ValidationError("media", err.Error())
}

// GetPost returns a single post the caller may see
// GET /api/v1/posts/get-single?postId=
func (h *Handlers) GetPost(c *gin.Context) {
	postID := strings.TrimSpace(c.Query("postId"))
	if postID == "" {
		util.RespondValidationError(c, "postId", "postId is required")
		return
	}

	post, err := h.social.GetPost(c.Request.Context(), util.OptionalUserID(c), postID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"post": dto.ToPostResponse(post)})
}

// GetUserPosts lists a user's posts that the caller may see
// GET /api/v1/posts/all-posts?username=&page=&limit=
func (h *Handlers) GetUserPosts(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		util.RespondValidationError(c, "username", "username is required")
		return
	}

	page, limit := pageParams(c)
	posts, meta, err := h.social.ListUserPosts(c.Request.Context(), util.OptionalUserID(c), username, page, limit)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	respondPosts(c, posts, meta)
}

// DeletePost soft-deletes one of the caller's posts
// DELETE /api/v1/posts/delete?postId= (or postId in the body)
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	if err := h.social.DeletePost(c.Request.Context(), userID, postID); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"message": "Post deleted"})
}

// postIDParam reads postId from the query string, falling back to the body
func postIDParam(c *gin.Context) (string, bool) {
	if postID := strings.TrimSpace(c.Query("postId")); postID != "" {
		return postID, true
	}

	var req dto.DeletePostRequest
	if !bind(c, &req) {
		return "", false
	}
	if strings.TrimSpace(req.PostID) == "" {
		util.RespondValidationError(c, "postId", "postId is required")
		return "", false
	}
	return strings.TrimSpace(req.PostID), true
}
