package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/verity/backend/internal/auth"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/email"
	"github.com/verity/backend/internal/feed"
	"github.com/verity/backend/internal/middleware"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/social"
	"github.com/verity/backend/internal/storage"
	"gorm.io/gorm"
)

// pngHeader is enough of a PNG for content sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type mailbox struct {
	mu     sync.Mutex
	verify map[string]string
	reset  map[string]string
}

func newMailbox() *mailbox {
	return &mailbox{verify: map[string]string{}, reset: map[string]string{}}
}

func (m *mailbox) SendVerificationCode(_ context.Context, msg email.CodeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify[msg.Username] = msg.Code
	return nil
}

func (m *mailbox) SendPasswordResetCode(_ context.Context, msg email.CodeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset[msg.Username] = msg.Code
	return nil
}

type fakeMedia struct{}

func (fakeMedia) UploadMedia(_ context.Context, upload *storage.MediaUpload) (*storage.UploadResult, error) {
	key := "posts/" + string(upload.Kind) + "/" + upload.UserID + upload.Extension
	return &storage.UploadResult{Key: key, URL: "https://cdn.test/" + key, Kind: upload.Kind}, nil
}

func (fakeMedia) DeleteMedia(context.Context, string) error { return nil }

// HandlersTestSuite runs the full route table against an in-memory database
type HandlersTestSuite struct {
	suite.Suite
	db       *gorm.DB
	mail     *mailbox
	handlers *Handlers
	router   *gin.Engine
	secure   *gin.Engine
}

func (suite *HandlersTestSuite) SetupTest() {
	db, err := database.OpenMemory()
	require.NoError(suite.T(), err)
	suite.db = db
	suite.mail = newMailbox()

	authService := auth.NewService(repository.NewUserRepository(db), suite.mail, []byte("test-secret"), time.Hour)
	suite.handlers = NewHandlers(
		authService,
		social.NewService(repository.NewStore(db), fakeMedia{}),
		feed.NewComposer(repository.NewPostRepository(db)),
	)

	gin.SetMode(gin.TestMode)

	// Auth middleware that sets user_id and user from header
	stubAuth := func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		var user models.User
		if err := suite.db.First(&user, "id = ?", userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "not_authenticated"})
			return
		}
		c.Set("user_id", user.ID)
		c.Set("user", &user)
		c.Next()
	}
	optionalStub := func(c *gin.Context) {
		if c.GetHeader("X-User-ID") != "" {
			stubAuth(c)
			return
		}
		c.Next()
	}

	suite.router = gin.New()
	suite.handlers.RegisterRoutes(suite.router.Group("/api/v1"), RouteMiddleware{
		RequireAuth:  stubAuth,
		OptionalAuth: optionalStub,
	})

	// Same routes behind the real bearer-token middleware
	suite.secure = gin.New()
	suite.handlers.RegisterRoutes(suite.secure.Group("/api/v1"), RouteMiddleware{
		RequireAuth:  middleware.RequireAuth(authService),
		OptionalAuth: middleware.OptionalAuth(authService),
	})
}

func (suite *HandlersTestSuite) TearDownTest() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *HandlersTestSuite) createUser(username string) *models.User {
	user := &models.User{
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		Gender:       models.GenderOther,
		IsVerified:   true,
	}
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *HandlersTestSuite) createPost(author *models.User, visibility models.Visibility, content string) *models.Post {
	post := &models.Post{UserID: author.ID, Content: content, Visibility: visibility}
	require.NoError(suite.T(), suite.db.Create(post).Error)
	return post
}

func (suite *HandlersTestSuite) do(method, path, userID string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	return suite.serve(suite.router, req)
}

func (suite *HandlersTestSuite) serve(router *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func (suite *HandlersTestSuite) multipartPost(userID string, fields map[string]string, filename string, file []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(suite.T(), writer.WriteField(k, v))
	}
	if file != nil {
		part, err := writer.CreateFormFile("media", filename)
		require.NoError(suite.T(), err)
		_, err = part.Write(file)
		require.NoError(suite.T(), err)
	}
	require.NoError(suite.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/create", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-ID", userID)
	return suite.serve(suite.router, req)
}

func (suite *HandlersTestSuite) reloadPost(id string) *models.Post {
	var post models.Post
	require.NoError(suite.T(), suite.db.First(&post, "id = ?", id).Error)
	return &post
}

func (suite *HandlersTestSuite) reloadUser(id string) *models.User {
	var user models.User
	require.NoError(suite.T(), suite.db.First(&user, "id = ?", id).Error)
	return &user
}

func (suite *HandlersTestSuite) TestSignupVerifySigninFlow() {
	t := suite.T()
	signup := map[string]string{
		"fullName":    "Dana Smith",
		"username":    "Dana_S",
		"email":       "dana@example.com",
		"password":    "hunter222",
		"dateOfBirth": "1994-02-11",
		"gender":      "female",
		"verifyUrl":   "https://app.test/verify",
	}

	w, resp := suite.do(http.MethodPost, "/api/v1/signup", "", signup)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, resp["success"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "dana_s", user["username"])
	assert.NotContains(t, w.Body.String(), "password")

	// Same details again resend the code for the pending account
	w, _ = suite.do(http.MethodPost, "/api/v1/signup", "", signup)
	assert.Equal(t, http.StatusOK, w.Code)

	signin := map[string]string{"identifier": "dana@example.com", "password": "hunter222"}
	w, resp = suite.do(http.MethodPost, "/api/v1/signin", "", signin)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, resp["success"])

	w, _ = suite.do(http.MethodPost, "/api/v1/verify", "", map[string]string{
		"username":   "dana_s",
		"verifyCode": "000000x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodPost, "/api/v1/verify", "", map[string]string{
		"username":   "dana_s",
		"verifyCode": suite.mail.verify["dana_s"],
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = suite.do(http.MethodPost, "/api/v1/verify", "", map[string]string{
		"username":   "dana_s",
		"verifyCode": suite.mail.verify["dana_s"],
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, resp = suite.do(http.MethodPost, "/api/v1/signin", "", signin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := resp["token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, "dana_s", resp["user"].(map[string]interface{})["username"])

	// The token authenticates against the real middleware
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, resp = suite.serve(suite.secure, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, resp["posts"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	w, _ = suite.serve(suite.secure, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestSignupValidation() {
	w, resp := suite.do(http.MethodPost, "/api/v1/signup", "", map[string]string{"username": "someone"})
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), false, resp["success"])
	assert.NotEmpty(suite.T(), resp["message"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/signup", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w, _ = suite.serve(suite.router, req)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestForgotPasswordDoesNotRevealAccounts() {
	suite.createUser("erin")

	w1, known := suite.do(http.MethodPost, "/api/v1/forgot-password", "", map[string]string{
		"identifier":       "erin",
		"resetPasswordUrl": "https://app.test/reset",
	})
	w2, unknown := suite.do(http.MethodPost, "/api/v1/forgot-password", "", map[string]string{
		"identifier":       "nobody",
		"resetPasswordUrl": "https://app.test/reset",
	})

	assert.Equal(suite.T(), http.StatusOK, w1.Code)
	assert.Equal(suite.T(), w1.Code, w2.Code)
	assert.Equal(suite.T(), known, unknown)
	assert.NotEmpty(suite.T(), suite.mail.reset["erin"])
}

func (suite *HandlersTestSuite) TestCheckUsernameAndProfile() {
	suite.createUser("frank")

	w, resp := suite.do(http.MethodGet, "/api/v1/check-username?username=frank", "", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), false, resp["available"])

	_, resp = suite.do(http.MethodGet, "/api/v1/check-username?username=franklin", "", nil)
	assert.Equal(suite.T(), true, resp["available"])

	w, _ = suite.do(http.MethodGet, "/api/v1/check-username?username=a!", "", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w, resp = suite.do(http.MethodGet, "/api/v1/profile?username=frank", "", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)
	profile := resp["user"].(map[string]interface{})
	assert.Equal(suite.T(), "frank", profile["username"])
	assert.NotContains(suite.T(), profile, "email")
	assert.NotContains(suite.T(), w.Body.String(), "passwordHash")

	w, _ = suite.do(http.MethodGet, "/api/v1/profile?username=ghost", "", nil)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	w, _ = suite.do(http.MethodGet, "/api/v1/profile?username=ab", "", nil)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestToggleFollow() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	w, resp := suite.do(http.MethodPost, "/api/v1/follow", alice.ID, map[string]string{"followingUserName": "bob"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "followed", resp["action"])
	assert.Equal(t, 1, suite.reloadUser(bob.ID).FollowersCount)
	assert.Equal(t, 1, suite.reloadUser(alice.ID).FollowingCount)

	_, resp = suite.do(http.MethodGet, "/api/v1/follow/status?username=bob", alice.ID, nil)
	assert.Equal(t, true, resp["following"])

	w, resp = suite.do(http.MethodPost, "/api/v1/follow", alice.ID, map[string]string{"followingUserName": "bob"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unfollowed", resp["action"])
	assert.Equal(t, 0, suite.reloadUser(bob.ID).FollowersCount)
	assert.Equal(t, 0, suite.reloadUser(alice.ID).FollowingCount)

	tests := []struct {
		name     string
		userID   string
		target   string
		expected int
	}{
		{"self follow", alice.ID, "alice", http.StatusBadRequest},
		{"unknown target", alice.ID, "ghost", http.StatusNotFound},
		{"missing target", alice.ID, "", http.StatusBadRequest},
		{"unauthenticated", "", "bob", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := suite.do(http.MethodPost, "/api/v1/follow", tt.userID, map[string]string{"followingUserName": tt.target})
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func (suite *HandlersTestSuite) TestIdempotentFollow() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	for i := 0; i < 2; i++ {
		w, resp := suite.do(http.MethodPut, "/api/v1/follow/bob", alice.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["following"])
	}
	assert.Equal(t, 1, suite.reloadUser(bob.ID).FollowersCount)

	for i := 0; i < 2; i++ {
		w, resp := suite.do(http.MethodDelete, "/api/v1/follow/bob", alice.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, resp["following"])
	}
	assert.Equal(t, 0, suite.reloadUser(bob.ID).FollowersCount)

	// Anonymous callers follow nobody
	w, resp := suite.do(http.MethodGet, "/api/v1/follow/status?username=bob", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["following"])
}

func (suite *HandlersTestSuite) TestFollowerLists() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	carol := suite.createUser("carol")
	suite.do(http.MethodPut, "/api/v1/follow/alice", bob.ID, nil)
	suite.do(http.MethodPut, "/api/v1/follow/alice", carol.ID, nil)

	w, resp := suite.do(http.MethodGet, "/api/v1/users/alice/followers?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["users"], 1)
	assert.Equal(t, true, resp["hasMore"])

	_, resp = suite.do(http.MethodGet, "/api/v1/users/bob/following", "", nil)
	following := resp["users"].([]interface{})
	require.Len(t, following, 1)
	assert.Equal(t, alice.Username, following[0].(map[string]interface{})["username"])

	w, _ = suite.do(http.MethodGet, "/api/v1/users/ghost/followers", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestCreatePost() {
	t := suite.T()
	alice := suite.createUser("alice")

	w, resp := suite.multipartPost(alice.ID, map[string]string{"content": "hello world"}, "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, resp["postId"])
	post := resp["post"].(map[string]interface{})
	assert.Equal(t, "public", post["visibility"])
	assert.Equal(t, "alice", post["author"].(map[string]interface{})["username"])
	assert.Equal(t, 1, suite.reloadUser(alice.ID).PostsCount)

	w, resp = suite.multipartPost(alice.ID, map[string]string{"content": "look", "visibility": "followers"}, "pic.png", pngHeader)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := resp["post"].(map[string]interface{})["media"].(map[string]interface{})
	assert.Equal(t, "image", media["type"])
	assert.True(t, strings.HasPrefix(media["url"].(string), "https://cdn.test/posts/image/"))

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		file     []byte
		field    string
	}{
		{"missing content", map[string]string{}, "", nil, "content"},
		{"bad visibility", map[string]string{"content": "x", "visibility": "friends"}, "", nil, "visibility"},
		{"unsupported media", map[string]string{"content": "x"}, "notes.txt", []byte("just some text"), "media"},
		{"empty media", map[string]string{"content": "x"}, "empty.png", []byte{}, "media"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := suite.multipartPost(alice.ID, tt.fields, tt.filename, tt.file)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.field, resp["field"])
		})
	}
	assert.Equal(t, 2, suite.reloadUser(alice.ID).PostsCount)
}

func (suite *HandlersTestSuite) TestGetPostVisibility() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	private := suite.createPost(alice, models.VisibilityPrivate, "secret")

	w, _ := suite.do(http.MethodGet, "/api/v1/posts/get-single?postId="+private.ID, bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = suite.do(http.MethodGet, "/api/v1/posts/get-single?postId="+private.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp := suite.do(http.MethodGet, "/api/v1/posts/get-single?postId="+private.ID, alice.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "secret", resp["post"].(map[string]interface{})["content"])

	w, _ = suite.do(http.MethodGet, "/api/v1/posts/get-single", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	suite.createPost(alice, models.VisibilityPublic, "open")
	_, resp = suite.do(http.MethodGet, "/api/v1/posts/all-posts?username=alice", bob.ID, nil)
	assert.Len(t, resp["posts"], 1)
	_, resp = suite.do(http.MethodGet, "/api/v1/posts/all-posts?username=alice", alice.ID, nil)
	assert.Len(t, resp["posts"], 2)
}

func (suite *HandlersTestSuite) TestDeletePost() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	w, resp := suite.multipartPost(alice.ID, map[string]string{"content": "bye"}, "", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	postID := resp["postId"].(string)

	w, _ = suite.do(http.MethodDelete, "/api/v1/posts/delete?postId="+postID, bob.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodDelete, "/api/v1/posts/delete", alice.ID, map[string]string{"postId": postID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, suite.reloadUser(alice.ID).PostsCount)

	w, _ = suite.do(http.MethodGet, "/api/v1/posts/get-single?postId="+postID, alice.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodDelete, "/api/v1/posts/delete", alice.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestLikes() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.createPost(alice, models.VisibilityPublic, "like me")

	w, resp := suite.do(http.MethodPost, "/api/v1/posts/like", bob.ID, map[string]string{"postId": post.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "liked", resp["action"])
	assert.Equal(t, 1, suite.reloadPost(post.ID).LikesCount)

	_, resp = suite.do(http.MethodGet, "/api/v1/posts/like/status?postId="+post.ID, bob.ID, nil)
	assert.Equal(t, true, resp["liked"])

	w, resp = suite.do(http.MethodPost, "/api/v1/posts/like", bob.ID, map[string]string{"postId": post.ID})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unliked", resp["action"])
	assert.Equal(t, 0, suite.reloadPost(post.ID).LikesCount)

	for i := 0; i < 2; i++ {
		w, _ = suite.do(http.MethodPut, "/api/v1/posts/like/"+post.ID, bob.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, suite.reloadPost(post.ID).LikesCount)
	for i := 0; i < 2; i++ {
		w, _ = suite.do(http.MethodDelete, "/api/v1/posts/like/"+post.ID, bob.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 0, suite.reloadPost(post.ID).LikesCount)

	w, _ = suite.do(http.MethodPost, "/api/v1/posts/like", bob.ID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = suite.do(http.MethodPost, "/api/v1/posts/like", bob.ID, map[string]string{"postId": "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = suite.do(http.MethodPost, "/api/v1/posts/like", "", map[string]string{"postId": post.ID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func (suite *HandlersTestSuite) TestComments() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.createPost(alice, models.VisibilityPublic, "discuss")
	other := suite.createPost(alice, models.VisibilityPublic, "elsewhere")

	w, resp := suite.do(http.MethodPost, "/api/v1/posts/comments/create", bob.ID, map[string]string{
		"postId":  post.ID,
		"content": "first!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rootID := resp["commentId"].(string)
	assert.Equal(t, "bob", resp["comment"].(map[string]interface{})["author"].(map[string]interface{})["username"])

	w, _ = suite.do(http.MethodPost, "/api/v1/posts/comments/create", alice.ID, map[string]interface{}{
		"postId":        post.ID,
		"content":       "welcome",
		"parentComment": rootID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// A parent on another post is rejected as not found
	w, _ = suite.do(http.MethodPost, "/api/v1/posts/comments/create", alice.ID, map[string]interface{}{
		"postId":        other.ID,
		"content":       "wrong thread",
		"parentComment": rootID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodPost, "/api/v1/posts/comments/create", alice.ID, map[string]string{"postId": post.ID, "content": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = suite.do(http.MethodGet, "/api/v1/posts/comments?postId="+post.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	forest := resp["comments"].([]interface{})
	require.Len(t, forest, 1)
	replies := forest[0].(map[string]interface{})["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, "welcome", replies[0].(map[string]interface{})["content"])
	assert.Equal(t, 2, suite.reloadPost(post.ID).CommentsCount)

	w, _ = suite.do(http.MethodDelete, "/api/v1/posts/comments/delete?commentId="+rootID, alice.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = suite.do(http.MethodDelete, "/api/v1/posts/comments/delete", bob.ID, map[string]string{"commentId": rootID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp["deleted"])
	assert.Equal(t, 0, suite.reloadPost(post.ID).CommentsCount)

	w, _ = suite.do(http.MethodDelete, "/api/v1/posts/comments/delete?commentId="+rootID, bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/posts/comments?postId=00000000-0000-0000-0000-000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestFeed() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	suite.do(http.MethodPut, "/api/v1/follow/alice", bob.ID, nil)

	suite.createPost(alice, models.VisibilityFollowers, "for followers")
	suite.createPost(alice, models.VisibilityPrivate, "just me")

	w, resp := suite.do(http.MethodGet, "/api/v1/feed?page=1&limit=50", bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := resp["posts"].([]interface{})
	require.Len(t, posts, 1)
	assert.Equal(t, "for followers", posts[0].(map[string]interface{})["content"])
	assert.Equal(t, float64(20), resp["limit"])
	assert.Equal(t, false, resp["hasMore"])

	w, _ = suite.do(http.MethodGet, "/api/v1/feed", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
