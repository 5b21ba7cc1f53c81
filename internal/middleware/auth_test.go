package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	apperrors "github.com/verity/backend/internal/errors"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/util"
)

type stubValidator map[string]*models.User

func (s stubValidator) ValidateToken(_ context.Context, token string) (*models.User, error) {
	if user, ok := s[token]; ok {
		return user, nil
	}
	return nil, apperrors.Unauthorized("invalid or expired token")
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": util.OptionalUserID(c)})
	})
	return router
}

func requestWithAuth(router http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	validator := stubValidator{"good": {ID: "user-1", Username: "alice"}}
	router := newAuthRouter(RequireAuth(validator))

	tests := []struct {
		name          string
		authorization string
		expectedCode  int
		expectedBody  string
	}{
		{"valid token", "Bearer good", http.StatusOK, `"user_id":"user-1"`},
		{"scheme is case insensitive", "bearer good", http.StatusOK, `"user_id":"user-1"`},
		{"missing header", "", http.StatusUnauthorized, "authorization token required"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "authorization token required"},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, "invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := requestWithAuth(router, tt.authorization)
			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	validator := stubValidator{"good": {ID: "user-1"}}
	router := newAuthRouter(OptionalAuth(validator))

	w := requestWithAuth(router, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)

	// A bad token degrades to an anonymous request
	w = requestWithAuth(router, "Bearer bad")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)
}

type countingValidator struct {
	stubValidator
	calls int
}

func (v *countingValidator) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	v.calls++
	return v.stubValidator.ValidateToken(ctx, token)
}

func TestRequireAuthReusesOptionalAuthUser(t *testing.T) {
	validator := &countingValidator{stubValidator: stubValidator{"good": {ID: "user-1"}}}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OptionalAuth(validator))
	router.GET("/me", RequireAuth(validator), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": util.OptionalUserID(c)})
	})

	w := requestWithAuth(router, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
	assert.Equal(t, 1, validator.calls)

	// OptionalAuth let the bad token through anonymously; RequireAuth still rejects it
	validator.calls = 0
	w = requestWithAuth(router, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 2, validator.calls)

	validator.calls = 0
	w = requestWithAuth(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, validator.calls)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, RequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}
