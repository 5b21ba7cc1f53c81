package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/util"
)

// Signup registers an unverified account and emails a verification code.
// Signing up again over a pending account refreshes it and resends the code.
// POST /api/v1/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.auth.Signup(c.Request.Context(), req)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	status := http.StatusOK
	message := "Verification code resent. Please verify your account"
	if result.Created {
		status = http.StatusCreated
		message = "Account created. Please verify your account"
	}
	util.RespondSuccess(c, status, gin.H{
		"message": message,
		"user":    dto.ToUserResponse(result.User),
	})
}

// Verify confirms an account with the emailed code
// POST /api/v1/verify
func (h *Handlers) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if !bind(c, &req) {
		return
	}

	if _, err := h.auth.Verify(c.Request.Context(), req); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"message": "Account verified successfully"})
}

// Signin exchanges an email or username and password for a session token
// POST /api/v1/signin
func (h *Handlers) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if !bind(c, &req) {
		return
	}

	resp, err := h.auth.Signin(c.Request.Context(), req)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{
		"token":     resp.Token,
		"expiresAt": resp.ExpiresAt,
		"user":      dto.ToSessionUser(resp.User),
	})
}

// ForgotPassword emails a reset code. The response never reveals whether the
// account exists.
// POST /api/v1/forgot-password
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bind(c, &req) {
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{
		"message": "If an account exists, a reset code has been sent",
	})
}

// ResetPassword sets a new password using the emailed reset code
// POST /api/v1/reset-password
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bind(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req); err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// CheckUsername reports whether a username is free
// GET /api/v1/check-username?username=
func (h *Handlers) CheckUsername(c *gin.Context) {
	available, err := h.auth.CheckUsername(c.Request.Context(), c.Query("username"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"available": available})
}

// GetProfile returns a user's public profile
// GET /api/v1/profile?username=
func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.auth.GetProfile(c.Request.Context(), c.Query("username"))
	if err != nil {
		util.RespondWithError(c, err)
		return
	}
	util.RespondSuccess(c, http.StatusOK, gin.H{"user": dto.ToUserResponse(user)})
}
