package dto

import (
	"time"

	"github.com/verity/backend/internal/models"
)

// AuthorSummary is the minimal public identity attached to posts and comments
type AuthorSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// UserResponse is the public user representation (safe for API responses).
// Password hash, codes and the blocked flag never appear here.
type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"fullName"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatarUrl"`
	Gender         string    `json:"gender"`
	IsVerified     bool      `json:"isVerified"`
	FollowersCount int       `json:"followersCount"`
	FollowingCount int       `json:"followingCount"`
	PostsCount     int       `json:"postsCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SessionUser is returned on sign-in
type SessionUser struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SignupRequest accepts JSON or form-encoded bodies
type SignupRequest struct {
	FullName    string `json:"fullName" form:"fullName"`
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	DateOfBirth string `json:"dateOfBirth" form:"dateOfBirth"`
	Gender      string `json:"gender" form:"gender"`
	VerifyURL   string `json:"verifyUrl" form:"verifyUrl"`
}

type VerifyRequest struct {
	Username   string `json:"username" form:"username"`
	VerifyCode string `json:"verifyCode" form:"verifyCode"`
}

type SigninRequest struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

type ForgotPasswordRequest struct {
	Identifier       string `json:"identifier" form:"identifier"`
	ResetPasswordURL string `json:"resetPasswordUrl" form:"resetPasswordUrl"`
}

type ResetPasswordRequest struct {
	Identifier        string `json:"identifier" form:"identifier"`
	ResetPasswordCode string `json:"resetPasswordCode" form:"resetPasswordCode"`
	Password          string `json:"password" form:"password"`
	ConfirmPassword   string `json:"confirmPassword" form:"confirmPassword"`
}

type FollowRequest struct {
	FollowingUserName string `json:"followingUserName" form:"followingUserName"`
}

// ToUserResponse converts models.User to UserResponse (excludes sensitive fields)
func ToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		FullName:       user.FullName,
		Bio:            user.Bio,
		AvatarURL:      user.AvatarURL,
		Gender:         user.Gender,
		IsVerified:     user.IsVerified,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
		PostsCount:     user.PostsCount,
		CreatedAt:      user.CreatedAt,
	}
}

// ToUserResponses converts a slice, preserving order
func ToUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

func ToSessionUser(user *models.User) *SessionUser {
	if user == nil {
		return nil
	}
	return &SessionUser{
		ID:       user.ID,
		FullName: user.FullName,
		Username: user.Username,
		Email:    user.Email,
	}
}

func ToAuthorSummary(user *models.User) *AuthorSummary {
	if user == nil {
		return nil
	}
	return &AuthorSummary{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		AvatarURL: user.AvatarURL,
	}
}
