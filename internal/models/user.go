package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender values accepted at signup
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Profile field limits
const (
	MaxFullNameLength = 50
	MaxBioLength      = 150
	MinPasswordLength = 8
)

// User is a registered identity. Counters are a cache of the follows/posts
// relations and are only written inside the transaction that changes those relations.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FullName    string    `gorm:"size:50;not null" json:"fullName"`
	Username    string    `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Gender      string    `gorm:"size:10" json:"gender"`
	AvatarURL   string    `json:"avatarUrl"`
	Bio         string    `gorm:"size:150" json:"bio"`

	PasswordHash string `gorm:"not null" json:"-"`

	// Email verification
	IsVerified          bool       `gorm:"default:false;not null" json:"isVerified"`
	VerifyCode          string     `json:"-"`
	VerifyCodeExpiresAt *time.Time `json:"-"`

	// Password reset
	ResetPasswordCode      string     `json:"-"`
	ResetPasswordExpiresAt *time.Time `json:"-"`

	IsBlocked bool `gorm:"default:false;not null" json:"-"`

	FollowersCount int `gorm:"default:0;not null" json:"followersCount"`
	FollowingCount int `gorm:"default:0;not null" json:"followingCount"`
	PostsCount     int `gorm:"default:0;not null" json:"postsCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	FollowerID  string    `gorm:"size:36;not null;uniqueIndex:idx_follower_following" json:"followerId"`
	FollowingID string    `gorm:"size:36;not null;uniqueIndex:idx_follower_following;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Post{},
		&Like{},
		&Comment{},
	}
}

func generateUUID() string {
	return uuid.New().String()
}
