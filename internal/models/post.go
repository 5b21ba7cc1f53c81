package models

import (
	"time"

	"gorm.io/gorm"
)

// Visibility is the audience of a post.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Valid reports whether v is one of the known audiences.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// MediaType is the kind of attachment on a post.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

const (
	MaxPostContentLength    = 1000
	MaxCommentContentLength = 500
)

// Post is a piece of published content. LikesCount and CommentsCount are only
// changed by the engagement operations.
type Post struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"size:36;not null;index" json:"userId"`
	Author *User  `gorm:"foreignKey:UserID" json:"author,omitempty"`

	Content string `gorm:"size:1000;not null" json:"content"`

	// Media is optional; MediaKey is the storage deletion handle and never leaves the server.
	MediaURL  string    `json:"mediaUrl,omitempty"`
	MediaKey  string    `json:"-"`
	MediaType MediaType `gorm:"size:10" json:"mediaType,omitempty"`

	Visibility Visibility `gorm:"size:10;not null;default:public;index" json:"visibility"`

	LikesCount    int  `gorm:"default:0;not null" json:"likesCount"`
	CommentsCount int  `gorm:"default:0;not null" json:"commentsCount"`
	IsDeleted     bool `gorm:"default:false;not null;index" json:"-"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasMedia reports whether the post carries an attachment.
func (p *Post) HasMedia() bool {
	return p.MediaKey != ""
}

// Like records that UserID liked PostID. One row per pair.
type Like struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_post" json:"userId"`
	PostID    string    `gorm:"size:36;not null;uniqueIndex:idx_user_post;index" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is stored flat; ParentID points at another comment on the same post.
type Comment struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	PostID   string  `gorm:"size:36;not null;index" json:"postId"`
	UserID   string  `gorm:"size:36;not null;index" json:"userId"`
	Author   *User   `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Content  string  `gorm:"size:500;not null" json:"content"`
	ParentID *string `gorm:"size:36;index" json:"parentComment"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
