package model

import (
	"time"

	"gorm.io/gorm"
)

// Account privacy settings.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// User is an account holder. Avatar and Cover hold full public URLs.
type User struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"size:50;uniqueIndex" json:"username"`
	Email     string         `gorm:"size:255;uniqueIndex" json:"email"`
	Password  string         `gorm:"size:255" json:"-"`
	Name      string         `gorm:"size:100" json:"name"`
	Bio       string         `gorm:"size:500" json:"bio"`
	Avatar    string         `gorm:"size:500" json:"avatar"`
	Cover     string         `gorm:"size:500" json:"cover"`
	Privacy   string         `gorm:"size:10;default:public" json:"privacy"`
	Verified  bool           `gorm:"default:false" json:"verified"`
	Banned    bool           `gorm:"default:false" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuthToken is an opaque API token. Only the SHA-256 of the issued
// token is stored.
type AuthToken struct {
	ID         int64  `gorm:"primaryKey"`
	UserID     int64  `gorm:"index"`
	TokenHash  string `gorm:"size:64;uniqueIndex"`
	Name       string `gorm:"size:100"`
	LastUsedAt *time.Time
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

// OtpCode is a pending email verification code.
type OtpCode struct {
	ID        int64  `gorm:"primaryKey"`
	Email     string `gorm:"size:255;index"`
	Code      string `gorm:"size:10"`
	Attempts  int    `gorm:"default:0"`
	Verified  bool   `gorm:"default:false"`
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Follow links a follower to the user they follow.
type Follow struct {
	ID          int64 `gorm:"primaryKey"`
	FollowerID  int64 `gorm:"index:idx_follow_pair,unique"`
	FollowingID int64 `gorm:"index:idx_follow_pair,unique;index"`
	CreatedAt   time.Time
}

// Notification types.
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification tells a user that someone acted on them or their
// content. PostID is set for like and comment notifications only.
type Notification struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"index" json:"user_id"`
	ActorID   int64      `json:"actor_id"`
	Type      string     `gorm:"size:20" json:"type"`
	PostID    *int64     `json:"post_id,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// Post is a feed entry. MediaURL and ThumbnailURL are optional; a post
// may be text only.
type Post struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	UserID       int64          `gorm:"index" json:"user_id"`
	Content      string         `gorm:"size:5000" json:"content"`
	MediaURL     string         `gorm:"size:500" json:"media_url"`
	MediaType    string         `gorm:"size:20" json:"media_type"`
	ThumbnailURL string         `gorm:"size:500" json:"thumbnail_url"`
	IsReel       bool           `gorm:"default:false" json:"is_reel"`
	Flagged      bool           `gorm:"default:false;index" json:"-"`
	FlagReason   string         `gorm:"size:500" json:"-"`
	FlaggedAt    *time.Time     `json:"-"`
	LikeCount    int64          `gorm:"default:0" json:"like_count"`
	CommentCount int64          `gorm:"default:0" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// PostLike records one user liking one post.
type PostLike struct {
	ID        int64 `gorm:"primaryKey"`
	PostID    int64 `gorm:"index:idx_like_pair,unique"`
	UserID    int64 `gorm:"index:idx_like_pair,unique"`
	CreatedAt time.Time
}

// PostComment is a flat comment on a post.
type PostComment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PostID    int64     `gorm:"index" json:"post_id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	Content   string    `gorm:"size:1000" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// PostSave bookmarks a post for a user.
type PostSave struct {
	ID        int64 `gorm:"primaryKey"`
	PostID    int64 `gorm:"index:idx_save_pair,unique"`
	UserID    int64 `gorm:"index:idx_save_pair,unique"`
	CreatedAt time.Time
}

// Story is ephemeral content. Expiry is computed from CreatedAt plus
// Duration when the story is read; nothing reaps rows on a timer.
type Story struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	UserID       int64  `gorm:"index" json:"user_id"`
	MediaURL     string `gorm:"size:500" json:"media_url"`
	MediaType    string `gorm:"size:20" json:"media_type"`
	ThumbnailURL string `gorm:"size:500" json:"thumbnail_url"`
	Caption      string `gorm:"size:500" json:"caption"`

	// Duration is seconds for images and minutes for videos
	Duration  int64     `json:"duration"`
	ViewCount int64     `gorm:"default:0" json:"view_count"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// StoryView records a unique viewer of a story.
type StoryView struct {
	ID        int64 `gorm:"primaryKey"`
	StoryID   int64 `gorm:"index:idx_view_pair,unique"`
	UserID    int64 `gorm:"index:idx_view_pair,unique"`
	CreatedAt time.Time
}

// Verification statuses.
const (
	VerificationPending   = "pending"
	VerificationApproved  = "approved"
	VerificationRejected  = "rejected"
	VerificationCancelled = "cancelled"
)

// Verification types.
const (
	VerificationTypeIdentity = "identity"
	VerificationTypeBusiness = "business"
	VerificationTypeCreator  = "creator"
)

// Verification is an identity verification request. Document fields
// hold object keys under verification/{userId}/, not public URLs.
type Verification struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"index" json:"user_id"`
	Type          string     `gorm:"size:20" json:"type"`
	Status        string     `gorm:"size:20;index" json:"status"`
	DocumentFront string     `gorm:"size:500" json:"-"`
	DocumentBack  string     `gorm:"size:500" json:"-"`
	Selfie        string     `gorm:"size:500" json:"-"`
	Note          string     `gorm:"size:500" json:"note"`
	ReviewedBy    string     `gorm:"size:255" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Setting is an operator-editable key-value pair.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"size:2000" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdminActivityLog records a moderation action.
type AdminActivityLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"size:100" json:"action"`
	TargetID  int64     `json:"target_id"`
	Detail    string    `gorm:"size:1000" json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model for migration.
func All() []any {
	return []any{
		&User{},
		&AuthToken{},
		&OtpCode{},
		&Follow{},
		&Notification{},
		&Post{},
		&PostLike{},
		&PostComment{},
		&PostSave{},
		&Story{},
		&StoryView{},
		&Verification{},
		&Setting{},
		&AdminActivityLog{},
	}
}
