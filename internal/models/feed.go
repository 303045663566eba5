package models

import (
	"time"
)

// Post is a recognition record shown in the feed. Reward issuance creates one
// per ledger entry; admins and managers can also post zero-point kudos.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	GiverID        uint      `gorm:"not null;index" json:"giver_id"`
	ReceiverID     uint      `gorm:"not null;index" json:"receiver_id"`
	Points         int64     `gorm:"not null;default:0" json:"points"`
	Reason         string    `gorm:"type:text" json:"reason"`
	ImageURL       *string   `gorm:"size:512" json:"image_url"`
	Caption        string    `gorm:"type:text" json:"caption"`
	RewardPointsID *uint     `json:"reward_points_id,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Post model.
func (Post) TableName() string {
	return "posts"
}

// Comment is a user's comment on a post.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"post_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	CommentText string    `gorm:"type:text;not null" json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for Comment model.
func (Comment) TableName() string {
	return "comments"
}

// Like marks a post as liked by a user.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Like model.
func (Like) TableName() string {
	return "likes"
}

// CommentLike marks a comment as liked by a user.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_likes_comment_user" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_comment_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for CommentLike model.
func (CommentLike) TableName() string {
	return "comment_likes"
}
