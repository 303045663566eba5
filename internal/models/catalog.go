package models

import (
	"time"
)

// RewardCategory groups catalog rewards.
type RewardCategory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CategoryName string    `gorm:"size:255;not null" json:"category_name"`
	Description  string    `gorm:"type:text" json:"description"`
	Img          *string   `gorm:"size:512" json:"img"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for RewardCategory model.
func (RewardCategory) TableName() string {
	return "reward_categories"
}

// RewardReason is a predefined recognition reason with an optional image.
type RewardReason struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Reason      string    `gorm:"size:255;not null" json:"reason"`
	Description string    `gorm:"type:text" json:"description"`
	Img         *string   `gorm:"size:512" json:"img"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for RewardReason model.
func (RewardReason) TableName() string {
	return "reward_reasons"
}

// Reward is a catalog item employees can redeem points for.
type Reward struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	PointsRequired int64     `gorm:"not null" json:"points_required"`
	CategoryID     *uint     `gorm:"index" json:"category_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Reward model.
func (Reward) TableName() string {
	return "rewards"
}

// CatalogItem is a reward joined with its category for listing.
type CatalogItem struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	PointsRequired int64   `json:"points_required"`
	CategoryID     *uint   `json:"category_id"`
	CategoryName   *string `json:"category_name"`
	CategoryImg    *string `json:"category_img"`
}
