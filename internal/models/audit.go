package models

import (
	"time"
)

// Notification types.
const (
	NotificationRewardReceived     = "reward_received"
	NotificationRedemptionResolved = "redemption_resolved"
	NotificationEmployeeRequest    = "employee_request"
)

// AuditLog records an action taken by a user.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"size:20" json:"role"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditEntry is an audit log joined with the acting user.
type AuditEntry struct {
	AuditLog
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Notification is an in-app message for a user.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    *uint     `json:"sender_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Type        string    `gorm:"size:50;not null" json:"type"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for Notification model.
func (Notification) TableName() string {
	return "notifications"
}

// PushSubscription is a browser Web Push subscription owned by a user.
type PushSubscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Endpoint  string    `gorm:"uniqueIndex;size:512;not null" json:"endpoint"`
	P256dhKey string    `gorm:"column:p256dh_key;size:255;not null" json:"p256dh"`
	AuthKey   string    `gorm:"column:auth_key;size:255;not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for PushSubscription model.
func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
