package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Redemption statuses. A redemption moves from pending to exactly one of the
// terminal states and never back.
const (
	RedemptionPending  = "pending"
	RedemptionApproved = "approved"
	RedemptionDeclined = "declined"
)

// AdminBudget is an admin's pool of points available for allocation to managers.
type AdminBudget struct {
	AdminID         uint            `gorm:"primaryKey;autoIncrement:false" json:"admin_id"`
	TotalPoints     int64           `gorm:"not null;default:0" json:"total_points"`
	RemainingPoints int64           `gorm:"not null;default:0" json:"remaining_points"`
	PointValue      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"point_value"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for AdminBudget model.
func (AdminBudget) TableName() string {
	return "admin_budget"
}

// ManagerPoints is a manager's pool of points available for issuance.
type ManagerPoints struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ManagerID       uint      `gorm:"uniqueIndex;not null" json:"manager_id"`
	PointsAssigned  int64     `gorm:"not null;default:0" json:"points_assigned"`
	RemainingPoints int64     `gorm:"not null;default:0" json:"remaining_points"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for ManagerPoints model.
func (ManagerPoints) TableName() string {
	return "manager_points"
}

// RewardPoints is an append-only ledger entry recording a grant of points.
type RewardPoints struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GiverID    uint      `gorm:"not null;index" json:"giver_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Points     int64     `gorm:"not null" json:"points"`
	Reason     string    `gorm:"type:text" json:"reason"`
	ReasonID   *uint     `json:"reason_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for RewardPoints model.
func (RewardPoints) TableName() string {
	return "reward_points"
}

// Redemption is an employee's request to spend points on a catalog reward.
type Redemption struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	UserName       string     `gorm:"->;-:migration" json:"user_name,omitempty"`
	RewardID       *uint      `json:"reward_id"`
	RewardTitle    string     `gorm:"size:255;not null" json:"reward_title"`
	RequiredPoints int64      `gorm:"not null" json:"required_points"`
	CategoryID     *uint      `json:"category_id"`
	Status         string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	DeclineReason  *string    `gorm:"type:text" json:"decline_reason"`
	ResolvedBy     *uint      `json:"resolved_by"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	RequestedAt    time.Time  `gorm:"not null" json:"requested_at"`
}

// TableName specifies the table name for Redemption model.
func (Redemption) TableName() string {
	return "redemptions"
}

// IsResolved reports whether the redemption has left the pending state.
func (r *Redemption) IsResolved() bool {
	return r.Status != RedemptionPending
}
