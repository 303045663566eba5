package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zetarewards/recognition-api/internal/models"
)

// LedgerRepository handles budgets, manager pools, ledger entries and redemptions.
//
// Every decrement of a balance column is a single conditional UPDATE guarded by
// "remaining_points >= ?"; a zero affected-row count is reported as
// ErrConditionFailed so no balance can go negative, whatever the interleaving.
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new ledger repository.
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *LedgerRepository) WithTx(tx *DB) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

// GetBudget retrieves an admin's budget.
func (r *LedgerRepository) GetBudget(ctx context.Context, adminID uint) (*models.AdminBudget, error) {
	var budget models.AdminBudget
	if err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).First(&budget).Error; err != nil {
		return nil, fmt.Errorf("failed to get budget for admin %d: %w", adminID, err)
	}
	return &budget, nil
}

// TopUpBudget adds points to an admin's budget, creating it on first use.
// Total and remaining grow together, so remaining never exceeds total.
// A nil pointValue leaves the stored value unchanged.
func (r *LedgerRepository) TopUpBudget(ctx context.Context, adminID uint, points int64, pointValue *decimal.Decimal) (*models.AdminBudget, error) {
	now := time.Now()
	budget := models.AdminBudget{
		AdminID:         adminID,
		TotalPoints:     points,
		RemainingPoints: points,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	updates := map[string]any{
		"total_points":     gorm.Expr("admin_budget.total_points + ?", points),
		"remaining_points": gorm.Expr("admin_budget.remaining_points + ?", points),
		"updated_at":       now,
	}
	if pointValue != nil {
		budget.PointValue = *pointValue
		updates["point_value"] = *pointValue
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&budget).Error
	if err != nil {
		return nil, fmt.Errorf("failed to top up budget for admin %d: %w", adminID, err)
	}

	return r.GetBudget(ctx, adminID)
}

// DebitBudget atomically subtracts points from an admin's remaining budget.
func (r *LedgerRepository) DebitBudget(ctx context.Context, adminID uint, points int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.AdminBudget{}).
		Where("admin_id = ? AND remaining_points >= ?", adminID, points).
		Update("remaining_points", gorm.Expr("remaining_points - ?", points))
	if result.Error != nil {
		return fmt.Errorf("failed to debit budget for admin %d: %w", adminID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("debit %d from admin %d budget: %w", points, adminID, ErrConditionFailed)
	}
	return nil
}

// SumAssignedToManagers returns the points assigned across all manager pools.
func (r *LedgerRepository) SumAssignedToManagers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ManagerPoints{}).
		Select("COALESCE(SUM(points_assigned), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum manager allocations: %w", err)
	}
	return total, nil
}

// GetManagerPoints retrieves a manager's point pool.
func (r *LedgerRepository) GetManagerPoints(ctx context.Context, managerID uint) (*models.ManagerPoints, error) {
	var pool models.ManagerPoints
	if err := r.db.WithContext(ctx).Where("manager_id = ?", managerID).First(&pool).Error; err != nil {
		return nil, fmt.Errorf("failed to get points for manager %d: %w", managerID, err)
	}
	return &pool, nil
}

// CreateManagerPoints creates a manager's pool. The unique index on
// manager_id turns a second creation into ErrDuplicate.
func (r *LedgerRepository) CreateManagerPoints(ctx context.Context, pool *models.ManagerPoints) error {
	if err := r.db.WithContext(ctx).Create(pool).Error; err != nil {
		return fmt.Errorf("failed to create points for manager %d: %w", pool.ManagerID, err)
	}
	return nil
}

// CreditManagerPoints adds points to both the assigned and remaining columns.
func (r *LedgerRepository) CreditManagerPoints(ctx context.Context, managerID uint, points int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.ManagerPoints{}).
		Where("manager_id = ?", managerID).
		Updates(map[string]any{
			"points_assigned":  gorm.Expr("points_assigned + ?", points),
			"remaining_points": gorm.Expr("remaining_points + ?", points),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to credit manager %d: %w", managerID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("credit manager %d: %w", managerID, ErrNotFound)
	}
	return nil
}

// DebitManagerPoints atomically subtracts points from a manager's remaining pool.
func (r *LedgerRepository) DebitManagerPoints(ctx context.Context, managerID uint, points int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.ManagerPoints{}).
		Where("manager_id = ? AND remaining_points >= ?", managerID, points).
		Update("remaining_points", gorm.Expr("remaining_points - ?", points))
	if result.Error != nil {
		return fmt.Errorf("failed to debit manager %d: %w", managerID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("debit %d from manager %d: %w", points, managerID, ErrConditionFailed)
	}
	return nil
}

// CreateRewardPoints appends a ledger entry.
func (r *LedgerRepository) CreateRewardPoints(ctx context.Context, entry *models.RewardPoints) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// ListRewardPointsByReceiver retrieves the ledger entries credited to a user.
func (r *LedgerRepository) ListRewardPointsByReceiver(ctx context.Context, receiverID uint) ([]models.RewardPoints, error) {
	var entries []models.RewardPoints
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for user %d: %w", receiverID, err)
	}
	return entries, nil
}

// ListRewardPointsByGiver retrieves the ledger entries granted by a user.
func (r *LedgerRepository) ListRewardPointsByGiver(ctx context.Context, giverID uint) ([]models.RewardPoints, error) {
	var entries []models.RewardPoints
	err := r.db.WithContext(ctx).
		Where("giver_id = ?", giverID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries by giver %d: %w", giverID, err)
	}
	return entries, nil
}

// SumEarned returns the points credited to a user across all ledger entries.
func (r *LedgerRepository) SumEarned(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.RewardPoints{}).
		Select("COALESCE(SUM(points), 0)").
		Where("receiver_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum earned points for user %d: %w", userID, err)
	}
	return total, nil
}

// SumRedemptions returns the points required by a user's redemptions in the given status.
func (r *LedgerRepository) SumRedemptions(ctx context.Context, userID uint, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Select("COALESCE(SUM(required_points), 0)").
		Where("user_id = ? AND status = ?", userID, status).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum %s redemptions for user %d: %w", status, userID, err)
	}
	return total, nil
}

// LockUser loads a user row with a row-level write lock held until the
// enclosing transaction ends. SQLite ignores the locking clause; its single
// writer connection serializes transactions instead.
func (r *LedgerRepository) LockUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := lockUserQuery(r.db.WithContext(ctx), &user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", userID, err)
	}
	return &user, nil
}

func lockUserQuery(tx *gorm.DB, user *models.User, userID uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(user, userID)
}

// CreateRedemption inserts a redemption request.
func (r *LedgerRepository) CreateRedemption(ctx context.Context, redemption *models.Redemption) error {
	if err := r.db.WithContext(ctx).Create(redemption).Error; err != nil {
		return fmt.Errorf("failed to create redemption: %w", err)
	}
	return nil
}

// GetRedemption retrieves a redemption by ID.
func (r *LedgerRepository) GetRedemption(ctx context.Context, id uint) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := r.db.WithContext(ctx).First(&redemption, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get redemption %d: %w", id, err)
	}
	return &redemption, nil
}

// ResolveRedemption moves a pending redemption to a terminal status. Only a
// row still in pending matches, so a redemption can be resolved exactly once.
func (r *LedgerRepository) ResolveRedemption(ctx context.Context, id uint, status string, declineReason *string, resolvedBy uint, resolvedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Where("id = ? AND status = ?", id, models.RedemptionPending).
		Updates(map[string]any{
			"status":         status,
			"decline_reason": declineReason,
			"resolved_by":    resolvedBy,
			"resolved_at":    resolvedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to resolve redemption %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("resolve redemption %d: %w", id, ErrConditionFailed)
	}
	return nil
}

// ListRedemptionsByUser retrieves a user's redemptions, newest first.
func (r *LedgerRepository) ListRedemptionsByUser(ctx context.Context, userID uint) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("requested_at DESC, id DESC").
		Find(&redemptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions for user %d: %w", userID, err)
	}
	return redemptions, nil
}

// ListRedemptions retrieves redemptions joined with the requesting user's
// name, newest first. An empty status returns every status.
func (r *LedgerRepository) ListRedemptions(ctx context.Context, status string) ([]models.Redemption, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Select("redemptions.*, users.name AS user_name").
		Joins("JOIN users ON users.id = redemptions.user_id")

	if status != "" {
		query = query.Where("redemptions.status = ?", status)
	}

	var redemptions []models.Redemption
	if err := query.Order("redemptions.requested_at DESC, redemptions.id DESC").Find(&redemptions).Error; err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return redemptions, nil
}

// ListPendingRedemptionsBefore retrieves pending redemptions requested before
// the cutoff, oldest first.
func (r *LedgerRepository) ListPendingRedemptionsBefore(ctx context.Context, cutoff time.Time) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := r.db.WithContext(ctx).
		Model(&models.Redemption{}).
		Select("redemptions.*, users.name AS user_name").
		Joins("JOIN users ON users.id = redemptions.user_id").
		Where("redemptions.status = ? AND redemptions.requested_at < ?", models.RedemptionPending, cutoff).
		Order("redemptions.requested_at ASC").
		Find(&redemptions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending redemptions: %w", err)
	}
	return redemptions, nil
}
