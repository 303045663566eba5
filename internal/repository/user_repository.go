package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/zetarewards/recognition-api/internal/models"
)

// UserProfile is a user joined with their department name.
type UserProfile struct {
	models.User
	DepartmentName *string `json:"department_name"`
}

// UserRepository handles user and department database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetProfile retrieves a user with their department name.
func (r *UserRepository) GetProfile(ctx context.Context, id uint) (*UserProfile, error) {
	var profile UserProfile
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, departments.name AS department_name").
		Joins("LEFT JOIN departments ON departments.id = users.department_id").
		Where("users.id = ?", id).
		Take(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for user %d: %w", id, err)
	}
	return &profile, nil
}

// List retrieves all users, optionally filtered by role, ordered by name.
func (r *UserRepository) List(ctx context.Context, role string) ([]UserProfile, error) {
	query := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, departments.name AS department_name").
		Joins("LEFT JOIN departments ON departments.id = users.department_id")

	if role != "" {
		query = query.Where("users.role = ?", role)
	}

	var users []UserProfile
	if err := query.Order("users.name ASC, users.id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListByManager retrieves the users reporting to a manager.
func (r *UserRepository) ListByManager(ctx context.Context, managerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("name ASC, id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users for manager %d: %w", managerID, err)
	}
	return users, nil
}

// Update applies the given column updates to a user.
func (r *UserRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update user %d: %w", id, ErrNotFound)
	}
	return nil
}

// HasLedgerHistory reports whether any ledger row references the user.
func (r *UserRepository) HasLedgerHistory(ctx context.Context, id uint) (bool, error) {
	checks := []struct {
		model any
		where string
	}{
		{&models.RewardPoints{}, "giver_id = ? OR receiver_id = ?"},
		{&models.Redemption{}, "user_id = ? OR resolved_by = ?"},
		{&models.ManagerPoints{}, "manager_id = ? OR manager_id = ?"},
		{&models.AdminBudget{}, "admin_id = ? OR admin_id = ?"},
	}

	for _, check := range checks {
		var count int64
		if err := r.db.WithContext(ctx).Model(check.model).Where(check.where, id, id).Count(&count).Error; err != nil {
			return false, fmt.Errorf("failed to check ledger history for user %d: %w", id, err)
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a user and the social and notification rows that belong to
// them. Reports directly under the user lose their manager. Callers must
// check HasLedgerHistory first; ledger rows are never deleted here.
func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.Transaction(ctx, func(tx *DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("user_id = ?", id)
		postIDs := tx.Model(&models.Post{}).Select("id").Where("giver_id = ? OR receiver_id = ?", id, id)
		postCommentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id IN (?)", postIDs)

		steps := []func() *gorm.DB{
			func() *gorm.DB {
				return tx.Where("user_id = ? OR comment_id IN (?) OR comment_id IN (?)", id, commentIDs, postCommentIDs).Delete(&models.CommentLike{})
			},
			func() *gorm.DB { return tx.Where("user_id = ? OR post_id IN (?)", id, postIDs).Delete(&models.Like{}) },
			func() *gorm.DB { return tx.Where("user_id = ? OR post_id IN (?)", id, postIDs).Delete(&models.Comment{}) },
			func() *gorm.DB { return tx.Where("giver_id = ? OR receiver_id = ?", id, id).Delete(&models.Post{}) },
			func() *gorm.DB { return tx.Where("recipient_id = ?", id).Delete(&models.Notification{}) },
			func() *gorm.DB {
				return tx.Model(&models.Notification{}).Where("sender_id = ?", id).Update("sender_id", nil)
			},
			func() *gorm.DB { return tx.Where("user_id = ?", id).Delete(&models.PushSubscription{}) },
			func() *gorm.DB { return tx.Model(&models.User{}).Where("manager_id = ?", id).Update("manager_id", nil) },
		}
		for _, step := range steps {
			if err := step().Error; err != nil {
				return fmt.Errorf("failed to remove data for user %d: %w", id, err)
			}
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// CreateDepartment creates a department. Duplicate names yield ErrDuplicate.
func (r *UserRepository) CreateDepartment(ctx context.Context, dept *models.Department) error {
	if err := r.db.WithContext(ctx).Create(dept).Error; err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

// ListDepartments retrieves all departments ordered by name.
func (r *UserRepository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&depts).Error; err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return depts, nil
}

// GetDepartment retrieves a department by ID.
func (r *UserRepository) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	var dept models.Department
	if err := r.db.WithContext(ctx).First(&dept, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get department %d: %w", id, err)
	}
	return &dept, nil
}

// RenameDepartment changes a department's name.
func (r *UserRepository) RenameDepartment(ctx context.Context, id uint, name string) error {
	result := r.db.WithContext(ctx).Model(&models.Department{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("failed to rename department %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("rename department %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDepartment removes a department and detaches its users.
func (r *UserRepository) DeleteDepartment(ctx context.Context, id uint) error {
	return r.db.Transaction(ctx, func(tx *DB) error {
		if err := tx.Model(&models.User{}).Where("department_id = ?", id).Update("department_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach users from department %d: %w", id, err)
		}
		result := tx.Delete(&models.Department{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete department %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete department %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
