package repository

import (
	"context"
	"fmt"

	"github.com/zetarewards/recognition-api/internal/models"
)

// CatalogRepository handles reward categories, reward reasons and rewards.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *CatalogRepository) WithTx(tx *DB) *CatalogRepository {
	return &CatalogRepository{db: tx}
}

// CreateCategory creates a reward category.
func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.RewardCategory) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create reward category: %w", err)
	}
	return nil
}

// GetCategory retrieves a reward category by ID.
func (r *CatalogRepository) GetCategory(ctx context.Context, id uint) (*models.RewardCategory, error) {
	var category models.RewardCategory
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward category %d: %w", id, err)
	}
	return &category, nil
}

// GetCategoryByName retrieves a reward category by name.
func (r *CatalogRepository) GetCategoryByName(ctx context.Context, name string) (*models.RewardCategory, error) {
	var category models.RewardCategory
	if err := r.db.WithContext(ctx).Where("category_name = ?", name).First(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward category %q: %w", name, err)
	}
	return &category, nil
}

// ListCategories retrieves all reward categories, newest first.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.RewardCategory, error) {
	var categories []models.RewardCategory
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list reward categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory applies column updates to a reward category.
func (r *CatalogRepository) UpdateCategory(ctx context.Context, id uint, fields map[string]any) error {
	return r.update(ctx, &models.RewardCategory{}, "reward category", id, fields)
}

// DeleteCategory deletes a reward category and detaches its rewards.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.Transaction(ctx, func(tx *DB) error {
		if err := tx.Model(&models.Reward{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach rewards from category %d: %w", id, err)
		}
		return (&CatalogRepository{db: tx}).delete(ctx, &models.RewardCategory{}, "reward category", id)
	})
}

// CreateReason creates a reward reason.
func (r *CatalogRepository) CreateReason(ctx context.Context, reason *models.RewardReason) error {
	if err := r.db.WithContext(ctx).Create(reason).Error; err != nil {
		return fmt.Errorf("failed to create reward reason: %w", err)
	}
	return nil
}

// GetReason retrieves a reward reason by ID.
func (r *CatalogRepository) GetReason(ctx context.Context, id uint) (*models.RewardReason, error) {
	var reason models.RewardReason
	if err := r.db.WithContext(ctx).First(&reason, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward reason %d: %w", id, err)
	}
	return &reason, nil
}

// ListReasons retrieves all reward reasons, newest first.
func (r *CatalogRepository) ListReasons(ctx context.Context) ([]models.RewardReason, error) {
	var reasons []models.RewardReason
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&reasons).Error; err != nil {
		return nil, fmt.Errorf("failed to list reward reasons: %w", err)
	}
	return reasons, nil
}

// UpdateReason applies column updates to a reward reason.
func (r *CatalogRepository) UpdateReason(ctx context.Context, id uint, fields map[string]any) error {
	return r.update(ctx, &models.RewardReason{}, "reward reason", id, fields)
}

// DeleteReason deletes a reward reason.
func (r *CatalogRepository) DeleteReason(ctx context.Context, id uint) error {
	return r.delete(ctx, &models.RewardReason{}, "reward reason", id)
}

// CreateReward creates a catalog reward.
func (r *CatalogRepository) CreateReward(ctx context.Context, reward *models.Reward) error {
	if err := r.db.WithContext(ctx).Create(reward).Error; err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	return nil
}

// GetReward retrieves a catalog reward by ID.
func (r *CatalogRepository) GetReward(ctx context.Context, id uint) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).First(&reward, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward %d: %w", id, err)
	}
	return &reward, nil
}

// UpdateReward applies column updates to a catalog reward.
func (r *CatalogRepository) UpdateReward(ctx context.Context, id uint, fields map[string]any) error {
	return r.update(ctx, &models.Reward{}, "reward", id, fields)
}

// DeleteReward deletes a catalog reward. Redemptions keep their captured title and points.
func (r *CatalogRepository) DeleteReward(ctx context.Context, id uint) error {
	return r.delete(ctx, &models.Reward{}, "reward", id)
}

// ListCatalog retrieves rewards joined with their category, ordered by
// category name then points required.
func (r *CatalogRepository) ListCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.db.WithContext(ctx).
		Table("rewards").
		Select(`rewards.id, rewards.title, rewards.description, rewards.points_required, rewards.category_id,
			reward_categories.category_name, reward_categories.img AS category_img`).
		Joins("LEFT JOIN reward_categories ON reward_categories.id = rewards.category_id").
		Order("reward_categories.category_name ASC, rewards.points_required ASC, rewards.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return items, nil
}

func (r *CatalogRepository) update(ctx context.Context, model any, what string, id uint, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s %d: %w", what, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update %s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

func (r *CatalogRepository) delete(ctx context.Context, model any, what string, id uint) error {
	result := r.db.WithContext(ctx).Delete(model, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s %d: %w", what, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete %s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
