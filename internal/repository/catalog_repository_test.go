package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/models"
)

func TestCatalogRepository_ListCatalog(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	img := "https://img.example/gear.png"
	gear := &models.RewardCategory{CategoryName: "Gear", Img: &img}
	food := &models.RewardCategory{CategoryName: "Food"}
	require.NoError(t, repo.CreateCategory(ctx, gear))
	require.NoError(t, repo.CreateCategory(ctx, food))

	require.NoError(t, repo.CreateReward(ctx, &models.Reward{Title: "Headphones", PointsRequired: 500, CategoryID: &gear.ID}))
	require.NoError(t, repo.CreateReward(ctx, &models.Reward{Title: "Mug", PointsRequired: 50, CategoryID: &gear.ID}))
	require.NoError(t, repo.CreateReward(ctx, &models.Reward{Title: "Lunch", PointsRequired: 120, CategoryID: &food.ID}))

	items, err := repo.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Lunch", items[0].Title)
	assert.Equal(t, "Mug", items[1].Title)
	assert.Equal(t, "Headphones", items[2].Title)
	require.NotNil(t, items[1].CategoryName)
	assert.Equal(t, "Gear", *items[1].CategoryName)
	require.NotNil(t, items[1].CategoryImg)
	assert.Equal(t, img, *items[1].CategoryImg)
}

func TestCatalogRepository_DeleteCategoryDetachesRewards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	gear := &models.RewardCategory{CategoryName: "Gear"}
	require.NoError(t, repo.CreateCategory(ctx, gear))
	reward := &models.Reward{Title: "Mug", PointsRequired: 50, CategoryID: &gear.ID}
	require.NoError(t, repo.CreateReward(ctx, reward))

	require.NoError(t, repo.DeleteCategory(ctx, gear.ID))

	got, err := repo.GetReward(ctx, reward.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	items, err := repo.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].CategoryName)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, gear.ID), ErrNotFound)
}

func TestCatalogRepository_Reasons(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	reason := &models.RewardReason{Reason: "Teamwork", Description: "Helped the team"}
	require.NoError(t, repo.CreateReason(ctx, reason))
	require.NoError(t, repo.CreateReason(ctx, &models.RewardReason{Reason: "Innovation"}))

	reasons, err := repo.ListReasons(ctx)
	require.NoError(t, err)
	require.Len(t, reasons, 2)
	assert.Equal(t, "Innovation", reasons[0].Reason, "newest first")

	require.NoError(t, repo.UpdateReason(ctx, reason.ID, map[string]any{"reason": "Collaboration"}))
	got, err := repo.GetReason(ctx, reason.ID)
	require.NoError(t, err)
	assert.Equal(t, "Collaboration", got.Reason)
	assert.Equal(t, "Helped the team", got.Description)

	require.NoError(t, repo.DeleteReason(ctx, reason.ID))
	_, err = repo.GetReason(ctx, reason.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.UpdateReason(ctx, reason.ID, map[string]any{"reason": "x"}), ErrNotFound)
}

func TestCatalogRepository_UpdateReward(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	reward := &models.Reward{Title: "Mug", PointsRequired: 50}
	require.NoError(t, repo.CreateReward(ctx, reward))

	require.NoError(t, repo.UpdateReward(ctx, reward.ID, map[string]any{"points_required": 75}))
	got, err := repo.GetReward(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(75), got.PointsRequired)

	require.NoError(t, repo.DeleteReward(ctx, reward.ID))
	assert.ErrorIs(t, repo.DeleteReward(ctx, reward.ID), ErrNotFound)

	category := &models.RewardCategory{CategoryName: "Gear"}
	require.NoError(t, repo.CreateCategory(ctx, category))
	byName, err := repo.GetCategoryByName(ctx, "Gear")
	require.NoError(t, err)
	assert.Equal(t, category.ID, byName.ID)

	require.NoError(t, repo.UpdateCategory(ctx, category.ID, map[string]any{"description": "Things"}))
	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Things", categories[0].Description)
}
