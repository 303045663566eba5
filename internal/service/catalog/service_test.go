package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/cache"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Mock repository for testing
type mockCatalogRepository struct {
	nextID       uint
	categories   map[uint]*models.RewardCategory
	reasons      map[uint]*models.RewardReason
	rewards      map[uint]*models.Reward
	catalogCalls int
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		categories: make(map[uint]*models.RewardCategory),
		reasons:    make(map[uint]*models.RewardReason),
		rewards:    make(map[uint]*models.Reward),
	}
}

func (m *mockCatalogRepository) id() uint {
	m.nextID++
	return m.nextID
}

func notFound(what string, id uint) error {
	return fmt.Errorf("get %s %d: %w", what, id, repository.ErrNotFound)
}

func (m *mockCatalogRepository) CreateCategory(_ context.Context, c *models.RewardCategory) error {
	c.ID = m.id()
	m.categories[c.ID] = c
	return nil
}

func (m *mockCatalogRepository) GetCategory(_ context.Context, id uint) (*models.RewardCategory, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	return c, nil
}

func (m *mockCatalogRepository) GetCategoryByName(_ context.Context, name string) (*models.RewardCategory, error) {
	for _, c := range m.categories {
		if c.CategoryName == name {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCatalogRepository) ListCategories(_ context.Context) ([]models.RewardCategory, error) {
	out := []models.RewardCategory{}
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCatalogRepository) UpdateCategory(_ context.Context, id uint, fields map[string]any) error {
	c, ok := m.categories[id]
	if !ok {
		return notFound("category", id)
	}
	c.CategoryName = fields["category_name"].(string)
	return nil
}

func (m *mockCatalogRepository) DeleteCategory(_ context.Context, id uint) error {
	if _, ok := m.categories[id]; !ok {
		return notFound("category", id)
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCatalogRepository) CreateReason(_ context.Context, r *models.RewardReason) error {
	r.ID = m.id()
	m.reasons[r.ID] = r
	return nil
}

func (m *mockCatalogRepository) GetReason(_ context.Context, id uint) (*models.RewardReason, error) {
	r, ok := m.reasons[id]
	if !ok {
		return nil, notFound("reason", id)
	}
	return r, nil
}

func (m *mockCatalogRepository) ListReasons(_ context.Context) ([]models.RewardReason, error) {
	out := []models.RewardReason{}
	for _, r := range m.reasons {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockCatalogRepository) UpdateReason(_ context.Context, id uint, fields map[string]any) error {
	r, ok := m.reasons[id]
	if !ok {
		return notFound("reason", id)
	}
	r.Reason = fields["reason"].(string)
	return nil
}

func (m *mockCatalogRepository) DeleteReason(_ context.Context, id uint) error {
	if _, ok := m.reasons[id]; !ok {
		return notFound("reason", id)
	}
	delete(m.reasons, id)
	return nil
}

func (m *mockCatalogRepository) CreateReward(_ context.Context, r *models.Reward) error {
	r.ID = m.id()
	m.rewards[r.ID] = r
	return nil
}

func (m *mockCatalogRepository) GetReward(_ context.Context, id uint) (*models.Reward, error) {
	r, ok := m.rewards[id]
	if !ok {
		return nil, notFound("reward", id)
	}
	return r, nil
}

func (m *mockCatalogRepository) UpdateReward(_ context.Context, id uint, fields map[string]any) error {
	r, ok := m.rewards[id]
	if !ok {
		return notFound("reward", id)
	}
	r.Title = fields["title"].(string)
	r.PointsRequired = fields["points_required"].(int64)
	return nil
}

func (m *mockCatalogRepository) DeleteReward(_ context.Context, id uint) error {
	if _, ok := m.rewards[id]; !ok {
		return notFound("reward", id)
	}
	delete(m.rewards, id)
	return nil
}

func (m *mockCatalogRepository) ListCatalog(_ context.Context) ([]models.CatalogItem, error) {
	m.catalogCalls++
	var items []models.CatalogItem
	for _, r := range m.rewards {
		items = append(items, models.CatalogItem{ID: r.ID, Title: r.Title, PointsRequired: r.PointsRequired, CategoryID: r.CategoryID})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PointsRequired < items[j].PointsRequired })
	return items, nil
}

type mockAuditor struct {
	actions []string
}

func (m *mockAuditor) Record(_ context.Context, _ uint, _, action, _ string) {
	m.actions = append(m.actions, action)
}

var admin = authz.Identity{ID: 1, Role: models.RoleAdmin}

func setupTestService(t *testing.T) (*Service, *mockCatalogRepository, *mockAuditor) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMockCatalogRepository()
	auditor := &mockAuditor{}
	svc := NewServiceWithInterfaces(repo, cache.NewWithClient(client), 0, auditor, logger.Nop())
	return svc, repo, auditor
}

func TestListCatalog_Cached(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.CreateReward(ctx, admin, RewardInput{Title: "Mug", PointsRequired: 50})
	require.NoError(t, err)

	items, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = svc.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Mug", items[0].Title)
	assert.Equal(t, 1, repo.catalogCalls, "second listing should be served from cache")
}

func TestListCatalog_InvalidatedOnChange(t *testing.T) {
	svc, repo, auditor := setupTestService(t)
	ctx := context.Background()

	items, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	reward, err := svc.CreateReward(ctx, admin, RewardInput{Title: "Hoodie", PointsRequired: 300})
	require.NoError(t, err)

	items, err = svc.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, repo.catalogCalls)

	_, err = svc.UpdateReward(ctx, admin, reward.ID, RewardInput{Title: "Hoodie XL", PointsRequired: 350})
	require.NoError(t, err)

	items, err = svc.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hoodie XL", items[0].Title)
	assert.Equal(t, int64(350), items[0].PointsRequired)

	assert.Len(t, auditor.actions, 2)
}

func TestListCatalog_NoCache(t *testing.T) {
	repo := newMockCatalogRepository()
	svc := NewServiceWithInterfaces(repo, nil, 0, nil, logger.Nop())
	ctx := context.Background()

	_, err := svc.ListCatalog(ctx)
	require.NoError(t, err)
	_, err = svc.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.catalogCalls)
}

func TestRewardValidation(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()
	missing := uint(42)

	tests := []struct {
		name  string
		input RewardInput
	}{
		{name: "blank title", input: RewardInput{Title: " ", PointsRequired: 10}},
		{name: "zero points", input: RewardInput{Title: "Mug", PointsRequired: 0}},
		{name: "unknown category", input: RewardInput{Title: "Mug", PointsRequired: 10, CategoryID: &missing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReward(ctx, admin, tt.input)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCategoryAndReasonCRUD(t *testing.T) {
	svc, _, _ := setupTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, admin, CategoryInput{CategoryName: "  Gift cards "})
	require.NoError(t, err)
	assert.Equal(t, "Gift cards", category.CategoryName)

	category, err = svc.UpdateCategory(ctx, admin, category.ID, CategoryInput{CategoryName: "Vouchers"})
	require.NoError(t, err)
	assert.Equal(t, "Vouchers", category.CategoryName)

	_, err = svc.CreateCategory(ctx, admin, CategoryInput{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.DeleteCategory(ctx, admin, category.ID))
	err = svc.DeleteCategory(ctx, admin, category.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	reason, err := svc.CreateReason(ctx, admin, ReasonInput{Reason: "Teamwork"})
	require.NoError(t, err)
	reasons, err := svc.ListReasons(ctx)
	require.NoError(t, err)
	assert.Len(t, reasons, 1)

	_, err = svc.UpdateReason(ctx, admin, 999, ReasonInput{Reason: "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	require.NoError(t, svc.DeleteReason(ctx, admin, reason.ID))
}

func TestParseSeed(t *testing.T) {
	doc := []byte(`
categories:
  - name: Gift cards
    img: https://img.example.com/gift.png
    rewards:
      - title: Coffee voucher
        points: 50
      - title: Book voucher
        points: 150
reasons:
  - reason: Teamwork
  - reason: Customer focus
    description: Went the extra mile for a customer
`)

	seed, err := ParseSeed(doc)
	require.NoError(t, err)
	require.Len(t, seed.Categories, 1)
	assert.Len(t, seed.Categories[0].Rewards, 2)
	assert.Len(t, seed.Reasons, 2)

	_, err = ParseSeed([]byte("categories:\n  - name: X\n    rewards:\n      - title: Y\n        points: 0\n"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("categories: [unterminated"))
	assert.Error(t, err)
}

func TestApplySeed_Idempotent(t *testing.T) {
	svc, repo, _ := setupTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: Swag
    rewards:
      - title: T-shirt
        points: 100
reasons:
  - reason: Teamwork
`), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)

	created, err := svc.ApplySeed(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = svc.ApplySeed(ctx, seed)
	require.NoError(t, err)
	assert.Zero(t, created)

	assert.Len(t, repo.categories, 1)
	assert.Len(t, repo.rewards, 1)
	assert.Len(t, repo.reasons, 1)
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
