// Package catalog manages reward categories, reward reasons and redeemable rewards.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/cache"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/audit"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const catalogCacheKey = "catalog:list"

// DefaultCacheTTL is used when no TTL is configured.
const DefaultCacheTTL = 5 * time.Minute

// Repository is the storage the catalog service needs.
type Repository interface {
	CreateCategory(ctx context.Context, category *models.RewardCategory) error
	GetCategory(ctx context.Context, id uint) (*models.RewardCategory, error)
	GetCategoryByName(ctx context.Context, name string) (*models.RewardCategory, error)
	ListCategories(ctx context.Context) ([]models.RewardCategory, error)
	UpdateCategory(ctx context.Context, id uint, fields map[string]any) error
	DeleteCategory(ctx context.Context, id uint) error

	CreateReason(ctx context.Context, reason *models.RewardReason) error
	GetReason(ctx context.Context, id uint) (*models.RewardReason, error)
	ListReasons(ctx context.Context) ([]models.RewardReason, error)
	UpdateReason(ctx context.Context, id uint, fields map[string]any) error
	DeleteReason(ctx context.Context, id uint) error

	CreateReward(ctx context.Context, reward *models.Reward) error
	GetReward(ctx context.Context, id uint) (*models.Reward, error)
	UpdateReward(ctx context.Context, id uint, fields map[string]any) error
	DeleteReward(ctx context.Context, id uint) error
	ListCatalog(ctx context.Context) ([]models.CatalogItem, error)
}

// Auditor records catalog changes.
type Auditor interface {
	Record(ctx context.Context, actorID uint, role, action, details string)
}

// Service handles catalog administration and the cached catalog listing.
type Service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
	audit Auditor
	log   *logger.Logger
}

// NewService creates a new catalog service. A nil cache disables caching.
func NewService(repo *repository.CatalogRepository, c cache.Cache, ttl time.Duration, audit Auditor, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(repo, c, ttl, audit, log)
}

// NewServiceWithInterfaces creates a new catalog service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(repo Repository, c cache.Cache, ttl time.Duration, audit Auditor, log *logger.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{repo: repo, cache: c, ttl: ttl, audit: audit, log: log.Component("catalog")}
}

// ListCatalog returns all rewards with their category, sorted by category name
// then points required. Results are served from the cache when present.
func (s *Service) ListCatalog(ctx context.Context) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	hit, err := cache.GetJSON(ctx, s.cache, catalogCacheKey, &items)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read catalog from cache")
	}
	if hit {
		return items, nil
	}

	items, err = s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list catalog")
	}
	if items == nil {
		items = []models.CatalogItem{}
	}

	if err := cache.SetJSON(ctx, s.cache, catalogCacheKey, items, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache catalog")
	}
	return items, nil
}

// Invalidate drops the cached catalog listing.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.cache.Del(ctx, catalogCacheKey); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate catalog cache")
	}
}

// CategoryInput holds the editable fields of a category.
type CategoryInput struct {
	CategoryName string  `json:"category_name"`
	Description  string  `json:"description"`
	Img          *string `json:"img"`
}

func (in *CategoryInput) validate() error {
	in.CategoryName = strings.TrimSpace(in.CategoryName)
	if in.CategoryName == "" {
		return apperr.Validation("category_name is required")
	}
	return nil
}

// ListCategories returns every reward category.
func (s *Service) ListCategories(ctx context.Context) ([]models.RewardCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list reward categories")
	}
	return categories, nil
}

// GetCategory returns one reward category.
func (s *Service) GetCategory(ctx context.Context, id uint) (*models.RewardCategory, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "reward category", id)
	}
	return category, nil
}

// CreateCategory creates a reward category.
func (s *Service) CreateCategory(ctx context.Context, actor authz.Identity, in CategoryInput) (*models.RewardCategory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category := &models.RewardCategory{CategoryName: in.CategoryName, Description: in.Description, Img: in.Img}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, apperr.Internal(err, "failed to create reward category")
	}
	s.changed(ctx, actor, "Created reward category "+category.CategoryName)
	return category, nil
}

// UpdateCategory replaces a category's editable fields.
func (s *Service) UpdateCategory(ctx context.Context, actor authz.Identity, id uint, in CategoryInput) (*models.RewardCategory, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{"category_name": in.CategoryName, "description": in.Description, "img": in.Img}
	if err := s.repo.UpdateCategory(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, "reward category", id)
	}
	s.changed(ctx, actor, "Updated reward category "+in.CategoryName)
	return s.GetCategory(ctx, id)
}

// DeleteCategory deletes a category. Its rewards become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, actor authz.Identity, id uint) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return notFoundOr(err, "reward category", id)
	}
	s.changed(ctx, actor, "Deleted reward category")
	return nil
}

// ReasonInput holds the editable fields of a reward reason.
type ReasonInput struct {
	Reason      string  `json:"reason"`
	Description string  `json:"description"`
	Img         *string `json:"img"`
}

func (in *ReasonInput) validate() error {
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		return apperr.Validation("reason is required")
	}
	return nil
}

// ListReasons returns every reward reason.
func (s *Service) ListReasons(ctx context.Context) ([]models.RewardReason, error) {
	reasons, err := s.repo.ListReasons(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list reward reasons")
	}
	return reasons, nil
}

// GetReason returns one reward reason.
func (s *Service) GetReason(ctx context.Context, id uint) (*models.RewardReason, error) {
	reason, err := s.repo.GetReason(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "reward reason", id)
	}
	return reason, nil
}

// CreateReason creates a reward reason.
func (s *Service) CreateReason(ctx context.Context, actor authz.Identity, in ReasonInput) (*models.RewardReason, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	reason := &models.RewardReason{Reason: in.Reason, Description: in.Description, Img: in.Img}
	if err := s.repo.CreateReason(ctx, reason); err != nil {
		return nil, apperr.Internal(err, "failed to create reward reason")
	}
	s.changed(ctx, actor, "Created reward reason "+reason.Reason)
	return reason, nil
}

// UpdateReason replaces a reason's editable fields.
func (s *Service) UpdateReason(ctx context.Context, actor authz.Identity, id uint, in ReasonInput) (*models.RewardReason, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	fields := map[string]any{"reason": in.Reason, "description": in.Description, "img": in.Img}
	if err := s.repo.UpdateReason(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, "reward reason", id)
	}
	s.changed(ctx, actor, "Updated reward reason "+in.Reason)
	return s.GetReason(ctx, id)
}

// DeleteReason deletes a reward reason. Ledger entries keep their copied reason text.
func (s *Service) DeleteReason(ctx context.Context, actor authz.Identity, id uint) error {
	if err := s.repo.DeleteReason(ctx, id); err != nil {
		return notFoundOr(err, "reward reason", id)
	}
	s.changed(ctx, actor, "Deleted reward reason")
	return nil
}

// RewardInput holds the editable fields of a catalog reward.
type RewardInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	PointsRequired int64  `json:"points_required"`
	CategoryID     *uint  `json:"category_id"`
}

func (s *Service) validateReward(ctx context.Context, in *RewardInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validation("title is required")
	}
	if in.PointsRequired <= 0 {
		return apperr.Validation("points_required must be greater than zero")
	}
	if in.CategoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.Validation("reward category %d does not exist", *in.CategoryID)
			}
			return apperr.Internal(err, "failed to load reward category")
		}
	}
	return nil
}

// GetReward returns one catalog reward.
func (s *Service) GetReward(ctx context.Context, id uint) (*models.Reward, error) {
	reward, err := s.repo.GetReward(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "reward", id)
	}
	return reward, nil
}

// CreateReward adds a reward to the catalog.
func (s *Service) CreateReward(ctx context.Context, actor authz.Identity, in RewardInput) (*models.Reward, error) {
	if err := s.validateReward(ctx, &in); err != nil {
		return nil, err
	}
	reward := &models.Reward{
		Title:          in.Title,
		Description:    in.Description,
		PointsRequired: in.PointsRequired,
		CategoryID:     in.CategoryID,
	}
	if err := s.repo.CreateReward(ctx, reward); err != nil {
		return nil, apperr.Internal(err, "failed to create reward")
	}
	s.changed(ctx, actor, "Created reward "+reward.Title)
	return reward, nil
}

// UpdateReward replaces a reward's editable fields. Existing redemptions keep
// the title and points captured when they were requested.
func (s *Service) UpdateReward(ctx context.Context, actor authz.Identity, id uint, in RewardInput) (*models.Reward, error) {
	if err := s.validateReward(ctx, &in); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"title":           in.Title,
		"description":     in.Description,
		"points_required": in.PointsRequired,
		"category_id":     in.CategoryID,
	}
	if err := s.repo.UpdateReward(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, "reward", id)
	}
	s.changed(ctx, actor, "Updated reward "+in.Title)
	return s.GetReward(ctx, id)
}

// DeleteReward removes a reward from the catalog.
func (s *Service) DeleteReward(ctx context.Context, actor authz.Identity, id uint) error {
	if err := s.repo.DeleteReward(ctx, id); err != nil {
		return notFoundOr(err, "reward", id)
	}
	s.changed(ctx, actor, "Deleted reward")
	return nil
}

func (s *Service) changed(ctx context.Context, actor authz.Identity, details string) {
	s.Invalidate(ctx)
	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, actor.Role, audit.ActionCatalogChanged, details)
	}
	s.log.Info().Uint("actor_id", actor.ID).Str("change", details).Msg("Catalog changed")
}

func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Internal(err, "failed to access "+what)
}
