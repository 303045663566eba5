// Package catalog provides REST API handlers for the reward catalog,
// reward categories and reward reasons.
package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/service/catalog"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Service is the catalog service as seen by the handlers.
type Service interface {
	ListCatalog(ctx context.Context) ([]models.CatalogItem, error)

	ListCategories(ctx context.Context) ([]models.RewardCategory, error)
	GetCategory(ctx context.Context, id uint) (*models.RewardCategory, error)
	CreateCategory(ctx context.Context, actor authz.Identity, in catalog.CategoryInput) (*models.RewardCategory, error)
	UpdateCategory(ctx context.Context, actor authz.Identity, id uint, in catalog.CategoryInput) (*models.RewardCategory, error)
	DeleteCategory(ctx context.Context, actor authz.Identity, id uint) error

	ListReasons(ctx context.Context) ([]models.RewardReason, error)
	GetReason(ctx context.Context, id uint) (*models.RewardReason, error)
	CreateReason(ctx context.Context, actor authz.Identity, in catalog.ReasonInput) (*models.RewardReason, error)
	UpdateReason(ctx context.Context, actor authz.Identity, id uint, in catalog.ReasonInput) (*models.RewardReason, error)
	DeleteReason(ctx context.Context, actor authz.Identity, id uint) error

	GetReward(ctx context.Context, id uint) (*models.Reward, error)
	CreateReward(ctx context.Context, actor authz.Identity, in catalog.RewardInput) (*models.Reward, error)
	UpdateReward(ctx context.Context, actor authz.Identity, id uint, in catalog.RewardInput) (*models.Reward, error)
	DeleteReward(ctx context.Context, actor authz.Identity, id uint) error
}

// Handler handles catalog API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// GetCatalog returns every reward with its category.
// GET /api/rewards/catalog.
func (h *Handler) GetCatalog(c *gin.Context) {
	items, err := h.service.ListCatalog(c.Request.Context())
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListCategories handles GET /api/admin/rewardcategories.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /api/admin/rewardcategories/:id.
func (h *Handler) GetCategory(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	category, err := h.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /api/admin/rewardcategories.
func (h *Handler) CreateCategory(c *gin.Context) {
	var in catalog.CategoryInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	category, err := h.service.CreateCategory(c.Request.Context(), apiutil.Identity(c), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /api/admin/rewardcategories/:id.
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var in catalog.CategoryInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	category, err := h.service.UpdateCategory(c.Request.Context(), apiutil.Identity(c), id, in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/admin/rewardcategories/:id.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), apiutil.Identity(c), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListReasons handles GET /api/admin/rewardreasons.
func (h *Handler) ListReasons(c *gin.Context) {
	reasons, err := h.service.ListReasons(c.Request.Context())
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}

// GetReason handles GET /api/admin/rewardreasons/:id.
func (h *Handler) GetReason(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	reason, err := h.service.GetReason(c.Request.Context(), id)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reason)
}

// CreateReason handles POST /api/admin/rewardreasons.
func (h *Handler) CreateReason(c *gin.Context) {
	var in catalog.ReasonInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	reason, err := h.service.CreateReason(c.Request.Context(), apiutil.Identity(c), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reason)
}

// UpdateReason handles PUT /api/admin/rewardreasons/:id.
func (h *Handler) UpdateReason(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var in catalog.ReasonInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	reason, err := h.service.UpdateReason(c.Request.Context(), apiutil.Identity(c), id, in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reason)
}

// DeleteReason handles DELETE /api/admin/rewardreasons/:id.
func (h *Handler) DeleteReason(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeleteReason(c.Request.Context(), apiutil.Identity(c), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetReward handles GET /api/admin/rewards/:id.
func (h *Handler) GetReward(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	reward, err := h.service.GetReward(c.Request.Context(), id)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// CreateReward handles POST /api/admin/rewards.
func (h *Handler) CreateReward(c *gin.Context) {
	var in catalog.RewardInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	reward, err := h.service.CreateReward(c.Request.Context(), apiutil.Identity(c), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}

// UpdateReward handles PUT /api/admin/rewards/:id.
func (h *Handler) UpdateReward(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var in catalog.RewardInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	reward, err := h.service.UpdateReward(c.Request.Context(), apiutil.Identity(c), id, in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// DeleteReward handles DELETE /api/admin/rewards/:id.
func (h *Handler) DeleteReward(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeleteReward(c.Request.Context(), apiutil.Identity(c), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
