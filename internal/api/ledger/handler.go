// Package ledger provides REST API handlers for budgets, point allocation,
// reward issuance and redemptions.
package ledger

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/service/ledger"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Service is the ledger service as seen by the handlers.
type Service interface {
	TopUpBudget(ctx context.Context, admin authz.Identity, points int64, pointValue *decimal.Decimal) (*models.AdminBudget, error)
	GetBudget(ctx context.Context, adminID uint) (*models.AdminBudget, error)
	Allocate(ctx context.Context, admin authz.Identity, managerID uint, points int64) (*models.ManagerPoints, error)
	IncrementAllocation(ctx context.Context, admin authz.Identity, managerID uint, points int64) (*models.ManagerPoints, error)
	IssueReward(ctx context.Context, giver authz.Identity, req ledger.IssueRequest) (*ledger.IssueResult, error)
	RequestRedemption(ctx context.Context, employee authz.Identity, rewardID uint) (*models.Redemption, error)
	ResolveRedemption(ctx context.Context, admin authz.Identity, redemptionID uint, status, declineReason string) (*models.Redemption, error)
	Balance(ctx context.Context, userID uint) (ledger.Balance, error)
	History(ctx context.Context, userID uint) ([]models.RewardPoints, error)
	GivenHistory(ctx context.Context, giverID uint) ([]models.RewardPoints, error)
	ListRedemptions(ctx context.Context, status string) ([]models.Redemption, error)
	ListUserRedemptions(ctx context.Context, userID uint) ([]models.Redemption, error)
}

// Handler handles ledger API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new ledger handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type topUpRequest struct {
	Points     int64            `json:"points"`
	PointValue *decimal.Decimal `json:"point_value"`
}

// TopUpBudget adds points to the caller's admin budget.
// POST /api/admin/budget/topup.
func (h *Handler) TopUpBudget(c *gin.Context) {
	var req topUpRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	budget, err := h.service.TopUpBudget(c.Request.Context(), apiutil.Identity(c), req.Points, req.PointValue)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

// GetBudget returns the caller's admin budget.
// GET /api/admin/budget.
func (h *Handler) GetBudget(c *gin.Context) {
	budget, err := h.service.GetBudget(c.Request.Context(), apiutil.Identity(c).ID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, budget)
}

type assignRequest struct {
	ManagerID      uint  `json:"manager_id"`
	PointsAssigned int64 `json:"points_assigned"`
}

// AssignPoints makes the initial allocation to a manager's pool.
// POST /api/admin/assign-points.
func (h *Handler) AssignPoints(c *gin.Context) {
	var req assignRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	pool, err := h.service.Allocate(c.Request.Context(), apiutil.Identity(c), req.ManagerID, req.PointsAssigned)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, pool)
}

type incrementRequest struct {
	Points int64 `json:"points"`
}

// IncrementPoints adds points to an existing manager pool.
// PUT /api/admin/assign-points/:managerId.
func (h *Handler) IncrementPoints(c *gin.Context) {
	managerID, err := apiutil.ParseID(c, "managerId")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var req incrementRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	pool, err := h.service.IncrementAllocation(c.Request.Context(), apiutil.Identity(c), managerID, req.Points)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, pool)
}

type issueRequest struct {
	ReceiverID uint    `json:"receiver_id"`
	Points     int64   `json:"points"`
	Reason     string  `json:"reason"`
	ReasonID   *uint   `json:"reason_id"`
	Caption    string  `json:"caption"`
	ImageURL   *string `json:"image_url"`
}

// IssueReward grants points from the caller's pool.
// POST /api/rewards/issue.
func (h *Handler) IssueReward(c *gin.Context) {
	var req issueRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	result, err := h.service.IssueReward(c.Request.Context(), apiutil.Identity(c), ledger.IssueRequest{
		ReceiverID: req.ReceiverID,
		Points:     req.Points,
		Reason:     req.Reason,
		ReasonID:   req.ReasonID,
		Caption:    req.Caption,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetPoints returns the caller's balance and ledger history.
// GET /api/employee/points.
func (h *Handler) GetPoints(c *gin.Context) {
	ctx := c.Request.Context()
	caller := apiutil.Identity(c)

	balance, err := h.service.Balance(ctx, caller.ID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	history, err := h.service.History(ctx, caller.ID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"history": history,
	})
}

// ListIssued returns the rewards the caller has issued.
// GET /api/rewards/issued.
func (h *Handler) ListIssued(c *gin.Context) {
	entries, err := h.service.GivenHistory(c.Request.Context(), apiutil.Identity(c).ID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"issued": entries,
		"total":  len(entries),
	})
}

type redemptionRequest struct {
	RewardID uint `json:"reward_id"`
}

// RequestRedemption asks to spend points on a catalog reward.
// POST /api/employee/redemptions.
func (h *Handler) RequestRedemption(c *gin.Context) {
	var req redemptionRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	redemption, err := h.service.RequestRedemption(c.Request.Context(), apiutil.Identity(c), req.RewardID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, redemption)
}

// ListMyRedemptions returns the caller's redemption requests.
// GET /api/employee/redemptions.
func (h *Handler) ListMyRedemptions(c *gin.Context) {
	redemptions, err := h.service.ListUserRedemptions(c.Request.Context(), apiutil.Identity(c).ID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, redemptions)
}

// ListRedemptions returns every redemption, optionally filtered by status.
// GET /api/admin/all/redemptions?status=pending.
func (h *Handler) ListRedemptions(c *gin.Context) {
	redemptions, err := h.service.ListRedemptions(c.Request.Context(), c.Query("status"))
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, redemptions)
}

type resolveRequest struct {
	Status        string `json:"status"`
	DeclineReason string `json:"decline_reason"`
}

// ResolveRedemption approves or declines a pending redemption.
// PUT /api/admin/redemptions/:id/status.
func (h *Handler) ResolveRedemption(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var req resolveRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	redemption, err := h.service.ResolveRedemption(c.Request.Context(), apiutil.Identity(c), id, req.Status, req.DeclineReason)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, redemption)
}
