// Package inbox provides REST API handlers for notifications and push subscriptions.
package inbox

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/service/inbox"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Service is the inbox service as seen by the handlers.
type Service interface {
	List(ctx context.Context, caller authz.Identity, limit int) ([]models.Notification, error)
	MarkAllRead(ctx context.Context, caller authz.Identity) error
	RequestFromManager(ctx context.Context, employee authz.Identity, message string) (*models.Notification, error)
	Subscribe(ctx context.Context, caller authz.Identity, in inbox.SubscriptionInput) (*models.PushSubscription, error)
	Unsubscribe(ctx context.Context, caller authz.Identity, endpoint string) error
	VAPIDPublicKey() string
}

// Handler handles inbox API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new inbox handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// List returns the caller's recent notifications.
// GET /api/notifications?limit=50.
func (h *Handler) List(c *gin.Context) {
	limit, err := apiutil.ParseInt(c, "limit", inbox.DefaultLimit)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), apiutil.Identity(c), limit)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// MarkAllRead handles PUT /api/notifications/read.
func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), apiutil.Identity(c)); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type requestBody struct {
	Message string `json:"message"`
}

// RequestFromManager sends a message to the caller's manager.
// POST /api/employee/notifications/request.
func (h *Handler) RequestFromManager(c *gin.Context) {
	var req requestBody
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	n, err := h.service.RequestFromManager(c.Request.Context(), apiutil.Identity(c), req.Message)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// Subscribe handles POST /api/push/subscriptions.
func (h *Handler) Subscribe(c *gin.Context) {
	var in inbox.SubscriptionInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	sub, err := h.service.Subscribe(c.Request.Context(), apiutil.Identity(c), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles DELETE /api/push/subscriptions.
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.Unsubscribe(c.Request.Context(), apiutil.Identity(c), req.Endpoint); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// VAPIDPublicKey handles GET /api/push/vapid-public-key.
func (h *Handler) VAPIDPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": h.service.VAPIDPublicKey()})
}
