// Package directory provides REST API handlers for users, departments,
// profiles and the audit log.
package directory

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/directory"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const defaultAuditLimit = 100

// Service is the directory service as seen by the handlers.
type Service interface {
	Me(ctx context.Context, caller authz.Identity) (*directory.Me, error)
	ListUsers(ctx context.Context, role string) ([]repository.UserProfile, error)
	SetApproval(ctx context.Context, admin authz.Identity, userID uint, approved bool) (*repository.UserProfile, error)
	UpdateUser(ctx context.Context, admin authz.Identity, userID uint, in directory.UserUpdate) (*repository.UserProfile, error)
	DeleteUser(ctx context.Context, admin authz.Identity, userID uint) error
	MyManager(ctx context.Context, employee authz.Identity) (*models.User, error)
	MyEmployees(ctx context.Context, manager authz.Identity) ([]models.User, error)
	UpdateProfile(ctx context.Context, caller authz.Identity, in directory.ProfileUpdate) (*repository.UserProfile, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, name string) (*models.Department, error)
	RenameDepartment(ctx context.Context, id uint, name string) (*models.Department, error)
	DeleteDepartment(ctx context.Context, id uint) error
}

// AuditLog lists audit entries.
type AuditLog interface {
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Handler handles directory API requests.
type Handler struct {
	service Service
	audit   AuditLog
	log     *logger.Logger
}

// NewHandler creates a new directory handler.
func NewHandler(service Service, audit AuditLog, log *logger.Logger) *Handler {
	return &Handler{service: service, audit: audit, log: log}
}

// Me returns the caller's profile and point summary.
// GET /api/me.
func (h *Handler) Me(c *gin.Context) {
	me, err := h.service.Me(c.Request.Context(), apiutil.Identity(c))
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// ListUsers returns every user, optionally filtered by role.
// GET /api/admin/users?role=manager.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type approvalRequest struct {
	Approved *bool `json:"approved"`
}

// SetApproval approves or unapproves a user.
// PUT /api/admin/users/:id/approve.
func (h *Handler) SetApproval(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var req approvalRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if req.Approved == nil {
		apiutil.Error(c, h.log, apperr.Validation("approved must be true or false"))
		return
	}

	user, err := h.service.SetApproval(c.Request.Context(), apiutil.Identity(c), id, *req.Approved)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser changes a user's role, manager or department.
// PUT /api/admin/users/:id/update-role.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var in directory.UserUpdate
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), apiutil.Identity(c), id, in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user.
// DELETE /api/admin/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), apiutil.Identity(c), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyManager returns the caller's manager.
// GET /api/employee/manager.
func (h *Handler) MyManager(c *gin.Context) {
	manager, err := h.service.MyManager(c.Request.Context(), apiutil.Identity(c))
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, manager)
}

// MyEmployees returns the caller's direct reports.
// GET /api/manager/employees.
func (h *Handler) MyEmployees(c *gin.Context) {
	employees, err := h.service.MyEmployees(c.Request.Context(), apiutil.Identity(c))
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// UpdateProfile edits the caller's own profile.
// PUT /api/employee/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in directory.ProfileUpdate
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), apiutil.Identity(c), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type departmentRequest struct {
	Name string `json:"name"`
}

// ListDepartments handles GET /api/admin/departments.
func (h *Handler) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

// CreateDepartment handles POST /api/admin/departments.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	department, err := h.service.CreateDepartment(c.Request.Context(), req.Name)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, department)
}

// RenameDepartment handles PUT /api/admin/departments/:id.
func (h *Handler) RenameDepartment(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var req departmentRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	department, err := h.service.RenameDepartment(c.Request.Context(), id, req.Name)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, department)
}

// DeleteDepartment handles DELETE /api/admin/departments/:id.
func (h *Handler) DeleteDepartment(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeleteDepartment(c.Request.Context(), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AuditLogs returns the most recent audit entries.
// GET /api/admin/audit-logs?limit=100.
func (h *Handler) AuditLogs(c *gin.Context) {
	limit, err := apiutil.ParseInt(c, "limit", defaultAuditLimit)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	entries, err := h.audit.List(c.Request.Context(), limit)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
