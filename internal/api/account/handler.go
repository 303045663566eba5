// Package account provides REST API handlers for signup, login and passwords.
package account

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/service/account"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Service is the account service as seen by the handlers.
type Service interface {
	Signup(ctx context.Context, in account.SignupInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*account.Session, error)
	ForgotPassword(ctx context.Context, email string) string
	ChangePassword(ctx context.Context, caller authz.Identity, current, next string) error
}

// Handler handles account API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new account handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Signup registers a new, unapproved account.
// POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var in account.SignupInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	user, err := h.service.Signup(c.Request.Context(), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Signup successful. An admin must approve the account before login.",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token.
// POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.service.ForgotPassword(c.Request.Context(), req.Email)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles PUT /api/employee/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), apiutil.Identity(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
