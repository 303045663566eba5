// Package feed provides REST API handlers for the kudos feed.
package feed

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/service/feed"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Service is the feed service as seen by the handlers.
type Service interface {
	List(ctx context.Context, viewer authz.Identity, limit, offset int) (*feed.Page, error)
	CreatePost(ctx context.Context, author authz.Identity, in feed.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, editor authz.Identity, postID uint, in feed.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, admin authz.Identity, postID uint) error
	ToggleLike(ctx context.Context, viewer authz.Identity, postID uint) (bool, error)
	AddComment(ctx context.Context, author authz.Identity, postID uint, text string) (*models.Comment, error)
	ToggleCommentLike(ctx context.Context, viewer authz.Identity, commentID uint) (bool, error)
	DeleteComment(ctx context.Context, viewer authz.Identity, commentID uint) error
}

// Handler handles feed API requests.
type Handler struct {
	service Service
	log     *logger.Logger
}

// NewHandler creates a new feed handler.
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Feed returns a page of posts.
// GET /api/posts/feed?limit=10&offset=0.
func (h *Handler) Feed(c *gin.Context) {
	limit, err := apiutil.ParseInt(c, "limit", feed.DefaultPageSize)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	offset, err := apiutil.ParseInt(c, "offset", 0)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), apiutil.Identity(c), limit, offset)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	var in feed.PostInput
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), apiutil.Identity(c), in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/:id.
func (h *Handler) UpdatePost(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var in feed.PostUpdate
	if err := apiutil.BindJSON(c, &in); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	post, err := h.service.UpdatePost(c.Request.Context(), apiutil.Identity(c), id, in)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/:id.
func (h *Handler) DeletePost(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeletePost(c.Request.Context(), apiutil.Identity(c), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like.
func (h *Handler) ToggleLike(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	liked, err := h.service.ToggleLike(c.Request.Context(), apiutil.Identity(c), id)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

type commentRequest struct {
	CommentText string `json:"comment_text"`
}

// AddComment handles POST /api/posts/:id/comment.
func (h *Handler) AddComment(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	var req commentRequest
	if err := apiutil.BindJSON(c, &req); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), apiutil.Identity(c), id, req.CommentText)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ToggleCommentLike handles POST /api/posts/comments/:id/like.
func (h *Handler) ToggleCommentLike(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	liked, err := h.service.ToggleCommentLike(c.Request.Context(), apiutil.Identity(c), id)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// DeleteComment handles DELETE /api/posts/comments/:id.
func (h *Handler) DeleteComment(c *gin.Context) {
	id, err := apiutil.ParseID(c, "id")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	if err := h.service.DeleteComment(c.Request.Context(), apiutil.Identity(c), id); err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
