//nolint:noctx // Test file uses httptest.NewRequest for simplicity
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/feed"
	"github.com/zetarewards/recognition-api/pkg/logger"
	"github.com/zetarewards/recognition-api/test/testdb"
)

type fixture struct {
	handler  *Handler
	admin    authz.Identity
	manager  authz.Identity
	employee authz.Identity
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.New(t)
	admin := testdb.CreateUser(t, db, "admin", models.RoleAdmin, nil)
	manager := testdb.CreateUser(t, db, "manager", models.RoleManager, nil)
	employee := testdb.CreateUser(t, db, "eve", models.RoleEmployee, &manager.ID)

	service := feed.NewService(repository.NewPostRepository(db), repository.NewUserRepository(db), nil, logger.Nop())
	return &fixture{
		handler:  NewHandler(service, logger.Nop()),
		admin:    authz.Identity{ID: admin.ID, Role: admin.Role},
		manager:  authz.Identity{ID: manager.ID, Role: manager.Role},
		employee: authz.Identity{ID: employee.ID, Role: employee.Role},
	}
}

func (f *fixture) router(caller authz.Identity) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		apiutil.SetIdentity(c, caller)
		c.Next()
	})
	h := f.handler
	router.POST("/api/posts", h.CreatePost)
	router.GET("/api/posts/feed", h.Feed)
	router.PUT("/api/posts/:id", h.UpdatePost)
	router.DELETE("/api/posts/:id", h.DeletePost)
	router.POST("/api/posts/:id/like", h.ToggleLike)
	router.POST("/api/posts/:id/comment", h.AddComment)
	router.POST("/api/posts/comments/:id/like", h.ToggleCommentLike)
	router.DELETE("/api/posts/comments/:id", h.DeleteComment)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (f *fixture) createPost(t *testing.T) models.Post {
	t.Helper()
	w := doRequest(f.router(f.manager), http.MethodPost, "/api/posts",
		fmt.Sprintf(`{"receiver_id": %d, "reason": "Teamwork", "caption": "Thanks for the help"}`, f.employee.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func TestCreatePost(t *testing.T) {
	f := setupFixture(t)
	post := f.createPost(t)
	assert.Equal(t, f.manager.ID, post.GiverID)

	w := doRequest(f.router(f.employee), http.MethodPost, "/api/posts",
		fmt.Sprintf(`{"receiver_id": %d, "reason": "x"}`, f.manager.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(f.router(f.manager), http.MethodPost, "/api/posts",
		fmt.Sprintf(`{"receiver_id": %d}`, f.employee.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeed(t *testing.T) {
	f := setupFixture(t)
	for range 3 {
		f.createPost(t)
	}
	router := f.router(f.employee)

	w := doRequest(router, http.MethodGet, "/api/posts/feed?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page feed.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Posts, 2)
	assert.EqualValues(t, 3, page.TotalCount)
	require.NotNil(t, page.NextOffset)
	assert.Equal(t, 2, *page.NextOffset)

	w = doRequest(router, http.MethodGet, "/api/posts/feed?limit=2&offset=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	page = feed.Page{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Posts, 1)
	assert.Nil(t, page.NextOffset)

	w = doRequest(router, http.MethodGet, "/api/posts/feed?offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikesAndComments(t *testing.T) {
	f := setupFixture(t)
	post := f.createPost(t)
	router := f.router(f.employee)

	w := doRequest(router, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked": true}`, w.Body.String())

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), "")
	assert.JSONEq(t, `{"liked": false}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/api/posts/999/like", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/posts/%d/comment", post.ID), `{"comment_text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/posts/%d/comment", post.ID), `{"comment_text": "Thank you!"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var comment models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))

	w = doRequest(router, http.MethodPost, fmt.Sprintf("/api/posts/comments/%d/like", comment.ID), "")
	assert.JSONEq(t, `{"liked": true}`, w.Body.String())

	w = doRequest(f.router(f.manager), http.MethodDelete, fmt.Sprintf("/api/posts/comments/%d", comment.ID), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodDelete, fmt.Sprintf("/api/posts/comments/%d", comment.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateAndDeletePost(t *testing.T) {
	f := setupFixture(t)
	post := f.createPost(t)
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	w := doRequest(f.router(f.manager), http.MethodPut, path, `{"caption": "Edited"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edited")

	w = doRequest(f.router(f.employee), http.MethodPut, path, `{"caption": "Hijacked"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(f.router(f.manager), http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(f.router(f.admin), http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(f.router(f.admin), http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
