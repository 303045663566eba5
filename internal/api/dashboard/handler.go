// Package dashboard provides REST API handlers for the recognition dashboard.
// It exposes the manager, team and peer leaderboards and per-employee statistics.
package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api/apiutil"
	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/service/leaderboard"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const maxLimit = 1000

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetManagersLeaderboard(ctx context.Context) ([]leaderboard.Entry, error)
	GetTeamLeaderboard(ctx context.Context, caller authz.Identity, managerID uint) ([]leaderboard.Entry, error)
	GetPeerLeaderboard(ctx context.Context, employee authz.Identity) ([]leaderboard.Entry, error)
	GetUserStats(ctx context.Context, employee authz.Identity, period string) (*leaderboard.UserStats, error)
}

// Handler handles dashboard API requests.
type Handler struct {
	leaderboardService LeaderboardService
	log                *logger.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(leaderboardService *leaderboard.Service, log *logger.Logger) *Handler {
	return NewHandlerWithInterfaces(leaderboardService, log)
}

// NewHandlerWithInterfaces creates a new dashboard handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(leaderboardService LeaderboardService, log *logger.Logger) *Handler {
	return &Handler{
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// GetManagersLeaderboard returns every manager with their assigned points.
// GET /api/leaderboard/managers?limit=10.
func (h *Handler) GetManagersLeaderboard(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	entries, err := h.leaderboardService.GetManagersLeaderboard(c.Request.Context())
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	h.log.Debug().
		Int("entries", len(entries)).
		Msg("Retrieved managers leaderboard")

	c.JSON(http.StatusOK, board(entries, limit, nil))
}

// GetTeamLeaderboard returns a manager's employees with the points they earned.
// GET /api/leaderboard/managers/:managerId/employees?limit=10.
func (h *Handler) GetTeamLeaderboard(c *gin.Context) {
	managerID, err := apiutil.ParseID(c, "managerId")
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	entries, err := h.leaderboardService.GetTeamLeaderboard(c.Request.Context(), apiutil.Identity(c), managerID)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	h.log.Debug().
		Uint("manager_id", managerID).
		Int("entries", len(entries)).
		Msg("Retrieved team leaderboard")

	c.JSON(http.StatusOK, board(entries, limit, gin.H{"manager_id": managerID}))
}

// GetPeerLeaderboard returns the caller and their peers ranked by points earned.
// GET /api/leaderboard/employee/peers?limit=10.
func (h *Handler) GetPeerLeaderboard(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	entries, err := h.leaderboardService.GetPeerLeaderboard(c.Request.Context(), apiutil.Identity(c))
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, board(entries, limit, nil))
}

// GetMyStats returns recognition statistics for the caller.
// GET /api/leaderboard/employee/stats?period=month.
func (h *Handler) GetMyStats(c *gin.Context) {
	period := c.DefaultQuery("period", leaderboard.PeriodAllTime)
	caller := apiutil.Identity(c)

	stats, err := h.leaderboardService.GetUserStats(c.Request.Context(), caller, period)
	if err != nil {
		apiutil.Error(c, h.log, err)
		return
	}

	h.log.Debug().
		Uint("user_id", caller.ID).
		Str("period", period).
		Msg("Retrieved user stats")

	c.JSON(http.StatusOK, gin.H{
		"stats":        stats,
		"generated_at": time.Now().UTC(),
	})
}

// board wraps leaderboard entries in the response envelope. The total counts
// every entry; limit only trims what is returned.
func board(entries []leaderboard.Entry, limit int, extra gin.H) gin.H {
	total := len(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}

	body := gin.H{
		"leaderboard":   entries,
		"total_entries": total,
		"generated_at":  time.Now().UTC(),
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

// parseLimit extracts and validates the optional limit query parameter.
// Zero means no limit.
func parseLimit(c *gin.Context) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 0, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, apperr.Validation("invalid limit parameter: %s", limitStr)
	}
	if limit < 1 {
		return 0, apperr.Validation("limit must be greater than 0")
	}
	if limit > maxLimit {
		return 0, apperr.Validation("limit cannot exceed %d", maxLimit)
	}
	return limit, nil
}
