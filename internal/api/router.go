// Package api assembles the HTTP router from the per-area handlers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zetarewards/recognition-api/internal/api/account"
	"github.com/zetarewards/recognition-api/internal/api/catalog"
	"github.com/zetarewards/recognition-api/internal/api/dashboard"
	"github.com/zetarewards/recognition-api/internal/api/directory"
	"github.com/zetarewards/recognition-api/internal/api/feed"
	"github.com/zetarewards/recognition-api/internal/api/inbox"
	"github.com/zetarewards/recognition-api/internal/api/ledger"
	"github.com/zetarewards/recognition-api/internal/api/middleware"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

const healthTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers are the per-area request handlers.
type Handlers struct {
	Account   *account.Handler
	Ledger    *ledger.Handler
	Catalog   *catalog.Handler
	Directory *directory.Handler
	Feed      *feed.Handler
	Inbox     *inbox.Handler
	Dashboard *dashboard.Handler
}

// Options configure the router.
type Options struct {
	Tokens         middleware.TokenParser
	AllowedOrigins string
	MetricsPath    string // empty disables the metrics endpoint
	Health         map[string]HealthChecker
	Log            *logger.Logger
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(opts.Log),
		middleware.CORS(opts.AllowedOrigins),
	)

	router.GET("/health", healthHandler(opts.Health))
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", h.Account.Signup)
	auth.POST("/login", h.Account.Login)
	auth.POST("/forgot-password", h.Account.ForgotPassword)

	protected := api.Group("")
	protected.Use(middleware.Authenticate(opts.Tokens))

	allow := middleware.RequirePermission

	protected.GET("/me", allow(authz.ResourceProfile, authz.ActionRead), h.Directory.Me)

	// Budget and allocations
	protected.POST("/admin/budget/topup", allow(authz.ResourceBudget, authz.ActionUpdate), h.Ledger.TopUpBudget)
	protected.GET("/admin/budget", allow(authz.ResourceBudget, authz.ActionRead), h.Ledger.GetBudget)
	protected.POST("/admin/assign-points", allow(authz.ResourceAllocation, authz.ActionCreate), h.Ledger.AssignPoints)
	protected.PUT("/admin/assign-points/:managerId", allow(authz.ResourceAllocation, authz.ActionUpdate), h.Ledger.IncrementPoints)

	// Redemptions
	protected.GET("/admin/all/redemptions", allow(authz.ResourceRedemption, authz.ActionList), h.Ledger.ListRedemptions)
	protected.PUT("/admin/redemptions/:id/status", allow(authz.ResourceRedemption, authz.ActionUpdate), h.Ledger.ResolveRedemption)
	protected.POST("/employee/redemptions", allow(authz.ResourceRedemption, authz.ActionCreate), h.Ledger.RequestRedemption)
	protected.GET("/employee/redemptions", allow(authz.ResourceRedemption, authz.ActionRead), h.Ledger.ListMyRedemptions)

	// Issuance and balances
	protected.POST("/rewards/issue", allow(authz.ResourceIssuance, authz.ActionCreate), h.Ledger.IssueReward)
	protected.GET("/rewards/issued", allow(authz.ResourceIssuance, authz.ActionList), h.Ledger.ListIssued)
	protected.GET("/employee/points", allow(authz.ResourceBalance, authz.ActionRead), h.Ledger.GetPoints)

	// Users, departments and audit
	protected.GET("/admin/users", allow(authz.ResourceUser, authz.ActionList), h.Directory.ListUsers)
	protected.PUT("/admin/users/:id/approve", allow(authz.ResourceUser, authz.ActionUpdate), h.Directory.SetApproval)
	protected.PUT("/admin/users/:id/update-role", allow(authz.ResourceUser, authz.ActionUpdate), h.Directory.UpdateUser)
	protected.DELETE("/admin/users/:id", allow(authz.ResourceUser, authz.ActionDelete), h.Directory.DeleteUser)
	protected.GET("/admin/departments", allow(authz.ResourceDepartment, authz.ActionList), h.Directory.ListDepartments)
	protected.POST("/admin/departments", allow(authz.ResourceDepartment, authz.ActionCreate), h.Directory.CreateDepartment)
	protected.PUT("/admin/departments/:id", allow(authz.ResourceDepartment, authz.ActionUpdate), h.Directory.RenameDepartment)
	protected.DELETE("/admin/departments/:id", allow(authz.ResourceDepartment, authz.ActionDelete), h.Directory.DeleteDepartment)
	protected.GET("/admin/audit-logs", allow(authz.ResourceAuditLog, authz.ActionList), h.Directory.AuditLogs)
	protected.GET("/manager/employees", allow(authz.ResourceTeam, authz.ActionList), h.Directory.MyEmployees)
	protected.GET("/employee/manager", allow(authz.ResourceManager, authz.ActionRead), h.Directory.MyManager)
	protected.PUT("/employee/profile", allow(authz.ResourceProfile, authz.ActionUpdate), h.Directory.UpdateProfile)
	protected.PUT("/employee/password", h.Account.ChangePassword)

	// Catalog
	protected.GET("/rewards/catalog", allow(authz.ResourceCatalog, authz.ActionList), h.Catalog.GetCatalog)
	protected.POST("/admin/rewards", allow(authz.ResourceCatalog, authz.ActionCreate), h.Catalog.CreateReward)
	protected.GET("/admin/rewards/:id", allow(authz.ResourceCatalog, authz.ActionRead), h.Catalog.GetReward)
	protected.PUT("/admin/rewards/:id", allow(authz.ResourceCatalog, authz.ActionUpdate), h.Catalog.UpdateReward)
	protected.DELETE("/admin/rewards/:id", allow(authz.ResourceCatalog, authz.ActionDelete), h.Catalog.DeleteReward)
	protected.GET("/admin/rewardcategories", allow(authz.ResourceRewardCategory, authz.ActionList), h.Catalog.ListCategories)
	protected.GET("/admin/rewardcategories/:id", allow(authz.ResourceRewardCategory, authz.ActionRead), h.Catalog.GetCategory)
	protected.POST("/admin/rewardcategories", allow(authz.ResourceRewardCategory, authz.ActionCreate), h.Catalog.CreateCategory)
	protected.PUT("/admin/rewardcategories/:id", allow(authz.ResourceRewardCategory, authz.ActionUpdate), h.Catalog.UpdateCategory)
	protected.DELETE("/admin/rewardcategories/:id", allow(authz.ResourceRewardCategory, authz.ActionDelete), h.Catalog.DeleteCategory)
	protected.GET("/admin/rewardreasons", allow(authz.ResourceRewardReason, authz.ActionList), h.Catalog.ListReasons)
	protected.GET("/admin/rewardreasons/:id", allow(authz.ResourceRewardReason, authz.ActionRead), h.Catalog.GetReason)
	protected.POST("/admin/rewardreasons", allow(authz.ResourceRewardReason, authz.ActionCreate), h.Catalog.CreateReason)
	protected.PUT("/admin/rewardreasons/:id", allow(authz.ResourceRewardReason, authz.ActionUpdate), h.Catalog.UpdateReason)
	protected.DELETE("/admin/rewardreasons/:id", allow(authz.ResourceRewardReason, authz.ActionDelete), h.Catalog.DeleteReason)

	// Notifications and push
	protected.GET("/notifications", allow(authz.ResourceNotification, authz.ActionList), h.Inbox.List)
	protected.PUT("/notifications/read", allow(authz.ResourceNotification, authz.ActionList), h.Inbox.MarkAllRead)
	protected.POST("/employee/notifications/request", allow(authz.ResourceNotification, authz.ActionCreate), h.Inbox.RequestFromManager)
	protected.POST("/push/subscriptions", allow(authz.ResourcePushSub, authz.ActionCreate), h.Inbox.Subscribe)
	protected.DELETE("/push/subscriptions", allow(authz.ResourcePushSub, authz.ActionDelete), h.Inbox.Unsubscribe)
	protected.GET("/push/vapid-public-key", h.Inbox.VAPIDPublicKey)

	// Feed
	protected.POST("/posts", allow(authz.ResourcePost, authz.ActionCreate), h.Feed.CreatePost)
	protected.GET("/posts/feed", allow(authz.ResourcePost, authz.ActionList), h.Feed.Feed)
	protected.PUT("/posts/:id", allow(authz.ResourcePost, authz.ActionUpdate), h.Feed.UpdatePost)
	protected.DELETE("/posts/:id", allow(authz.ResourcePost, authz.ActionDelete), h.Feed.DeletePost)
	protected.POST("/posts/:id/like", allow(authz.ResourcePost, authz.ActionList), h.Feed.ToggleLike)
	protected.POST("/posts/:id/comment", allow(authz.ResourceComment, authz.ActionCreate), h.Feed.AddComment)
	protected.POST("/posts/comments/:id/like", allow(authz.ResourceComment, authz.ActionCreate), h.Feed.ToggleCommentLike)
	protected.DELETE("/posts/comments/:id", allow(authz.ResourceComment, authz.ActionDelete), h.Feed.DeleteComment)

	// Leaderboards
	protected.GET("/leaderboard/managers", allow(authz.ResourceLeaderboard, authz.ActionList), h.Dashboard.GetManagersLeaderboard)
	protected.GET("/leaderboard/managers/:managerId/employees", allow(authz.ResourceTeamBoard, authz.ActionList), h.Dashboard.GetTeamLeaderboard)
	protected.GET("/leaderboard/employee/peers", allow(authz.ResourcePeerBoard, authz.ActionList), h.Dashboard.GetPeerLeaderboard)
	protected.GET("/leaderboard/employee/stats", allow(authz.ResourcePeerBoard, authz.ActionList), h.Dashboard.GetMyStats)

	return router
}

// healthHandler pings every dependency and reports 503 if any is down.
func healthHandler(checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for name, check := range checks {
			if err := check.Health(ctx); err != nil {
				status = http.StatusServiceUnavailable
				components[name] = err.Error()
				continue
			}
			components[name] = "ok"
		}

		overall := "healthy"
		if status != http.StatusOK {
			overall = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":     overall,
			"components": components,
			"timestamp":  time.Now().UTC(),
		})
	}
}
