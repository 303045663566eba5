// Package app wires the repositories, services and HTTP handlers together.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/zetarewards/recognition-api/internal/api"
	accountapi "github.com/zetarewards/recognition-api/internal/api/account"
	catalogapi "github.com/zetarewards/recognition-api/internal/api/catalog"
	"github.com/zetarewards/recognition-api/internal/api/dashboard"
	directoryapi "github.com/zetarewards/recognition-api/internal/api/directory"
	feedapi "github.com/zetarewards/recognition-api/internal/api/feed"
	inboxapi "github.com/zetarewards/recognition-api/internal/api/inbox"
	ledgerapi "github.com/zetarewards/recognition-api/internal/api/ledger"
	"github.com/zetarewards/recognition-api/internal/auth"
	"github.com/zetarewards/recognition-api/internal/cache"
	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/internal/mattermost"
	"github.com/zetarewards/recognition-api/internal/notify"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/account"
	"github.com/zetarewards/recognition-api/internal/service/audit"
	"github.com/zetarewards/recognition-api/internal/service/catalog"
	"github.com/zetarewards/recognition-api/internal/service/directory"
	"github.com/zetarewards/recognition-api/internal/service/feed"
	"github.com/zetarewards/recognition-api/internal/service/inbox"
	"github.com/zetarewards/recognition-api/internal/service/leaderboard"
	"github.com/zetarewards/recognition-api/internal/service/ledger"
	"github.com/zetarewards/recognition-api/internal/service/scheduler"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// App is the assembled service.
type App struct {
	Router *gin.Engine

	ledger     *ledger.Service
	catalog    *catalog.Service
	dispatcher *notify.Dispatcher
	scheduler  *scheduler.Service
	log        *logger.Logger
}

// New builds every service on top of an open database and cache.
func New(cfg *config.Config, db *repository.DB, c cache.Cache, log *logger.Logger) *App {
	ledgerRepo := repository.NewLedgerRepository(db)
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	postRepo := repository.NewPostRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TTL())
	ttl := cfg.Database.Redis.TTL()

	auditService := audit.NewService(auditRepo, log.Component("audit"))
	leaderboardService := leaderboard.NewService(ledgerRepo, userRepo, c, ttl, log.Component("leaderboard"))
	catalogService := catalog.NewService(catalogRepo, c, ttl, auditService, log)
	mattermostClient := mattermost.NewClient(&cfg.Notifications.Mattermost, log.Component("mattermost"))

	var sender notify.Sender
	if cfg.Notifications.WebPush.Enabled {
		sender = notify.NewWebPushSender(&cfg.Notifications.WebPush)
	}
	dispatcher := notify.NewDispatcher(notificationRepo, sender, log)

	ledgerService := ledger.NewService(db, ledgerRepo, userRepo, catalogRepo, postRepo, notificationRepo, ledger.Hooks{
		Audit:       auditService,
		Announcer:   mattermostClient,
		Push:        dispatcher,
		Leaderboard: leaderboardService,
	}, log)

	accountService := account.NewService(userRepo, tokens, cfg.Auth.BcryptCost, auditService, log)
	directoryService := directory.NewService(userRepo, ledgerService, auditService, log)
	feedService := feed.NewService(postRepo, userRepo, auditService, log)
	inboxService := inbox.NewService(notificationRepo, userRepo, cfg.Notifications.WebPush.VAPIDPublicKey, log)

	metricsPath := ""
	if cfg.Metrics.Prometheus.Enabled {
		metricsPath = cfg.Metrics.Prometheus.Path
	}

	router := api.NewRouter(api.Handlers{
		Account:   accountapi.NewHandler(accountService, log),
		Ledger:    ledgerapi.NewHandler(ledgerService, log),
		Catalog:   catalogapi.NewHandler(catalogService, log),
		Directory: directoryapi.NewHandler(directoryService, auditService, log),
		Feed:      feedapi.NewHandler(feedService, log),
		Inbox:     inboxapi.NewHandler(inboxService, log),
		Dashboard: dashboard.NewHandler(leaderboardService, log),
	}, api.Options{
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsPath:    metricsPath,
		Health: map[string]api.HealthChecker{
			"database": db,
			"cache":    c,
		},
		Log: log.Component("http"),
	})

	return &App{
		Router:     router,
		ledger:     ledgerService,
		catalog:    catalogService,
		dispatcher: dispatcher,
		scheduler:  scheduler.NewService(cfg, ledgerRepo, mattermostClient, log),
		log:        log,
	}
}

// SeedCatalog loads the catalog seed file into an empty or partial catalog.
// An empty path is a no-op.
func (a *App) SeedCatalog(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	seed, err := catalog.LoadSeedFile(path)
	if err != nil {
		return err
	}
	if _, err := a.catalog.ApplySeed(ctx, seed); err != nil {
		return fmt.Errorf("failed to apply catalog seed: %w", err)
	}
	return nil
}

// Start starts the background jobs.
func (a *App) Start() error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	return nil
}

// Stop stops the background jobs and waits for in-flight side effects.
func (a *App) Stop() {
	a.scheduler.Stop()
	a.ledger.Wait()
	a.dispatcher.Wait()
	a.log.Info().Msg("Background work drained")
}
