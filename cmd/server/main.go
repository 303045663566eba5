// Command server runs the recognition API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/zetarewards/recognition-api/internal/app"
	"github.com/zetarewards/recognition-api/internal/cache"
	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to the YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Migrate(cfg.Database.Driver, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := openCache(ctx, cfg, log)
	defer func() { _ = c.Close() }()

	application := app.New(cfg, db, c, log)
	if err := application.SeedCatalog(ctx, cfg.Catalog.SeedFile); err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           application.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Server.Environment).
			Str("database", cfg.Database.Driver).
			Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		application.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	application.Stop()
	return nil
}

// openCache connects to Redis, falling back to no caching when Redis is not
// configured or unreachable.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) cache.Cache {
	if cfg.Database.Redis.Host == "" {
		log.Info().Msg("Redis not configured, caching disabled")
		return cache.Noop{}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := cache.New(connectCtx, &cfg.Database.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		return cache.Noop{}
	}
	return c
}
