// Package repository provides data access layer using GORM for database operations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zetarewards/recognition-api/internal/config"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Sentinel errors returned (wrapped) by repositories.
var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = gorm.ErrDuplicatedKey
	// ErrConditionFailed is returned when a conditional update matched no row.
	ErrConditionFailed = errors.New("conditional update matched no rows")
)

// DB holds the database connection.
type DB struct {
	*gorm.DB
}

// NewDB creates a new database connection for the configured driver.
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	var (
		dialector       gorm.Dialector
		maxOpen         int
		maxIdle         int
		connMaxLifetime int
	)

	switch cfg.Driver {
	case "postgres":
		pg := cfg.Postgres
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			pg.Host,
			pg.Port,
			pg.User,
			pg.Password,
			pg.Database,
			pg.SSLMode,
		)
		dialector = postgres.Open(dsn)
		maxOpen, maxIdle, connMaxLifetime = pg.MaxOpenConns, pg.MaxIdleConns, pg.ConnMaxLifetime
	case "mysql":
		my := cfg.MySQL
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			my.User,
			my.Password,
			my.Host,
			my.Port,
			my.Database,
		)
		dialector = mysql.Open(dsn)
		maxOpen, maxIdle, connMaxLifetime = my.MaxOpenConns, my.MaxIdleConns, my.ConnMaxLifetime
	case "sqlite":
		// SQLite allows a single writer; one connection keeps transactions serialized.
		dialector = sqlite.Open(cfg.SQLite.Path + "?_foreign_keys=on&_busy_timeout=5000")
		maxOpen, maxIdle = 1, 1
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := Open(dialector, log)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("driver", cfg.Driver).
		Msg("Connected to database")

	return db, nil
}

// Open wraps a GORM dialector with the service's GORM settings.
func Open(dialector gorm.Dialector, log *logger.Logger) (*DB, error) {
	// Configure GORM logger
	gormLogLevel := gormlogger.Warn
	if log.IsDebug() {
		gormLogLevel = gormlogger.Info
	}

	gormConfig := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{db}, nil
}

// AllModels lists every persisted model, in dependency order.
func AllModels() []any {
	return []any{
		&models.Department{},
		&models.User{},
		&models.AdminBudget{},
		&models.ManagerPoints{},
		&models.RewardCategory{},
		&models.RewardReason{},
		&models.Reward{},
		&models.RewardPoints{},
		&models.Redemption{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.AuditLog{},
		&models.Notification{},
		&models.PushSubscription{},
	}
}

// AutoMigrate runs database migrations for all models.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(AllModels()...)
}

// Transaction runs fn inside a single database transaction. The DB passed to
// fn is bound to the transaction; fn must use it for every statement that
// belongs to the unit of work. Returning an error rolls everything back.
func (db *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{tx})
	})
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
