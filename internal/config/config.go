// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Catalog       CatalogConfig       `mapstructure:"catalog"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	Environment     string `mapstructure:"environment"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
	AllowedOrigins  string `mapstructure:"allowed_origins"`  // comma separated, empty allows all
}

// AuthConfig contains bearer token settings.
type AuthConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret"`
	TokenTTL   int    `mapstructure:"token_ttl"` // hours
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

// TTL returns the token lifetime, defaulting to seven days.
func (a *AuthConfig) TTL() time.Duration {
	if a.TokenTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTL) * time.Hour
}

// DatabaseConfig contains relational store and Redis settings.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // postgres, mysql or sqlite
	Postgres PostgresConfig `mapstructure:"postgres"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// MySQLConfig contains MySQL database connection and pool settings.
type MySQLConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// SQLiteConfig contains SQLite settings, used for local development.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains Redis cache connection and pool settings.
// An empty host disables caching.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// NotificationsConfig groups the outbound notification channels.
type NotificationsConfig struct {
	WebPush    WebPushConfig    `mapstructure:"webpush"`
	Mattermost MattermostConfig `mapstructure:"mattermost"`
}

// WebPushConfig contains VAPID settings for browser push notifications.
type WebPushConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber"`
	TTL             int    `mapstructure:"ttl"`
}

// MattermostConfig contains Mattermost webhook notification settings.
type MattermostConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// CatalogConfig contains catalog bootstrap settings.
type CatalogConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

// SchedulerConfig contains the pending redemption reminder settings.
type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Time         string `mapstructure:"time"`
	Timezone     string `mapstructure:"timezone"`
	SkipWeekends bool   `mapstructure:"skip_weekends"`
	MinAgeHours  int    `mapstructure:"min_age_hours"`
}

// MetricsConfig contains metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error when configPath is empty, so the
// service can run from environment variables alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/recognition-api/")
	}

	bindEnv(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", 10)
	v.SetDefault("auth.token_ttl", 168)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.max_open_conns", 25)
	v.SetDefault("database.mysql.max_idle_conns", 5)
	v.SetDefault("database.mysql.conn_max_lifetime", 300)
	v.SetDefault("database.sqlite.path", "recognition.db")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)
	v.SetDefault("database.redis.cache_ttl", 60)
	v.SetDefault("notifications.webpush.subscriber", "mailto:noreply@example.com")
	v.SetDefault("notifications.webpush.ttl", 86400)
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.time", "09:00")
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.skip_weekends", true)
	v.SetDefault("scheduler.min_age_hours", 24)
	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// bindEnv binds explicit environment variables (12-factor app compliance).
func bindEnv(v *viper.Viper) {
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")
	_ = v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("server.allowed_origins", "CORS_ALLOWED_ORIGINS")

	// Auth configuration
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL")
	_ = v.BindEnv("auth.bcrypt_cost", "AUTH_BCRYPT_COST")

	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// MySQL configuration
	_ = v.BindEnv("database.mysql.host", "MYSQL_HOST", "DB_HOST")
	_ = v.BindEnv("database.mysql.port", "MYSQL_PORT", "DB_PORT")
	_ = v.BindEnv("database.mysql.database", "MYSQL_DATABASE", "DB_NAME")
	_ = v.BindEnv("database.mysql.user", "MYSQL_USER", "DB_USER")
	_ = v.BindEnv("database.mysql.password", "MYSQL_PASSWORD", "DB_PASSWORD")

	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")
	_ = v.BindEnv("database.redis.cache_ttl", "REDIS_CACHE_TTL")

	// Notification channels
	_ = v.BindEnv("notifications.webpush.enabled", "WEBPUSH_ENABLED")
	_ = v.BindEnv("notifications.webpush.vapid_public_key", "VAPID_PUBLIC_KEY")
	_ = v.BindEnv("notifications.webpush.vapid_private_key", "VAPID_PRIVATE_KEY")
	_ = v.BindEnv("notifications.webpush.subscriber", "VAPID_SUBSCRIBER")
	_ = v.BindEnv("notifications.mattermost.webhook_url", "MATTERMOST_WEBHOOK_URL")
	_ = v.BindEnv("notifications.mattermost.channel", "MATTERMOST_CHANNEL")
	_ = v.BindEnv("notifications.mattermost.enabled", "MATTERMOST_ENABLED")

	_ = v.BindEnv("catalog.seed_file", "CATALOG_SEED_FILE")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")
	_ = v.BindEnv("scheduler.skip_weekends", "SCHEDULER_SKIP_WEEKENDS")
	_ = v.BindEnv("scheduler.min_age_hours", "SCHEDULER_MIN_AGE_HOURS")

	_ = v.BindEnv("metrics.prometheus.enabled", "PROMETHEUS_ENABLED")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case "mysql":
		if c.Database.MySQL.Host == "" {
			return fmt.Errorf("database.mysql.host is required")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("database.mysql.database is required")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (valid: postgres, mysql, sqlite)", c.Database.Driver)
	}

	if c.Notifications.WebPush.Enabled {
		if c.Notifications.WebPush.VAPIDPublicKey == "" || c.Notifications.WebPush.VAPIDPrivateKey == "" {
			return fmt.Errorf("notifications.webpush requires vapid_public_key and vapid_private_key")
		}
	}
	if c.Notifications.Mattermost.Enabled && c.Notifications.Mattermost.WebhookURL == "" {
		return fmt.Errorf("notifications.mattermost.webhook_url is required when enabled")
	}

	return nil
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// TTL returns the Redis cache lifetime.
func (c *RedisConfig) TTL() time.Duration {
	if c.CacheTTL <= 0 {
		return time.Minute
	}
	return time.Duration(c.CacheTTL) * time.Second
}
