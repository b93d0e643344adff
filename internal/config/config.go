package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Export   ExportConfig   `mapstructure:"export"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects and configures the relational store. The default
// driver is sqlite, a single local file; postgres is available for shared
// deployments.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig contains connection settings for the asynq queue and the
// notification pub/sub channel.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// StorageConfig selects where rendered report files are kept.
type StorageConfig struct {
	Backend string      `mapstructure:"backend"` // "local" or "minio"
	Local   LocalConfig `mapstructure:"local"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

// LocalConfig configures the on-device export directory.
type LocalConfig struct {
	Dir string `mapstructure:"dir"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
}

// AuthConfig carries JWT signing settings.
type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// LogConfig controls slog output and file rotation.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Console    bool   `mapstructure:"console"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ExportConfig bounds the export pipeline.
type ExportConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
	Concurrency   int `mapstructure:"concurrency"`
}

// ClamdConfig points at an optional clamd daemon for scanning avatar uploads.
// An empty address disables scanning.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisAddr builds the host:port address for redis clients.
func (r RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DSN builds a lib/pq compatible connection string for the postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/daylog.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "daylog")
	v.SetDefault("database.user", "daylog")
	v.SetDefault("database.password", "daylog")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.dir", "data/exports")
	v.SetDefault("storage.minio.endpoint", "localhost:9000")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.bucket", "reports")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("export.retention_days", 14)
	v.SetDefault("export.concurrency", 4)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                        "API_PORT",
		"api.allowed_origins":             "API_ALLOWED_ORIGINS",
		"database.driver":                 "DATABASE_DRIVER",
		"database.path":                   "DATABASE_PATH",
		"database.host":                   "DATABASE_HOST",
		"database.port":                   "DATABASE_PORT",
		"database.name":                   "POSTGRES_DB",
		"database.user":                   "POSTGRES_USER",
		"database.password":               "POSTGRES_PASSWORD",
		"database.sslmode":                "DATABASE_SSLMODE",
		"redis.host":                      "REDIS_HOST",
		"redis.port":                      "REDIS_PORT",
		"storage.backend":                 "STORAGE_BACKEND",
		"storage.local.dir":               "STORAGE_LOCAL_DIR",
		"storage.minio.endpoint":          "MINIO_ENDPOINT",
		"storage.minio.access_key_id":     "MINIO_ACCESS_KEY_ID",
		"storage.minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
		"storage.minio.use_ssl":           "MINIO_USE_SSL",
		"storage.minio.bucket":            "MINIO_BUCKET",
		"auth.secret":                     "AUTH_SECRET",
		"auth.access_ttl":                 "AUTH_ACCESS_TTL",
		"auth.refresh_ttl":                "AUTH_REFRESH_TTL",
		"log.level":                       "LOG_LEVEL",
		"log.file":                        "LOG_FILE",
		"log.console":                     "LOG_CONSOLE",
		"log.max_size_mb":                 "LOG_MAX_SIZE_MB",
		"log.max_backups":                 "LOG_MAX_BACKUPS",
		"log.max_age_days":                "LOG_MAX_AGE_DAYS",
		"export.retention_days":           "EXPORT_RETENTION_DAYS",
		"export.concurrency":              "EXPORT_CONCURRENCY",
		"clamd.addr":                      "CLAMD_ADDR",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Auth.Secret == "" {
		return errors.New("auth secret is required")
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			return errors.New("database path is required for sqlite")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			return errors.New("database host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.SSLMode == "" {
			return errors.New("database sslmode is required")
		}
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}

	switch cfg.Storage.Backend {
	case "local":
		if cfg.Storage.Local.Dir == "" {
			return errors.New("local storage dir is required")
		}
	case "minio":
		if cfg.Storage.MinIO.Endpoint == "" {
			return errors.New("minio endpoint is required")
		}
		if cfg.Storage.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.Storage.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.Storage.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Export.RetentionDays < 0 {
		return errors.New("export retention days must not be negative")
	}
	if cfg.Export.Concurrency <= 0 {
		return errors.New("export concurrency must be positive")
	}

	return nil
}
