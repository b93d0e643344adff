package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"daylog/internal/config"
)

// InitDatabase opens the configured relational store and returns a GORM
// handle. sqlite keeps everything in a single local file; postgres mirrors
// the same schema for shared deployments.
func InitDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		// Foreign keys are off by default in sqlite; the Day->Activity
		// cascade depends on them.
		dialector = sqlite.Open(cfg.Path + "?_foreign_keys=on")
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap db: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// One writer connection avoids SQLITE_BUSY under concurrent handlers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Day{},
		&Activity{},
		&SpecialActivity{},
		&ResponsibilitiesSummary{},
		&LogTemplate{},
		&ExportTemplate{},
		&ReportExport{},
	)
}
