package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewSQLiteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows one writer; concurrent transactions on separate connections
	// fail with "database is locked" instead of waiting. A single connection
	// also keeps :memory: from becoming one empty database per connection.
	conn, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	conn.SetMaxOpenConns(1)

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	models := []interface{}{
		&models.Dependency{},
		&models.Watcher{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
