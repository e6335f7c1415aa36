// Package db opens the SQLite database and brings the schema up to date,
// either through versioned SQL migrations or an AutoMigrate fallback for
// development.
package db

import (
	"fmt"
	"os"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the sqlite3 driver and the file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kpiwowar/ofertomat/internal/models"
)

// Models in dependency order for the AutoMigrate path.
func allModels() []any {
	return []any{
		&models.Category{},
		&models.Product{},
		&models.Offer{},
		&models.OfferItem{},
		&models.BusinessCard{},
	}
}

// ConnectAndMigrate opens the database at path and ensures the schema is
// current. If MIGRATIONS=1 (or true/yes) it runs SQL migrations from
// ./migrations; otherwise it AutoMigrates (dev convenience). The fallback
// category is always present afterwards, and DB_SEED=1 loads demo data.
func ConnectAndMigrate(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("DATABASE_PATH jest pusty, sprawdź konfigurację środowiska")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	// SQLite does not enforce foreign keys unless asked.
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(path); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range allModels() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	if err := EnsureFallbackCategory(db); err != nil {
		return nil, err
	}
	if os.Getenv("DB_SEED") == "1" {
		if err := SeedIfEmpty(db); err != nil {
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}
	return db, nil
}

// EnsureFallbackCategory guarantees the reserved category exists so
// orphaned products always have somewhere to land.
func EnsureFallbackCategory(db *gorm.DB) error {
	fallback := models.Category{
		Name:          models.FallbackCategoryName,
		DefaultMargin: models.DefaultMargin,
	}
	if err := db.Where("name = ?", fallback.Name).FirstOrCreate(&fallback).Error; err != nil {
		return fmt.Errorf("fallback category: %w", err)
	}
	return nil
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(path string) error {
	m, err := migrate.New("file://migrations", "sqlite3://"+path)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
