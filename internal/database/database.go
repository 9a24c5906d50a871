package database

import (
	"fmt"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/config"
	applog "github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormWriter routes GORM's log lines into the application logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	applog.Info(format, args...)
}

// Connect opens the in-memory entity store. The pool is pinned to one
// connection so every mutation is applied in arrival order and the shared
// in-memory database lives as long as the returned handle.
func Connect(cfg config.StoreConfig) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}

	gormLog := gormlogger.New(gormWriter{}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access store connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	applog.Info("Entity store opened (%s)", cfg.DSN)
	return db, nil
}

// Models lists every table in the store, in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Message{},
		&models.Notification{},
	}
}

func Migrate(db *gorm.DB) error {
	applog.Info("Running store migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	applog.Info("Store migrations completed")
	return nil
}

// Open connects, migrates and optionally seeds the store.
func Open(cfg config.StoreConfig, bcryptCost int) (*gorm.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	if cfg.Seed {
		if err := Seed(db, bcryptCost); err != nil {
			return nil, err
		}
	}
	return db, nil
}
