package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sjperalta/devagency-api/internal/models"
	pkgLogger "github.com/sjperalta/devagency-api/pkg/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL string, production bool) (*gorm.DB, error) {
	// SQL statements are only traced outside production
	logLevel := logger.Info
	if production {
		logLevel = logger.Warn
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Models lists every persisted type in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Client{},
		&models.Developer{},
		&models.Project{},
		&models.Payment{},
		&models.ProjectDeveloper{},
		&models.AdditionalCost{},
		&models.ProjectStatusEvent{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
