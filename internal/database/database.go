package database

import (
	"fmt"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDatabase opens the journal database and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema and seeds the accounts table from the config.
// The journal is durable, so existing tables are kept as-is.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(&models.Trade{}, &models.Account{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for label, equity := range cfg.Journal.Accounts {
		acc := models.Account{Label: label, StartEquity: equity}
		if err := db.FirstOrCreate(&acc, models.Account{Label: label}).Error; err != nil {
			return fmt.Errorf("failed to seed account '%s': %w", label, err)
		}
	}

	return nil
}
