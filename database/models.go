// Package database provides the GORM/PostgreSQL connection and schema
// management for the fvgbot gap-and-position state machine.
//
// The persisted state lives in four tables with the relationships:
//
//	fair_value_gaps ← retest_gaps ← trades ← trade_status
//
// Data models are defined in the models_pkg package to avoid circular import
// dependencies; per-table repositories live in the gaps, retests and trades
// subpackages. The store is always an explicit handle passed into components,
// never a package-level singleton, so multiple symbols and tests can run in
// isolation.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "fvgbot/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host string, port int, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// InitSchema creates or migrates the four tables. The composite unique index
// on fair_value_gaps (idx_fvg_identity, from the model tags) backs the
// insert-if-absent dedup in the gaps repository.
func (d *Database) InitSchema() error {
	if err := d.db.AutoMigrate(
		&models.FairValueGap{},
		&models.RetestGap{},
		&models.Trade{},
		&models.TradeStatus{},
	); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Core data models - type aliases so callers can keep importing the database
// package directly.
type FairValueGap = models.FairValueGap
type RetestGap = models.RetestGap
type Trade = models.Trade
type TradeStatus = models.TradeStatus
