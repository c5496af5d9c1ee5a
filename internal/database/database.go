// Package database opens SQLite databases with the ledger schema applied.
// SQLite serves tests and single-node development; production runs on
// postgres with the embedded migrations.
package database

import (
	"fmt"

	infrarepo "github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/infra/repository"
	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
)

// OpenSQLite opens dsn and migrates every ledger table. The pool is capped at
// one connection: SQLite has a single writer and ignores row locks, so
// transactions run one at a time.
func OpenSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	connection, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}
	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := connection.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	if err := connection.AutoMigrate(infrarepo.Models()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return connection, nil
}

// MemoryDSN returns a DSN for a private in-memory database called name.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
}
