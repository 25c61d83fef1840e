package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Adarsh0311/shopsphere-backend/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens a single-connection SQLite database. Use ":memory:" (or
// "file::memory:") for a throwaway database. With one connection, concurrent
// transactions queue behind each other instead of failing with SQLITE_BUSY.
func OpenSQLite(path string, l logger.Interface) (*gorm.DB, error) {
	if l == nil {
		l = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path+sqliteParams(path)), &gorm.Config{Logger: l})
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func sqliteParams(path string) string {
	if strings.Contains(path, "?") {
		return "&_foreign_keys=on"
	}
	return "?_foreign_keys=on"
}

// UnitOfWorkFor picks the isolation level the configured driver supports.
func UnitOfWorkFor(cfg config.Config, db *gorm.DB) *UnitOfWork {
	if cfg.DBDriver == "sqlite" {
		return NewUnitOfWorkWithIsolation(db, sql.LevelDefault)
	}
	return NewUnitOfWork(db)
}
