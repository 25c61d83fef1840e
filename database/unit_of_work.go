package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UnitOfWork runs a function inside one transaction. The function's
// changes commit together when it returns nil and roll back otherwise.
type UnitOfWork struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewUnitOfWork opens serializable transactions.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db, opts: &sql.TxOptions{Isolation: sql.LevelSerializable}}
}

// NewUnitOfWorkWithIsolation is for drivers without serializable support (SQLite in tests).
func NewUnitOfWorkWithIsolation(db *gorm.DB, level sql.IsolationLevel) *UnitOfWork {
	return &UnitOfWork{db: db, opts: &sql.TxOptions{Isolation: level}}
}

// Do runs fn once. Use Retry when fn may be repeated.
func (u *UnitOfWork) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return u.Retry(ctx, 1, fn, nil)
}

// Retry runs fn and, after a serialization failure, runs it again on a
// fresh transaction, up to attempts runs in total. retryable is asked after
// each failed run; it reports false once the run had effects outside the
// database. A nil retryable means every run may be repeated. A
// serialization failure that is not retried surfaces as Conflict.
func (u *UnitOfWork) Retry(ctx context.Context, attempts int, fn func(tx *gorm.DB) error, retryable func() bool) error {
	for run := 1; ; run++ {
		err := u.db.WithContext(ctx).Transaction(fn, u.opts)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		if run >= attempts || ctx.Err() != nil || (retryable != nil && !retryable()) {
			return apperror.Wrap(apperror.KindConflict, err, "order could not be completed because of a concurrent update, please retry")
		}
		log.Printf("🔁 Serialization failure, retrying unit of work (%d/%d): %v", run, attempts, err)
	}
}

// DB exposes the base handle for reads that do not need a transaction.
func (u *UnitOfWork) DB() *gorm.DB { return u.db }

// SQLSTATE 40001 serialization_failure, 40P01 deadlock_detected.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
