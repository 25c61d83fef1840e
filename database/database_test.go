package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite("file::memory:", nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	admin := AdminSeed{Username: "admin", Password: "secret", Email: "admin@example.com"}

	require.NoError(t, Seed(db, admin))
	require.NoError(t, Seed(db, admin))

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	assert.Equal(t, int64(2), roles)

	var user models.User
	require.NoError(t, db.Preload("Roles").Where("username = ?", "admin").First(&user).Error)
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, user.RoleNames())
	assert.NotEqual(t, "secret", user.PasswordHash)
}

func TestUnitOfWorkCommitsAndRollsBack(t *testing.T) {
	db := openTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	err := uow.Do(ctx, func(tx *gorm.DB) error {
		return tx.Create(&models.Product{Name: "kept", Price: decimal.NewFromInt(1), StockQuantity: 1}).Error
	})
	require.NoError(t, err)

	boom := apperror.BadRequest("nope")
	err = uow.Do(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Product{Name: "dropped", Price: decimal.NewFromInt(1)}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	var names []string
	require.NoError(t, db.Model(&models.Product{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"kept"}, names)
}

func TestSerializationFailureBecomesConflict(t *testing.T) {
	for _, code := range []string{"40001", "40P01"} {
		err := fmt.Errorf("commit: %w", &pgconn.PgError{Code: code})
		assert.True(t, isSerializationFailure(err), code)
	}
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("plain")))

	db := openTestDB(t)
	err := NewUnitOfWork(db).Do(context.Background(), func(tx *gorm.DB) error {
		return &pgconn.PgError{Code: "40001"}
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, parseLogLevel("SILENT"))
	assert.Equal(t, logger.Info, parseLogLevel("info"))
	assert.Equal(t, logger.Warn, parseLogLevel(""))
}

func TestUnitOfWorkRetriesSerializationFailures(t *testing.T) {
	db := openTestDB(t)
	uow := NewUnitOfWork(db)
	ctx := context.Background()

	runs := 0
	err := uow.Retry(ctx, 3, func(tx *gorm.DB) error {
		runs++
		if runs == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return tx.Create(&models.Product{Name: "retried"}).Error
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)

	runs = 0
	err = uow.Retry(ctx, 3, func(tx *gorm.DB) error {
		runs++
		return &pgconn.PgError{Code: "40P01"}
	}, nil)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 3, runs)

	// A run with outside effects is not repeated.
	runs = 0
	err = uow.Retry(ctx, 3, func(tx *gorm.DB) error {
		runs++
		return &pgconn.PgError{Code: "40001"}
	}, func() bool { return false })
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, 1, runs)

	// Other errors are returned as they are, without a second run.
	runs = 0
	err = uow.Retry(ctx, 3, func(tx *gorm.DB) error {
		runs++
		return apperror.BadRequest("nope")
	}, nil)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, 1, runs)
}
