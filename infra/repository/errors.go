package repository

import (
	"errors"
	"fmt"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// postgres SQLSTATEs that mean "another transaction got there first".
var contentionCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// MapGormErrorToDomain converts GORM and driver errors to domain errors.
// This keeps infrastructure concerns (database errors) within the infrastructure layer.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrAlreadyExists
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	if IsContention(err) {
		return fmt.Errorf("%w: %v", common.ErrContention, err)
	}
	return err
}

// IsContention reports whether err is a lock or serialization conflict
// raised by the database.
func IsContention(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := contentionCodes[pgErr.Code]
		return ok
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// WrapError wraps a GORM operation and automatically maps errors.
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(m).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
