package store

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	pkgerrors "github.com/pkg/errors"

	"orders-management/internal/apperr"
)

// Wrap turns a driver error into a *apperr.PersistenceError carrying a stack.
// A nil err stays nil and an existing PersistenceError is returned unchanged.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var perr *apperr.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &apperr.PersistenceError{
		Op:         op,
		Table:      table,
		Constraint: IsConstraintViolation(err),
		Err:        pkgerrors.WithStack(err),
	}
}

// IsConstraintViolation reports whether err is an integrity constraint
// violation reported by any of the supported drivers.
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 23: integrity constraint violation.
		return pqErr.Code.Class() == "23"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1048, 1062, 1451, 1452:
			return true
		}
	}
	return false
}
