package sqlstore

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/hanpama/membergraph/internal/store"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451
	mysqlForeignKeyChild  = 1452
)

// classify maps a driver error to the store error taxonomy. Errors that are
// already classified pass through.
func classify(entity, op string, err error) error {
	if err == nil || store.IsNotFound(err) || store.IsConstraintError(err) {
		return err
	}
	if isConstraintViolation(err) {
		return store.NewConstraintError(err.Error(), err)
	}
	return store.NewQueryError(entity, op, err)
}

func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 23: integrity constraint violation
		return pqErr.Code.Class() == "23"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry, mysqlForeignKeyParent, mysqlForeignKeyChild:
			return true
		}
		return false
	}
	// modernc.org/sqlite reports "constraint failed: UNIQUE constraint failed: ..."
	return strings.Contains(err.Error(), "constraint failed")
}
