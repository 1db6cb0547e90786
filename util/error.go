package util

import (
	"strings"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/juju/errors"
)

// IsErrTableNotExists checks whether err says the queried table is missing,
// for any of the supported drivers.
func IsErrTableNotExists(err error) bool {
	err = originError(err)
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *mysql.MySQLError:
		return e.Number == 1146
	case mssql.Error:
		return e.Number == 208
	}
	// sqlite and hana only expose the code in the message
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "invalid table name")
}

// originError return original error
func originError(err error) error {
	for {
		e := errors.Cause(err)
		if e == err {
			break
		}
		err = e
	}
	return err
}
