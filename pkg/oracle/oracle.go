// Package oracle runs queries directly against the example database so
// rendered results can be checked against the source of truth.
package oracle

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/resulttable"
	"github.com/pingcap/tipocket-sqllab/util"
)

// Oracle is a direct connection to the example database.
type Oracle struct {
	driver string
	db     *sql.DB
}

// Open connects to dsn with driver and pings it.
func Open(ctx context.Context, driver, dsn string) (*Oracle, error) {
	db, err := util.OpenDB(driver, dsn, 1)
	if err != nil {
		return nil, errors.Annotatef(err, "open %s oracle", driver)
	}
	db.SetMaxOpenConns(1)

	err = util.RunWithRetry(ctx, 3, time.Second, func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, errors.Annotatef(err, "ping %s oracle", driver)
	}
	zap.L().Info("oracle connected", zap.String("driver", driver))
	return &Oracle{driver: driver, db: db}, nil
}

// Query runs sql and renders the result as a table. Column names form the
// header, NULL renders as an empty cell.
func (o *Oracle) Query(ctx context.Context, query string) (*resulttable.Table, error) {
	rows, err := o.db.QueryContext(ctx, query)
	if err != nil {
		if util.IsErrTableNotExists(err) {
			return nil, core.SetupFailed(err, "example dataset missing in %s oracle", o.driver)
		}
		return nil, errors.Annotatef(err, "query %s oracle", o.driver)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Trace(err)
	}
	t := &resulttable.Table{Header: cols}
	vals := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Trace(err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = render(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, errors.Trace(rows.Err())
}

func render(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}

// Close closes the connection.
func (o *Oracle) Close() error {
	return errors.Trace(o.db.Close())
}
