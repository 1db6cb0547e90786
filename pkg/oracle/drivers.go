package oracle

import (
	// database/sql drivers an oracle can be opened with: "mysql", "sqlite",
	// "sqlserver" and "hdb".
	_ "github.com/SAP/go-hdb/driver"
	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)
