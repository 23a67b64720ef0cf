// Package all links every journal backend and the SQL Server driver.
package all

import (
	_ "github.com/microsoft/go-mssqldb"

	_ "lessonkit/internal/journal/mssql"
	_ "lessonkit/internal/journal/postgres"
	_ "lessonkit/internal/journal/sqlite"
)
