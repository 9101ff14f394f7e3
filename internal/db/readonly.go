package db

import (
	"github.com/ncruces/go-sqlite3"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

// isReadOnly compiles query and asks SQLite whether the resulting statement
// can mutate the database (sqlite3_stmt_readonly). The classification is the
// engine's, not a text scan, so PRAGMAs with side effects and statements
// smuggling a trailing write are caught to the extent the engine catches
// them. The statement is closed without ever being stepped.
func isReadOnly(conn *sqlite3.Conn, query string) (bool, error) {
	stmt, _, err := conn.Prepare(query)
	if err != nil {
		return false, apperr.SQL(err)
	}
	defer func() { _ = stmt.Close() }()
	return stmt.ReadOnly(), nil
}
