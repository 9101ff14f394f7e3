package db

import (
	"fmt"

	"github.com/ncruces/go-sqlite3"

	"github.com/agentic-research/sqlite-helper/api"
	"github.com/agentic-research/sqlite-helper/internal/apperr"
	"github.com/agentic-research/sqlite-helper/internal/sandbox"
)

// listTables returns user table names in ascending lexical order. SQLite's
// own catalog tables (sqlite_*) are excluded.
func listTables(conn *sqlite3.Conn) ([]string, error) {
	stmt, _, err := conn.Prepare(
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, apperr.SQL(err)
	}
	defer func() { _ = stmt.Close() }()

	tables := []string{}
	for stmt.Step() {
		tables = append(tables, stmt.ColumnText(0))
	}
	if err := stmt.Err(); err != nil {
		return nil, apperr.SQL(err)
	}
	return tables, nil
}

// listColumns returns each column's name and declared type in definition
// order. PRAGMA table_info cannot bind the table name, so the identifier
// gate is the only thing between the format string below and injection.
func listColumns(conn *sqlite3.Conn, table string) ([]api.ColumnMeta, error) {
	if !sandbox.ValidTableRef(table) {
		return nil, apperr.InvalidRequest("invalid table identifier: %s", table)
	}

	stmt, _, err := conn.Prepare(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, apperr.SQL(err)
	}
	defer func() { _ = stmt.Close() }()

	// table_info rows are (cid, name, type, notnull, dflt_value, pk).
	columns := []api.ColumnMeta{}
	for stmt.Step() {
		columns = append(columns, api.ColumnMeta{
			Name:     stmt.ColumnText(1),
			DeclType: stmt.ColumnText(2),
		})
	}
	if err := stmt.Err(); err != nil {
		return nil, apperr.SQL(err)
	}
	return columns, nil
}
