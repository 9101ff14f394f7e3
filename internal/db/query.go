package db

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ncruces/go-sqlite3"

	"github.com/agentic-research/sqlite-helper/api"
	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

// runQuery executes one SQL statement and collects at most limit rows.
//
// When an offset is given the statement is wrapped as
// SELECT * FROM (<sql>) LIMIT <limit+1> OFFSET <offset>, which keeps
// pagination out of the client's SQL. Rows are stepped one at a time and the
// fetch stops after limit rows; the wrap allows exactly one probe row past
// the cap, so a limit+1-th step succeeding is what marks the result
// truncated with next_offset = offset + rows returned. The engine is never
// asked to materialize more than limit+1 rows.
//
// Column names and declared types come from the prepared statement, not from
// the first row, so a zero-row result still reports its columns.
func runQuery(conn *sqlite3.Conn, query string, limit int, offset *int) (*api.QueryResult, error) {
	effective := query
	if offset != nil {
		effective = fmt.Sprintf("SELECT * FROM (%s) LIMIT %d OFFSET %d", query, limit+1, *offset)
	}

	stmt, _, err := conn.Prepare(effective)
	if err != nil {
		return nil, apperr.SQL(err)
	}
	defer func() { _ = stmt.Close() }()

	columns := make([]api.ColumnMeta, stmt.ColumnCount())
	for i := range columns {
		columns[i] = api.ColumnMeta{
			Name:     stmt.ColumnName(i),
			DeclType: stmt.ColumnDeclType(i),
		}
	}

	base := 0
	if offset != nil {
		base = *offset
	}

	result := &api.QueryResult{Columns: columns, Rows: []api.Row{}}
	for stmt.Step() {
		if len(result.Rows) >= limit {
			result.Truncated = true
			next := base + len(result.Rows)
			result.NextOffset = &next
			break
		}
		result.Rows = append(result.Rows, rowValues(stmt, columns))
	}
	if err := stmt.Err(); err != nil {
		return nil, apperr.SQL(err)
	}
	return result, nil
}

// runExecute runs one write statement (INSERT/UPDATE/DELETE/DDL). No
// read-only check: the trusted surfaces call this deliberately.
func runExecute(conn *sqlite3.Conn, query string) (*api.ExecResult, error) {
	stmt, _, err := conn.Prepare(query)
	if err != nil {
		return nil, apperr.SQL(err)
	}
	defer func() { _ = stmt.Close() }()

	if err := stmt.Exec(); err != nil {
		return nil, apperr.SQL(err)
	}
	return &api.ExecResult{
		Changes:         conn.Changes(),
		LastInsertRowID: conn.LastInsertRowID(),
	}, nil
}

func rowValues(stmt *sqlite3.Stmt, columns []api.ColumnMeta) api.Row {
	row := make(api.Row, len(columns))
	for i, col := range columns {
		row[col.Name] = columnValue(stmt, i)
	}
	return row
}

// columnValue converts the current row's i-th column into a JSON-safe value.
// Text with invalid byte sequences is lossily repaired rather than failed;
// blobs are wrapped in a tagged base64 object, never returned raw.
func columnValue(stmt *sqlite3.Stmt, i int) any {
	switch stmt.ColumnType(i) {
	case sqlite3.INTEGER:
		return stmt.ColumnInt64(i)
	case sqlite3.FLOAT:
		return stmt.ColumnFloat(i)
	case sqlite3.TEXT:
		return strings.ToValidUTF8(stmt.ColumnText(i), "�")
	case sqlite3.BLOB:
		buf := stmt.ColumnBlob(i, nil)
		return api.BlobValue{
			Type:   "blob",
			Base64: base64.StdEncoding.EncodeToString(buf),
			Size:   len(buf),
		}
	default:
		return nil
	}
}
