package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

func TestListTablesSortedAndFiltered(t *testing.T) {
	conn := testConn(t)
	mustExec(t, conn, "CREATE TABLE zebra (id INTEGER)")
	mustExec(t, conn, "CREATE TABLE alpha (id INTEGER)")
	mustExec(t, conn, "CREATE TABLE mid (id INTEGER)")
	// An index forces a sqlite_autoindex-style internal entry in some
	// schemas; none of the engine's own tables may leak into the listing.
	mustExec(t, conn, "CREATE INDEX idx_mid ON mid (id)")
	mustExec(t, conn, "CREATE VIEW v AS SELECT id FROM alpha")

	tables, err := listTables(conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zebra"}, tables)

	// Stable across calls.
	again, err := listTables(conn)
	require.NoError(t, err)
	assert.Equal(t, tables, again)
}

func TestListTablesEmptyDatabase(t *testing.T) {
	conn := testConn(t)
	tables, err := listTables(conn)
	require.NoError(t, err)
	assert.NotNil(t, tables, "empty listing must encode as [] not null")
	assert.Empty(t, tables)
}

func TestListColumns(t *testing.T) {
	conn := testConn(t)
	mustExec(t, conn, `CREATE TABLE people (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		score REAL,
		raw BLOB,
		untyped
	)`)

	cols, err := listColumns(conn, "people")
	require.NoError(t, err)
	require.Len(t, cols, 5)

	// Declaration order, with declared types passed through verbatim.
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, "INTEGER", cols[0].DeclType)
	assert.Equal(t, "name", cols[1].Name)
	assert.Equal(t, "TEXT", cols[1].DeclType)
	assert.Equal(t, "score", cols[2].Name)
	assert.Equal(t, "REAL", cols[2].DeclType)
	assert.Equal(t, "raw", cols[3].Name)
	assert.Equal(t, "BLOB", cols[3].DeclType)
	assert.Equal(t, "untyped", cols[4].Name)
	assert.Equal(t, "", cols[4].DeclType)
}

func TestListColumnsRejectsBadIdentifier(t *testing.T) {
	conn := testConn(t)
	mustExec(t, conn, "CREATE TABLE t (id INTEGER)")

	for _, bad := range []string{
		"",
		"t; DROP TABLE t",
		"t--",
		`"t"`,
		"sqlite master",
	} {
		_, err := listColumns(conn, bad)
		require.Error(t, err, "table ref %q", bad)
		assert.Equal(t, apperr.CodeInvalidRequest, apperr.CodeOf(err), "table ref %q", bad)
	}
}

func TestListColumnsMissingTable(t *testing.T) {
	conn := testConn(t)
	cols, err := listColumns(conn, "missing")
	// PRAGMA table_info on an unknown table yields no rows, not an error.
	require.NoError(t, err)
	assert.Empty(t, cols)
}
