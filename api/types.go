// Package api defines the result types shared by both protocol front ends.
// The JSON shapes here are the wire contract: the MCP tools and the editor
// bridge both serialize these structs verbatim.
package api

// ColumnMeta describes one result column.
type ColumnMeta struct {
	// Name of the column as reported by the prepared statement.
	Name string `json:"name"`
	// DeclType is the declared type from the table definition, when SQLite
	// knows one. Computed columns and expressions have no declared type.
	DeclType string `json:"decl_type,omitempty"`
}

// Row maps column name to a JSON-safe scalar: nil, int64, float64, string,
// or BlobValue.
type Row map[string]any

// BlobValue is the tagged wrapper used for BLOB columns. Raw bytes never
// appear in a Row; clients get base64 plus the original byte length.
type BlobValue struct {
	Type   string `json:"$type"`
	Base64 string `json:"base64"`
	Size   int    `json:"size"`
}

// QueryResult is the outcome of one query execution.
type QueryResult struct {
	Columns []ColumnMeta `json:"columns"`
	Rows    []Row        `json:"rows"`
	// Truncated is set when the row cap stopped the fetch before the
	// result set was exhausted.
	Truncated bool `json:"truncated"`
	// NextOffset is the offset to pass to fetch the next page. Present
	// exactly when Truncated is true.
	NextOffset *int `json:"next_offset,omitempty"`
}

// ExecResult is the outcome of one write statement.
type ExecResult struct {
	Changes         int64 `json:"changes"`
	LastInsertRowID int64 `json:"last_insert_rowid"`
}
