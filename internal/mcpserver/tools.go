package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/sqlite-helper/api"
	"github.com/agentic-research/sqlite-helper/internal/apperr"
	"github.com/agentic-research/sqlite-helper/internal/db"
)

func (s *Server) registerTools(m *server.MCPServer) {
	m.AddTool(mcp.NewTool("read_query",
		mcp.WithDescription("Execute a read-only SQL query (SELECT/PRAGMA/EXPLAIN) to analyze data."),
		mcp.WithString("db_path", mcp.Required(), mcp.Description("Path to the SQLite database file.")),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL text; must compile to a read-only statement.")),
		mcp.WithNumber("limit", mcp.Min(1), mcp.Description("Maximum rows to return.")),
		mcp.WithNumber("offset", mcp.Min(0), mcp.Description("Row offset for pagination.")),
	), s.handleReadQuery)

	m.AddTool(mcp.NewTool("write_query",
		mcp.WithDescription("Execute a write SQL query (INSERT/UPDATE/DELETE/DDL). Requires user confirmation in the client."),
		mcp.WithString("db_path", mcp.Required(), mcp.Description("Path to the SQLite database file.")),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL statement to execute.")),
	), s.handleWriteQuery)

	m.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Get database structure (tables and columns)."),
		mcp.WithString("db_path", mcp.Required(), mcp.Description("Path to the SQLite database file.")),
	), s.handleGetSchema)

	m.AddTool(mcp.NewTool("analyze_db_health",
		mcp.WithDescription("Run PRAGMA integrity_check and return a health report."),
		mcp.WithString("db_path", mcp.Required(), mcp.Description("Path to the SQLite database file.")),
	), s.handleAnalyzeHealth)
}

type tableSchema struct {
	Name    string           `json:"name"`
	Columns []api.ColumnMeta `json:"columns"`
}

type schemaReport struct {
	Tables []tableSchema `json:"tables"`
}

type tableSummary struct {
	Name        string           `json:"name"`
	ColumnCount int              `json:"column_count"`
	Columns     []api.ColumnMeta `json:"columns"`
}

type healthReport struct {
	DBPath         string           `json:"db_path"`
	FileSizeBytes  *int64           `json:"file_size_bytes,omitempty"`
	IntegrityCheck *api.QueryResult `json:"integrity_check"`
	Schema         struct {
		Tables []tableSummary `json:"tables"`
	} `json:"schema"`
}

func (s *Server) handleReadQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dbPath, err := req.RequireString("db_path")
	if err != nil {
		return toolError(apperr.InvalidRequest("missing or invalid field: db_path")), nil
	}
	sqlText, err := req.RequireString("sql")
	if err != nil {
		return toolError(apperr.InvalidRequest("missing or invalid field: sql")), nil
	}
	limit := req.GetInt("limit", 0)
	var offset *int
	if v := req.GetInt("offset", -1); v >= 0 {
		offset = &v
	}

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	h, err := s.worker(dbPath)
	if err != nil {
		return toolError(err), nil
	}
	qr, err := h.ReadQuery(ctx, sqlText, db.EffectiveLimit(limit, s.cfg.MaxRows), offset)
	if err != nil {
		return toolError(err), nil
	}
	return toolResult(qr), nil
}

func (s *Server) handleWriteQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dbPath, err := req.RequireString("db_path")
	if err != nil {
		return toolError(apperr.InvalidRequest("missing or invalid field: db_path")), nil
	}
	sqlText, err := req.RequireString("sql")
	if err != nil {
		return toolError(apperr.InvalidRequest("missing or invalid field: sql")), nil
	}

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	h, err := s.worker(dbPath)
	if err != nil {
		return toolError(err), nil
	}
	er, err := h.Execute(ctx, sqlText)
	if err != nil {
		return toolError(err), nil
	}
	return toolResult(er), nil
}

func (s *Server) handleGetSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dbPath, err := req.RequireString("db_path")
	if err != nil {
		return toolError(apperr.InvalidRequest("missing or invalid field: db_path")), nil
	}

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	h, err := s.worker(dbPath)
	if err != nil {
		return toolError(err), nil
	}
	report, err := s.describeSchema(ctx, h)
	if err != nil {
		return toolError(err), nil
	}
	return toolResult(report), nil
}

func (s *Server) describeSchema(ctx context.Context, h *db.Handle) (*schemaReport, error) {
	tables, err := h.Tables(ctx)
	if err != nil {
		return nil, err
	}
	report := &schemaReport{Tables: []tableSchema{}}
	for _, name := range tables {
		columns, err := h.Columns(ctx, name)
		if err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, tableSchema{Name: name, Columns: columns})
	}
	return report, nil
}

func (s *Server) handleAnalyzeHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dbPath, err := req.RequireString("db_path")
	if err != nil {
		return toolError(apperr.InvalidRequest("missing or invalid field: db_path")), nil
	}

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	h, err := s.worker(dbPath)
	if err != nil {
		return toolError(err), nil
	}
	report, err := s.analyzeHealth(ctx, h)
	if err != nil {
		return toolError(err), nil
	}
	return toolResult(report), nil
}

// analyzeHealth assembles the integrity check, file size, and a per-table
// column summary. integrity_check returns one "ok" row on a healthy file or
// up to resourcePreviewRows problem rows otherwise.
func (s *Server) analyzeHealth(ctx context.Context, h *db.Handle) (*healthReport, error) {
	integrity, err := h.ReadQuery(ctx, "PRAGMA integrity_check", resourcePreviewRows, nil)
	if err != nil {
		return nil, err
	}

	report := &healthReport{DBPath: h.Path(), IntegrityCheck: integrity}
	if info, err := os.Stat(h.Path()); err == nil {
		size := info.Size()
		report.FileSizeBytes = &size
	}

	tables, err := h.Tables(ctx)
	if err != nil {
		return nil, err
	}
	report.Schema.Tables = []tableSummary{}
	for _, name := range tables {
		columns, err := h.Columns(ctx, name)
		if err != nil {
			return nil, err
		}
		report.Schema.Tables = append(report.Schema.Tables, tableSummary{
			Name:        name,
			ColumnCount: len(columns),
			Columns:     columns,
		})
	}
	return report, nil
}
