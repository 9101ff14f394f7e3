package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
	"github.com/agentic-research/sqlite-helper/internal/sandbox"
)

func (s *Server) registerResources(m *server.MCPServer) {
	m.AddResourceTemplate(mcp.NewResourceTemplate(
		"sqlite://{+path}/tables/{table}",
		"SQLite table preview",
		mcp.WithTemplateDescription("First rows of a table, as JSON."),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleTableResource)
}

func (s *Server) registerPrompts(m *server.MCPServer) {
	m.AddPrompt(mcp.NewPrompt("analyze-db-health",
		mcp.WithPromptDescription("Run PRAGMA integrity_check and return a health report."),
	), s.handleHealthPrompt)
}

// handleTableResource serves sqlite://{abs_path_to_db}/tables/{table}: a
// preview of the table's first rows through the read-only path.
func (s *Server) handleTableResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	dbPath, table, err := parseTableURI(uri)
	if err != nil {
		return nil, err
	}
	if !sandbox.ValidTableRef(table) {
		return nil, apperr.InvalidRequest("invalid table name in resource uri: %s", table)
	}

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	h, err := s.worker(dbPath)
	if err != nil {
		return nil, err
	}
	qr, err := h.ReadQuery(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, resourcePreviewRows),
		resourcePreviewRows, nil)
	if err != nil {
		return nil, err
	}

	text, err := json.MarshalIndent(qr, "", "  ")
	if err != nil {
		return nil, apperr.Internal("encode resource: %v", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(text),
		},
	}, nil
}

// parseTableURI splits sqlite://{db_path}/tables/{table}. The db path may
// itself contain slashes, so the split happens on the last "/tables/".
func parseTableURI(uri string) (dbPath, table string, err error) {
	rest, ok := strings.CutPrefix(uri, "sqlite://")
	if !ok {
		return "", "", apperr.InvalidRequest("resource uri must start with sqlite://")
	}
	idx := strings.LastIndex(rest, "/tables/")
	if idx < 0 {
		return "", "", apperr.InvalidRequest("resource uri must be sqlite://{db_path}/tables/{table}")
	}
	dbPath, table = rest[:idx], rest[idx+len("/tables/"):]
	if dbPath == "" {
		return "", "", apperr.InvalidRequest("missing database path in resource uri")
	}
	if table == "" {
		return "", "", apperr.InvalidRequest("missing table name in resource uri")
	}
	return dbPath, table, nil
}

func (s *Server) handleHealthPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult("Analyze database health.", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(
			"Run PRAGMA integrity_check; list tables and column counts; summarize any issues.")),
	}), nil
}
