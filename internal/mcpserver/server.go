// Package mcpserver exposes the database core as an MCP stdio server:
// tools for querying and schema inspection, a resource template for table
// previews, and a health-analysis prompt.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
	"github.com/agentic-research/sqlite-helper/internal/config"
	"github.com/agentic-research/sqlite-helper/internal/db"
	"github.com/agentic-research/sqlite-helper/internal/sandbox"
)

const (
	serverName    = "sqlite-helper"
	serverVersion = "0.2.0"

	// resourcePreviewRows caps table-preview resources and the integrity
	// check inside the health report.
	resourcePreviewRows = 50
)

// Server wires the MCP protocol to the worker registry behind the path
// sandbox. It holds no per-request state; all serialization happens in the
// workers.
type Server struct {
	cfg      config.Config
	registry *db.Registry
	guard    *sandbox.Guard
}

func New(cfg config.Config, registry *db.Registry, guard *sandbox.Guard) *Server {
	return &Server{cfg: cfg, registry: registry, guard: guard}
}

// Run serves MCP over stdio until the client disconnects.
func (s *Server) Run() error {
	m := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools(m)
	s.registerResources(m)
	s.registerPrompts(m)
	return server.ServeStdio(m)
}

// worker resolves path through the sandbox and returns its handle.
func (s *Server) worker(path string) (*db.Handle, error) {
	resolved, err := s.guard.Resolve(path)
	if err != nil {
		return nil, err
	}
	return s.registry.Worker(resolved)
}

// deadline applies the configured soft per-request timeout.
func (s *Server) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// toolResult serializes v both as pretty text and as structured content.
func toolResult(v any) *mcp.CallToolResult {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(apperr.Internal("encode result: %v", err))
	}
	return mcp.NewToolResultStructured(v, string(text))
}

// toolError reports a failure as an isError tool result with the stable
// machine code up front.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", apperr.CodeOf(err), err))
}
