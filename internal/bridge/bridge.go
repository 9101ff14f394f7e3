// Package bridge is the editor-integration front end: newline-delimited JSON
// requests on stdin, one response line per request on stdout. The editor
// side is trusted, so query runs without the read-only gate; the path
// sandbox still applies.
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
	"github.com/agentic-research/sqlite-helper/internal/config"
	"github.com/agentic-research/sqlite-helper/internal/db"
	"github.com/agentic-research/sqlite-helper/internal/sandbox"
)

// maxLineBytes bounds a single request line. Large enough for bulk INSERT
// statements pasted from the editor.
const maxLineBytes = 8 << 20

// Handler executes bridge commands against the database core, tracking the
// active database selected by connect. The protocol is strictly one request
// in flight at a time, so the handler itself needs no locking.
type Handler struct {
	cfg      config.Config
	registry *db.Registry
	guard    *sandbox.Guard
	activeDB string
}

func NewHandler(cfg config.Config, registry *db.Registry, guard *sandbox.Guard) *Handler {
	return &Handler{cfg: cfg, registry: registry, guard: guard}
}

// Run drains NDJSON requests from r until EOF, writing one response line per
// request to w.
func (h *Handler) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	out := bufio.NewWriter(w)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			// The request id is unrecoverable; answer with what we
			// have so the extension can at least log the failure.
			resp := errResponse(Request{V: protocolVersion},
				apperr.InvalidRequest("parse error: %v", err))
			if werr := writeLine(out, resp); werr != nil {
				return werr
			}
			continue
		}
		if err := writeLine(out, h.Handle(ctx, req)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return apperr.IO(err)
	}
	return nil
}

// Handle dispatches one request and always produces a response.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	if req.V != protocolVersion {
		return errResponse(req, apperr.InvalidRequest("unsupported protocol version: %d", req.V))
	}

	ctx, cancel := h.deadline(ctx)
	defer cancel()

	switch req.Cmd {
	case "connect":
		return h.handleConnect(req)
	case "query":
		return h.handleQuery(ctx, req)
	case "execute":
		return h.handleExecute(ctx, req)
	case "tables":
		return h.handleTables(ctx, req)
	case "columns":
		return h.handleColumns(ctx, req)
	default:
		return errResponse(req, apperr.InvalidRequest("unknown cmd: %s", req.Cmd))
	}
}

func (h *Handler) handleConnect(req Request) Response {
	var p connectPayload
	if err := decodePayload(req, &p); err != nil {
		return errResponse(req, err)
	}
	// The active db is recorded even if the open later fails; a retryable
	// connect should not strand the previous selection.
	h.activeDB = p.Path
	if _, err := h.worker(p.Path); err != nil {
		return errResponse(req, err)
	}
	return okResponse(req, true)
}

func (h *Handler) handleQuery(ctx context.Context, req Request) Response {
	var p queryPayload
	if err := decodePayload(req, &p); err != nil {
		return errResponse(req, err)
	}
	worker, err := h.workerFor(p.Path)
	if err != nil {
		return errResponse(req, err)
	}
	qr, err := worker.Query(ctx, p.SQL, db.EffectiveLimit(p.Limit, h.cfg.MaxRows), p.Offset)
	if err != nil {
		return errResponse(req, err)
	}
	return okResponse(req, qr)
}

func (h *Handler) handleExecute(ctx context.Context, req Request) Response {
	var p executePayload
	if err := decodePayload(req, &p); err != nil {
		return errResponse(req, err)
	}
	worker, err := h.workerFor(p.Path)
	if err != nil {
		return errResponse(req, err)
	}
	er, err := worker.Execute(ctx, p.SQL)
	if err != nil {
		return errResponse(req, err)
	}
	return okResponse(req, er)
}

func (h *Handler) handleTables(ctx context.Context, req Request) Response {
	var p tablesPayload
	if err := decodePayload(req, &p); err != nil {
		return errResponse(req, err)
	}
	worker, err := h.workerFor(p.Path)
	if err != nil {
		return errResponse(req, err)
	}
	tables, err := worker.Tables(ctx)
	if err != nil {
		return errResponse(req, err)
	}
	return okResponse(req, tables)
}

func (h *Handler) handleColumns(ctx context.Context, req Request) Response {
	var p columnsPayload
	if err := decodePayload(req, &p); err != nil {
		return errResponse(req, err)
	}
	worker, err := h.workerFor(p.Path)
	if err != nil {
		return errResponse(req, err)
	}
	columns, err := worker.Columns(ctx, p.Table)
	if err != nil {
		return errResponse(req, err)
	}
	return okResponse(req, columns)
}

// workerFor picks the payload path when given, falling back to the active
// database from the last connect.
func (h *Handler) workerFor(payloadPath string) (*db.Handle, error) {
	path := payloadPath
	if path == "" {
		if h.activeDB == "" {
			return nil, apperr.InvalidRequest("no active db; call connect first or pass path")
		}
		path = h.activeDB
	}
	return h.worker(path)
}

func (h *Handler) worker(path string) (*db.Handle, error) {
	resolved, err := h.guard.Resolve(path)
	if err != nil {
		return nil, err
	}
	return h.registry.Worker(resolved)
}

func (h *Handler) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.cfg.Timeout)
}

func decodePayload(req Request, v any) error {
	if len(req.Payload) == 0 {
		return apperr.InvalidRequest("missing payload for cmd: %s", req.Cmd)
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return apperr.InvalidRequest("invalid payload: %v", err)
	}
	return nil
}

func writeLine(out *bufio.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return apperr.Internal("encode response: %v", err)
	}
	if _, err := out.Write(data); err != nil {
		return apperr.IO(err)
	}
	if err := out.WriteByte('\n'); err != nil {
		return apperr.IO(err)
	}
	if err := out.Flush(); err != nil {
		return apperr.IO(err)
	}
	return nil
}
