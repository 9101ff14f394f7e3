package bridge

import (
	"encoding/json"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

// protocolVersion is the only wire version this end speaks. Requests with
// any other v are rejected without dispatch.
const protocolVersion = 1

// Request is one NDJSON line from the editor extension.
type Request struct {
	V       int             `json:"v"`
	ID      string          `json:"id"`
	Cmd     string          `json:"cmd"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is one NDJSON line back. Exactly one response per request, keyed
// by the client-chosen ID.
type Response struct {
	V      int    `json:"v"`
	ID     string `json:"id"`
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

type connectPayload struct {
	Path string `json:"path"`
}

type queryPayload struct {
	SQL    string `json:"sql"`
	Path   string `json:"path,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset *int   `json:"offset,omitempty"`
}

type executePayload struct {
	SQL  string `json:"sql"`
	Path string `json:"path,omitempty"`
}

type tablesPayload struct {
	Path string `json:"path,omitempty"`
}

type columnsPayload struct {
	Table string `json:"table"`
	Path  string `json:"path,omitempty"`
}

func okResponse(req Request, data any) Response {
	return Response{V: req.V, ID: req.ID, Status: "ok", Data: data}
}

func errResponse(req Request, err error) Response {
	return Response{
		V:      req.V,
		ID:     req.ID,
		Status: "error",
		Error:  err.Error(),
		Code:   string(apperr.CodeOf(err)),
	}
}
