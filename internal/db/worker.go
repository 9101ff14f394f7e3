package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/agentic-research/sqlite-helper/api"
	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

// A dbTask is one operation bound for a worker together with its single-use
// reply channel. The set is closed: each protocol operation maps to exactly
// one of the five task types below, and each task is consumed exactly once.
type dbTask interface {
	// run executes the task against the worker's connection and delivers
	// exactly one reply.
	run(conn *sqlite3.Conn)
	// reject delivers err instead of running. Used by a worker whose
	// connection never opened.
	reject(err error)
}

// outcome pairs a value with its error for transport over a reply channel.
type outcome[T any] struct {
	value T
	err   error
}

type replyTo[T any] chan outcome[T]

// Reply channels are buffered so the worker can deliver and move on even
// when the caller has stopped awaiting; the unread outcome is simply
// collected with the channel.
func newReply[T any]() replyTo[T] {
	return make(replyTo[T], 1)
}

type queryTask struct {
	sql     string
	limit   int
	offset  *int
	respond replyTo[*api.QueryResult]
}

func (t *queryTask) run(conn *sqlite3.Conn) {
	qr, err := runQuery(conn, t.sql, t.limit, t.offset)
	t.respond <- outcome[*api.QueryResult]{value: qr, err: err}
}

func (t *queryTask) reject(err error) {
	t.respond <- outcome[*api.QueryResult]{err: err}
}

// readQueryTask is queryTask behind the read-only gate: classify first,
// execute only if the compiled statement cannot write.
type readQueryTask struct {
	queryTask
}

func (t *readQueryTask) run(conn *sqlite3.Conn) {
	readonly, err := isReadOnly(conn, t.sql)
	switch {
	case err != nil:
		t.respond <- outcome[*api.QueryResult]{err: err}
	case !readonly:
		t.respond <- outcome[*api.QueryResult]{err: apperr.NotReadonly()}
	default:
		t.queryTask.run(conn)
	}
}

type executeTask struct {
	sql     string
	respond replyTo[*api.ExecResult]
}

func (t *executeTask) run(conn *sqlite3.Conn) {
	er, err := runExecute(conn, t.sql)
	t.respond <- outcome[*api.ExecResult]{value: er, err: err}
}

func (t *executeTask) reject(err error) {
	t.respond <- outcome[*api.ExecResult]{err: err}
}

type tablesTask struct {
	respond replyTo[[]string]
}

func (t *tablesTask) run(conn *sqlite3.Conn) {
	tables, err := listTables(conn)
	t.respond <- outcome[[]string]{value: tables, err: err}
}

func (t *tablesTask) reject(err error) {
	t.respond <- outcome[[]string]{err: err}
}

type columnsTask struct {
	table   string
	respond replyTo[[]api.ColumnMeta]
}

func (t *columnsTask) run(conn *sqlite3.Conn) {
	columns, err := listColumns(conn, t.table)
	t.respond <- outcome[[]api.ColumnMeta]{value: columns, err: err}
}

func (t *columnsTask) reject(err error) {
	t.respond <- outcome[[]api.ColumnMeta]{err: err}
}

// workerMain owns the connection for one canonical path. It is the only
// goroutine that ever touches conn; all access serializes through the task
// channel in strict FIFO order. A task failure (bad SQL, bad identifier)
// answers that one caller and the loop continues.
//
// If the open itself fails the worker never recovers: it logs once, then
// rejects every task, queued and future, with the open error for the rest
// of the process lifetime. No retry, no reconnect.
func workerMain(path string, busyTimeout time.Duration, tasks <-chan dbTask) {
	conn, err := openConn(path, busyTimeout)
	if err != nil {
		openErr := apperr.OpenFailed(path, err)
		slog.Error("failed to open database in worker; rejecting tasks",
			"path", path, "error", err)
		for t := range tasks {
			t.reject(openErr)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	for t := range tasks {
		t.run(conn)
	}
}

func openConn(path string, busyTimeout time.Duration) (*sqlite3.Conn, error) {
	conn, err := sqlite3.OpenFlags(path, sqlite3.OPEN_READWRITE|sqlite3.OPEN_CREATE)
	if err != nil {
		return nil, err
	}
	// Bounds the engine's busy-wait when another process holds the file
	// lock. This is the only blocking the core itself configures.
	if err := conn.BusyTimeout(busyTimeout); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// Handle is a cloneable capability referencing one live worker: the task
// channel sender plus the canonical path it serves. Copies share the same
// worker; a Handle owns nothing but the sender side.
type Handle struct {
	tasks chan<- dbTask
	path  string
}

// Path returns the canonical database path this handle serves.
func (h *Handle) Path() string { return h.path }

// Query runs sql without any read-only check. Trusted surfaces only.
func (h *Handle) Query(ctx context.Context, sql string, limit int, offset *int) (*api.QueryResult, error) {
	t := &queryTask{sql: sql, limit: limit, offset: offset, respond: newReply[*api.QueryResult]()}
	return await(ctx, h, t, t.respond)
}

// ReadQuery runs sql only if the engine classifies it read-only; otherwise
// it fails with NOT_READONLY without executing anything.
func (h *Handle) ReadQuery(ctx context.Context, sql string, limit int, offset *int) (*api.QueryResult, error) {
	t := &readQueryTask{queryTask{sql: sql, limit: limit, offset: offset, respond: newReply[*api.QueryResult]()}}
	return await(ctx, h, t, t.respond)
}

// Execute runs one write statement.
func (h *Handle) Execute(ctx context.Context, sql string) (*api.ExecResult, error) {
	t := &executeTask{sql: sql, respond: newReply[*api.ExecResult]()}
	return await(ctx, h, t, t.respond)
}

// Tables lists user tables in ascending lexical order.
func (h *Handle) Tables(ctx context.Context) ([]string, error) {
	t := &tablesTask{respond: newReply[[]string]()}
	return await(ctx, h, t, t.respond)
}

// Columns lists column metadata for one identifier-validated table.
func (h *Handle) Columns(ctx context.Context, table string) ([]api.ColumnMeta, error) {
	t := &columnsTask{table: table, respond: newReply[[]api.ColumnMeta]()}
	return await(ctx, h, t, t.respond)
}

// await submits the task and waits for its reply. A caller that gives up
// does not unqueue the task: the worker still runs it and the buffered reply
// channel absorbs the result. A deadline expiring maps to TIMEOUT; any other
// cancellation is reported as worker unavailability.
func await[T any](ctx context.Context, h *Handle, t dbTask, respond replyTo[T]) (T, error) {
	var zero T
	select {
	case h.tasks <- t:
	case <-ctx.Done():
		return zero, ctxErr(ctx)
	}
	select {
	case out := <-respond:
		return out.value, out.err
	case <-ctx.Done():
		return zero, ctxErr(ctx)
	}
}

func ctxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Timeout()
	}
	return apperr.Internal("request canceled: %v", ctx.Err())
}
