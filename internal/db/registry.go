// Package db is the core of the process: every open SQLite database is owned
// by exactly one worker goroutine, and all access to it, from any protocol
// front end and any number of concurrent callers, serializes through that
// worker's FIFO task queue. There is no shared connection and no lock around
// one; the queue is the serialization point.
package db

import (
	"sync"
	"time"

	"github.com/agentic-research/sqlite-helper/internal/sandbox"
)

const (
	// defaultBusyTimeout bounds SQLite's busy-wait when another process
	// holds the database file lock.
	defaultBusyTimeout = 2 * time.Second

	// taskQueueDepth is the worker queue buffer. Submission only blocks
	// when this many tasks are already pending on one database, and then
	// only until the worker drains one; FIFO order is preserved either
	// way.
	taskQueueDepth = 64
)

// Registry maps canonical database paths to their workers. It is explicitly
// constructed and passed by reference, never an ambient singleton, and lives
// for the whole process; workers are never evicted.
type Registry struct {
	mu          sync.Mutex
	workers     map[string]*Handle
	busyTimeout time.Duration
}

// NewRegistry returns an empty registry. busyTimeout <= 0 selects the
// default.
func NewRegistry(busyTimeout time.Duration) *Registry {
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	return &Registry{
		workers:     make(map[string]*Handle),
		busyTimeout: busyTimeout,
	}
}

// Worker returns the handle for path, spawning its owning worker on first
// reference. Paths are canonicalized first, so `./a.db` and `<cwd>/a.db`
// share one worker. The lock covers only the map check-then-insert, never
// database I/O, so a slow-to-open database cannot stall lookups for other
// paths, and concurrent first-time callers cannot race two workers into
// existence for the same path.
func (r *Registry) Worker(path string) (*Handle, error) {
	canonical, err := sandbox.Canonicalize(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.workers[canonical]; ok {
		return h, nil
	}

	tasks := make(chan dbTask, taskQueueDepth)
	go workerMain(canonical, r.busyTimeout, tasks)
	h := &Handle{tasks: tasks, path: canonical}
	r.workers[canonical] = h
	return h, nil
}
