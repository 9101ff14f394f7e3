// Package sandbox holds the two gates between untrusted request input and
// SQL or filesystem access: the directory allow-list for database paths, and
// the identifier grammar for names spliced into SQL text.
package sandbox

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

// Canonicalize converts path into the identity form used to key workers:
// absolute (resolved against the current working directory) and lexically
// normalized. The file does not have to exist, since SQLite may create it
// on open, so no filesystem calls are made beyond reading the cwd. `.`
// segments are dropped and `..` pops the previous segment; a `..` at the
// root stays there, which bounds but does not fully sanitize hostile input.
func Canonicalize(path string) (string, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", apperr.IO(err)
		}
		path = filepath.Join(cwd, path)
	}
	return filepath.Clean(path), nil
}

// Guard validates database paths against a directory allow-list. An empty
// allow-list disables sandboxing entirely.
//
// The check is purely lexical: normalization plus prefix comparison, no
// symlink resolution. On its own that is not a jail against a hostile
// path; it is only meaningful combined with the allow-list.
type Guard struct {
	roots []string
}

// NewGuard canonicalizes the allowed directories up front so Resolve
// compares like with like.
func NewGuard(allowedDirs []string) (*Guard, error) {
	g := &Guard{}
	for _, dir := range allowedDirs {
		root, err := Canonicalize(dir)
		if err != nil {
			return nil, err
		}
		g.roots = append(g.roots, root)
	}
	return g, nil
}

// Resolve returns the canonical form of path if it lies under one of the
// allowed roots (or if sandboxing is disabled).
func (g *Guard) Resolve(path string) (string, error) {
	resolved, err := Canonicalize(path)
	if err != nil {
		return "", err
	}
	if len(g.roots) == 0 {
		return resolved, nil
	}
	for _, root := range g.roots {
		if underRoot(resolved, root) {
			return resolved, nil
		}
	}
	return "", apperr.PathNotAllowed(resolved)
}

func underRoot(path, root string) bool {
	if path == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(path, root)
}
