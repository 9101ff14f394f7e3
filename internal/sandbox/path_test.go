package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

func TestCanonicalize(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"absolute unchanged", "/data/app.db", "/data/app.db"},
		{"relative joins cwd", "a.db", filepath.Join(cwd, "a.db")},
		{"dot segments dropped", "/data/./x/./app.db", "/data/x/app.db"},
		{"dotdot pops segment", "/data/x/../app.db", "/data/app.db"},
		{"dotdot at root stays bounded", "/../../app.db", "/app.db"},
		{"relative with dotdot", "./sub/../a.db", filepath.Join(cwd, "a.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGuardDisabledWithoutRoots(t *testing.T) {
	g, err := NewGuard(nil)
	require.NoError(t, err)

	got, err := g.Resolve("/anywhere/at/all.db")
	require.NoError(t, err)
	assert.Equal(t, "/anywhere/at/all.db", got)
}

func TestGuardAllowList(t *testing.T) {
	g, err := NewGuard([]string{"/srv/data", "/tmp/dbs/"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      string
		want    string
		allowed bool
	}{
		{"inside first root", "/srv/data/app.db", "/srv/data/app.db", true},
		{"root itself", "/srv/data", "/srv/data", true},
		{"nested", "/tmp/dbs/proj/x.db", "/tmp/dbs/proj/x.db", true},
		{"normalizes into root", "/srv/data/sub/../app.db", "/srv/data/app.db", true},
		{"sibling with shared prefix", "/srv/database/app.db", "", false},
		{"outside all roots", "/etc/passwd", "", false},
		{"dotdot escape nets outside", "/srv/data/../../etc/app.db", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Resolve(tt.in)
			if !tt.allowed {
				require.Error(t, err)
				assert.Equal(t, apperr.CodePathNotAllowed, apperr.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The normalization is lexical only: it bounds `..` at the root but does not
// resolve symlinks. The allow-list prefix check is what carries the actual
// policy; this test pins the bounded-at-root behavior so a change there is
// loud.
func TestGuardDotDotBoundedAtRoot(t *testing.T) {
	g, err := NewGuard([]string{"/"})
	require.NoError(t, err)

	got, err := g.Resolve("/../../x.db")
	require.NoError(t, err)
	assert.Equal(t, "/x.db", got)
}
