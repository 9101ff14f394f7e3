package sandbox

import "strings"

// ValidIdent reports whether s is safe to splice into SQL as a bare
// identifier. Table names cannot be bound as parameters (PRAGMA table_info,
// SELECT * FROM <table>), so this grammar is the sole injection defense for
// them: [A-Za-z_][A-Za-z0-9_]*. Everything else (quotes, whitespace,
// semicolons, non-ASCII) is rejected.
func ValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ValidTableRef accepts either `table` or `schema.table`, with at most one
// separator and both segments passing ValidIdent.
func ValidTableRef(s string) bool {
	head, tail, found := strings.Cut(s, ".")
	if !found {
		return ValidIdent(head)
	}
	return ValidIdent(head) && ValidIdent(tail)
}
