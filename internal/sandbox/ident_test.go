package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdent(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"users", true},
		{"Users_2", true},
		{"_private", true},
		{"a", true},
		{"", false},
		{"9lives", false},
		{"user name", false},
		{"users;", false},
		{"users--", false},
		{`users"`, false},
		{"users'", false},
		{"naïve", false},
		{"sqlite_master", true}, // syntactically fine; catalog filtering is elsewhere
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidIdent(tt.in))
		})
	}
}

func TestValidTableRef(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"users", true},
		{"main.users", true},
		{"temp._t1", true},
		{"a.b.c", false},
		{".users", false},
		{"users.", false},
		{"main.users; DROP TABLE users", false},
		{"main.users--", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTableRef(tt.in))
		})
	}
}
