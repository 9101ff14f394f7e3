package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "query is not read-only", NotReadonly().Error())

	cause := errors.New("disk I/O error")
	wrapped := SQL(cause)
	assert.Equal(t, "sql error: disk I/O error", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{InvalidRequest("bad"), CodeInvalidRequest},
		{PathNotAllowed("/etc/passwd"), CodePathNotAllowed},
		{OpenFailed("/tmp/x.db", errors.New("unable to open")), CodeDBOpenFailed},
		{NotReadonly(), CodeNotReadonly},
		{Timeout(), CodeTimeout},
		{IO(errors.New("pipe closed")), CodeIO},
		{Internal("worker gone"), CodeInternal},
		{context.DeadlineExceeded, CodeTimeout},
		{errors.New("anonymous"), CodeInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CodeOf(tc.err), "error: %v", tc.err)
	}
}

func TestCodeOfSurvivesWrapping(t *testing.T) {
	inner := PathNotAllowed("/srv/x.db")
	outer := fmt.Errorf("resolving request: %w", inner)
	assert.Equal(t, CodePathNotAllowed, CodeOf(outer))

	var e *Error
	require.True(t, errors.As(outer, &e))
	assert.Equal(t, CodePathNotAllowed, e.Code)
}
