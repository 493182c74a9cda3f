package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"nil":             {nil, StatusInternalServerError},
		"invalid request": {NewInvalidRequestError("bad", nil), StatusBadRequest},
		"unauthorized":    {NewUnauthorizedError("nope", nil), StatusUnauthorized},
		"conflict":        {NewConflictError("dup", nil), StatusConflict},
		"internal":        {NewInternalServerError("boom", nil), StatusInternalServerError},
		"wrapped":         {fmt.Errorf("outer: %w", NewNotFoundError("missing", nil)), StatusNotFound},
		"plain error":     {errors.New("raw"), StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestGetHumanReadableMessage_DoesNotLeakInternals(t *testing.T) {
	internal := errors.New(`pq: relation "waitlist" does not exist`)

	assert.Equal(t, GenericErrorMessage, GetHumanReadableMessage(internal))
	assert.Equal(t, "Failed to fetch emails", GetHumanReadableMessage(NewInternalServerError("Failed to fetch emails", internal)))
	assert.Equal(t, GenericErrorMessage, GetHumanReadableMessage(NewInternalServerError("", internal)))
}

func TestAppError_UnwrapKeepsCause(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := NewInvalidRequestError("dup", fmt.Errorf("insert: %w", sentinel))

	assert.ErrorIs(t, err, sentinel)
	assert.True(t, IsType(err, ErrorTypeInvalidRequest))
	assert.False(t, IsType(nil, ErrorTypeInvalidRequest))
}
