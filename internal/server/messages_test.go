package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseConstructors(t *testing.T) {
	t.Run("NoErrOK", func(t *testing.T) {
		msg := NoErrOK(7, map[string]any{"room_id": "alice_bob"})
		assert.Equal(t, 7, msg.Id)
		assert.Equal(t, http.StatusOK, msg.Response.ResponseCode)
		assert.Empty(t, msg.Response.Error)
		assert.Equal(t, "alice_bob", msg.Response.Data["room_id"])
		assert.False(t, msg.Timestamp.IsZero())
	})

	t.Run("ErrNotAuthorized", func(t *testing.T) {
		msg := ErrNotAuthorized(7)
		assert.Equal(t, http.StatusForbidden, msg.Response.ResponseCode)
		assert.Equal(t, "can only chat with mutual followers", msg.Response.Error)
	})

	t.Run("ErrInvalidMessage", func(t *testing.T) {
		msg := ErrInvalidMessage(7, "user_id is required")
		assert.Equal(t, 7, msg.Id)
		assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode)
		assert.Equal(t, "user_id is required", msg.Response.Error)
	})

	t.Run("ErrInvalidMessage without id", func(t *testing.T) {
		msg := ErrInvalidMessage(-1, "invalid message format")
		assert.Equal(t, 0, msg.Id, "expected negative id to be dropped")
	})

	t.Run("ErrTransient", func(t *testing.T) {
		msg := ErrTransient(7)
		assert.Equal(t, http.StatusServiceUnavailable, msg.Response.ResponseCode)
	})
}
