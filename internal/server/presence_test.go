package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceRegistry_registerUnregister(t *testing.T) {
	p := newPresenceRegistry()
	c := &Client{id: "c1"}

	replaced, released, wasOnline := p.register("alice", c)
	assert.Nil(t, replaced, "expected no superseded connection on first registration")
	assert.Empty(t, released, "expected no released identity on first registration")
	assert.False(t, wasOnline, "expected user to be offline before first registration")
	assert.True(t, p.isOnline("alice"), "expected user to be online after registration")

	got, ok := p.get("alice")
	assert.True(t, ok)
	assert.Same(t, c, got, "expected registered connection to be returned")

	userId, ok := p.unregister(c)
	assert.True(t, ok, "expected unregister of the bound connection to succeed")
	assert.Equal(t, "alice", userId)
	assert.False(t, p.isOnline("alice"), "expected user to be offline after unregister")
}

func TestPresenceRegistry_lastRegistrationWins(t *testing.T) {
	p := newPresenceRegistry()
	c1 := &Client{id: "c1"}
	c2 := &Client{id: "c2"}

	_, _, wasOnline := p.register("alice", c1)
	assert.False(t, wasOnline)

	replaced, released, wasOnline := p.register("alice", c2)
	assert.Same(t, c1, replaced, "expected the first connection to be superseded")
	assert.Empty(t, released, "expected no released identity when the user is unchanged")
	assert.True(t, wasOnline, "expected user to already be online")

	got, ok := p.get("alice")
	assert.True(t, ok)
	assert.Same(t, c2, got, "expected the newest registration to win")
}

func TestPresenceRegistry_staleHandleUnregisterIsNoop(t *testing.T) {
	p := newPresenceRegistry()
	c1 := &Client{id: "c1"}
	c2 := &Client{id: "c2"}

	p.register("alice", c1)
	p.register("alice", c2)

	// the superseded connection disconnecting must not take the user
	// offline
	_, ok := p.unregister(c1)
	assert.False(t, ok, "expected unregister of a superseded connection to be a no-op")
	assert.True(t, p.isOnline("alice"), "expected user to remain online")

	userId, ok := p.unregister(c2)
	assert.True(t, ok)
	assert.Equal(t, "alice", userId)
	assert.False(t, p.isOnline("alice"))
}

func TestPresenceRegistry_reregisterDifferentUser(t *testing.T) {
	p := newPresenceRegistry()
	c := &Client{id: "c1"}

	p.register("alice", c)
	replaced, released, wasOnline := p.register("bob", c)
	assert.Nil(t, replaced)
	assert.Equal(t, "alice", released, "expected the old identity to be released")
	assert.False(t, wasOnline)

	assert.False(t, p.isOnline("alice"), "expected old identity to be dropped")
	assert.True(t, p.isOnline("bob"))
}
