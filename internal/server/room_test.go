package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomID(t *testing.T) {
	tcases := []struct {
		name     string
		userId   string
		otherId  string
		expected string
	}{
		{
			name:     "already sorted",
			userId:   "alice",
			otherId:  "bob",
			expected: "alice_bob",
		},
		{
			name:     "reversed",
			userId:   "bob",
			otherId:  "alice",
			expected: "alice_bob",
		},
		{
			name:     "numeric ids",
			userId:   "42",
			otherId:  "17",
			expected: "17_42",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, RoomID(tc.userId, tc.otherId))
		})
	}
}

func TestRoomID_symmetric(t *testing.T) {
	assert.Equal(t, RoomID("alice", "bob"), RoomID("bob", "alice"),
		"expected both participants to resolve the same room")
}

func TestRoomTable_getOrCreate(t *testing.T) {
	table := newRoomTable()

	rm := table.getOrCreate("alice_bob")
	assert.NotNil(t, rm)
	assert.Same(t, rm, table.getOrCreate("alice_bob"), "expected the same room on repeat lookups")
	assert.Same(t, rm, table.get("alice_bob"))
	assert.Nil(t, table.get("alice_carol"), "expected no room for an unknown id")
}

func TestRoom_broadcastSkipsClient(t *testing.T) {
	rm := &room{id: "alice_bob", clients: make(map[*Client]struct{})}
	c1 := &Client{id: "c1", send: make(chan *ServerMessage, 1)}
	c2 := &Client{id: "c2", send: make(chan *ServerMessage, 1)}
	rm.addClient(c1)
	rm.addClient(c2)

	msg := &ServerMessage{SkipClient: c1}
	rm.broadcast(msg)

	assert.Empty(t, c1.send, "expected skipped client to receive nothing")
	assert.Len(t, c2.send, 1, "expected remaining client to receive the message")
}

func TestRoomTable_leaveAll(t *testing.T) {
	table := newRoomTable()
	c1 := &Client{id: "c1"}
	c2 := &Client{id: "c2"}

	table.getOrCreate("alice_bob").addClient(c1)
	table.getOrCreate("alice_bob").addClient(c2)
	table.getOrCreate("alice_carol").addClient(c1)

	table.leaveAll(c1)

	assert.Nil(t, table.get("alice_carol"), "expected the emptied room to be dropped")

	rm := table.get("alice_bob")
	assert.NotNil(t, rm, "expected room with a remaining subscriber to survive")
	assert.True(t, func() bool {
		rm.mu.RLock()
		defer rm.mu.RUnlock()
		_, ok := rm.clients[c2]
		return ok
	}(), "expected the remaining subscriber to still be in the room")
}
