package server

import (
	"strings"
	"sync"
)

// RoomID maps an unordered user pair to its canonical room identifier:
// the two ids in sorted order joined by an underscore, so both
// participants resolve the same room no matter who initiates. Callers
// must reject userId == otherUserId before calling.
func RoomID(userId, otherUserId string) string {
	if strings.Compare(userId, otherUserId) > 0 {
		userId, otherUserId = otherUserId, userId
	}

	return userId + "_" + otherUserId
}

// room is the live-delivery channel for one pairwise conversation.
// sendMu serializes persist-then-fanout so every subscriber observes
// messages in store-commit order.
type room struct {
	id      string
	sendMu  sync.Mutex
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func (r *room) addClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
}

func (r *room) removeClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
}

func (r *room) hasUser(userId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.clients {
		if c.UserId() == userId {
			return true
		}
	}

	return false
}

// broadcast queues msg on every subscribed connection except
// msg.SkipClient. Fire and forget: a subscriber with a full send
// buffer is skipped rather than blocking the others.
func (r *room) broadcast(msg *ServerMessage) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for c := range r.clients {
		if c == msg.SkipClient {
			continue
		}

		c.queueMessage(msg)
	}
}

type roomTable struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func newRoomTable() *roomTable {
	return &roomTable{rooms: make(map[string]*room)}
}

func (t *roomTable) getOrCreate(id string) *room {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rooms[id]
	if !ok {
		r = &room{id: id, clients: make(map[*Client]struct{})}
		t.rooms[id] = r
	}

	return r
}

func (t *roomTable) get(id string) *room {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.rooms[id]
}

// leaveAll removes c from every room it joined and drops rooms with no
// remaining subscribers.
func (t *roomTable) leaveAll(c *Client) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, r := range t.rooms {
		r.removeClient(c)

		r.mu.RLock()
		empty := len(r.clients) == 0
		r.mu.RUnlock()
		if empty {
			delete(t.rooms, id)
		}
	}
}
