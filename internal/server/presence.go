package server

import "sync"

// presenceRegistry is the single owner of the user -> connection
// mapping. All access goes through its mutex; callers must never hold
// the mutex across store or oracle calls.
type presenceRegistry struct {
	mu       sync.RWMutex
	byUser   map[string]*Client
	byClient map[*Client]string
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		byUser:   make(map[string]*Client),
		byClient: make(map[*Client]string),
	}
}

// register binds userId to c, replacing any prior binding for the user
// (last registration wins, no intermediate offline transition). The
// superseded connection is returned so the caller can decide what to do
// with it; it is no longer reachable through the registry. When the
// connection was already bound to a different user, that identity goes
// offline and is returned as released so the caller can announce it.
func (p *presenceRegistry) register(userId string, c *Client) (replaced *Client, released string, wasOnline bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// a connection re-registering under a new user drops its old entry
	if prev, ok := p.byClient[c]; ok && prev != userId {
		delete(p.byUser, prev)
		released = prev
	}

	if prior, ok := p.byUser[userId]; ok {
		wasOnline = true
		if prior != c {
			delete(p.byClient, prior)
			replaced = prior
		}
	}

	p.byUser[userId] = c
	p.byClient[c] = userId
	return replaced, released, wasOnline
}

// unregister removes the entry bound to exactly this connection. A
// stale handle that was already superseded finds no entry and reports
// ok=false, so the current binding survives.
func (p *presenceRegistry) unregister(c *Client) (userId string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userId, ok = p.byClient[c]
	if !ok {
		return "", false
	}

	delete(p.byClient, c)
	if p.byUser[userId] == c {
		delete(p.byUser, userId)
	}

	return userId, true
}

func (p *presenceRegistry) isOnline(userId string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.byUser[userId]
	return ok
}

func (p *presenceRegistry) get(userId string) (*Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.byUser[userId]
	return c, ok
}
