package services

// ConnectionRegistry maps participant ids to their live connections. Like
// the participant store it is owned by the hub goroutine and relies on the
// hub's run-to-completion processing instead of a lock.
type ConnectionRegistry struct {
	clients map[string]*Client
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		clients: make(map[string]*Client),
	}
}

// Bind associates id with client, returning the connection it displaced.
// A non-nil return is a takeover: the caller decides what to do with the
// stale transport (it is not closed here, per the handshake contract).
func (r *ConnectionRegistry) Bind(id string, client *Client) *Client {
	old := r.clients[id]
	if old == client {
		old = nil
	}
	r.clients[id] = client
	return old
}

// Release removes the binding for id, but only when it still points at
// client. The guard keeps the delayed close of a taken-over transport
// from evicting its replacement.
func (r *ConnectionRegistry) Release(id string, client *Client) bool {
	if current, ok := r.clients[id]; ok && current == client {
		delete(r.clients, id)
		return true
	}
	return false
}

// Get resolves id to its live connection.
func (r *ConnectionRegistry) Get(id string) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Len returns the number of identified connections.
func (r *ConnectionRegistry) Len() int {
	return len(r.clients)
}

// Each calls fn for every identified connection.
func (r *ConnectionRegistry) Each(fn func(id string, client *Client)) {
	for id, c := range r.clients {
		fn(id, c)
	}
}
