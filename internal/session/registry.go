// Package session tracks which users are currently reachable. The registry
// is process-local and best-effort: it is rebuilt empty on restart and is
// never consulted for capacity decisions, which always come from the
// durable membership rows.
package session

import "sync"

// Conn is the minimal live-connection handle the registry stores. A hub
// client satisfies it; tests substitute lightweight fakes.
type Conn interface {
	// Enqueue hands a pre-encoded message to the connection's send queue
	// without blocking. It reports false when the queue is full.
	Enqueue(message []byte) bool
}

// Registry maps a user id to at most one live connection. A user opening a
// second connection silently supersedes the first.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Set records conn as the user's live connection, replacing any prior one.
func (r *Registry) Set(userID string, conn Conn) {
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

// Get returns the user's live connection, if any.
func (r *Registry) Get(userID string) (Conn, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}

// Remove drops the user's entry unconditionally.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.conns, userID)
	r.mu.Unlock()
}

// RemoveConn drops the user's entry only if conn is still the registered
// connection, and reports whether it was. A stale, superseded connection
// returns false and must not tear down the live session's state.
func (r *Registry) RemoveConn(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[userID]; ok && current == conn {
		delete(r.conns, userID)
		return true
	}
	return false
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
