// Package session tracks the live connection handle for every connected
// player so that broadcasts can be addressed, and hands out the
// process-wide monotonically increasing player IDs.
package session

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/gridroom/gridroom/internal/protocol"
)

// Conn is the frame transport for one connected player. Both the raw TCP
// and the websocket frontends satisfy it. WriteFrame must be safe to call
// concurrently with ReadFrame and with other WriteFrame calls, since the
// tick loop and the owning session write independently.
type Conn interface {
	ReadFrame() (protocol.Packet, error)
	WriteFrame(p protocol.Packet) error
	Close() error
	RemoteAddr() net.Addr
}

// Registry maps player IDs to their live connections. An entry exists
// from accept until the session tears down; it is used only to address
// outbound frames, never to reason about room membership.
type Registry struct {
	mu    sync.RWMutex
	conns map[int32]Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int32]Conn)}
}

// Add records the connection for a player.
func (r *Registry) Add(id int32, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
}

// Remove drops a player's connection entry. Unknown IDs are a no-op.
func (r *Registry) Remove(id int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Get returns the connection for a player, if registered.
func (r *Registry) Get(id int32) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// IDAllocator hands out player IDs starting at 1, never reusing one for
// the process lifetime. Shared by every acceptor so IDs cannot collide
// across transports.
type IDAllocator struct {
	last atomic.Int32
}

// NewIDAllocator creates an allocator whose first ID is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next player ID.
func (a *IDAllocator) Next() int32 {
	return a.last.Add(1)
}
