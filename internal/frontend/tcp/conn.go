package tcp

import (
	"net"
	"sync"
	"time"

	"github.com/gridroom/gridroom/internal/protocol"
)

// Conn wraps a raw TCP connection with frame-at-a-time reads and writes
// under the configured deadlines. Writes are serialized with a mutex:
// the tick loop broadcasts on the same connection the session writes
// chat relays to, and interleaved partial frames would corrupt the
// stream.
type Conn struct {
	raw net.Conn
	wmu sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ReadFrame blocks until one full frame arrives. A short read of any
// kind, including an immediate close, surfaces as an error and means
// the peer is gone; there is no partial-frame recovery.
func (c *Conn) ReadFrame() (protocol.Packet, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	return protocol.ReadFrame(c.raw)
}

// WriteFrame writes one full frame. Safe for concurrent use.
func (c *Conn) WriteFrame(p protocol.Packet) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return protocol.WriteFrame(c.raw, p)
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
