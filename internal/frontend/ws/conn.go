package ws

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridroom/gridroom/internal/protocol"
)

// Conn adapts a websocket connection to the frame transport: every
// binary websocket message carries exactly one wire frame. Writes are
// serialized because the tick loop and the session write independently.
type Conn struct {
	ws  *websocket.Conn
	wmu sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps an upgraded websocket connection.
func NewConn(wsc *websocket.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		ws:           wsc,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ReadFrame blocks until one binary message arrives. Messages that are
// not exactly one frame long mean the peer does not speak the protocol;
// that is terminal for the session, same as a short TCP read.
func (c *Conn) ReadFrame() (protocol.Packet, error) {
	if c.readTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	msgType, data, err := c.ws.ReadMessage()
	if err != nil {
		return protocol.Packet{}, fmt.Errorf("%w: %v", protocol.ErrShortFrame, err)
	}
	if msgType != websocket.BinaryMessage || len(data) != protocol.FrameSize {
		return protocol.Packet{}, fmt.Errorf("%w: message of %d bytes", protocol.ErrShortFrame, len(data))
	}
	var frame [protocol.FrameSize]byte
	copy(frame[:], data)
	return protocol.Decode(frame)
}

// WriteFrame writes one frame as a single binary message. Safe for
// concurrent use.
func (c *Conn) WriteFrame(p protocol.Packet) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	frame := protocol.Encode(p)
	if err := c.ws.WriteMessage(websocket.BinaryMessage, frame[:]); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// Close closes the underlying websocket connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}
