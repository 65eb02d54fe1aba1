// Package protocol defines the fixed-size binary frame exchanged between
// the gridroom server and its clients.
//
// Every message on the wire is exactly FrameSize bytes:
//
//	offset 0: type     uint32, little-endian
//	offset 4: playerID int32, little-endian
//	offset 8: payload  [PayloadSize]byte, UTF-8 text window
//
// The layout is an explicit contract, not native struct memory, so both
// endpoints agree regardless of platform. There is no length prefix: a
// reader either gets a whole frame or treats the connection as gone.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Type identifies the meaning of a frame's payload.
type Type uint32

const (
	// TypeChat carries free-form chat text.
	TypeChat Type = iota
	// TypeJoinRoom carries the name of a room to join (lazily created).
	TypeJoinRoom
	// TypeNewRoom carries the name of a room to create.
	TypeNewRoom
	// TypeInput carries a velocity as two decimal floats, "vx vy".
	TypeInput
	// TypeStateUpdate carries a rendered room grid, server to client only.
	TypeStateUpdate
	// TypeKick carries the decimal ID of a player to remove from the
	// sender's room. Sent server to client as a removal notification.
	TypeKick

	typeCount
)

// String returns the wire name of the packet type for logging.
func (t Type) String() string {
	switch t {
	case TypeChat:
		return "chat"
	case TypeJoinRoom:
		return "join_room"
	case TypeNewRoom:
		return "new_room"
	case TypeInput:
		return "input"
	case TypeStateUpdate:
		return "state_update"
	case TypeKick:
		return "kick"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Valid reports whether t is one of the defined packet types.
func (t Type) Valid() bool { return t < typeCount }

const (
	// PayloadSize is the fixed payload window in bytes. Longer payloads
	// are silently truncated on encode; that is accepted lossy behavior.
	PayloadSize = 512

	headerSize = 8

	// FrameSize is the total size of one wire frame.
	FrameSize = headerSize + PayloadSize
)

// ErrShortFrame reports that fewer bytes than one full frame were read.
// Callers treat it the same as a closed connection.
var ErrShortFrame = errors.New("protocol: short frame")

// ErrBadType reports a frame whose type field is outside the known range.
var ErrBadType = errors.New("protocol: unknown packet type")

// Packet is one decoded protocol frame.
type Packet struct {
	Type     Type
	PlayerID int32
	Payload  string
}

// Encode serializes p into a full wire frame. Payloads longer than
// PayloadSize are truncated; shorter ones are zero-padded.
func Encode(p Packet) [FrameSize]byte {
	var frame [FrameSize]byte
	binary.LittleEndian.PutUint32(frame[0:4], uint32(p.Type))
	binary.LittleEndian.PutUint32(frame[4:8], uint32(p.PlayerID))
	copy(frame[headerSize:], p.Payload)
	return frame
}

// Decode parses a full wire frame. The payload is cut at the first NUL
// inside the window; bytes beyond the window do not exist and embedded
// terminators past PayloadSize are never consulted.
func Decode(frame [FrameSize]byte) (Packet, error) {
	p := Packet{
		Type:     Type(binary.LittleEndian.Uint32(frame[0:4])),
		PlayerID: int32(binary.LittleEndian.Uint32(frame[4:8])),
	}
	if !p.Type.Valid() {
		return Packet{}, fmt.Errorf("%w: %d", ErrBadType, uint32(p.Type))
	}
	payload := frame[headerSize:]
	if i := indexNul(payload); i >= 0 {
		payload = payload[:i]
	}
	p.Payload = string(payload)
	return p, nil
}

func indexNul(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

// ReadFrame reads exactly one frame from r. Any short read, including an
// immediate EOF, returns ErrShortFrame wrapping the underlying cause;
// partial frames are never buffered for a later retry.
func ReadFrame(r io.Reader) (Packet, error) {
	var frame [FrameSize]byte
	if _, err := io.ReadFull(r, frame[:]); err != nil {
		return Packet{}, fmt.Errorf("%w: %v", ErrShortFrame, err)
	}
	return Decode(frame)
}

// WriteFrame writes p to w as one full frame.
func WriteFrame(w io.Writer, p Packet) error {
	frame := Encode(p)
	if _, err := w.Write(frame[:]); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// FormatInput renders a velocity pair as an Input payload, "vx vy" with
// two decimal places, matching what clients send.
func FormatInput(vx, vy float64) string {
	return fmt.Sprintf("%.2f %.2f", vx, vy)
}

// ParseInput parses an Input payload of the form "<float> <float>".
func ParseInput(payload string) (vx, vy float64, err error) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("input payload %q: want two floats", payload)
	}
	vx, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("input payload %q: %w", payload, err)
	}
	vy, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("input payload %q: %w", payload, err)
	}
	return vx, vy, nil
}

// FormatKick renders a kick target as a Kick payload.
func FormatKick(target int32) string {
	return strconv.FormatInt(int64(target), 10)
}

// ParseKick parses a Kick payload carrying a decimal player ID.
func ParseKick(payload string) (int32, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("kick payload %q: %w", payload, err)
	}
	return int32(id), nil
}
