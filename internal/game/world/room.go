// Package world holds the per-room simulation state: member kinematics,
// the fixed-step physics advance, and the grid snapshot rendering.
package world

import (
	"strings"
)

// DefaultGridSize is the side length of the rendered snapshot grid.
const DefaultGridSize = 9

// PlayerState is one member's kinematic state inside a room. Position is
// only ever written by the tick loop; velocity only by input handling.
type PlayerState struct {
	X, Y   float64
	VX, VY float64
}

// Room owns one named play area: an ordered member list and each member's
// state. Room is not safe for concurrent use on its own; the lobby
// serializes all access behind its lock.
type Room struct {
	name     string
	gridSize int

	members []int32
	states  map[int32]*PlayerState
}

// NewRoom creates an empty room. A gridSize below 1 falls back to
// DefaultGridSize.
func NewRoom(name string, gridSize int) *Room {
	if gridSize < 1 {
		gridSize = DefaultGridSize
	}
	return &Room{
		name:     name,
		gridSize: gridSize,
		states:   make(map[int32]*PlayerState),
	}
}

// Name returns the room's unique name.
func (r *Room) Name() string { return r.name }

// AddPlayer adds id as a member at the origin with zero velocity.
// Adding an existing member is a no-op: membership never duplicates.
func (r *Room) AddPlayer(id int32) {
	if _, ok := r.states[id]; ok {
		return
	}
	r.members = append(r.members, id)
	r.states[id] = &PlayerState{}
}

// RemovePlayer removes id's membership and state. Removing a non-member
// is a no-op.
func (r *Room) RemovePlayer(id int32) {
	if _, ok := r.states[id]; !ok {
		return
	}
	delete(r.states, id)
	kept := r.members[:0]
	for _, m := range r.members {
		if m != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
}

// HasPlayer reports whether id is a member.
func (r *Room) HasPlayer(id int32) bool {
	_, ok := r.states[id]
	return ok
}

// Members returns a copy of the membership in join order.
func (r *Room) Members() []int32 {
	out := make([]int32, len(r.members))
	copy(out, r.members)
	return out
}

// State returns the live state for a member, or nil for a non-member.
func (r *Room) State(id int32) *PlayerState {
	return r.states[id]
}

// SetVelocity updates a member's velocity. Returns false for non-members.
func (r *Room) SetVelocity(id int32, vx, vy float64) bool {
	s, ok := r.states[id]
	if !ok {
		return false
	}
	s.VX, s.VY = vx, vy
	return true
}

// Advance applies one Euler integration step to every member:
// position += velocity. The step is implicitly scaled by the scheduler's
// fixed tick period; there is no delta-time term.
func (r *Room) Advance() {
	for _, s := range r.states {
		s.X += s.VX
		s.Y += s.VY
	}
}

// RenderGrid renders the room as a square character grid. Cells default
// to '.'; each member whose truncated position lands inside the grid is
// stamped at row int(y), column int(x) with the digit '0'+(id mod 10).
// Members outside the grid are omitted, not an error. Cells are joined
// with single spaces and rows with newlines.
func (r *Room) RenderGrid() string {
	n := r.gridSize
	grid := make([][]byte, n)
	for i := range grid {
		grid[i] = make([]byte, n)
		for j := range grid[i] {
			grid[i][j] = '.'
		}
	}

	for id, s := range r.states {
		x, y := int(s.X), int(s.Y)
		if x >= 0 && x < n && y >= 0 && y < n {
			grid[y][x] = byte('0' + mod10(id))
		}
	}

	var b strings.Builder
	b.Grow(n * (2*n + 1))
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, c := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

func mod10(id int32) int32 {
	m := id % 10
	if m < 0 {
		m += 10
	}
	return m
}
