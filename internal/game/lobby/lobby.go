// Package lobby is the server-wide registry of rooms and connected
// players. It is the single point of mutual exclusion for all room and
// membership changes: every operation is one atomic unit under the lobby
// lock, including the tick loop's advance-and-broadcast pass.
package lobby

import (
	"errors"
	"sync"

	"github.com/gridroom/gridroom/internal/game/world"
)

// ErrNotMember reports that a player currently belongs to no room.
var ErrNotMember = errors.New("lobby: player not in any room")

// ErrTargetNotMember reports that a kick target does not share the
// kicker's room.
var ErrTargetNotMember = errors.New("lobby: target not in the same room")

// Lobby owns every Room for the process lifetime and tracks the flat set
// of connected players, which is independent of room membership: a player
// exists here from accept to disconnect whether or not they ever join a
// room. All methods are safe for concurrent use.
type Lobby struct {
	mu       sync.Mutex
	gridSize int

	players map[int32]struct{}
	rooms   map[string]*world.Room
}

// New creates an empty Lobby whose rooms render gridSize-sided snapshots.
func New(gridSize int) *Lobby {
	return &Lobby{
		gridSize: gridSize,
		players:  make(map[int32]struct{}),
		rooms:    make(map[string]*world.Room),
	}
}

// AddPlayer records a connected player. Joining a room is separate.
func (l *Lobby) AddPlayer(id int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.players[id] = struct{}{}
}

// RemovePlayer removes a player from the connected set and from every
// room's membership. Safe to call for unknown players; calling it twice
// is a no-op the second time.
func (l *Lobby) RemovePlayer(id int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.players, id)
	for _, room := range l.rooms {
		room.RemovePlayer(id)
	}
}

// HasPlayer reports whether id is in the connected set.
func (l *Lobby) HasPlayer(id int32) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.players[id]
	return ok
}

// CreateRoom creates an empty room with the given name. Creating a name
// that already exists is a no-op: the existing room and its members are
// kept, never overwritten. Reports whether a room was created.
func (l *Lobby) CreateRoom(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.createRoomLocked(name)
}

func (l *Lobby) createRoomLocked(name string) bool {
	if _, ok := l.rooms[name]; ok {
		return false
	}
	l.rooms[name] = world.NewRoom(name, l.gridSize)
	return true
}

// HasRoom reports whether a room with the given name exists.
func (l *Lobby) HasRoom(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rooms[name]
	return ok
}

// JoinRoom adds the player to the named room, creating it if absent.
// A player belongs to at most one room: joining while a member elsewhere
// leaves the previous room first, and rejoining the current room is a
// no-op. The player starts at the origin with zero velocity.
func (l *Lobby) JoinRoom(id int32, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.createRoomLocked(name)
	target := l.rooms[name]
	if target.HasPlayer(id) {
		return
	}
	for _, room := range l.rooms {
		room.RemovePlayer(id)
	}
	target.AddPlayer(id)
}

// SetVelocity updates the velocity of the player in whichever room holds
// them. Position is untouched; only the tick loop writes positions.
func (l *Lobby) SetVelocity(id int32, vx, vy float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, room := range l.rooms {
		if room.SetVelocity(id, vx, vy) {
			return nil
		}
	}
	return ErrNotMember
}

// RoomMembers returns the name and membership of the room containing id.
func (l *Lobby) RoomMembers(id int32) (name string, members []int32, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, room := range l.rooms {
		if room.HasPlayer(id) {
			return room.Name(), room.Members(), nil
		}
	}
	return "", nil, ErrNotMember
}

// Kick removes target from the room shared with kicker. The kicker must
// be in a room and the target must be a member of that same room.
func (l *Lobby) Kick(kicker, target int32) (roomName string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, room := range l.rooms {
		if !room.HasPlayer(kicker) {
			continue
		}
		if !room.HasPlayer(target) {
			return "", ErrTargetNotMember
		}
		room.RemovePlayer(target)
		return room.Name(), nil
	}
	return "", ErrNotMember
}

// Tick runs fn for every room inside one critical section. The scheduler
// uses it for its advance-and-broadcast unit so no membership change can
// interleave with a tick. fn must not retain the *world.Room.
func (l *Lobby) Tick(fn func(room *world.Room)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, room := range l.rooms {
		fn(room)
	}
}

// Players returns a copy of the connected player set.
func (l *Lobby) Players() []int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int32, 0, len(l.players))
	for id := range l.players {
		out = append(out, id)
	}
	return out
}

// RoomNames returns the names of all rooms.
func (l *Lobby) RoomNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.rooms))
	for name := range l.rooms {
		out = append(out, name)
	}
	return out
}

// Counts returns the connected-player and room counts in one snapshot.
func (l *Lobby) Counts() (players, rooms int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.players), len(l.rooms)
}

// RoomSizes returns each room's member count, keyed by room name.
func (l *Lobby) RoomSizes() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.rooms))
	for name, room := range l.rooms {
		out[name] = len(room.Members())
	}
	return out
}
