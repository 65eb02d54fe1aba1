package lobby

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridroom/gridroom/internal/game/world"
)

func newLobby() *Lobby { return New(world.DefaultGridSize) }

func TestAddRemovePlayer(t *testing.T) {
	l := newLobby()
	l.AddPlayer(1)
	assert.True(t, l.HasPlayer(1))

	l.RemovePlayer(1)
	assert.False(t, l.HasPlayer(1))

	// Second removal is a no-op.
	l.RemovePlayer(1)
	assert.False(t, l.HasPlayer(1))
}

func TestRemovePlayerScrubsEveryRoom(t *testing.T) {
	l := newLobby()
	l.AddPlayer(1)
	l.JoinRoom(1, "alpha")

	l.RemovePlayer(1)
	assert.False(t, l.HasPlayer(1))
	_, _, err := l.RoomMembers(1)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestCreateRoomDuplicateIsNoOp(t *testing.T) {
	l := newLobby()
	assert.True(t, l.CreateRoom("alpha"))
	l.JoinRoom(1, "alpha")

	// Re-creating must not replace the room or drop its members.
	assert.False(t, l.CreateRoom("alpha"))
	name, members, err := l.RoomMembers(1)
	require.NoError(t, err)
	assert.Equal(t, "alpha", name)
	assert.Equal(t, []int32{1}, members)
}

func TestJoinRoomLazilyCreates(t *testing.T) {
	l := newLobby()
	assert.False(t, l.HasRoom("alpha"))

	l.JoinRoom(1, "alpha")
	assert.True(t, l.HasRoom("alpha"))

	name, members, err := l.RoomMembers(1)
	require.NoError(t, err)
	assert.Equal(t, "alpha", name)
	assert.Equal(t, []int32{1}, members)
}

func TestJoinRoomLeavesPreviousRoom(t *testing.T) {
	l := newLobby()
	l.JoinRoom(1, "alpha")
	l.JoinRoom(1, "beta")

	name, _, err := l.RoomMembers(1)
	require.NoError(t, err)
	assert.Equal(t, "beta", name)

	sizes := l.RoomSizes()
	assert.Equal(t, 0, sizes["alpha"])
	assert.Equal(t, 1, sizes["beta"])
}

func TestJoinRoomRejoinIsNoOp(t *testing.T) {
	l := newLobby()
	l.JoinRoom(1, "alpha")
	require.NoError(t, l.SetVelocity(1, 2, 2))

	// Rejoining the current room keeps state and membership intact.
	l.JoinRoom(1, "alpha")
	_, members, err := l.RoomMembers(1)
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, members)
}

func TestSetVelocityRequiresMembership(t *testing.T) {
	l := newLobby()
	l.AddPlayer(1)
	assert.ErrorIs(t, l.SetVelocity(1, 1, 1), ErrNotMember)

	l.JoinRoom(1, "alpha")
	assert.NoError(t, l.SetVelocity(1, 1, 1))
}

func TestKick(t *testing.T) {
	l := newLobby()
	l.JoinRoom(1, "alpha")
	l.JoinRoom(2, "alpha")

	name, err := l.Kick(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "alpha", name)

	_, _, err = l.RoomMembers(2)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestKickAcrossRooms(t *testing.T) {
	l := newLobby()
	l.JoinRoom(1, "alpha")
	l.JoinRoom(2, "beta")

	_, err := l.Kick(1, 2)
	assert.ErrorIs(t, err, ErrTargetNotMember)

	_, err = l.Kick(3, 1)
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestTickVisitsEveryRoom(t *testing.T) {
	l := newLobby()
	l.CreateRoom("alpha")
	l.CreateRoom("beta")

	var visited []string
	l.Tick(func(room *world.Room) {
		visited = append(visited, room.Name())
	})
	sort.Strings(visited)
	assert.Equal(t, []string{"alpha", "beta"}, visited)
}

func TestCounts(t *testing.T) {
	l := newLobby()
	l.AddPlayer(1)
	l.AddPlayer(2)
	l.JoinRoom(1, "alpha")

	players, rooms := l.Counts()
	assert.Equal(t, 2, players)
	assert.Equal(t, 1, rooms)
}

func TestConcurrentAccess(t *testing.T) {
	l := newLobby()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		id := int32(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.AddPlayer(id)
			l.JoinRoom(id, "alpha")
			_ = l.SetVelocity(id, 1, 1)
			l.Tick(func(room *world.Room) { room.Advance() })
			l.RemovePlayer(id)
		}()
	}
	wg.Wait()

	players, _ := l.Counts()
	assert.Zero(t, players)
	assert.Equal(t, 0, l.RoomSizes()["alpha"])
}
