package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAddPlayerStartsAtOrigin(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(1)

	s := r.State(1)
	require.NotNil(t, s)
	assert.Equal(t, PlayerState{}, *s)
	assert.Equal(t, []int32{1}, r.Members())
}

func TestAddPlayerIsIdempotent(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(1)
	require.True(t, r.SetVelocity(1, 2, 3))

	// A second add must neither duplicate membership nor reset state.
	r.AddPlayer(1)
	assert.Equal(t, []int32{1}, r.Members())
	assert.Equal(t, 2.0, r.State(1).VX)
}

func TestRemovePlayerTwiceIsNoOp(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(1)
	r.AddPlayer(2)

	r.RemovePlayer(1)
	assert.Equal(t, []int32{2}, r.Members())
	assert.Nil(t, r.State(1))

	r.RemovePlayer(1)
	assert.Equal(t, []int32{2}, r.Members())
	assert.Nil(t, r.State(1))
}

func TestMembersPreservesJoinOrder(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	for _, id := range []int32{5, 3, 9} {
		r.AddPlayer(id)
	}
	assert.Equal(t, []int32{5, 3, 9}, r.Members())
}

func TestAdvanceIntegratesVelocity(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(1)
	require.True(t, r.SetVelocity(1, 3, 0))

	r.Advance()
	r.Advance()

	s := r.State(1)
	assert.Equal(t, 6.0, s.X)
	assert.Equal(t, 0.0, s.Y)
}

func TestAdvanceZeroVelocityHoldsPosition(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(1)
	r.State(1).X, r.State(1).Y = 4, 4

	for i := 0; i < 10; i++ {
		r.Advance()
	}
	assert.Equal(t, 4.0, r.State(1).X)
	assert.Equal(t, 4.0, r.State(1).Y)
}

func TestPropertyAdvanceNTicks(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vx := float64(rapid.IntRange(-50, 50).Draw(t, "vx"))
		vy := float64(rapid.IntRange(-50, 50).Draw(t, "vy"))
		n := rapid.IntRange(0, 100).Draw(t, "ticks")

		r := NewRoom("alpha", DefaultGridSize)
		r.AddPlayer(1)
		r.SetVelocity(1, vx, vy)
		for i := 0; i < n; i++ {
			r.Advance()
		}

		s := r.State(1)
		if s.X != float64(n)*vx || s.Y != float64(n)*vy {
			t.Fatalf("after %d ticks got (%v,%v), want (%v,%v)", n, s.X, s.Y, float64(n)*vx, float64(n)*vy)
		}
	})
}

func TestSetVelocityOnNonMember(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	assert.False(t, r.SetVelocity(1, 1, 1))
}

func gridCell(t interface {
	require.TestingT
	Helper()
}, grid string, row, col int) byte {
	t.Helper()
	rows := strings.Split(grid, "\n")
	require.Greater(t, len(rows), row)
	cells := strings.Split(rows[row], " ")
	require.Greater(t, len(cells), col)
	require.Len(t, cells[col], 1)
	return cells[col][0]
}

func TestRenderGridEmpty(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	grid := r.RenderGrid()

	rows := strings.Split(grid, "\n")
	require.Len(t, rows, DefaultGridSize)
	for _, row := range rows {
		assert.Equal(t, ". . . . . . . . .", row)
	}
}

func TestRenderGridStampsPlayers(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(13)
	r.State(13).X, r.State(13).Y = 2, 5

	grid := r.RenderGrid()
	assert.Equal(t, byte('3'), gridCell(t, grid, 5, 2), "13 mod 10 at row y, col x")
}

func TestRenderGridTruncatesPositions(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	r.AddPlayer(1)
	r.State(1).X, r.State(1).Y = 3.9, 7.1

	grid := r.RenderGrid()
	assert.Equal(t, byte('1'), gridCell(t, grid, 7, 3))
}

func TestRenderGridOmitsOutOfBounds(t *testing.T) {
	r := NewRoom("alpha", DefaultGridSize)
	for i, pos := range [][2]float64{{-1, 4}, {4, -1}, {9, 4}, {4, 9}, {100, 100}} {
		id := int32(i + 1)
		r.AddPlayer(id)
		r.State(id).X, r.State(id).Y = pos[0], pos[1]
	}

	grid := r.RenderGrid()
	assert.NotContains(t, grid, "1")
	assert.NotContains(t, grid, "2")
	assert.NotContains(t, grid, "3")
	assert.NotContains(t, grid, "4")
	assert.NotContains(t, grid, "5")
}

func TestPropertyRenderGridPlacement(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.Int32Range(0, 1<<30).Draw(t, "id")
		x := rapid.IntRange(0, DefaultGridSize-1).Draw(t, "x")
		y := rapid.IntRange(0, DefaultGridSize-1).Draw(t, "y")

		r := NewRoom("alpha", DefaultGridSize)
		r.AddPlayer(id)
		r.State(id).X, r.State(id).Y = float64(x), float64(y)

		grid := r.RenderGrid()
		want := byte('0' + id%10)
		if got := gridCell(t, grid, y, x); got != want {
			t.Fatalf("cell (%d,%d) = %c, want %c", y, x, got, want)
		}
	})
}
