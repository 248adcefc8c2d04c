package world

import (
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/rail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncWorld() *World {
	return New(Config{Submit: func(f func()) { f() }})
}

func TestRailOnlyInResidentChunks(t *testing.T) {
	w := syncWorld()
	pos := cube.Pos{3, 64, 3}
	w.SetRail(pos, rail.Regular(rail.ShapeEastWest))

	_, ok := w.Rail(pos)
	require.True(t, ok)

	require.True(t, w.UnloadChunk(game.BlockChunk(pos)))
	_, ok = w.Rail(pos)
	assert.False(t, ok)

	w.LoadChunk(game.BlockChunk(pos))
	_, ok = w.Rail(pos)
	assert.True(t, ok)
}

func TestTicketsKeepChunksResident(t *testing.T) {
	w := syncWorld()
	c := world.ChunkPos{4, -2}

	w.RetainChunk(c)
	assert.True(t, w.ChunkLoaded(c))
	assert.Equal(t, 1, w.Tickets(c))
	assert.False(t, w.UnloadChunk(c))

	w.CleanChunks(1, world.ChunkPos{100, 100})
	assert.True(t, w.ChunkLoaded(c))

	w.ReleaseChunk(c)
	assert.Zero(t, w.Tickets(c))
	assert.True(t, w.UnloadChunk(c))
	assert.False(t, w.ChunkLoaded(c))
}

func TestRetainLoadsInBackground(t *testing.T) {
	w := New(Config{LoadDelay: 20 * time.Millisecond})
	c := world.ChunkPos{9, 9}

	w.RetainChunk(c)
	assert.False(t, w.ChunkLoaded(c))
	require.Eventually(t, func() bool { return w.ChunkLoaded(c) }, time.Second, 5*time.Millisecond)
}

func TestMoveStopsAtSolid(t *testing.T) {
	w := syncWorld()
	w.SetSolid(cube.Pos{3, 64, 0})
	e := entity.New(entity.KindMinecart, mgl64.Vec3{1.5, 64, 0.5})
	w.AddEntity(e)

	var hit []cube.Face
	moved := w.Move(e, mgl64.Vec3{2, 0, 0}, func(pos cube.Pos, face cube.Face) bool {
		assert.Equal(t, cube.Pos{3, 64, 0}, pos)
		hit = append(hit, face)
		return true
	})
	assert.InDelta(t, 3-1.5-0.49, moved.X(), 1e-9)
	assert.Equal(t, []cube.Face{cube.FaceWest}, hit)
	assert.InDelta(t, 3-0.49, e.Position().X(), 1e-9)
}

func TestMovePassThrough(t *testing.T) {
	w := syncWorld()
	w.SetSolid(cube.Pos{3, 64, 0})
	e := entity.New(entity.KindMinecart, mgl64.Vec3{1.5, 64, 0.5})

	moved := w.Move(e, mgl64.Vec3{2, 0, 0}, func(cube.Pos, cube.Face) bool { return false })
	assert.InDelta(t, 2, moved.X(), 1e-9)
}

func TestTickDropsDead(t *testing.T) {
	w := syncWorld()
	a := entity.New(entity.KindMinecart, mgl64.Vec3{})
	b := entity.New(entity.KindOther, mgl64.Vec3{})
	w.AddEntity(a)
	w.AddEntity(b)

	a.Kill()
	w.Tick()

	_, ok := w.Entity(a.ID())
	assert.False(t, ok)
	assert.Equal(t, []*entity.Entity{b}, w.Entities())
	assert.EqualValues(t, 1, b.TicksLived())
}
