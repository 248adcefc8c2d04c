package game

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// ChunkPosOf returns the position of the chunk containing the point passed.
func ChunkPosOf(pos mgl64.Vec3) world.ChunkPos {
	return world.ChunkPos{int32(math.Floor(pos[0])) >> 4, int32(math.Floor(pos[2])) >> 4}
}

// BlockChunk returns the position of the chunk containing the block passed.
func BlockChunk(pos cube.Pos) world.ChunkPos {
	return world.ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
}
