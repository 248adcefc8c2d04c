package train

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/rail"
)

// World is the world trains move in. It owns the entities carts are made of.
type World interface {
	rail.Lookup

	// Entity returns the living entity with the id passed.
	Entity(id uuid.UUID) (*entity.Entity, bool)
	// AddEntity adds a new entity to the world.
	AddEntity(e *entity.Entity)
	// EntitiesWithin returns the living entities whose bounding box intersects the box passed.
	EntitiesWithin(box cube.BBox) []*entity.Entity
	// Move moves an entity by delta, asking collide whether each block face it runs into stops it.
	Move(e *entity.Entity, delta mgl64.Vec3, collide func(pos cube.Pos, face cube.Face) bool) mgl64.Vec3
	// Solid returns true if a solid block is at the position passed.
	Solid(pos cube.Pos) bool
	// SignsAt returns the signs attached to the rail at the position passed.
	SignsAt(rail cube.Pos) []cube.Pos

	// ChunkLoaded returns true if the chunk passed is resident.
	ChunkLoaded(pos world.ChunkPos) bool
	// RetainChunk keeps the chunk passed resident, loading it in the background if needed.
	RetainChunk(pos world.ChunkPos)
	// ReleaseChunk gives back a ticket taken out with RetainChunk.
	ReleaseChunk(pos world.ChunkPos)
}
