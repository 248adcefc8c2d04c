package train

import (
	"maps"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/oomph-ac/railcart/game"
	"github.com/samber/lo"
)

// canUnload returns true if the train may be stored offline when it reaches a chunk that is not loaded.
// Trains with a player on board, trains told to keep their chunks loaded and trains that just teleported
// hold on to their chunks instead.
func (g *Group) canUnload() bool {
	if g.props.KeepChunksLoaded || g.teleportImmunity > 0 {
		return false
	}
	return !lo.SomeBy(g.members, func(m *Member) bool { return m.e.HasPlayerPassenger() })
}

// inUnloadedChunk returns true if any cart of the train is in a chunk that is not loaded.
func (g *Group) inUnloadedChunk() bool {
	return lo.SomeBy(g.members, func(m *Member) bool {
		return !g.sim.world.ChunkLoaded(game.ChunkPosOf(m.e.Position()))
	})
}

// updateChunkInformation works out the chunks the train needs after a step. A train that may unload is
// stored offline as soon as one of its carts is in a chunk that is not loaded. Any other train keeps the
// chunks around its carts loaded by holding a ticket on each of them, handing back the tickets of chunks it
// left. False is returned if the train was unloaded.
func (g *Group) updateChunkInformation() bool {
	s := g.sim
	clear(s.chunkScratch)

	if g.canUnload() {
		for _, m := range g.members {
			pos := game.ChunkPosOf(m.e.Position())
			if !s.world.ChunkLoaded(pos) {
				s.unload(g)
				return false
			}
			s.chunkScratch[pos] = struct{}{}
		}
		g.releaseChunks()
		g.chunks = maps.Clone(s.chunkScratch)
		return true
	}

	for _, m := range g.members {
		pos := game.ChunkPosOf(m.e.Position())
		for x := int32(-1); x <= 1; x++ {
			for z := int32(-1); z <= 1; z++ {
				s.chunkScratch[world.ChunkPos{pos[0] + x, pos[1] + z}] = struct{}{}
			}
		}
	}
	for pos := range s.chunkScratch {
		if _, ok := g.chunks[pos]; !ok || !g.holding {
			s.world.RetainChunk(pos)
		}
	}
	if g.holding {
		for pos := range g.chunks {
			if _, ok := s.chunkScratch[pos]; !ok {
				s.world.ReleaseChunk(pos)
			}
		}
	}
	g.chunks, g.holding = maps.Clone(s.chunkScratch), true
	return true
}

// releaseChunks hands back the tickets the train holds.
func (g *Group) releaseChunks() {
	if !g.holding {
		return
	}
	for pos := range g.chunks {
		g.sim.world.ReleaseChunk(pos)
	}
	g.holding = false
}
