package world

import (
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/sirupsen/logrus"
)

// chunkState tracks the residency of a single chunk.
type chunkState struct {
	loaded  bool
	loading bool
	// tickets is the amount of holders keeping the chunk resident. A chunk with tickets is never unloaded.
	tickets int
}

// chunk returns the state of the chunk passed, creating it if needed. The world must be locked.
func (w *World) chunk(pos world.ChunkPos) *chunkState {
	c, ok := w.chunks[pos]
	if !ok {
		c = &chunkState{}
		w.chunks[pos] = c
	}
	return c
}

// loaded returns true if the chunk passed is resident. The world must be at least read-locked.
func (w *World) loaded(pos world.ChunkPos) bool {
	c, ok := w.chunks[pos]
	return ok && c.loaded
}

// ChunkLoaded returns true if the chunk at the position passed is resident.
func (w *World) ChunkLoaded(pos world.ChunkPos) bool {
	w.RLock()
	defer w.RUnlock()
	return w.loaded(pos)
}

// LoadChunk makes the chunk passed resident immediately.
func (w *World) LoadChunk(pos world.ChunkPos) {
	w.Lock()
	defer w.Unlock()
	c := w.chunk(pos)
	c.loaded, c.loading = true, false
}

// UnloadChunk makes the chunk passed non-resident. It returns false if the chunk holds tickets.
func (w *World) UnloadChunk(pos world.ChunkPos) bool {
	w.Lock()
	defer w.Unlock()
	c, ok := w.chunks[pos]
	if !ok {
		return true
	}
	if c.tickets > 0 {
		return false
	}
	c.loaded = false
	w.conf.Log.WithField("chunk", pos).Debug("unloaded chunk")
	return true
}

// RetainChunk takes out a ticket on the chunk passed. If the chunk is not resident it is loaded in the
// background, so callers must not assume it is resident when RetainChunk returns.
func (w *World) RetainChunk(pos world.ChunkPos) {
	c, load := w.retain(pos)
	if !load {
		return
	}
	delay := w.conf.LoadDelay
	w.conf.Submit(func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		w.Lock()
		defer w.Unlock()
		if !c.loading {
			return
		}
		c.loaded, c.loading = true, false
		w.conf.Log.WithFields(logrus.Fields{"chunk": pos, "tickets": c.tickets}).Debug("loaded chunk")
	})
}

// retain adds a ticket to the chunk passed and returns true if the chunk must be loaded.
func (w *World) retain(pos world.ChunkPos) (*chunkState, bool) {
	w.Lock()
	defer w.Unlock()

	c := w.chunk(pos)
	c.tickets++
	if c.loaded || c.loading {
		return c, false
	}
	c.loading = true
	return c, true
}

// ReleaseChunk gives back a ticket taken out with RetainChunk. The chunk stays resident until it is
// unloaded.
func (w *World) ReleaseChunk(pos world.ChunkPos) {
	w.Lock()
	defer w.Unlock()
	if c, ok := w.chunks[pos]; ok && c.tickets > 0 {
		c.tickets--
	}
}

// Tickets returns the amount of tickets held on the chunk passed.
func (w *World) Tickets(pos world.ChunkPos) int {
	w.RLock()
	defer w.RUnlock()
	if c, ok := w.chunks[pos]; ok {
		return c.tickets
	}
	return 0
}
