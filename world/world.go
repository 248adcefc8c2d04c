package world

import (
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/rail"
	"github.com/oomph-ac/railcart/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

var currentWorldId atomic.Uint64

// Config holds the optional settings of a World.
type Config struct {
	// Log receives chunk lifecycle messages. Defaults to the standard logrus logger.
	Log logrus.FieldLogger
	// LoadDelay is how long an asynchronous chunk load takes to complete.
	LoadDelay time.Duration
	// Submit runs chunk loads in the background. Defaults to worker.Submit.
	Submit func(f func())
}

// World is a block world holding rails, solid blocks, signs and entities. Blocks only exist in resident
// chunks; chunks become resident when a block is placed in them, when they are loaded, or when a ticket
// is taken out on them.
type World struct {
	id uint64

	rails  map[cube.Pos]rail.Piece
	solids map[cube.Pos]struct{}
	signs  map[cube.Pos][]cube.Pos

	chunks   map[world.ChunkPos]*chunkState
	entities *orderedmap.OrderedMap[uuid.UUID, *entity.Entity]

	lastCleanPos world.ChunkPos
	conf         Config

	deadlock.RWMutex
}

// New creates an empty world.
func New(conf Config) *World {
	if conf.Log == nil {
		conf.Log = logrus.StandardLogger()
	}
	if conf.Submit == nil {
		conf.Submit = worker.Submit
	}
	return &World{
		id:       currentWorldId.Add(1),
		rails:    make(map[cube.Pos]rail.Piece),
		solids:   make(map[cube.Pos]struct{}),
		signs:    make(map[cube.Pos][]cube.Pos),
		chunks:   make(map[world.ChunkPos]*chunkState),
		entities: orderedmap.NewOrderedMap[uuid.UUID, *entity.Entity](),
		conf:     conf,
	}
}

// ID returns the unique id of the world.
func (w *World) ID() uint64 {
	return w.id
}

// SetRail places a rail at the position passed, making its chunk resident.
func (w *World) SetRail(pos cube.Pos, p rail.Piece) {
	w.Lock()
	defer w.Unlock()
	w.rails[pos] = p
	w.chunk(game.BlockChunk(pos)).loaded = true
}

// RemoveRail removes the rail at the position passed.
func (w *World) RemoveRail(pos cube.Pos) {
	w.Lock()
	defer w.Unlock()
	delete(w.rails, pos)
	delete(w.signs, pos)
}

// Rail returns the rail at the position passed. Rails in chunks that are not resident are not returned.
func (w *World) Rail(pos cube.Pos) (rail.Piece, bool) {
	w.RLock()
	defer w.RUnlock()
	if !w.loaded(game.BlockChunk(pos)) {
		return rail.Piece{}, false
	}
	p, ok := w.rails[pos]
	return p, ok
}

// SetSolid places a full solid block at the position passed.
func (w *World) SetSolid(pos cube.Pos) {
	w.Lock()
	defer w.Unlock()
	w.solids[pos] = struct{}{}
	w.chunk(game.BlockChunk(pos)).loaded = true
}

// Solid returns true if a resident solid block is at the position passed.
func (w *World) Solid(pos cube.Pos) bool {
	w.RLock()
	defer w.RUnlock()
	return w.solid(pos)
}

func (w *World) solid(pos cube.Pos) bool {
	_, ok := w.solids[pos]
	return ok && w.loaded(game.BlockChunk(pos))
}

// AddSign attaches a sign at signPos to the rail at railPos.
func (w *World) AddSign(railPos, signPos cube.Pos) {
	w.Lock()
	defer w.Unlock()
	w.signs[railPos] = append(w.signs[railPos], signPos)
}

// SignsAt returns the signs attached to the rail at the position passed.
func (w *World) SignsAt(railPos cube.Pos) []cube.Pos {
	w.RLock()
	defer w.RUnlock()
	if !w.loaded(game.BlockChunk(railPos)) {
		return nil
	}
	return append([]cube.Pos(nil), w.signs[railPos]...)
}

// AddEntity adds an entity to the world.
func (w *World) AddEntity(e *entity.Entity) {
	w.Lock()
	defer w.Unlock()
	w.entities.Set(e.ID(), e)
}

// RemoveEntity kills and removes the entity with the id passed.
func (w *World) RemoveEntity(id uuid.UUID) {
	w.Lock()
	e, ok := w.entities.Get(id)
	w.entities.Delete(id)
	w.Unlock()
	if ok {
		e.Kill()
	}
}

// Entity returns the living entity with the id passed.
func (w *World) Entity(id uuid.UUID) (*entity.Entity, bool) {
	w.RLock()
	defer w.RUnlock()
	e, ok := w.entities.Get(id)
	if !ok || e.Dead() {
		return nil, false
	}
	return e, true
}

// Entities returns all living entities in insertion order.
func (w *World) Entities() []*entity.Entity {
	w.RLock()
	defer w.RUnlock()
	out := make([]*entity.Entity, 0, w.entities.Len())
	for el := w.entities.Front(); el != nil; el = el.Next() {
		if !el.Value.Dead() {
			out = append(out, el.Value)
		}
	}
	return out
}

// EntitiesWithin returns the living entities in resident chunks whose bounding box intersects the box
// passed.
func (w *World) EntitiesWithin(box cube.BBox) []*entity.Entity {
	w.RLock()
	defer w.RUnlock()
	var out []*entity.Entity
	for el := w.entities.Front(); el != nil; el = el.Next() {
		e := el.Value
		if e.Dead() || !w.loaded(game.ChunkPosOf(e.Position())) {
			continue
		}
		if e.BBox().IntersectsWith(box) {
			out = append(out, e)
		}
	}
	return out
}

// Tick ages all entities and drops the dead ones.
func (w *World) Tick() {
	w.Lock()
	defer w.Unlock()
	var dead []uuid.UUID
	for el := w.entities.Front(); el != nil; el = el.Next() {
		if el.Value.Dead() {
			dead = append(dead, el.Key)
			continue
		}
		el.Value.Tick()
	}
	for _, id := range dead {
		w.entities.Delete(id)
	}
}

// CleanChunks unloads every resident chunk further than radius chunks away from pos that holds no tickets.
func (w *World) CleanChunks(radius int32, pos world.ChunkPos) {
	w.Lock()
	defer w.Unlock()

	if pos == w.lastCleanPos {
		return
	}
	w.lastCleanPos = pos

	for chunkPos, c := range w.chunks {
		if !c.loaded || c.tickets > 0 || chunkInRange(radius, chunkPos, pos) {
			continue
		}
		c.loaded = false
		w.conf.Log.WithFields(logrus.Fields{"chunk": chunkPos, "radius": radius, "pos": pos}).Debug("unloaded chunk out of range")
	}
}

// chunkInRange returns true if the chunk position is within the given radius of the chunk position.
func chunkInRange(radius int32, chunkPos, pos world.ChunkPos) bool {
	diffX, diffZ := pos[0]-chunkPos[0], pos[1]-chunkPos[1]
	dist := math32.Sqrt(float32(diffX*diffX) + float32(diffZ*diffZ))

	return int32(dist) <= radius
}
