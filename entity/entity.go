package entity

import (
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Kind is the type of an entity.
type Kind uint8

const (
	KindMinecart Kind = iota
	KindStorageMinecart
	KindPoweredMinecart
	// KindOther is any entity that is not a cart, such as a player or mob standing on the track.
	KindOther
)

// Cart returns true if the kind is one of the minecart kinds.
func (k Kind) Cart() bool {
	return k <= KindPoweredMinecart
}

func (k Kind) String() string {
	switch k {
	case KindMinecart:
		return "minecart"
	case KindStorageMinecart:
		return "storage_minecart"
	case KindPoweredMinecart:
		return "powered_minecart"
	}
	return "other"
}

// Entity is a physical entity in a world. Its lifetime is owned by the world; carts only reference it.
type Entity struct {
	// mu protects all the following fields.
	mu sync.Mutex
	// id is the unique id of the entity.
	id uuid.UUID
	// kind is the type of the entity.
	kind Kind
	// position is the current position of the entity in the world. For carts this is the bottom centre.
	position mgl64.Vec3
	// lastPosition is the position of the entity at the start of the last movement.
	lastPosition mgl64.Vec3
	// velocity is the motion of the entity per tick.
	velocity mgl64.Vec3
	// rotation represents the rotation of an entity. The first value is the pitch and the second the yaw.
	rotation mgl32.Vec2
	// width and height make up the bounding box of the entity.
	width, height float64
	// fallDistance is the distance the entity fell since it was last on the ground or on a rail.
	fallDistance float64
	// ticksLived is the amount of ticks the entity has existed for.
	ticksLived int64
	// playerPassenger is true if a player is riding the entity.
	playerPassenger bool
	// dead is true once the entity was killed or removed from its world.
	dead bool
}

// New creates a new entity of the kind passed at a position.
func New(kind Kind, pos mgl64.Vec3) *Entity {
	e := &Entity{
		id:           uuid.New(),
		kind:         kind,
		position:     pos,
		lastPosition: pos,
		width:        0.98,
		height:       0.7,
	}
	if !kind.Cart() {
		e.width, e.height = 0.6, 1.8
	}
	return e
}

// ID returns the unique id of the entity.
func (e *Entity) ID() uuid.UUID {
	return e.id
}

// Kind returns the type of the entity.
func (e *Entity) Kind() Kind {
	return e.kind
}

// Position returns the position of the entity.
func (e *Entity) Position() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// LastPosition returns the position of the entity before its last movement.
func (e *Entity) LastPosition() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPosition
}

// SetPosition sets the position of the entity without touching the last position.
func (e *Entity) SetPosition(pos mgl64.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = pos
}

// Teleport moves the entity to a position, resetting the last position and fall distance.
func (e *Entity) Teleport(pos mgl64.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position, e.lastPosition = pos, pos
	e.fallDistance = 0
}

// MarkLastPosition stores the current position as the last position.
func (e *Entity) MarkLastPosition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPosition = e.position
}

// Velocity returns the velocity of the entity.
func (e *Entity) Velocity() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.velocity
}

// SetVelocity sets the velocity of the entity.
func (e *Entity) SetVelocity(vel mgl64.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.velocity = vel
}

// Rotation returns the pitch and yaw of the entity.
func (e *Entity) Rotation() mgl32.Vec2 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rotation
}

// SetRotation sets the pitch and yaw of the entity.
func (e *Entity) SetRotation(rot mgl32.Vec2) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rotation = rot
}

// BBox returns the bounding box of the entity at its current position.
func (e *Entity) BBox() cube.BBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bboxAt(e.position)
}

// BBoxAt returns the bounding box the entity would have at the position passed.
func (e *Entity) BBoxAt(pos mgl64.Vec3) cube.BBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bboxAt(pos)
}

func (e *Entity) bboxAt(pos mgl64.Vec3) cube.BBox {
	hw := e.width / 2
	return cube.Box(pos[0]-hw, pos[1], pos[2]-hw, pos[0]+hw, pos[1]+e.height, pos[2]+hw)
}

// FallDistance returns the distance the entity has fallen.
func (e *Entity) FallDistance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fallDistance
}

// SetFallDistance sets the distance the entity has fallen.
func (e *Entity) SetFallDistance(d float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallDistance = d
}

// Tick advances the age of the entity by one tick.
func (e *Entity) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticksLived++
}

// TicksLived returns the amount of ticks the entity has existed for.
func (e *Entity) TicksLived() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticksLived
}

// SetPlayerPassenger sets whether a player rides the entity.
func (e *Entity) SetPlayerPassenger(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playerPassenger = v
}

// HasPlayerPassenger returns true if a player rides the entity.
func (e *Entity) HasPlayerPassenger() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playerPassenger
}

// Kill marks the entity as dead. Dead entities are dropped by their world and by any train they are in.
func (e *Entity) Kill() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dead = true
}

// Dead returns true if the entity was killed.
func (e *Entity) Dead() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dead
}
