package train

import (
	"math"
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/rail"
)

// Member is a single cart of a train. It references an entity owned by the world and belongs to at most
// one group at a time.
type Member struct {
	sim   *Simulation
	e     *entity.Entity
	group *Group

	// block is the rail block the cart is on, or the block it is in while derailed.
	block     cube.Pos
	lastBlock cube.Pos
	piece     rail.Piece
	// logic is the rail logic of piece, resolved once per physics step.
	logic    rail.Logic
	derailed bool
	heading  game.Heading

	forceBlockUpdate bool
	unloaded         bool

	// maxSpeed is the speed limit of the train divided by the amount of steps of the current tick, capped
	// at the step threshold.
	maxSpeed float64
	fuel     int

	ignore  map[uuid.UUID]int
	signs   *orderedmap.OrderedMap[cube.Pos, struct{}]
	actions []Action
}

func newMember(sim *Simulation, e *entity.Entity) *Member {
	m := &Member{
		sim:              sim,
		e:                e,
		forceBlockUpdate: true,
		maxSpeed:         sim.conf.DefaultSpeedLimit,
		ignore:           make(map[uuid.UUID]int),
		signs:            orderedmap.NewOrderedMap[cube.Pos, struct{}](),
	}
	m.refreshBlock()
	m.heading = game.StraightHeading(game.FaceFromYaw(e.Rotation()[1], false))
	return m
}

// Entity returns the entity the cart is made of.
func (m *Member) Entity() *entity.Entity {
	return m.e
}

// ID returns the id of the entity of the cart.
func (m *Member) ID() uuid.UUID {
	return m.e.ID()
}

// Group returns the train the cart belongs to. A cart without a train is put in a new train of its own.
func (m *Member) Group() *Group {
	if m.group == nil {
		m.sim.newGroup(m.sim.defaultProperties(), []*Member{m})
	}
	return m.group
}

// Index returns the position of the cart in its train, with 0 being the head.
func (m *Member) Index() int {
	if m.group == nil {
		return -1
	}
	return slices.Index(m.group.members, m)
}

// Block returns the rail block the cart is on.
func (m *Member) Block() cube.Pos {
	return m.block
}

// Piece returns the rail the cart is on.
func (m *Member) Piece() rail.Piece {
	return m.piece
}

// Derailed returns true if the cart is not on a rail.
func (m *Member) Derailed() bool {
	return m.derailed
}

// Unloaded returns true if the train of the cart was stored offline.
func (m *Member) Unloaded() bool {
	return m.unloaded
}

// Position ...
func (m *Member) Position() mgl64.Vec3 {
	return m.e.Position()
}

// SetPosition ...
func (m *Member) SetPosition(pos mgl64.Vec3) {
	m.e.SetPosition(pos)
}

// Velocity ...
func (m *Member) Velocity() mgl64.Vec3 {
	return m.e.Velocity()
}

// SetVelocity ...
func (m *Member) SetVelocity(vel mgl64.Vec3) {
	m.e.SetVelocity(vel)
}

// RailBlock ...
func (m *Member) RailBlock() cube.Pos {
	return m.block
}

// Heading returns the direction the cart is facing.
func (m *Member) Heading() game.Heading {
	return m.heading
}

// UpdateSpeedFactor returns 1/n while the tick of the train is split into n steps.
func (m *Member) UpdateSpeedFactor() float64 {
	if m.group == nil {
		return 1
	}
	return m.group.usf
}

// Refuel adds ticks of fuel to a powered cart.
func (m *Member) Refuel(ticks int) {
	m.fuel += ticks
}

// Fuel returns the amount of ticks a powered cart keeps pushing for.
func (m *Member) Fuel() int {
	return m.fuel
}

// AddAction queues an action on the cart.
func (m *Member) AddAction(a Action) {
	m.actions = append(m.actions, a)
}

// ClearActions drops all actions queued on the cart.
func (m *Member) ClearActions() {
	m.actions = nil
}

// Signs returns the signs the cart is currently on.
func (m *Member) Signs() []cube.Pos {
	return m.signs.Keys()
}

// IgnoreCollision makes the cart pass through the entity with the id passed for an amount of ticks.
func (m *Member) IgnoreCollision(id uuid.UUID, ticks int) {
	if ticks > m.ignore[id] {
		m.ignore[id] = ticks
	}
}

// IgnoringCollision returns true if collisions with the entity with the id passed are ignored.
func (m *Member) IgnoringCollision(id uuid.UUID) bool {
	return m.ignore[id] > 0
}

func (m *Member) tickIgnores() {
	for id, ticks := range m.ignore {
		if ticks <= 1 {
			delete(m.ignore, id)
			continue
		}
		m.ignore[id] = ticks - 1
	}
}

// ForwardForce returns the speed of the cart in the direction it is facing, in blocks per tick.
func (m *Member) ForwardForce() float64 {
	return m.e.Velocity().Dot(m.forwardAxis()) / m.UpdateSpeedFactor()
}

// SetForwardForce sets the speed of the cart in the direction it is facing. Vertical motion on slopes is
// scaled along with it.
func (m *Member) SetForwardForce(force float64) {
	f := force * m.UpdateSpeedFactor()
	v := m.e.Velocity()
	axis := m.forwardAxis()

	nv := axis.Mul(f)
	if fwd := v.Dot(axis); math.Abs(fwd) > 1e-9 {
		nv[1] = v[1] * f / fwd
	}
	m.e.SetVelocity(nv)
}

// forwardAxis returns the horizontal unit vector forward force is measured along. A railed cart in motion
// uses its direction of travel, flipped to agree with its heading. Carts that stand still or are derailed
// use their heading.
func (m *Member) forwardAxis() mgl64.Vec3 {
	dir := m.heading.Direction.Unit()
	v := m.e.Velocity()
	travel := mgl64.Vec3{v[0], 0, v[2]}
	if m.derailed || travel.Len() < 1e-6 {
		return dir
	}
	travel = travel.Normalize()
	switch cos := travel.Dot(dir); {
	case cos > 1e-3:
		return travel
	case cos < -1e-3:
		return travel.Mul(-1)
	}
	return dir
}

// missing returns true if the entity of the cart is gone.
func (m *Member) missing() bool {
	if m.unloaded || m.e.Dead() {
		return true
	}
	_, ok := m.sim.world.Entity(m.e.ID())
	return !ok
}

// moving returns true if the cart has any horizontal speed.
func (m *Member) moving() bool {
	return game.HorizontalLen(m.e.Velocity()) > 1e-4
}

// refreshBlock finds the rail the cart is on and resolves its logic.
func (m *Member) refreshBlock() {
	pos := m.e.Position()
	if b, p, ok := rail.Locate(m.sim.world, pos); ok {
		m.block, m.piece, m.derailed = b, p, false
	} else {
		m.block, m.piece, m.derailed = cube.PosFromVec3(pos), rail.Piece{}, true
	}
	m.logic = m.sim.rails.Logic(m.piece)
}

// updateHeading recomputes the heading of the cart from a movement along the rail it is on.
func (m *Member) updateHeading(movement mgl64.Vec3) {
	m.heading = game.ComputeHeading(m.heading, m.logic.Direction(), m.derailed, movement)
}

func (m *Member) onPhysicsStart() {
	m.e.SetVelocity(game.FixNaNVec(m.e.Velocity()))
	m.e.MarkLastPosition()
	m.refreshBlock()
}

// onPhysicsBlockChange notifies the sign listener if the cart moved onto another block. It returns false
// if the entity of the cart disappeared.
func (m *Member) onPhysicsBlockChange() bool {
	if m.block != m.lastBlock || m.forceBlockUpdate {
		from := m.lastBlock
		m.lastBlock, m.forceBlockUpdate = m.block, false
		m.sim.recordBlockChange(m)
		m.sim.signs.OnBlockChange(m, from, m.block)
		if m.missing() {
			return false
		}
		m.refreshBlock()
		m.lastBlock = m.block
	}
	return true
}

func (m *Member) onPhysicsPreMove() {
	g, conf := m.group, m.sim.conf
	usf := g.usf

	if !g.MovementControlled() {
		vel := m.e.Velocity()
		gravity := conf.Gravity * m.logic.GravityMultiplier() * usf * usf
		if slope, ok := m.logic.(rail.Slope); ok {
			dir := slope.Uphill()
			vel = vel.Sub(dir.Mul(gravity * dir.Y()))
		} else {
			vel[1] -= gravity
		}
		m.e.SetVelocity(vel)
	}
	m.logic.PreMove(m)

	if m.derailed {
		m.e.SetVelocity(m.e.Velocity().Mul(math.Pow(0.95, usf)))
		return
	}
	m.e.SetFallDistance(0)

	if m.piece.Type == rail.TypeBrake {
		v := m.e.Velocity()
		if speed := game.HorizontalLen(v) / usf; speed*speed < 0.0009 {
			m.e.SetVelocity(mgl64.Vec3{})
		} else {
			m.e.SetVelocity(v.Mul(math.Pow(0.5, usf)))
		}
	}
}

// onPhysicsPostMove moves the cart by its velocity multiplied by speedFactor and applies the forces of the
// rail it ends up on.
func (m *Member) onPhysicsPostMove(speedFactor float64) {
	g := m.group
	sf := game.Clamp(game.FixNaN(speedFactor, 1), 0.1, 10)

	vel := m.e.Velocity()
	motion := mgl64.Vec3{
		sf * game.ClampAbs(vel[0], m.maxSpeed),
		sf * game.ClampAbs(vel[1], m.maxSpeed),
		sf * game.ClampAbs(vel[2], m.maxSpeed),
	}
	if !m.logic.VerticalMovement() {
		motion[1] = 0
	}
	if g.MovementSuppressed() {
		motion = mgl64.Vec3{}
	}

	moved := m.sim.world.Move(m.e, motion, m.OnBlockCollision)
	if m.derailed {
		m.applyDerailedCollision(motion, moved)
	}
	m.logic.PostMove(m)
	if !m.derailed {
		m.applyRailForces()
	}

	m.updateRotation()
	m.collideWithEntities()
	m.updateSigns()

	if m.missing() {
		g.breakPhysics = true
	}
}

// applyDerailedCollision stops a derailed cart on the axes it was blocked on and tracks how far it fell.
func (m *Member) applyDerailedCollision(motion, moved mgl64.Vec3) {
	v := m.e.Velocity()
	for i := range 3 {
		if math.Abs(moved[i]-motion[i]) > 1e-9 {
			v[i] = 0
		}
	}
	m.e.SetVelocity(v)

	switch {
	case moved[1] < 0:
		m.e.SetFallDistance(m.e.FallDistance() - moved[1])
	case motion[1] < 0 && moved[1] == 0:
		m.e.SetFallDistance(0)
	}
}

func (m *Member) applyRailForces() {
	g, conf := m.group, m.sim.conf
	usf := g.usf
	v := m.e.Velocity()

	if m.e.Kind() == entity.KindPoweredMinecart && m.fuel > 0 {
		if g.stepIndex == 0 {
			m.fuel--
		}
		push := m.heading.Direction.Unit()
		v = v.Mul(math.Pow(0.8, usf)).Add(push.Mul((0.04 + conf.PoweredCartBoost) * usf * usf))
	}

	if g.props.SlowingDown {
		f := conf.SlowDownNormal
		if conf.SlowDownEmptyCarts && !m.e.HasPlayerPassenger() {
			f = conf.SlowDownSlow
		}
		v = v.Mul(math.Pow(f, usf))
	}

	if m.piece.Type == rail.TypeBoost {
		if speed := game.HorizontalLen(v); speed/usf > 0.01 {
			add := 0.06 * usf * usf / speed
			v[0] += v[0] * add
			v[2] += v[2] * add
		} else if a, b, ok := m.piece.Ends(); ok {
			for _, end := range [...]game.Face{a, b} {
				if m.sim.world.Solid(m.block.Add(end.Offset())) {
					v = end.Opposite().Unit().Mul(0.02 * usf)
				}
			}
		}
	}
	m.e.SetVelocity(v)
}

// updateRotation points the cart along the distance it travelled this step.
func (m *Member) updateRotation() {
	d := m.e.Position().Sub(m.e.LastPosition())
	rot := m.e.Rotation()
	switch {
	case game.HorizontalLen(d) > 1e-4:
		rot = mgl32.Vec2{game.LookAtPitch(d), game.LookAtYaw(d)}
	case !m.derailed:
		rot[1] = m.heading.Direction.Yaw()
		if !m.logic.Sloped() {
			rot[0] = 0
		}
	}
	m.e.SetRotation(rot)
}

// collideWithEntities runs OnEntityCollision for every entity the cart overlaps. Blocking contacts have
// already stopped the train by the time OnEntityCollision returns, so the result is only of use to hosts
// calling it themselves.
func (m *Member) collideWithEntities() {
	for _, other := range m.sim.world.EntitiesWithin(m.e.BBox()) {
		if other.ID() != m.e.ID() {
			_ = m.OnEntityCollision(other)
		}
	}
}

// updateSigns compares the signs at the rail of the cart with the ones it was on.
func (m *Member) updateSigns() {
	var current []cube.Pos
	if !m.derailed {
		current = m.sim.world.SignsAt(m.block)
	}
	for _, sign := range m.signs.Keys() {
		if !slices.Contains(current, sign) {
			m.signs.Delete(sign)
			m.sim.signs.OnMemberLeave(m, sign)
		}
	}
	for _, sign := range current {
		if _, ok := m.signs.Get(sign); !ok {
			m.signs.Set(sign, struct{}{})
			m.sim.signs.OnMemberEnter(m, sign)
		}
	}
}

func (m *Member) clearSigns() {
	for _, sign := range m.signs.Keys() {
		m.signs.Delete(sign)
		m.sim.signs.OnMemberLeave(m, sign)
	}
}

// OnEntityCollision is called when the cart touches another entity. It returns true if the entity blocks
// the cart, and false if the cart passes through it. A cart heading straight at a blocking entity stops its
// whole train.
func (m *Member) OnEntityCollision(other *entity.Entity) bool {
	g := m.Group()
	if m.IgnoringCollision(other.ID()) || m.unloaded || other.Dead() || g.MovementControlled() {
		return false
	}
	if om, ok := m.sim.members[other.ID()]; ok {
		if om.unloaded {
			return false
		}
		og := om.Group()
		if og == g {
			if m.e.Position().Sub(other.Position()).Len() > m.sim.conf.MinSeparation {
				return false
			}
		} else {
			if !g.props.Colliding || !og.props.Colliding || og.MovementControlled() {
				return false
			}
			if m.sim.canLink(m, om) {
				m.sim.queueLink(m, om)
				return false
			}
		}
	} else if !g.props.Colliding {
		return false
	}

	if game.IsHeadingTo(other.Position().Sub(m.e.Position()), m.e.Velocity()) {
		g.Stop()
	}
	return true
}

// OnBlockCollision is called when the cart runs into the face of a solid block. It returns true if the
// block stops the cart. A railed cart running head-on into a block stops its whole train.
func (m *Member) OnBlockCollision(pos cube.Pos, face cube.Face) bool {
	if m.piece.Type == rail.TypeVertical {
		return false
	}
	if !m.derailed && m.logic.Sloped() && pos[1] <= m.block[1] {
		return false
	}
	if m.derailed {
		return true
	}
	if hit, ok := game.FaceFromCube(face); ok && m.heading.From == m.heading.To && hit.Opposite() == m.heading.To {
		m.Group().Stop()
	}
	return true
}

// IsNearOf returns true if the cart is close enough to other to be linked with it.
func (m *Member) IsNearOf(other *Member) bool {
	limit := m.sim.conf.MaxCartDistance
	a, b := m.e.Position(), other.e.Position()
	if game.HorizontalDistSqr(a, b) > limit*limit {
		return false
	}
	if m.derailed || other.derailed {
		return math.Abs(a[1]-b[1]) <= limit
	}
	return true
}

// IsFollowingOnTrack returns true if the cart trails leading on connected track.
func (m *Member) IsFollowingOnTrack(leading *Member) bool {
	if !m.IsNearOf(leading) {
		return false
	}
	if m.derailed || leading.derailed {
		return true
	}
	w := m.sim.world
	if m.moving() && rail.HeadingTo(w, m.block, m.heading.To, leading.block, 0) {
		return true
	}
	return rail.Connected(w, m.block, leading.block, 0)
}
