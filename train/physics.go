package train

import (
	"math"
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/oomph-ac/railcart/assert"
	"github.com/oomph-ac/railcart/game"
)

// DoPhysics advances the train by one tick. Fast trains have the tick split into several smaller steps so
// that no cart moves further than the step threshold at once.
func (g *Group) DoPhysics() StepOutcome {
	if g.removed {
		return StepRemoved
	}
	if !g.sweepMissing() {
		return StepRemoved
	}
	if g.inUnloadedChunk() {
		if g.canUnload() {
			g.sim.unload(g)
			return StepUnloaded
		}
		// The chunks were requested when the train entered them. Wait for them to load.
		g.log().Debug("waiting for chunks to load")
		g.updateChunkInformation()
		return StepCompleted
	}

	steps := 1
	limit := g.props.SpeedLimit
	if threshold := g.sim.conf.StepThreshold; g.AverageForce() > threshold && limit > threshold {
		steps = int(math.Ceil(limit / threshold))
	}
	assert.IsTrue(steps > 0, "invalid step count %d for train %s", steps, g.name)

	g.usf, g.stepCount = 1/float64(steps), steps
	for _, m := range g.members {
		m.e.SetVelocity(m.e.Velocity().Mul(g.usf))
	}
	defer g.restoreVelocities()
	if steps > 1 {
		g.sim.metrics.substeps(steps)
	}

	attempts := 0
	for g.stepIndex = 0; g.stepIndex < steps; {
		switch out := g.step(); out {
		case StepCompleted:
			g.stepIndex++
		case StepRetry:
			if attempts++; attempts > len(g.members)+1 {
				g.log().Warn("giving up on tick after repeated missing carts")
				return StepRetry
			}
			if !g.sweepMissing() {
				return StepRemoved
			}
		default:
			return out
		}
	}
	return StepCompleted
}

// restoreVelocities undoes the velocity scaling of a split tick.
func (g *Group) restoreVelocities() {
	if g.usf != 1 {
		for _, m := range g.members {
			m.e.SetVelocity(m.e.Velocity().Mul(1 / g.usf))
		}
	}
	g.usf, g.stepIndex, g.stepCount = 1, 0, 1
}

// sweepMissing drops carts whose entity is gone. It returns false if the train became invalid and was
// removed.
func (g *Group) sweepMissing() bool {
	for i := 0; i < len(g.members); {
		m := g.members[i]
		if !m.missing() {
			i++
			continue
		}
		g.members = append(g.members[:i], g.members[i+1:]...)
		g.sim.forget(m)
	}
	if !g.IsValid() {
		g.sim.Remove(g)
		return false
	}
	return true
}

// step runs a single physics step of the train. No cart moves further than the step threshold in one step,
// even when an action speeds the train up halfway through a tick that was not split.
func (g *Group) step() StepOutcome {
	limit := math.Min(g.props.SpeedLimit*g.usf, g.sim.conf.StepThreshold)
	for _, m := range g.members {
		if m.missing() {
			return StepRetry
		}
		m.maxSpeed = limit
	}

	if g.networkInvalid {
		for _, m := range g.members {
			g.sim.sync.Bind(m)
		}
		g.networkInvalid = false
	}
	if g.teleportImmunity > 0 && g.stepIndex == 0 {
		g.teleportImmunity--
	}

	g.UpdateDirection()
	if g.stepIndex == 0 {
		g.runActions()
	}

	for _, m := range g.members {
		m.onPhysicsStart()
	}
	for _, m := range g.members {
		if !m.onPhysicsBlockChange() {
			return StepRetry
		}
	}
	if g.checkConnections() {
		return StepSplit
	}

	g.UpdateDirection()
	for _, m := range g.members {
		m.onPhysicsPreMove()
	}
	g.UpdateDirection()

	if len(g.members) > 1 && g.allFollowing() {
		g.SetForwardForce(g.AverageForwardForce())
	}
	factors := g.forceFactors()

	g.breakPhysics = false
	for i, m := range g.members {
		m.onPhysicsPostMove(factors[i])
		if g.breakPhysics {
			return StepRetry
		}
	}
	g.updateSigns()

	g.UpdateDirection()
	if g.checkConnections() {
		return StepSplit
	}
	if !g.updateChunkInformation() {
		return StepUnloaded
	}
	return StepCompleted
}

// UpdateDirection recomputes the heading of every cart, tail first. Carts of a longer train face the cart
// in front of them, so a train moving tail first is reversed.
func (g *Group) UpdateDirection() {
	switch len(g.members) {
	case 0:
		return
	case 1:
		m := g.members[0]
		m.updateHeading(m.e.Velocity())
		return
	}
	g.updateHeadings()
	if g.AverageForwardForce() < -1e-9 {
		slices.Reverse(g.members)
		g.updateHeadings()
	}
}

// updateHeadings points every cart of a longer train at the cart in front of it, starting at the tail.
func (g *Group) updateHeadings() {
	last := len(g.members) - 1
	for i := last; i >= 0; i-- {
		m := g.members[i]
		if i == last {
			m.updateHeading(g.members[i-1].e.Position().Sub(m.e.Position()))
		} else {
			m.updateHeading(m.e.Position().Sub(g.members[i+1].e.Position()))
		}
	}
}

// allFollowing returns true if every cart trails the one in front of it.
func (g *Group) allFollowing() bool {
	for i := 0; i < len(g.members)-1; i++ {
		if !g.members[i+1].IsFollowingOnTrack(g.members[i]) {
			return false
		}
	}
	return true
}

// forceFactors returns the speed factor of every cart. A cart closer to the cart behind it than the ideal
// distance is sped up, a cart further away is slowed down. The tail always has a factor of 1.
func (g *Group) forceFactors() []float64 {
	conf := g.sim.conf
	factors := make([]float64, len(g.members))
	for i := range factors {
		factors[i] = 1
	}
	for i := 0; i < len(g.members)-1; i++ {
		a, b := g.members[i], g.members[i+1]
		d := a.e.Position().Sub(b.e.Position()).Len()

		threshold, forcer := conf.CartDistance, conf.CartDistanceForcer
		if g.turned(a, b) {
			threshold, forcer = conf.TurnedCartDistance, conf.TurnedCartDistanceForcer
		}
		if d < threshold {
			forcer *= conf.NearCartDistanceFactor
		}
		factors[i] = 1 + forcer*(threshold-d)
	}
	return factors
}

// turned returns true if two carts are heading or pitched differently enough to be in a curve.
func (g *Group) turned(a, b *Member) bool {
	conf := g.sim.conf
	if game.FaceYawDifference(a.heading.Direction, b.heading.Direction) >= conf.TurnedDirectionThreshold {
		return true
	}
	return game.AngleDifference(a.e.Rotation()[0], b.e.Rotation()[0]) > conf.TurnedPitchThreshold
}

// checkConnections splits the train at the first cart that no longer trails the cart in front of it. It
// returns true if the train was split.
func (g *Group) checkConnections() bool {
	for i := 0; i < len(g.members)-1; i++ {
		if g.members[i+1].IsFollowingOnTrack(g.members[i]) {
			continue
		}
		// The detached carts leave the split tick, so their velocities are restored right away.
		for _, m := range g.members[i+1:] {
			m.e.SetVelocity(m.e.Velocity().Mul(1 / g.usf))
		}
		created := g.Split(i + 1)
		if created != nil && created != g && created.Len() > 0 {
			g.ignoreCollisions(created, game.HorizontalLen(created.Head().e.Velocity()))
		}
		return true
	}
	return false
}

// ignoreCollisions makes two trains that just split pass through each other for about the time it takes
// to travel two blocks.
func (g *Group) ignoreCollisions(other *Group, speed float64) {
	conf := g.sim.conf
	ticks := conf.CollisionIgnoreMax
	if speed > 1e-9 {
		ticks = int(game.Clamp(2/speed, float64(conf.CollisionIgnoreMin), float64(conf.CollisionIgnoreMax)))
	}
	for _, a := range g.members {
		for _, b := range other.members {
			a.IgnoreCollision(b.ID(), ticks)
			b.IgnoreCollision(a.ID(), ticks)
		}
	}
}

// updateSigns tracks the signs the train as a whole is on. The update notification is sent once per tick.
func (g *Group) updateSigns() {
	listener := g.sim.signs
	current := make(map[cube.Pos]struct{})
	var order []cube.Pos
	for _, m := range g.members {
		for _, sign := range m.signs.Keys() {
			if _, ok := current[sign]; !ok {
				current[sign] = struct{}{}
				order = append(order, sign)
			}
		}
	}
	for _, sign := range g.signs.Keys() {
		if _, ok := current[sign]; !ok {
			g.signs.Delete(sign)
			listener.OnGroupLeave(g, sign)
		}
	}
	for _, sign := range order {
		if _, ok := g.signs.Get(sign); !ok {
			g.signs.Set(sign, struct{}{})
			listener.OnGroupEnter(g, sign)
		}
	}
	if g.stepIndex == g.stepCount-1 {
		for _, sign := range g.signs.Keys() {
			listener.OnGroupUpdate(g, sign)
		}
	}
}

// clearSigns leaves every sign the train and its carts are on.
func (g *Group) clearSigns() {
	for _, m := range g.members {
		m.clearSigns()
	}
	for _, sign := range g.signs.Keys() {
		g.signs.Delete(sign)
		g.sim.signs.OnGroupLeave(g, sign)
	}
}
