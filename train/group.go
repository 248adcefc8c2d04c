package train

import (
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/assert"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/oerror"
	"github.com/oomph-ac/railcart/rail"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	// ErrGroupMismatch is returned when a cart passed to a train does not belong to it.
	ErrGroupMismatch = oerror.New("cart does not belong to the train")
	// ErrPathLength is returned when a teleport path has fewer points than the train has carts.
	ErrPathLength = oerror.New("path is shorter than the train")
)

// Group is a train: an ordered list of linked carts, the first being the head.
type Group struct {
	sim     *Simulation
	name    string
	members []*Member
	props   Properties
	actions []Action

	ticked         bool
	networkInvalid bool
	breakPhysics   bool
	removed        bool

	// usf is the update speed factor, 1/n while a tick is split into n steps.
	usf                  float64
	stepIndex, stepCount int
	teleportImmunity     int

	// chunks are the chunks the train was in after its last step. While holding is set, the train has a
	// ticket out on each of them.
	chunks  map[world.ChunkPos]struct{}
	holding bool

	signs    *orderedmap.OrderedMap[cube.Pos, struct{}]
	failures int
}

// Name returns the unique name of the train.
func (g *Group) Name() string {
	return g.name
}

// Members returns the carts of the train, head first.
func (g *Group) Members() []*Member {
	return slices.Clone(g.members)
}

// Len returns the amount of carts in the train.
func (g *Group) Len() int {
	return len(g.members)
}

// Head returns the first cart of the train.
func (g *Group) Head() *Member {
	return g.members[0]
}

// Tail returns the last cart of the train.
func (g *Group) Tail() *Member {
	return g.members[len(g.members)-1]
}

// Member returns the cart at the index passed. It panics if the index is out of range.
func (g *Group) Member(i int) *Member {
	assert.InRange(i, len(g.members), "cart")
	return g.members[i]
}

// Contains returns true if the cart passed belongs to the train.
func (g *Group) Contains(m *Member) bool {
	return m.group == g
}

// Properties returns the properties of the train.
func (g *Group) Properties() Properties {
	return g.props
}

// SetProperties replaces the properties of the train.
func (g *Group) SetProperties(p Properties) {
	g.props = p
}

// Removed returns true if the train was removed or unloaded from its simulation.
func (g *Group) Removed() bool {
	return g.removed
}

// Failures returns the amount of ticks in which the train failed unexpectedly.
func (g *Group) Failures() int {
	return g.failures
}

// Signs returns the signs the train is on.
func (g *Group) Signs() []cube.Pos {
	return g.signs.Keys()
}

// PoweredCount returns the amount of powered carts in the train.
func (g *Group) PoweredCount() int {
	return lo.CountBy(g.members, func(m *Member) bool {
		return m.e.Kind() == entity.KindPoweredMinecart
	})
}

// IsValid returns false if the train is empty, or lacks the powered cart its properties require.
func (g *Group) IsValid() bool {
	if len(g.members) == 0 {
		return false
	}
	return !g.props.RequirePoweredUnit || g.PoweredCount() > 0
}

// TicksLived returns the summed age of all carts in the train.
func (g *Group) TicksLived() int64 {
	return lo.SumBy(g.members, func(m *Member) int64 {
		return m.e.TicksLived()
	})
}

// AddAction queues an action on the train.
func (g *Group) AddAction(a Action) {
	g.actions = append(g.actions, a)
}

// ClearActions drops all actions queued on the train and its carts.
func (g *Group) ClearActions() {
	g.actions = nil
	for _, m := range g.members {
		m.ClearActions()
	}
}

// currentActions returns the actions currently running on the train and its carts.
func (g *Group) currentActions() []Action {
	var out []Action
	if len(g.actions) > 0 {
		out = append(out, g.actions[0])
	}
	for _, m := range g.members {
		if len(m.actions) > 0 {
			out = append(out, m.actions[0])
		}
	}
	return out
}

// MovementControlled returns true if a running action sets the speed of the train.
func (g *Group) MovementControlled() bool {
	return lo.ContainsBy(g.currentActions(), func(a Action) bool { return a.MovementControlled() })
}

// MovementSuppressed returns true if a running action holds the train in place.
func (g *Group) MovementSuppressed() bool {
	return lo.ContainsBy(g.currentActions(), func(a Action) bool { return a.MovementSuppressed() })
}

func (g *Group) runActions() {
	g.actions = tickActions(g.actions, g, nil)
	for _, m := range g.members {
		m.actions = tickActions(m.actions, g, m)
	}
}

// Stop halts every cart of the train and cancels launches in progress.
func (g *Group) Stop() {
	for _, m := range g.members {
		m.e.SetVelocity(mgl64.Vec3{})
	}
	g.actions = lo.Filter(g.actions, func(a Action, _ int) bool { return !a.MovementControlled() })
	for _, m := range g.members {
		m.actions = lo.Filter(m.actions, func(a Action, _ int) bool { return !a.MovementControlled() })
	}
}

// Reverse turns the train around: velocities are inverted and the tail becomes the head.
func (g *Group) Reverse() {
	slices.Reverse(g.members)
	for _, m := range g.members {
		m.e.SetVelocity(m.e.Velocity().Mul(-1))
		h := m.heading
		m.heading = game.Heading{Direction: h.Direction.Opposite(), From: h.To.Opposite(), To: h.From.Opposite()}
	}
}

// SetForwardForce sets the speed of every cart of the train in the direction it is facing.
func (g *Group) SetForwardForce(force float64) {
	for _, m := range g.members {
		m.SetForwardForce(force)
	}
}

// AverageForce returns the average horizontal speed of the carts in blocks per tick.
func (g *Group) AverageForce() float64 {
	if len(g.members) == 0 {
		return 0
	}
	return lo.SumBy(g.members, func(m *Member) float64 {
		return game.HorizontalLen(m.e.Velocity())
	}) / float64(len(g.members)) / g.usf
}

// AverageForwardForce returns the average speed of the carts in the direction they are facing. It is
// negative for a train moving tail first.
func (g *Group) AverageForwardForce() float64 {
	if len(g.members) == 0 {
		return 0
	}
	return lo.SumBy(g.members, (*Member).ForwardForce) / float64(len(g.members))
}

// Teleport places the carts of the train on the points of path, keeping the speed of the train. The head
// is put on the first point, or on the last point of the train's length if reversed is set. The train keeps
// its chunks for a while after teleporting.
func (g *Group) Teleport(path []mgl64.Vec3, reversed bool) error {
	if len(path) < len(g.members) {
		return oerror.New("teleport %s: %d points for %d carts: %v", g.name, len(path), len(g.members), ErrPathLength)
	}
	force := g.AverageForwardForce()
	n := len(g.members)
	for i, m := range g.members {
		p := path[i]
		if reversed {
			p = path[n-1-i]
		}
		m.e.Teleport(p)
		m.e.SetVelocity(mgl64.Vec3{})
		m.refreshBlock()
		m.forceBlockUpdate = true
	}
	if n == 1 {
		if len(path) > 1 {
			dir := path[0].Sub(path[1])
			if reversed {
				dir = dir.Mul(-1)
			}
			g.members[0].updateHeading(dir)
		}
	} else {
		g.UpdateDirection()
	}
	g.SetForwardForce(force)
	g.teleportImmunity = g.sim.conf.TeleportImmunityTicks
	return nil
}

// TeleportAndGo puts the train on the track starting at the rail at start, with the head furthest along
// the direction passed, and keeps moving it at its current speed.
func (g *Group) TeleportAndGo(start cube.Pos, dir game.Face) error {
	path, err := rail.Walk(g.sim.world, start, dir, len(g.members), g.sim.conf.CartDistance)
	if err != nil {
		return oerror.New("teleport %s: %v", g.name, err)
	}
	if err := g.Teleport(path, true); err != nil {
		return err
	}
	if len(g.members) == 1 {
		force := g.AverageForwardForce()
		g.members[0].updateHeading(dir.Vec())
		g.SetForwardForce(force)
	}
	return nil
}

// log returns a logger carrying the identity of the train.
func (g *Group) log() logrus.FieldLogger {
	return g.sim.log.WithFields(logrus.Fields{"train": g.name, "size": len(g.members)})
}
