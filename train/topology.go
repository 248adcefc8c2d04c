package train

import (
	"slices"

	"github.com/oomph-ac/railcart/assert"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/event"
	"github.com/oomph-ac/railcart/rail"
)

// Split moves the carts from index at onwards into a new train with a copy of the properties of g. g is
// returned if at is not positive, nil if at is past the tail. If either half is no longer a valid train it
// is discarded, and Split returns nil for a discarded new train.
func (g *Group) Split(at int) *Group {
	if at <= 0 {
		return g
	}
	if at >= len(g.members) {
		return nil
	}
	detached := slices.Clone(g.members[at:])
	clear(g.members[at:])
	g.members = g.members[:at]
	for _, m := range detached {
		m.group = nil
	}
	g.networkInvalid = true
	g.log().WithField("at", at).Debug("splitting train")

	if !g.IsValid() {
		g.sim.Remove(g)
	}
	if !validMembers(g.props, detached) {
		return nil
	}
	created := g.sim.newGroup(g.props, detached)
	created.UpdateDirection()

	g.sim.metrics.split()
	g.sim.journal.Record(event.SplitEvent{NopEvent: g.sim.eventHeader(g), Created: created.name, At: at})
	g.sim.handler.HandleSplit(g, created)
	return created
}

// validMembers returns true if the carts passed make up a valid train with the properties passed.
func validMembers(props Properties, members []*Member) bool {
	if len(members) == 0 {
		return false
	}
	if !props.RequirePoweredUnit {
		return true
	}
	return slices.ContainsFunc(members, func(m *Member) bool { return m.e.Kind() == entity.KindPoweredMinecart })
}

// Connect adds the cart with to the end of the train that contained is at. A train of a single cart takes
// with as its new tail. False is returned if contained is not an end of the train, or if with is too far
// away from it.
func (g *Group) Connect(contained, with *Member) bool {
	assert.IsTrue(contained.group == g, "cart %v does not belong to train %s", contained.ID(), g.name)
	if with.unloaded || with.group == g {
		return false
	}
	head := true
	switch {
	case len(g.members) <= 1:
		head = false
	case g.Head() == contained && g.canConnect(with, 0):
	case g.Tail() == contained && g.canConnect(with, len(g.members)-1):
		head = false
	default:
		return false
	}
	if with.group != nil {
		with.group.detach(with)
	}
	if head {
		g.members = slices.Insert(g.members, 0, with)
	} else {
		g.members = append(g.members, with)
	}
	with.group = g
	g.networkInvalid = true
	g.UpdateDirection()
	return true
}

// canConnect returns true if with is close to and on the same track as the cart at the index passed.
func (g *Group) canConnect(with *Member, index int) bool {
	end := g.members[index]
	if !with.IsNearOf(end) {
		return false
	}
	if with.derailed || end.derailed {
		return true
	}
	return rail.Connected(g.sim.world, end.block, with.block, g.sim.conf.LinkSearchSteps)
}

// detach takes m out of the train. A train left invalid is removed.
func (g *Group) detach(m *Member) {
	g.members = slices.DeleteFunc(g.members, func(o *Member) bool { return o == m })
	m.group = nil
	g.networkInvalid = true
	if !g.IsValid() {
		g.sim.Remove(g)
	}
}
