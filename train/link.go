package train

import (
	"slices"

	"github.com/oomph-ac/railcart/event"
	"github.com/oomph-ac/railcart/rail"
)

// linkRequest is a link found by a collision, performed once the train that found it finished its pass.
type linkRequest struct {
	a, b *Member
}

// Link merges the trains of the carts a and b, which must be at an end of their trains. The train with
// the most carts, or the oldest train if both are equally long, keeps its name and properties. True is
// returned if the trains were merged.
func (s *Simulation) Link(a, b *Member) bool {
	if !s.canLink(a, b) {
		return false
	}
	ga, gb := a.Group(), b.Group()

	var order []*Member
	switch {
	case a == ga.Tail() && b == gb.Head():
		order = slices.Concat(ga.members, gb.members)
	case a == ga.Head() && b == gb.Tail():
		order = slices.Concat(gb.members, ga.members)
	case a == ga.Head() && b == gb.Head():
		order = slices.Concat(reversed(ga.members), gb.members)
	case a == ga.Tail() && b == gb.Tail():
		order = slices.Concat(ga.members, reversed(gb.members))
	default:
		return false
	}

	g, donor := ga, gb
	if len(gb.members) > len(ga.members) || (len(gb.members) == len(ga.members) && gb.TicksLived() > ga.TicksLived()) {
		g, donor = gb, ga
	}
	ctx := &Context{}
	s.handler.HandleLink(ctx, g, donor)
	if ctx.Cancelled() {
		return false
	}

	g.clearSigns()
	donor.clearSigns()
	donor.members = nil
	s.drop(donor)

	g.members = order
	for _, m := range order {
		m.group = g
	}
	g.networkInvalid = true
	g.teleportImmunity = max(g.teleportImmunity, donor.teleportImmunity)
	g.UpdateDirection()
	g.SetForwardForce(g.AverageForwardForce())

	g.log().WithField("donor", donor.name).Debug("linked trains")
	s.metrics.link()
	s.journal.Record(event.LinkEvent{NopEvent: s.eventHeader(g), Donor: donor.name})
	return true
}

// canLink returns true if the carts a and b may be linked together.
func (s *Simulation) canLink(a, b *Member) bool {
	if a == b || a.unloaded || b.unloaded || a.derailed || b.derailed || a.missing() || b.missing() {
		return false
	}
	ga, gb := a.Group(), b.Group()
	if ga == gb || !ga.props.Linking || !gb.props.Linking {
		return false
	}
	if !isEnd(ga, a) || !isEnd(gb, b) {
		return false
	}
	if ga.props.RequirePoweredUnit || gb.props.RequirePoweredUnit {
		if ga.PoweredCount()+gb.PoweredCount() == 0 {
			return false
		}
	}
	if !a.IsNearOf(b) {
		return false
	}
	return a.block == b.block || rail.Connected(s.world, a.block, b.block, s.conf.LinkSearchSteps)
}

// queueLink remembers a link to perform after the current physics pass.
func (s *Simulation) queueLink(a, b *Member) {
	for _, req := range s.pendingLinks {
		if (req.a == a && req.b == b) || (req.a == b && req.b == a) {
			return
		}
	}
	s.pendingLinks = append(s.pendingLinks, linkRequest{a: a, b: b})
}

// processLinks performs the links queued during the last physics pass.
func (s *Simulation) processLinks() {
	pending := s.pendingLinks
	s.pendingLinks = nil
	for _, req := range pending {
		s.Link(req.a, req.b)
	}
}

func isEnd(g *Group, m *Member) bool {
	return g.Head() == m || g.Tail() == m
}

func reversed(members []*Member) []*Member {
	out := slices.Clone(members)
	slices.Reverse(out)
	return out
}
