package train

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/event"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/oerror"
)

// ErrOffline is returned when adopting an entity that belongs to a train stored offline.
var ErrOffline = oerror.New("entity belongs to an unloaded train")

// offlineGroup is a train that was unloaded. Only what is needed to restore it is kept.
type offlineGroup struct {
	name    string
	members []uuid.UUID
	props   Properties
}

// offlineStore holds the trains that were unloaded, in the order they were unloaded.
type offlineStore struct {
	groups   *orderedmap.OrderedMap[string, *offlineGroup]
	entities map[uuid.UUID]string
}

func newOfflineStore() *offlineStore {
	return &offlineStore{
		groups:   orderedmap.NewOrderedMap[string, *offlineGroup](),
		entities: make(map[uuid.UUID]string),
	}
}

func (o *offlineStore) store(g *Group) {
	og := &offlineGroup{name: g.name, props: g.props}
	for _, m := range g.members {
		og.members = append(og.members, m.ID())
		o.entities[m.ID()] = g.name
	}
	o.groups.Set(og.name, og)
}

func (o *offlineStore) contains(id uuid.UUID) bool {
	_, ok := o.entities[id]
	return ok
}

func (o *offlineStore) delete(og *offlineGroup) {
	for _, id := range og.members {
		delete(o.entities, id)
	}
	o.groups.Delete(og.name)
}

// unload stores the train passed offline and takes it out of the simulation. Its carts keep their place in
// the world and the name of the train stays reserved until it is reloaded.
func (s *Simulation) unload(g *Group) {
	g.log().Debug("unloading train")
	g.clearSigns()
	g.releaseChunks()

	s.offline.store(g)
	for _, m := range g.members {
		m.unloaded = true
		m.group = nil
		delete(s.members, m.ID())
	}
	g.removed = true
	s.groups.Delete(g.name)
	s.metrics.groupsCount.Store(int64(s.groups.Len()))

	s.metrics.unload()
	s.journal.Record(event.GroupUnloadEvent{NopEvent: s.eventHeader(g)})
	s.handler.HandleUnload(g)
}

// Offline returns the names of the trains currently stored offline.
func (s *Simulation) Offline() []string {
	return s.offline.groups.Keys()
}

// Reload restores the offline trains whose carts are all back in loaded chunks. Carts whose entity left the
// world are dropped from their train, and a train left without carts is forgotten. The restored trains
// are returned.
func (s *Simulation) Reload() []*Group {
	var restored []*Group
	for _, name := range s.offline.groups.Keys() {
		og, _ := s.offline.groups.Get(name)

		entities := make([]*entity.Entity, 0, len(og.members))
		ready := true
		for _, id := range og.members {
			e, ok := s.world.Entity(id)
			if !ok {
				continue
			}
			if !s.world.ChunkLoaded(game.ChunkPosOf(e.Position())) {
				ready = false
				break
			}
			entities = append(entities, e)
		}
		if !ready {
			continue
		}
		s.offline.delete(og)
		if len(entities) == 0 {
			s.freeName(og.name)
			continue
		}

		members := make([]*Member, 0, len(entities))
		for _, e := range entities {
			members = append(members, newMember(s, e))
		}
		if !validMembers(og.props, members) {
			s.freeName(og.name)
			continue
		}
		g := s.newNamedGroup(og.name, og.props, members)
		g.UpdateDirection()
		g.log().Debug("reloaded train")
		restored = append(restored, g)
	}
	return restored
}
