package train

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/getsentry/sentry-go"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/event"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/oerror"
	"github.com/oomph-ac/railcart/rail"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotCart is returned when adopting an entity that is not a minecart.
	ErrNotCart = oerror.New("entity is not a minecart")
	// ErrInvalidTrain is returned when creating a train that would not be valid with its properties.
	ErrInvalidTrain = oerror.New("carts do not make up a valid train")
)

// Simulation owns all trains of a world and drives their physics. It is not safe for concurrent use: all
// methods must be called from the goroutine ticking the world.
type Simulation struct {
	world World
	conf  Config
	log   logrus.FieldLogger
	rails rail.Provider

	handler Handler
	signs   SignListener
	sync    NetworkSync

	groups  *orderedmap.OrderedMap[string, *Group]
	members map[uuid.UUID]*Member
	names   map[string]struct{}
	offline *offlineStore

	// chunkScratch is reused by every train to collect the chunks it needs.
	chunkScratch map[world.ChunkPos]struct{}
	pendingLinks []linkRequest

	journal *event.Journal
	metrics *metrics
	tick    int64
}

// NewSimulation creates a simulation of the trains in the world passed.
func NewSimulation(w World, conf Config) *Simulation {
	s := &Simulation{
		world:        w,
		conf:         conf,
		log:          logrus.StandardLogger(),
		rails:        rail.DefaultProvider{SlopeForce: conf.SlopeForce},
		handler:      NopHandler{},
		signs:        NopSignListener{},
		sync:         NopNetworkSync{},
		groups:       orderedmap.NewOrderedMap[string, *Group](),
		members:      make(map[uuid.UUID]*Member),
		names:        make(map[string]struct{}),
		offline:      newOfflineStore(),
		chunkScratch: make(map[world.ChunkPos]struct{}),
		journal:      event.NewJournal(conf.JournalSize),
	}
	m, err := newMetrics()
	if err != nil {
		s.log.WithError(err).Warn("unable to create train metrics")
		m = nopMetrics()
	}
	s.metrics = m
	return s
}

// Handle sets the handler of train lifecycle events. Passing nil removes the handler.
func (s *Simulation) Handle(h Handler) {
	if h == nil {
		h = NopHandler{}
	}
	s.handler = h
}

// SetSignListener sets the listener notified of carts moving past signs.
func (s *Simulation) SetSignListener(l SignListener) {
	if l == nil {
		l = NopSignListener{}
	}
	s.signs = l
}

// SetNetworkSync sets the viewer synchronisation of the trains.
func (s *Simulation) SetNetworkSync(n NetworkSync) {
	if n == nil {
		n = NopNetworkSync{}
	}
	s.sync = n
}

// SetLogger sets the logger of the simulation.
func (s *Simulation) SetLogger(log logrus.FieldLogger) {
	s.log = log
}

// SetRailProvider sets the provider of rail logic.
func (s *Simulation) SetRailProvider(p rail.Provider) {
	s.rails = p
}

// Config returns the configuration of the simulation.
func (s *Simulation) Config() Config {
	return s.conf
}

// CurrentTick returns the amount of fixed ticks run.
func (s *Simulation) CurrentTick() int64 {
	return s.tick
}

// Journal returns the journal of recent train events.
func (s *Simulation) Journal() *event.Journal {
	return s.journal
}

// Groups returns a snapshot of all trains in the simulation.
func (s *Simulation) Groups() []*Group {
	out := make([]*Group, 0, s.groups.Len())
	for el := s.groups.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// GroupByName returns the train with the name passed.
func (s *Simulation) GroupByName(name string) (*Group, bool) {
	return s.groups.Get(name)
}

// Member returns the cart made of the entity with the id passed.
func (s *Simulation) Member(id uuid.UUID) (*Member, bool) {
	m, ok := s.members[id]
	return m, ok
}

// Adopt turns the entity passed into a cart of a new train of its own. An entity that already is a cart is
// returned as is.
func (s *Simulation) Adopt(e *entity.Entity) (*Member, error) {
	if m, ok := s.members[e.ID()]; ok {
		return m, nil
	}
	m, err := s.member(e)
	if err != nil {
		return nil, err
	}
	s.newGroup(s.defaultProperties(), []*Member{m})
	return m, nil
}

// Create makes a train of the entities passed, head first. Entities that already are carts of another
// train are taken out of it.
func (s *Simulation) Create(props Properties, entities ...*entity.Entity) (*Group, error) {
	members := make([]*Member, 0, len(entities))
	for _, e := range entities {
		m, ok := s.members[e.ID()]
		if !ok {
			var err error
			if m, err = s.member(e); err != nil {
				return nil, err
			}
		}
		if slices.Contains(members, m) {
			return nil, oerror.New("create train: entity %v passed twice", e.ID())
		}
		members = append(members, m)
	}
	if !validMembers(props, members) {
		return nil, ErrInvalidTrain
	}
	for _, m := range members {
		if m.group != nil {
			m.group.detach(m)
		}
	}
	g := s.newGroup(props, members)
	g.UpdateDirection()
	return g, nil
}

// Spawn places a train of new carts of the kinds passed on the track starting at the rail at start. The
// head is the cart furthest along dir.
func (s *Simulation) Spawn(props Properties, start cube.Pos, dir game.Face, kinds ...entity.Kind) (*Group, error) {
	if len(kinds) == 0 {
		return nil, ErrInvalidTrain
	}
	path, err := rail.Walk(s.world, start, dir, len(kinds), s.conf.CartDistance)
	if err != nil {
		return nil, oerror.New("spawn train: %v", err)
	}
	n := len(kinds)
	entities := make([]*entity.Entity, n)
	for i, kind := range kinds {
		e := entity.New(kind, path[n-1-i])
		e.SetRotation(mgl32.Vec2{0, dir.Yaw()})
		s.world.AddEntity(e)
		entities[i] = e
	}
	g, err := s.Create(props, entities...)
	if err != nil {
		for _, e := range entities {
			e.Kill()
		}
		return nil, err
	}
	return g, nil
}

// Remove takes the train passed out of the simulation. Its carts stay in the world and form trains of
// their own the next time they are ticked.
func (s *Simulation) Remove(g *Group) {
	if g.removed {
		return
	}
	g.log().Debug("removing train")
	g.restoreVelocities()
	g.clearSigns()
	for _, m := range g.members {
		m.group = nil
	}
	g.members = nil
	s.drop(g)

	s.journal.Record(event.GroupRemoveEvent{NopEvent: s.eventHeader(g)})
	s.handler.HandleRemove(g)
}

// SetName renames the train passed. It fails if the name is taken.
func (s *Simulation) SetName(g *Group, name string) error {
	if name == g.name {
		return nil
	}
	if _, ok := s.names[name]; ok {
		return oerror.New("rename train %s: name %s is taken", g.name, name)
	}
	s.groups.Delete(g.name)
	s.freeName(g.name)
	g.name = name
	s.names[name] = struct{}{}
	s.groups.Set(name, g)
	return nil
}

// OnEntityTick is called by the host when it ticks the entity passed. The train of a cart is ticked
// together with its tail.
func (s *Simulation) OnEntityTick(e *entity.Entity) {
	m, ok := s.members[e.ID()]
	if !ok || m.unloaded {
		return
	}
	g := m.Group()
	if g.ticked || g.removed || g.Tail() != m {
		return
	}
	s.tickGroup(g)
}

// DoFixedTick ticks every train that was not ticked along with its carts since the last call.
func (s *Simulation) DoFixedTick() {
	s.tick++
	s.adoptOrphans()
	for _, g := range s.Groups() {
		if !g.ticked && !g.removed {
			s.tickGroup(g)
		}
	}
	for _, g := range s.Groups() {
		g.ticked = false
		for _, m := range g.members {
			m.tickIgnores()
		}
		s.sync.MarkDirty(g)
	}
	s.Reload()
}

// tickGroup runs the physics of a single train. A failure is contained to the train that caused it.
func (s *Simulation) tickGroup(g *Group) (out StepOutcome) {
	g.ticked = true
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		err := oerror.Recovered(v)
		g.failures++
		g.log().WithError(err).Error("train tick failed")

		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetTag("train", g.name)
			scope.SetTag("size", strconv.Itoa(len(g.members)))
		})
		hub.Recover(err)

		s.pendingLinks = nil
		s.metrics.failure(g)
		s.journal.Record(event.FailureEvent{NopEvent: s.eventHeader(g), Err: err.Error()})
		s.handler.HandleFailure(g, err)
		out = StepRetry
	}()

	out = g.DoPhysics()
	s.metrics.tick(out)
	s.processLinks()
	return out
}

// adoptOrphans puts carts left without a train, for example after their train was removed, in trains of
// their own.
func (s *Simulation) adoptOrphans() {
	var orphans []*Member
	for _, m := range s.members {
		if m.group == nil {
			orphans = append(orphans, m)
		}
	}
	slices.SortFunc(orphans, func(a, b *Member) int {
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	for _, m := range orphans {
		if m.missing() {
			s.forget(m)
			continue
		}
		m.Group()
	}
}

// member creates a cart for the entity passed without putting it in a train.
func (s *Simulation) member(e *entity.Entity) (*Member, error) {
	if !e.Kind().Cart() {
		return nil, oerror.New("adopt %v (%s): %v", e.ID(), e.Kind(), ErrNotCart)
	}
	if s.offline.contains(e.ID()) {
		return nil, oerror.New("adopt %v: %v", e.ID(), ErrOffline)
	}
	m := newMember(s, e)
	s.members[e.ID()] = m
	return m, nil
}

// forget drops a cart whose entity is gone.
func (s *Simulation) forget(m *Member) {
	m.clearSigns()
	m.group = nil
	delete(s.members, m.ID())
}

// newGroup registers a new train of the carts passed under a free name.
func (s *Simulation) newGroup(props Properties, members []*Member) *Group {
	return s.newNamedGroup(s.nextName(), props, members)
}

func (s *Simulation) newNamedGroup(name string, props Properties, members []*Member) *Group {
	g := &Group{
		sim:            s,
		name:           name,
		members:        members,
		props:          props,
		usf:            1,
		stepCount:      1,
		networkInvalid: true,
		chunks:         make(map[world.ChunkPos]struct{}),
		signs:          orderedmap.NewOrderedMap[cube.Pos, struct{}](),
	}
	s.names[name] = struct{}{}
	for _, m := range members {
		m.group = g
		s.members[m.ID()] = m
	}
	s.groups.Set(name, g)
	s.metrics.groupsCount.Store(int64(s.groups.Len()))

	g.log().Debug("created train")
	s.journal.Record(event.GroupCreateEvent{NopEvent: s.eventHeader(g), Size: len(members)})
	s.handler.HandleCreate(g)
	return g
}

// drop takes a train out of the store and frees its name.
func (s *Simulation) drop(g *Group) {
	g.removed = true
	g.releaseChunks()
	s.groups.Delete(g.name)
	s.freeName(g.name)
	s.metrics.groupsCount.Store(int64(s.groups.Len()))
}

// nextName returns the lowest free train name.
func (s *Simulation) nextName() string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("train%d", i)
		if _, ok := s.names[name]; !ok {
			return name
		}
	}
}

func (s *Simulation) freeName(name string) {
	delete(s.names, name)
}

func (s *Simulation) defaultProperties() Properties {
	return DefaultProperties(s.conf)
}

func (s *Simulation) eventHeader(g *Group) event.NopEvent {
	return event.NopEvent{EvTime: s.tick, EvTrain: g.name}
}

// recordBlockChange journals a cart moving onto another block.
func (s *Simulation) recordBlockChange(m *Member) {
	name := ""
	if m.group != nil {
		name = m.group.name
	}
	s.journal.Record(event.BlockChangeEvent{
		NopEvent: event.NopEvent{EvTime: s.tick, EvTrain: name},
		Member:   m.ID(),
		Block:    [3]int(m.block),
	})
}
