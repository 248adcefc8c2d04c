package train

import (
	"errors"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	dfworld "github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicAction fails the tick of the train it is queued on.
type panicAction struct{}

func (panicAction) Tick(*Group, *Member) bool { panic("broken action") }
func (panicAction) MovementControlled() bool { return false }
func (panicAction) MovementSuppressed() bool { return false }

type failureRecorder struct {
	NopHandler
	failed []string
}

func (f *failureRecorder) HandleFailure(g *Group, _ error) {
	f.failed = append(f.failed, g.Name())
}

func TestFailingTrainDoesNotStopOthers(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	h := &failureRecorder{}
	sim.Handle(h)

	broken := spawn(t, sim, steadyProps(conf), 0, carts(2)...)
	healthy := spawn(t, sim, steadyProps(conf), 20, carts(2)...)
	broken.SetForwardForce(0.2)
	healthy.SetForwardForce(0.2)
	broken.AddAction(panicAction{})
	start := healthy.Head().Position()

	require.NotPanics(t, sim.DoFixedTick)

	assert.InDelta(t, 0.2, healthy.Head().Position().X()-start.X(), 1e-6)
	assert.Equal(t, 1, broken.Failures())
	assert.Zero(t, healthy.Failures())
	assert.Equal(t, []string{broken.Name()}, h.failed)
	assert.InDelta(t, 0.2, broken.AverageForwardForce(), 1e-9)
	assert.False(t, broken.Removed())

	var (
		failure event.FailureEvent
		ok      bool
	)
	for _, ev := range sim.Journal().Events() {
		if f, isFailure := ev.(event.FailureEvent); isFailure {
			failure, ok = f, true
		}
	}
	require.True(t, ok)
	assert.Equal(t, broken.Name(), failure.Train())
	assert.Contains(t, failure.Err, "broken action")
}

// removeOnBlockChange removes an entity from the world the first time any cart changes block.
type removeOnBlockChange struct {
	NopSignListener
	remove func()
	done   bool
}

func (r *removeOnBlockChange) OnBlockChange(*Member, cube.Pos, cube.Pos) {
	if !r.done {
		r.done = true
		r.remove()
	}
}

func TestLosingPoweredCartRemovesTrain(t *testing.T) {
	conf := DefaultConfig()
	sim, w := newTestSim(t, conf)
	props := DefaultProperties(conf)
	props.RequirePoweredUnit = true
	g := spawn(t, sim, props, 0, entity.KindPoweredMinecart, entity.KindMinecart)
	powered := g.Head()
	sim.SetSignListener(&removeOnBlockChange{remove: func() { w.RemoveEntity(powered.ID()) }})

	sim.DoFixedTick()

	assert.True(t, g.Removed())
	found, ok := sim.GroupByName(g.Name())
	assert.False(t, ok && found == g)
	assert.Empty(t, sim.Groups())
	_, ok = sim.Member(powered.ID())
	assert.False(t, ok)
}

func TestAdoptRejectsNonCarts(t *testing.T) {
	conf := DefaultConfig()
	sim, w := newTestSim(t, conf)
	e := entity.New(entity.KindOther, mgl64.Vec3{0.5, 64, 0.5})
	w.AddEntity(e)

	_, err := sim.Adopt(e)
	assert.True(t, errors.Is(err, ErrNotCart))
}

func TestUnloadableTrainUnloadsAndReloads(t *testing.T) {
	conf := DefaultConfig()
	sim, w := newTestSim(t, conf)
	g := spawn(t, sim, steadyProps(conf), 13, entity.KindMinecart)
	cart := g.Head()
	g.SetForwardForce(0.4)
	next := dfworld.ChunkPos{1, 0}
	require.True(t, w.UnloadChunk(next))

	for range 20 {
		if len(sim.Offline()) > 0 {
			break
		}
		sim.DoFixedTick()
	}
	require.Equal(t, []string{g.Name()}, sim.Offline())
	assert.True(t, g.Removed())
	assert.True(t, cart.Unloaded())
	assert.Empty(t, sim.Groups())
	assert.Zero(t, w.Tickets(next))

	_, err := sim.Adopt(cart.Entity())
	assert.ErrorIs(t, err, ErrOffline)

	sim.DoFixedTick()
	assert.Empty(t, sim.Groups())

	w.LoadChunk(next)
	sim.DoFixedTick()
	restored, ok := sim.GroupByName(g.Name())
	require.True(t, ok)
	assert.Equal(t, cart.ID(), restored.Head().ID())
	assert.Empty(t, sim.Offline())
}

func TestKeepLoadedTrainHoldsChunks(t *testing.T) {
	conf := DefaultConfig()
	sim, w := newTestSim(t, conf)
	props := steadyProps(conf)
	props.KeepChunksLoaded = true
	g := spawn(t, sim, props, 3, entity.KindMinecart)

	far := dfworld.ChunkPos{-1, 1}
	require.True(t, w.UnloadChunk(far))

	sim.DoFixedTick()
	assert.Equal(t, 1, w.Tickets(dfworld.ChunkPos{0, 0}))
	assert.Equal(t, 1, w.Tickets(far))
	assert.True(t, w.ChunkLoaded(far))
	assert.False(t, w.UnloadChunk(far))

	sim.DoFixedTick()
	assert.Equal(t, 1, w.Tickets(far))

	props.KeepChunksLoaded = false
	g.SetProperties(props)
	sim.DoFixedTick()
	assert.Zero(t, w.Tickets(far))
	assert.Zero(t, w.Tickets(dfworld.ChunkPos{0, 0}))
	assert.True(t, w.UnloadChunk(far))
}

func TestHoldingTrainWaitsForChunk(t *testing.T) {
	conf := DefaultConfig()
	sim, w := newTestSim(t, conf)
	props := steadyProps(conf)
	props.KeepChunksLoaded = true
	g := spawn(t, sim, props, 3, entity.KindMinecart)
	g.SetForwardForce(0.2)
	require.True(t, w.UnloadChunk(dfworld.ChunkPos{0, 0}))
	start := g.Head().Position()

	sim.DoFixedTick()

	assert.False(t, g.Removed())
	assert.Empty(t, sim.Offline())
	assert.Equal(t, start, g.Head().Position())
	assert.True(t, w.ChunkLoaded(dfworld.ChunkPos{0, 0}))

	sim.DoFixedTick()
	assert.Greater(t, g.Head().Position().X(), start.X())
}

func TestRemovedTrainCartsFormOwnTrains(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, DefaultProperties(conf), 0, carts(2)...)
	sim.Remove(g)
	assert.Empty(t, sim.Groups())

	sim.DoFixedTick()
	require.Len(t, sim.Groups(), 2)
	for _, g := range sim.Groups() {
		assert.Equal(t, 1, g.Len())
	}
}

func TestSetName(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	a := spawn(t, sim, DefaultProperties(conf), 0, entity.KindMinecart)
	b := spawn(t, sim, DefaultProperties(conf), 10, entity.KindMinecart)

	require.NoError(t, sim.SetName(a, "express"))
	_, ok := sim.GroupByName("express")
	assert.True(t, ok)
	assert.Error(t, sim.SetName(b, "express"))

	c := spawn(t, sim, DefaultProperties(conf), 20, entity.KindMinecart)
	assert.Equal(t, "train1", c.Name())
}
