package train

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/oomph-ac/railcart/entity"
	"github.com/oomph-ac/railcart/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(g *Group) []uuid.UUID {
	out := make([]uuid.UUID, 0, g.Len())
	for _, m := range g.Members() {
		out = append(out, m.ID())
	}
	return out
}

// adopt adds a single stationary cart at the position passed and returns it.
func adopt(t *testing.T, sim *Simulation, pos mgl64.Vec3) *Member {
	t.Helper()
	e := entity.New(entity.KindMinecart, pos)
	sim.world.AddEntity(e)
	m, err := sim.Adopt(e)
	require.NoError(t, err)
	return m
}

func TestLinkTwoSingleCarts(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	a := adopt(t, sim, mgl64.Vec3{5.3, 64, 0.5})
	b := adopt(t, sim, mgl64.Vec3{5.7, 64, 0.5})
	require.Len(t, sim.Groups(), 2)

	require.True(t, sim.Link(a, b))
	require.Len(t, sim.Groups(), 1)
	g := a.Group()
	assert.Same(t, g, b.Group())
	assert.Equal(t, 2, g.Len())
	assert.Same(t, a, g.Head())
	assert.Same(t, b, g.Tail())
	assert.Equal(t, "train1", g.Name())

	// The name of the donor is free again.
	c := adopt(t, sim, mgl64.Vec3{30.5, 64, 0.5})
	assert.Equal(t, "train2", c.Group().Name())
}

func TestSplitThenLinkRestoresOrder(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, DefaultProperties(conf), 0, carts(4)...)
	original := ids(g)

	created := g.Split(2)
	require.NotNil(t, created)
	assert.Equal(t, original[:2], ids(g))
	assert.Equal(t, original[2:], ids(created))
	assert.Equal(t, g.Properties(), created.Properties())
	require.Len(t, sim.Groups(), 2)

	require.True(t, sim.Link(g.Tail(), created.Head()))
	merged := g
	if g.Removed() {
		merged = created
	}
	assert.Equal(t, original, ids(merged))
	assert.Len(t, sim.Groups(), 1)
}

func TestSplitBounds(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, DefaultProperties(conf), 0, carts(3)...)

	assert.Same(t, g, g.Split(0))
	assert.Nil(t, g.Split(3))
	assert.Equal(t, 3, g.Len())
}

func TestSplitDiscardsInvalidHalf(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	props := DefaultProperties(conf)
	props.RequirePoweredUnit = true
	g := spawn(t, sim, props, 0, entity.KindPoweredMinecart, entity.KindMinecart)
	tail := g.Tail()

	assert.Nil(t, g.Split(1))
	assert.Equal(t, 1, g.Len())
	assert.Nil(t, tail.group)
	assert.Len(t, sim.Groups(), 1)
}

func TestSplitWhenCartLeftBehind(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, DefaultProperties(conf), 0, carts(3)...)
	g.SetForwardForce(0.2)
	tail := g.Tail()
	tail.Entity().Teleport(mgl64.Vec3{-10.5, 64, 0.5})

	sim.DoFixedTick()

	require.Len(t, sim.Groups(), 2)
	assert.Equal(t, 2, g.Len())
	created := tail.Group()
	assert.NotSame(t, g, created)
	assert.Equal(t, 1, created.Len())

	// Both halves ignore each other for a while.
	for _, m := range g.Members() {
		assert.True(t, m.IgnoringCollision(tail.ID()))
		assert.True(t, tail.IgnoringCollision(m.ID()))
	}
}

func TestCollisionIgnoreWindow(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	a := adopt(t, sim, mgl64.Vec3{0.5, 64, 0.5})
	b := adopt(t, sim, mgl64.Vec3{10.5, 64, 0.5})

	for _, c := range []struct {
		speed float64
		ticks int
	}{
		{speed: 0.5, ticks: 20},
		{speed: 0.0625, ticks: 32},
		{speed: 0.01, ticks: 40},
		{speed: 0, ticks: 40},
	} {
		clear(a.ignore)
		a.Group().ignoreCollisions(b.Group(), c.speed)
		assert.Equal(t, c.ticks, a.ignore[b.ID()], "speed %v", c.speed)
	}

	clear(a.ignore)
	a.IgnoreCollision(b.ID(), 2)
	a.tickIgnores()
	assert.True(t, a.IgnoringCollision(b.ID()))
	a.tickIgnores()
	assert.False(t, a.IgnoringCollision(b.ID()))
}

func TestLinkRejects(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)

	t.Run("too far", func(t *testing.T) {
		a := adopt(t, sim, mgl64.Vec3{0.5, 64, 0.5})
		b := adopt(t, sim, mgl64.Vec3{10.5, 64, 0.5})
		assert.False(t, sim.Link(a, b))
	})
	t.Run("derailed", func(t *testing.T) {
		a := adopt(t, sim, mgl64.Vec3{20.5, 64, 0.5})
		b := adopt(t, sim, mgl64.Vec3{21.5, 64, 3.5})
		require.True(t, b.Derailed())
		assert.False(t, sim.Link(a, b))
	})
	t.Run("middle cart", func(t *testing.T) {
		g, err := sim.Spawn(DefaultProperties(conf), cube.Pos{40, 64, 0}, game.FaceEast, carts(3)...)
		require.NoError(t, err)
		single := adopt(t, sim, mgl64.Vec3{43.9, 64, 0.5})
		assert.False(t, sim.Link(g.Member(1), single))
	})
	t.Run("linking disabled", func(t *testing.T) {
		a := adopt(t, sim, mgl64.Vec3{-20.5, 64, 0.5})
		b := adopt(t, sim, mgl64.Vec3{-19.5, 64, 0.5})
		props := b.Group().Properties()
		props.Linking = false
		b.Group().SetProperties(props)
		assert.False(t, sim.Link(a, b))
	})
	t.Run("cancelled", func(t *testing.T) {
		sim.Handle(cancelLinks{})
		defer sim.Handle(nil)
		a := adopt(t, sim, mgl64.Vec3{-10.5, 64, 0.5})
		b := adopt(t, sim, mgl64.Vec3{-9.5, 64, 0.5})
		assert.False(t, sim.Link(a, b))
		assert.NotSame(t, a.Group(), b.Group())
	})
}

type cancelLinks struct {
	NopHandler
}

func (cancelLinks) HandleLink(ctx *Context, _, _ *Group) {
	ctx.Cancel()
}

func TestConnect(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, DefaultProperties(conf), 0, carts(2)...)
	front := adopt(t, sim, mgl64.Vec3{5.0, 64, 0.5})
	far := adopt(t, sim, mgl64.Vec3{20.5, 64, 0.5})

	assert.False(t, g.Connect(g.Head(), far))
	require.True(t, g.Connect(g.Head(), front))
	assert.Equal(t, 3, g.Len())
	assert.Same(t, front, g.Head())
	assert.Len(t, sim.Groups(), 2)

	assert.Panics(t, func() { g.Connect(far, front) })
}

func TestHeadOnCollisionStopsTrain(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	props := steadyProps(conf)
	props.Linking = false

	moving := spawn(t, sim, props, 0, entity.KindMinecart)
	standing := spawn(t, sim, props, 5, entity.KindMinecart)
	moving.SetForwardForce(0.3)

	for range 30 {
		sim.DoFixedTick()
	}
	assert.Zero(t, moving.AverageForce())
	assert.Less(t, moving.Head().Position().X(), standing.Head().Position().X())
	assert.Len(t, sim.Groups(), 2)
}

func TestNonCollidingTrainsPass(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	props := steadyProps(conf)
	props.Linking = false
	props.Colliding = false

	moving := spawn(t, sim, props, 0, entity.KindMinecart)
	standing := spawn(t, sim, props, 5, entity.KindMinecart)
	moving.SetForwardForce(0.3)

	for range 30 {
		sim.DoFixedTick()
	}
	assert.Greater(t, moving.Head().Position().X(), standing.Head().Position().X())
	assert.InDelta(t, 0.3, moving.AverageForce(), 1e-6)
}

func TestCollisionLinksTrains(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	moving := spawn(t, sim, steadyProps(conf), 0, entity.KindMinecart)
	spawn(t, sim, steadyProps(conf), 5, entity.KindMinecart)
	moving.SetForwardForce(0.3)

	for range 30 {
		sim.DoFixedTick()
	}
	require.Len(t, sim.Groups(), 1)
	assert.Equal(t, 2, sim.Groups()[0].Len())
}

func TestSplitWhenMiddleCartTeleported(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, steadyProps(conf), 0, carts(4)...)
	g.SetForwardForce(0.2)
	members := g.Members()
	moved := members[1]
	moved.Entity().Teleport(mgl64.Vec3{-20.5, 64, 0.5})

	for range 3 {
		sim.DoFixedTick()
	}

	assert.Equal(t, 1, moved.Group().Len())
	assert.NotSame(t, moved.Group(), members[0].Group())
	assert.Same(t, members[2].Group(), members[3].Group())
	assert.NotSame(t, moved.Group(), members[2].Group())
	assert.NotSame(t, members[0].Group(), members[2].Group())

	total := 0
	for _, g := range sim.Groups() {
		total += g.Len()
	}
	assert.Equal(t, 4, total)
	assert.Len(t, sim.Groups(), 3)
}

func TestSplitWhenTailMovedAheadOfHead(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	g := spawn(t, sim, steadyProps(conf), 0, carts(3)...)
	g.SetForwardForce(0.2)
	members := g.Members()
	tail := members[2]
	tail.Entity().Teleport(mgl64.Vec3{40.5, 64, 0.5})

	sim.DoFixedTick()

	require.Len(t, sim.Groups(), 2)
	assert.Equal(t, 1, tail.Group().Len())
	rest := members[0].Group()
	assert.NotSame(t, tail.Group(), rest)
	assert.Equal(t, []uuid.UUID{members[0].ID(), members[1].ID()}, ids(rest))

	// Every cart keeps travelling east.
	for _, m := range members {
		assert.Greater(t, m.Velocity().X(), 0.0)
	}
	sim.DoFixedTick()
	assert.Same(t, members[0], rest.Head())
	assert.Equal(t, game.FaceEast, rest.Head().Heading().Direction)
}

func TestSplitDuringSubStepsRestoresVelocity(t *testing.T) {
	conf := DefaultConfig()
	sim, _ := newTestSim(t, conf)
	props := steadyProps(conf)
	props.SpeedLimit = 1.2
	g := spawn(t, sim, props, 0, carts(3)...)
	g.SetForwardForce(1.2)
	tail := g.Tail()
	tail.Entity().Teleport(mgl64.Vec3{-20.5, 64, 0.5})

	sim.DoFixedTick()

	require.Len(t, sim.Groups(), 2)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 1, tail.Group().Len())
	for _, m := range append(g.Members(), tail) {
		assert.InDelta(t, 1.2, m.Velocity().X(), 1e-6)
	}
	assert.Equal(t, 1.0, g.usf)
	assert.Equal(t, 1.0, tail.Group().usf)
}

func TestEntityCollisionResult(t *testing.T) {
	conf := DefaultConfig()
	sim, w := newTestSim(t, conf)
	props := steadyProps(conf)
	props.Linking = false
	g := spawn(t, sim, props, 0, entity.KindMinecart)
	g.SetForwardForce(0.3)
	cart := g.Head()
	obstacle := entity.New(entity.KindOther, mgl64.Vec3{1.0, 64, 0.5})
	w.AddEntity(obstacle)

	assert.True(t, cart.OnEntityCollision(obstacle))
	assert.Zero(t, g.AverageForce())

	cart.IgnoreCollision(obstacle.ID(), 5)
	assert.False(t, cart.OnEntityCollision(obstacle))
}
