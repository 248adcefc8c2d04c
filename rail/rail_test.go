package rail

import (
	"errors"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/oerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackMap map[cube.Pos]Piece

func (t trackMap) Rail(pos cube.Pos) (Piece, bool) {
	p, ok := t[pos]
	return p, ok
}

// straight lays a straight east-west track from x0 to x1 at y=64, z=0.
func straight(t trackMap, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		t[cube.Pos{x, 64, 0}] = Regular(ShapeEastWest)
	}
}

type mover struct {
	pos, vel mgl64.Vec3
	block    cube.Pos
	heading  game.Heading
}

func (m *mover) Position() mgl64.Vec3 { return m.pos }
func (m *mover) SetPosition(pos mgl64.Vec3) { m.pos = pos }
func (m *mover) Velocity() mgl64.Vec3 { return m.vel }
func (m *mover) SetVelocity(vel mgl64.Vec3) { m.vel = vel }
func (m *mover) RailBlock() cube.Pos { return m.block }
func (m *mover) Heading() game.Heading { return m.heading }
func (m *mover) UpdateSpeedFactor() float64 { return 1 }

func TestPieceEnds(t *testing.T) {
	a, b, ok := Regular(ShapeCurveSouthWest).Ends()
	require.True(t, ok)
	assert.Equal(t, game.FaceSouth, a)
	assert.Equal(t, game.FaceWest, b)

	up, ok := Regular(ShapeAscendingEast).Ascending()
	require.True(t, ok)
	assert.Equal(t, game.FaceEast, up)
	assert.Equal(t, 1, Regular(ShapeAscendingEast).EndHeight(game.FaceEast))
	assert.Equal(t, 0, Regular(ShapeAscendingEast).EndHeight(game.FaceWest))

	_, _, ok = Vertical().Ends()
	assert.False(t, ok)
}

func TestConnectedStraight(t *testing.T) {
	track := trackMap{}
	straight(track, 0, 10)

	assert.True(t, Connected(track, cube.Pos{0, 64, 0}, cube.Pos{3, 64, 0}, 0))
	assert.True(t, Connected(track, cube.Pos{5, 64, 0}, cube.Pos{2, 64, 0}, 0))
	assert.False(t, Connected(track, cube.Pos{0, 64, 0}, cube.Pos{10, 64, 0}, 3))

	assert.True(t, HeadingTo(track, cube.Pos{0, 64, 0}, game.FaceEast, cube.Pos{4, 64, 0}, 0))
	assert.False(t, HeadingTo(track, cube.Pos{4, 64, 0}, game.FaceEast, cube.Pos{0, 64, 0}, 0))
}

func TestConnectedGap(t *testing.T) {
	track := trackMap{}
	straight(track, 0, 3)
	straight(track, 5, 8)
	assert.False(t, Connected(track, cube.Pos{2, 64, 0}, cube.Pos{6, 64, 0}, 0))
}

func TestConnectedCurveAndSlope(t *testing.T) {
	track := trackMap{}
	straight(track, 0, 2)
	// Curve at x=3 turning from the west side to the south side, then down a slope towards the south.
	track[cube.Pos{3, 64, 0}] = Regular(ShapeCurveSouthWest)
	track[cube.Pos{3, 64, 1}] = Regular(ShapeNorthSouth)
	track[cube.Pos{3, 63, 2}] = Regular(ShapeAscendingNorth)
	track[cube.Pos{3, 63, 3}] = Regular(ShapeNorthSouth)

	assert.True(t, Connected(track, cube.Pos{0, 64, 0}, cube.Pos{3, 63, 3}, 0))
	assert.True(t, Connected(track, cube.Pos{3, 63, 3}, cube.Pos{1, 64, 0}, 0))
	assert.True(t, HeadingTo(track, cube.Pos{1, 64, 0}, game.FaceEast, cube.Pos{3, 63, 2}, 0))
}

func TestLocateSnapsToSlope(t *testing.T) {
	track := trackMap{}
	track[cube.Pos{0, 64, 0}] = Regular(ShapeAscendingEast)

	pos, piece, ok := Locate(track, mgl64.Vec3{0.9, 65, 0.5})
	require.True(t, ok)
	assert.Equal(t, cube.Pos{0, 64, 0}, pos)
	assert.True(t, piece.Sloped())

	_, _, ok = Locate(track, mgl64.Vec3{5, 64, 0.5})
	assert.False(t, ok)
}

func TestWalkSpacing(t *testing.T) {
	track := trackMap{}
	straight(track, 0, 10)

	points, err := Walk(track, cube.Pos{0, 64, 0}, game.FaceEast, 4, 1.5)
	require.NoError(t, err)
	require.Len(t, points, 4)
	for i, p := range points {
		assert.InDelta(t, 0.5+1.5*float64(i), p.X(), 1e-9)
		assert.InDelta(t, 64, p.Y(), 1e-9)
		assert.InDelta(t, 0.5, p.Z(), 1e-9)
	}

	_, err = Walk(track, cube.Pos{8, 64, 0}, game.FaceEast, 4, 1.5)
	assert.True(t, errors.Is(err, ErrNoTrack))
}

func TestHorizontalLogicKeepsCartOnRail(t *testing.T) {
	piece := Regular(ShapeEastWest)
	l := DefaultProvider{}.Logic(piece)
	require.IsType(t, LogicHorizontal{}, l)
	assert.False(t, l.VerticalMovement())

	m := &mover{
		pos:     mgl64.Vec3{2.3, 64, 0.7},
		vel:     mgl64.Vec3{0.3, -0.04, 0.4},
		block:   cube.Pos{2, 64, 0},
		heading: game.StraightHeading(game.FaceEast),
	}
	l.PreMove(m)
	assert.InDelta(t, 0.5, m.vel.X(), 1e-9)
	assert.Zero(t, m.vel.Y())
	assert.Zero(t, m.vel.Z())

	l.PostMove(m)
	assert.InDelta(t, 2.3, m.pos.X(), 1e-9)
	assert.InDelta(t, 0.5, m.pos.Z(), 1e-9)
}

func TestSlopedLogicPushesDownhill(t *testing.T) {
	l := DefaultProvider{SlopeForce: 0.0078125}.Logic(Regular(ShapeAscendingEast))
	require.True(t, l.Sloped())

	m := &mover{pos: mgl64.Vec3{0.5, 64.5, 0.5}, block: cube.Pos{0, 64, 0}, heading: game.StraightHeading(game.FaceEast)}
	l.PreMove(m)
	assert.Less(t, m.vel.X(), 0.0)
	assert.Less(t, m.vel.Y(), 0.0)

	m.pos = mgl64.Vec3{0.75, 70, 0.5}
	l.PostMove(m)
	assert.InDelta(t, 64.75, m.pos.Y(), 1e-9)
}

func TestSlopeOnlyOnAscendingRails(t *testing.T) {
	p := DefaultProvider{SlopeForce: 0.0078125}

	slope, ok := p.Logic(Regular(ShapeAscendingEast)).(Slope)
	require.True(t, ok)
	up := slope.Uphill()
	assert.Greater(t, up.X(), 0.0)
	assert.Greater(t, up.Y(), 0.0)
	assert.InDelta(t, 1, up.Len(), 1e-9)

	_, ok = p.Logic(Regular(ShapeEastWest)).(Slope)
	assert.False(t, ok)
	_, ok = p.Logic(Regular(ShapeCurveNorthEast)).(Slope)
	assert.False(t, ok)
}

func TestErrNoTrackIsOomphError(t *testing.T) {
	var oe *oerror.OomphError
	_, err := Walk(trackMap{}, cube.Pos{}, game.FaceEast, 1, 1)
	require.Error(t, err)
	assert.True(t, errors.As(err, &oe))
	assert.True(t, errors.Is(err, ErrNoTrack))
}
