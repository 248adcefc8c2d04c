package rail

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/game"
)

// Mover is a cart as seen by rail logic.
type Mover interface {
	Position() mgl64.Vec3
	SetPosition(pos mgl64.Vec3)
	Velocity() mgl64.Vec3
	SetVelocity(vel mgl64.Vec3)
	// RailBlock is the position of the rail block the cart is on.
	RailBlock() cube.Pos
	Heading() game.Heading
	// UpdateSpeedFactor is 1/n while a tick is split into n steps.
	UpdateSpeedFactor() float64
}

// Logic describes how a rail block moves a cart. It is resolved whenever the rail a cart is on is looked up
// and cached until the next lookup.
type Logic interface {
	// Direction is the heading layout of the rail.
	Direction() game.RailAxis
	// GravityMultiplier scales the gravity applied before moving.
	GravityMultiplier() float64
	// Sloped returns true if the rail rises towards one of its ends.
	Sloped() bool
	// VerticalMovement returns false if the rail keeps carts at a fixed height.
	VerticalMovement() bool
	// PreMove adjusts the velocity of the cart before it moves.
	PreMove(m Mover)
	// PostMove snaps the cart back onto the rail after it moved.
	PostMove(m Mover)
}

// Slope is implemented by the logic of rails that rise towards one of their ends. Gravity pulls carts on
// these rails along the slope instead of straight down.
type Slope interface {
	Logic
	// Uphill returns the unit vector pointing up the slope.
	Uphill() mgl64.Vec3
}

// Provider resolves the logic of a rail piece.
type Provider interface {
	Logic(p Piece) Logic
}

// DefaultProvider returns the built-in logic for each rail type.
type DefaultProvider struct {
	// SlopeForce is the downhill push applied on sloped rails every tick.
	SlopeForce float64
}

// Logic ...
func (d DefaultProvider) Logic(p Piece) Logic {
	switch {
	case p.Type == TypeNone:
		return LogicNone{}
	case p.Type == TypeVertical:
		return LogicVertical{}
	case p.Sloped():
		return LogicSloped{Piece: p, SlopeForce: d.SlopeForce}
	}
	return LogicHorizontal{Piece: p}
}

// LogicNone is used for derailed carts.
type LogicNone struct{}

func (LogicNone) Direction() game.RailAxis { return game.RailAxis{} }
func (LogicNone) GravityMultiplier() float64 { return 1 }
func (LogicNone) Sloped() bool { return false }
func (LogicNone) VerticalMovement() bool { return true }
func (LogicNone) PreMove(Mover) {}
func (LogicNone) PostMove(Mover) {}

// LogicHorizontal keeps carts on level straight and curved rails.
type LogicHorizontal struct {
	Piece Piece
}

func (l LogicHorizontal) Direction() game.RailAxis { return l.Piece.Axis() }
func (LogicHorizontal) GravityMultiplier() float64 { return 1 }
func (LogicHorizontal) Sloped() bool { return false }
func (LogicHorizontal) VerticalMovement() bool { return false }

// PreMove points the horizontal speed of the cart along the rail.
func (l LogicHorizontal) PreMove(m Mover) {
	dir := l.travelDirection(m)
	m.SetVelocity(alongRail(m.Velocity(), dir))
}

// PostMove centres the cart on the rail.
func (l LogicHorizontal) PostMove(m Mover) {
	pos, block := m.Position(), m.RailBlock()
	centre := l.Piece.Centre(block)
	dir := l.travelDirection(m)

	rel := pos.Sub(centre)
	rel[1] = 0
	snapped := centre.Add(dir.Mul(rel.Dot(dir)))
	snapped[1] = float64(block[1])
	m.SetPosition(snapped)
}

// travelDirection returns the unit vector the cart travels along at its current position. Curves are two
// legs meeting in the middle of the block.
func (l LogicHorizontal) travelDirection(m Mover) mgl64.Vec3 {
	h := m.Heading()
	if !l.Piece.Curved() {
		return l.Piece.Axis().Direction.Unit()
	}
	rel := m.Position().Sub(l.Piece.Centre(m.RailBlock()))
	if rel.Dot(h.From.Unit()) < 0 {
		return h.From.Unit()
	}
	return h.To.Unit()
}

// LogicSloped carries carts up and down ascending rails.
type LogicSloped struct {
	Piece      Piece
	SlopeForce float64
}

func (l LogicSloped) Direction() game.RailAxis { return l.Piece.Axis() }
func (LogicSloped) GravityMultiplier() float64 { return 1 }
func (LogicSloped) Sloped() bool { return true }
func (LogicSloped) VerticalMovement() bool { return true }

// Uphill returns the unit vector pointing up the slope.
func (l LogicSloped) Uphill() mgl64.Vec3 {
	up, _ := l.Piece.Ascending()
	v := up.Vec()
	v[1] = 1
	return v.Normalize()
}

// PreMove points the cart along the slope, keeping its horizontal speed, and pushes it downhill.
func (l LogicSloped) PreMove(m Mover) {
	up, _ := l.Piece.Ascending()
	usf := m.UpdateSpeedFactor()
	horizontal := alongRail(m.Velocity(), up.Unit()).Dot(up.Unit()) - l.SlopeForce*usf*usf
	m.SetVelocity(l.Uphill().Mul(horizontal * math.Sqrt2))
}

// PostMove puts the cart at the height of the slope under it.
func (l LogicSloped) PostMove(m Mover) {
	pos, block := m.Position(), m.RailBlock()
	up, _ := l.Piece.Ascending()
	centre := l.Piece.Centre(block)
	dir := up.Unit()

	rel := pos.Sub(centre)
	rel[1] = 0
	progress := rel.Dot(dir)
	snapped := centre.Add(dir.Mul(progress))
	snapped[1] = float64(block[1]) + game.Clamp(progress+0.5, 0, 1)
	m.SetPosition(snapped)
}

// LogicVertical carries carts along vertical rails.
type LogicVertical struct{}

func (LogicVertical) Direction() game.RailAxis { return game.RailAxis{} }
func (LogicVertical) GravityMultiplier() float64 { return 1 }
func (LogicVertical) Sloped() bool { return false }
func (LogicVertical) VerticalMovement() bool { return true }

// PreMove turns horizontal speed into vertical speed, keeping its direction if the cart was already moving
// vertically.
func (LogicVertical) PreMove(m Mover) {
	v := m.Velocity()
	h := game.HorizontalLen(v)
	y := v[1]
	if math.Abs(y) < h {
		y = math.Copysign(h, y)
	}
	m.SetVelocity(mgl64.Vec3{0, y, 0})
}

// PostMove centres the cart horizontally on the rail.
func (LogicVertical) PostMove(m Mover) {
	pos, block := m.Position(), m.RailBlock()
	m.SetPosition(mgl64.Vec3{float64(block[0]) + 0.5, pos[1], float64(block[2]) + 0.5})
}

// alongRail redirects the horizontal speed of vel along dir, dropping vertical motion. Moving against dir
// keeps the speed negative.
func alongRail(vel, dir mgl64.Vec3) mgl64.Vec3 {
	speed := game.HorizontalLen(vel)
	if vel.Dot(dir) < 0 {
		speed = -speed
	}
	return dir.Mul(speed)
}
