package rail

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/game"
)

// Type is the behaviour class of a rail block.
type Type uint8

const (
	TypeNone Type = iota
	TypeRegular
	// TypeBoost launches carts that pass over it.
	TypeBoost
	// TypeBrake halves the speed of carts every tick and stops slow ones.
	TypeBrake
	// TypeVertical carries carts straight up and down a wall.
	TypeVertical
)

func (t Type) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeBoost:
		return "boost"
	case TypeBrake:
		return "brake"
	case TypeVertical:
		return "vertical"
	}
	return "none"
}

// Shape is the layout of a rail inside its block.
type Shape uint8

const (
	ShapeNorthSouth Shape = iota
	ShapeEastWest
	ShapeAscendingNorth
	ShapeAscendingEast
	ShapeAscendingSouth
	ShapeAscendingWest
	ShapeCurveNorthEast
	ShapeCurveNorthWest
	ShapeCurveSouthEast
	ShapeCurveSouthWest
)

// Piece is a single rail block.
type Piece struct {
	Type  Type
	Shape Shape
}

// Regular returns a regular rail of the shape passed.
func Regular(s Shape) Piece {
	return Piece{Type: TypeRegular, Shape: s}
}

// Vertical returns a vertical rail.
func Vertical() Piece {
	return Piece{Type: TypeVertical}
}

// Ascending returns the face the rail rises towards. The second return value is false for level rails.
func (p Piece) Ascending() (game.Face, bool) {
	switch p.Shape {
	case ShapeAscendingNorth:
		return game.FaceNorth, true
	case ShapeAscendingEast:
		return game.FaceEast, true
	case ShapeAscendingSouth:
		return game.FaceSouth, true
	case ShapeAscendingWest:
		return game.FaceWest, true
	}
	return 0, false
}

// Sloped returns true if the rail rises towards one of its ends.
func (p Piece) Sloped() bool {
	_, ok := p.Ascending()
	return ok && p.Type != TypeVertical
}

// Curved returns true if the rail connects two perpendicular sides.
func (p Piece) Curved() bool {
	return p.Type != TypeVertical && p.Shape >= ShapeCurveNorthEast
}

// Ends returns the two sides of the block the rail connects. Vertical rails have no horizontal ends.
func (p Piece) Ends() (a, b game.Face, ok bool) {
	if p.Type == TypeVertical || p.Type == TypeNone {
		return 0, 0, false
	}
	switch p.Shape {
	case ShapeNorthSouth, ShapeAscendingNorth, ShapeAscendingSouth:
		return game.FaceNorth, game.FaceSouth, true
	case ShapeEastWest, ShapeAscendingEast, ShapeAscendingWest:
		return game.FaceWest, game.FaceEast, true
	case ShapeCurveNorthEast:
		return game.FaceNorth, game.FaceEast, true
	case ShapeCurveNorthWest:
		return game.FaceNorth, game.FaceWest, true
	case ShapeCurveSouthEast:
		return game.FaceSouth, game.FaceEast, true
	case ShapeCurveSouthWest:
		return game.FaceSouth, game.FaceWest, true
	}
	return 0, 0, false
}

// HasEnd returns true if the rail connects to the side passed.
func (p Piece) HasEnd(f game.Face) bool {
	a, b, ok := p.Ends()
	return ok && (a == f || b == f)
}

// EndHeight returns 1 if the end passed is the raised end of a sloped rail, and 0 otherwise.
func (p Piece) EndHeight(f game.Face) int {
	if up, ok := p.Ascending(); ok && up == f {
		return 1
	}
	return 0
}

// OtherEnd returns the end opposite to the end passed.
func (p Piece) OtherEnd(f game.Face) (game.Face, bool) {
	a, b, ok := p.Ends()
	switch {
	case !ok:
		return 0, false
	case a == f:
		return b, true
	case b == f:
		return a, true
	}
	return 0, false
}

// Axis returns the heading layout of the rail.
func (p Piece) Axis() game.RailAxis {
	a, b, ok := p.Ends()
	if !ok {
		return game.RailAxis{}
	}
	if p.Curved() {
		return game.CurveAxis(a, b)
	}
	if up, ok := p.Ascending(); ok {
		return game.StraightAxis(up)
	}
	return game.StraightAxis(b)
}

// Centre returns the point on the rail in the middle of the block at the position passed.
func (p Piece) Centre(pos cube.Pos) mgl64.Vec3 {
	c := mgl64.Vec3{float64(pos[0]) + 0.5, float64(pos[1]), float64(pos[2]) + 0.5}
	if p.Sloped() {
		c[1] += 0.5
	}
	return c
}
