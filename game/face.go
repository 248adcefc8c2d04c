package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Face is one of the eight horizontal headings a cart can face. North is -Z and East is +X, matching the
// block coordinate system of the world.
type Face uint8

const (
	FaceNorth Face = iota
	FaceNorthEast
	FaceEast
	FaceSouthEast
	FaceSouth
	FaceSouthWest
	FaceWest
	FaceNorthWest
)

var faceNames = [...]string{"north", "north_east", "east", "south_east", "south", "south_west", "west", "north_west"}

var faceVecs = [...]mgl64.Vec3{
	{0, 0, -1},
	{1, 0, -1},
	{1, 0, 0},
	{1, 0, 1},
	{0, 0, 1},
	{-1, 0, 1},
	{-1, 0, 0},
	{-1, 0, -1},
}

// Faces returns all eight faces in clockwise order starting at north.
func Faces() []Face {
	return []Face{FaceNorth, FaceNorthEast, FaceEast, FaceSouthEast, FaceSouth, FaceSouthWest, FaceWest, FaceNorthWest}
}

// CardinalFaces returns the four cardinal faces in clockwise order starting at north.
func CardinalFaces() []Face {
	return []Face{FaceNorth, FaceEast, FaceSouth, FaceWest}
}

func (f Face) String() string {
	if int(f) >= len(faceNames) {
		return "unknown"
	}
	return faceNames[f]
}

// Vec returns the block offset of the face. Sub-cardinal faces have a length of sqrt(2).
func (f Face) Vec() mgl64.Vec3 {
	return faceVecs[f&7]
}

// Unit returns the normalised direction vector of the face.
func (f Face) Unit() mgl64.Vec3 {
	if f.SubCardinal() {
		return f.Vec().Mul(math.Sqrt2 / 2)
	}
	return f.Vec()
}

// Offset returns the face as a block position offset.
func (f Face) Offset() cube.Pos {
	v := f.Vec()
	return cube.Pos{int(v[0]), 0, int(v[2])}
}

// Opposite returns the face pointing the other way.
func (f Face) Opposite() Face {
	return (f + 4) & 7
}

// RotateRight rotates the face clockwise by 45 degrees the given amount of times.
func (f Face) RotateRight(steps int) Face {
	return Face((int(f) + steps%8 + 8) & 7)
}

// SubCardinal returns true if the face is one of the four diagonals.
func (f Face) SubCardinal() bool {
	return f&1 == 1
}

// Yaw returns the yaw in degrees the face points at. A yaw of 0 points south, 90 points west.
func (f Face) Yaw() float32 {
	return float32(((int(f) + 4) & 7) * 45)
}

// Cube converts a cardinal face to its block face. The second return value is false for diagonals.
func (f Face) Cube() (cube.Face, bool) {
	switch f {
	case FaceNorth:
		return cube.FaceNorth, true
	case FaceEast:
		return cube.FaceEast, true
	case FaceSouth:
		return cube.FaceSouth, true
	case FaceWest:
		return cube.FaceWest, true
	}
	return 0, false
}

// FaceFromCube converts a horizontal block face. Up and down return false.
func FaceFromCube(f cube.Face) (Face, bool) {
	switch f {
	case cube.FaceNorth:
		return FaceNorth, true
	case cube.FaceEast:
		return FaceEast, true
	case cube.FaceSouth:
		return FaceSouth, true
	case cube.FaceWest:
		return FaceWest, true
	}
	return 0, false
}

// FaceFromYaw returns the face closest to the yaw passed. If subCardinal is false, only the four cardinal
// faces are returned.
func FaceFromYaw(yaw float32, subCardinal bool) Face {
	yaw = math32.Mod(yaw, 360)
	if yaw < 0 {
		yaw += 360
	}
	if subCardinal {
		return Face((int(math32.Round(yaw/45))%8 + 4) & 7)
	}
	return Face(((int(math32.Round(yaw/90))%4)*2 + 4) & 7)
}

// FaceFromVec returns the face closest to the horizontal component of the vector passed. The zero vector
// points south.
func FaceFromVec(v mgl64.Vec3, subCardinal bool) Face {
	return FaceFromYaw(LookAtYaw(v), subCardinal)
}

// FaceYawDifference returns the absolute angle in degrees between two faces, in the range [0, 180].
func FaceYawDifference(a, b Face) int {
	diff := int(a) - int(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > 4 {
		diff = 8 - diff
	}
	return diff * 45
}
