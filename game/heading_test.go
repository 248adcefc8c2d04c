package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceYawRoundTrip(t *testing.T) {
	for _, f := range Faces() {
		require.Equal(t, f, FaceFromYaw(f.Yaw(), true), "face %v", f)
		require.Equal(t, f, FaceFromVec(f.Vec(), true), "face %v", f)
		require.Equal(t, f, f.Opposite().Opposite())
	}
	assert.Equal(t, FaceEast, FaceFromVec(mgl64.Vec3{1, 0, 0.2}, false))
	assert.Equal(t, FaceSouth, FaceFromVec(mgl64.Vec3{0.1, 0, 1}, false))
}

func TestFaceYawDifference(t *testing.T) {
	assert.Equal(t, 0, FaceYawDifference(FaceNorth, FaceNorth))
	assert.Equal(t, 45, FaceYawDifference(FaceNorth, FaceNorthWest))
	assert.Equal(t, 180, FaceYawDifference(FaceEast, FaceWest))
	assert.Equal(t, 135, FaceYawDifference(FaceNorthEast, FaceSouth))
}

func TestComputeHeadingStraight(t *testing.T) {
	axis := StraightAxis(FaceEast)

	h := ComputeHeading(StraightHeading(FaceEast), axis, false, mgl64.Vec3{-0.3, 0, 0})
	assert.Equal(t, StraightHeading(FaceWest), h)

	h = ComputeHeading(h, axis, false, mgl64.Vec3{0.3, 0, 0.01})
	assert.Equal(t, StraightHeading(FaceEast), h)
}

func TestComputeHeadingCurve(t *testing.T) {
	// Connects the north and east sides of the block.
	axis := CurveAxis(FaceNorth, FaceEast)
	require.Equal(t, FaceSouthEast, axis.Direction)

	h := ComputeHeading(StraightHeading(FaceSouth), axis, false, mgl64.Vec3{0.1, 0, 0.2})
	assert.Equal(t, Heading{Direction: FaceSouthEast, From: FaceSouth, To: FaceEast}, h)

	h = ComputeHeading(StraightHeading(FaceWest), axis, false, mgl64.Vec3{-0.2, 0, -0.1})
	assert.Equal(t, Heading{Direction: FaceNorthWest, From: FaceWest, To: FaceNorth}, h)
}

func TestComputeHeadingIdempotent(t *testing.T) {
	axis := CurveAxis(FaceSouth, FaceWest)
	prev := StraightHeading(FaceNorth)
	move := mgl64.Vec3{-0.2, 0, 0.05}

	first := ComputeHeading(prev, axis, false, move)
	second := ComputeHeading(first, axis, false, move)
	assert.Equal(t, first, second)

	// Standing still keeps the heading.
	still := ComputeHeading(first, axis, false, mgl64.Vec3{})
	assert.Equal(t, first, still)
	assert.Equal(t, still, ComputeHeading(still, axis, false, mgl64.Vec3{}))
}

func TestComputeHeadingDerailed(t *testing.T) {
	h := ComputeHeading(StraightHeading(FaceNorth), RailAxis{}, true, mgl64.Vec3{1, 0, 1})
	assert.Equal(t, FaceSouthEast, h.Direction)

	kept := ComputeHeading(h, RailAxis{}, true, mgl64.Vec3{})
	assert.Equal(t, h, kept)
}

func TestIsHeadingTo(t *testing.T) {
	assert.True(t, IsHeadingTo(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.4, 0, 0.1}))
	assert.False(t, IsHeadingTo(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0.4, 0, 0}))
	assert.False(t, IsHeadingTo(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}))
}
