package game

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

// WrapYawDelta wraps an angle delta into [-180, 180].
func WrapYawDelta(delta float32) float32 {
	delta = math32.Mod(delta, 360)
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return delta
}

// AngleDifference returns the absolute difference between two angles in degrees, in the range [0, 180].
func AngleDifference(a, b float32) float32 {
	return math32.Abs(WrapYawDelta(a - b))
}

// LookAtYaw returns the yaw in degrees of the horizontal part of the vector passed.
func LookAtYaw(v mgl64.Vec3) float32 {
	yaw := float32(mgl64.RadToDeg(math.Atan2(-v[0], v[2])))
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

// LookAtPitch returns the pitch in degrees of the vector passed. Moving upwards gives a negative pitch.
func LookAtPitch(v mgl64.Vec3) float32 {
	return float32(mgl64.RadToDeg(-math.Atan2(v[1], math.Hypot(v[0], v[2]))))
}

// FixNaN returns def if v is NaN or infinite.
func FixNaN(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// FixNaNVec replaces every NaN or infinite component of the vector with zero.
func FixNaNVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{FixNaN(v[0], 0), FixNaN(v[1], 0), FixNaN(v[2], 0)}
}

// Clamp clamps v into [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// ClampAbs clamps v into [-limit, limit].
func ClampAbs(v, limit float64) float64 {
	return Clamp(v, -limit, limit)
}

// HorizontalLen returns the length of the X and Z components of the vector.
func HorizontalLen(v mgl64.Vec3) float64 {
	return math.Hypot(v[0], v[2])
}

// HorizontalDistSqr returns the squared horizontal distance between two points.
func HorizontalDistSqr(a, b mgl64.Vec3) float64 {
	dx, dz := a[0]-b[0], a[2]-b[2]
	return dx*dx + dz*dz
}

// IsHeadingTo returns true if moving along velocity brings you closer to a point at the offset passed,
// within a 45 degree cone.
func IsHeadingTo(offset, velocity mgl64.Vec3) bool {
	if HorizontalLen(velocity) < 1e-6 || HorizontalLen(offset) < 1e-6 {
		return false
	}
	return AngleDifference(LookAtYaw(offset), LookAtYaw(velocity)) < 45
}
