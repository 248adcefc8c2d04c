package game

import "github.com/go-gl/mathgl/mgl64"

// Heading is the direction a cart travels in along with the faces it entered and will leave its current
// rail block through. On straight track From and To equal Direction; on curves Direction is the diagonal
// and From/To are the cardinal entry and exit headings.
type Heading struct {
	Direction Face
	From      Face
	To        Face
}

// StraightHeading returns a heading that enters and leaves in the same direction.
func StraightHeading(f Face) Heading {
	return Heading{Direction: f, From: f, To: f}
}

// RailAxis describes the horizontal layout of a rail block, as far as headings are concerned.
type RailAxis struct {
	// Direction is the direction the rail runs in. Straight rails use either of their two ends, curves use
	// the diagonal running from Ends[0] to Ends[1].
	Direction Face
	// Curve is true if the rail connects two perpendicular ends.
	Curve bool
	// Ends are the two sides of the block the rail connects.
	Ends [2]Face
}

// CurveAxis returns the axis of a curve connecting the two ends passed.
func CurveAxis(a, b Face) RailAxis {
	return RailAxis{
		Direction: FaceFromVec(b.Vec().Sub(a.Vec()), true),
		Curve:     true,
		Ends:      [2]Face{a, b},
	}
}

// StraightAxis returns the axis of a straight rail running along the face passed.
func StraightAxis(f Face) RailAxis {
	return RailAxis{Direction: f, Ends: [2]Face{f.Opposite(), f}}
}

// ComputeHeading returns the heading of a cart with the previous heading passed, moving by movement over a
// rail with the axis passed. Derailed carts take their heading purely from their movement. The result only
// depends on the arguments, so calling it twice without motion in between returns the same heading.
func ComputeHeading(prev Heading, axis RailAxis, derailed bool, movement mgl64.Vec3) Heading {
	moving := HorizontalLen(movement) > 1e-9
	if derailed {
		if !moving {
			return prev
		}
		return Heading{
			Direction: FaceFromVec(movement, true),
			From:      FaceFromVec(movement, false),
			To:        FaceFromVec(movement, false),
		}
	}

	reference := prev.Direction.Yaw()
	if moving {
		reference = LookAtYaw(movement)
	}
	dir := axis.Direction
	if AngleDifference(reference, dir.Yaw()) > 90 {
		dir = dir.Opposite()
	}
	if !axis.Curve {
		return StraightHeading(dir)
	}
	if dir == axis.Direction {
		return Heading{Direction: dir, From: axis.Ends[0].Opposite(), To: axis.Ends[1]}
	}
	return Heading{Direction: dir, From: axis.Ends[1].Opposite(), To: axis.Ends[0]}
}
