package rail

import (
	"iter"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/game"
	"github.com/oomph-ac/railcart/oerror"
)

// ErrNoTrack is returned when a walk runs off the end of the track.
var ErrNoTrack = oerror.New("no connected track")

// Lookup finds the rail at a block position.
type Lookup interface {
	Rail(pos cube.Pos) (Piece, bool)
}

// Locate returns the rail block a cart at the position passed sits on. Sloped rails directly above or
// below the block are picked up as well, since carts move between heights on them.
func Locate(l Lookup, pos mgl64.Vec3) (cube.Pos, Piece, bool) {
	b := cube.PosFromVec3(pos)
	if p, ok := l.Rail(b); ok {
		return b, p, true
	}
	for _, f := range [...]cube.Face{cube.FaceDown, cube.FaceUp} {
		side := b.Side(f)
		if p, ok := l.Rail(side); ok && p.Sloped() {
			return side, p, true
		}
	}
	return b, Piece{}, false
}

// Next returns the rail connected to the end exit of the rail at pos, along with the end of that rail the
// track enters through.
func Next(l Lookup, pos cube.Pos, piece Piece, exit game.Face) (next cube.Pos, p Piece, entry game.Face, ok bool) {
	if !piece.HasEnd(exit) {
		return cube.Pos{}, Piece{}, 0, false
	}
	entry = exit.Opposite()
	next = pos.Add(exit.Offset())
	next[1] += piece.EndHeight(exit)

	if p, ok := l.Rail(next); ok && p.HasEnd(entry) && p.EndHeight(entry) == 0 {
		return next, p, entry, true
	}
	below := next.Side(cube.FaceDown)
	if p, ok := l.Rail(below); ok && p.HasEnd(entry) && p.EndHeight(entry) == 1 {
		return below, p, entry, true
	}
	return cube.Pos{}, Piece{}, 0, false
}

// Track iterates the rail blocks following the rail at pos when leaving it through exit. The start block
// itself is not yielded. Loops are followed forever, so callers bound the amount of steps taken.
func Track(l Lookup, pos cube.Pos, piece Piece, exit game.Face) iter.Seq[cube.Pos] {
	return func(yield func(cube.Pos) bool) {
		for {
			next, p, entry, ok := Next(l, pos, piece, exit)
			if !ok || !yield(next) {
				return
			}
			if exit, ok = p.OtherEnd(entry); !ok {
				return
			}
			pos, piece = next, p
		}
	}
}

// ExitFor returns the end of the rail a cart travelling in the direction passed leaves through.
func ExitFor(piece Piece, travel game.Face) (game.Face, bool) {
	a, b, ok := piece.Ends()
	if !ok {
		return 0, false
	}
	da, db := game.FaceYawDifference(a, travel), game.FaceYawDifference(b, travel)
	switch {
	case da < db && da <= 90:
		return a, true
	case db <= 90:
		return b, true
	}
	return 0, false
}

// BlockSteps returns the manhattan distance between two blocks.
func BlockSteps(a, b cube.Pos) int {
	d := a.Sub(b)
	return abs(d[0]) + abs(d[1]) + abs(d[2])
}

// DefaultSteps is the amount of rail blocks searched between two blocks when no limit is given.
func DefaultSteps(a, b cube.Pos) int {
	return 1 + 2*BlockSteps(a, b)
}

// HeadingTo returns true if travelling from the rail at from in the direction passed reaches the rail at
// to within maxSteps blocks. A maxSteps of zero uses DefaultSteps.
func HeadingTo(l Lookup, from cube.Pos, travel game.Face, to cube.Pos, maxSteps int) bool {
	if from == to {
		return true
	}
	piece, ok := l.Rail(from)
	if !ok {
		return false
	}
	exit, ok := ExitFor(piece, travel)
	if !ok {
		return false
	}
	return reaches(l, from, piece, exit, to, stepsOrDefault(maxSteps, from, to))
}

// Connected returns true if the rails at a and b are linked by track in either direction, within maxSteps
// blocks. A maxSteps of zero uses DefaultSteps.
func Connected(l Lookup, a, b cube.Pos, maxSteps int) bool {
	if a == b {
		return true
	}
	piece, ok := l.Rail(a)
	if !ok {
		return false
	}
	maxSteps = stepsOrDefault(maxSteps, a, b)
	if piece.Type == TypeVertical {
		other, ok := l.Rail(b)
		return ok && other.Type == TypeVertical && a[0] == b[0] && a[2] == b[2] && abs(a[1]-b[1]) <= maxSteps
	}
	e1, e2, ok := piece.Ends()
	if !ok {
		return false
	}
	return reaches(l, a, piece, e1, b, maxSteps) || reaches(l, a, piece, e2, b, maxSteps)
}

func reaches(l Lookup, from cube.Pos, piece Piece, exit game.Face, to cube.Pos, maxSteps int) bool {
	steps := 0
	for pos := range Track(l, from, piece, exit) {
		if pos == to {
			return true
		}
		if steps++; steps >= maxSteps {
			break
		}
	}
	return false
}

// Walk returns count points spaced along the track, starting at the centre of the rail at start and
// moving in the direction travel.
func Walk(l Lookup, start cube.Pos, travel game.Face, count int, spacing float64) ([]mgl64.Vec3, error) {
	if count <= 0 {
		return nil, nil
	}
	piece, ok := l.Rail(start)
	if !ok {
		return nil, oerror.New("no rail at %v: %v", start, ErrNoTrack)
	}
	exit, ok := ExitFor(piece, travel)
	if !ok {
		return nil, oerror.New("rail at %v does not run %v: %v", start, travel, ErrNoTrack)
	}

	need := spacing * float64(count-1)
	path := []mgl64.Vec3{piece.Centre(start)}
	length := 0.0
	if need > 0 {
		for pos := range Track(l, start, piece, exit) {
			p, _ := l.Rail(pos)
			c := p.Centre(pos)
			length += c.Sub(path[len(path)-1]).Len()
			path = append(path, c)
			if length >= need || pos == start {
				break
			}
		}
	}
	if length < need {
		return nil, oerror.New("track from %v ends after %.2f blocks, %.2f needed: %v", start, length, need, ErrNoTrack)
	}

	points := make([]mgl64.Vec3, 0, count)
	seg, segStart := 0, 0.0
	for i := range count {
		d := spacing * float64(i)
		for seg < len(path)-2 && segStart+path[seg+1].Sub(path[seg]).Len() < d {
			segStart += path[seg+1].Sub(path[seg]).Len()
			seg++
		}
		if len(path) == 1 {
			points = append(points, path[0])
			continue
		}
		a, b := path[seg], path[seg+1]
		segLen := b.Sub(a).Len()
		t := 0.0
		if segLen > 0 {
			t = game.Clamp((d-segStart)/segLen, 0, 1)
		}
		points = append(points, a.Add(b.Sub(a).Mul(t)))
	}
	return points, nil
}

func stepsOrDefault(maxSteps int, a, b cube.Pos) int {
	if maxSteps <= 0 {
		return DefaultSteps(a, b)
	}
	return maxSteps
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
