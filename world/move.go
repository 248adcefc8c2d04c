package world

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/railcart/entity"
)

type nearbyBlock struct {
	pos cube.Pos
	box cube.BBox
}

// Move moves the entity passed by delta, stopping at solid blocks in resident chunks. The Y axis is
// resolved first, followed by X and Z. collide is called for every block face the entity runs into;
// returning false lets the entity pass through that block. The displacement actually travelled is returned.
func (w *World) Move(e *entity.Entity, delta mgl64.Vec3, collide func(pos cube.Pos, face cube.Face) bool) mgl64.Vec3 {
	start := e.Position()
	bb := e.BBoxAt(start)
	nearby := w.nearbySolids(bb.Extend(delta))

	dy := clipAxis(nearby, bb, delta[1], 1, collide)
	bb = bb.Translate(mgl64.Vec3{0, dy})
	dx := clipAxis(nearby, bb, delta[0], 0, collide)
	bb = bb.Translate(mgl64.Vec3{dx})
	dz := clipAxis(nearby, bb, delta[2], 2, collide)

	moved := mgl64.Vec3{dx, dy, dz}
	e.SetPosition(start.Add(moved))
	return moved
}

// nearbySolids returns the boxes of all resident solid blocks intersecting the box passed.
func (w *World) nearbySolids(box cube.BBox) []nearbyBlock {
	w.RLock()
	defer w.RUnlock()

	grown := box.Grow(0.5)
	min, max := grown.Min(), grown.Max()
	var out []nearbyBlock
	for y := int(math.Floor(min[1])); y <= int(math.Ceil(max[1])); y++ {
		for x := int(math.Floor(min[0])); x <= int(math.Ceil(max[0])); x++ {
			for z := int(math.Floor(min[2])); z <= int(math.Ceil(max[2])); z++ {
				pos := cube.Pos{x, y, z}
				if !w.solid(pos) {
					continue
				}
				out = append(out, nearbyBlock{pos: pos, box: cube.Box(0, 0, 0, 1, 1, 1).Translate(pos.Vec3())})
			}
		}
	}
	return out
}

// clipAxis limits d, the movement along one axis, so that bb does not move into any of the blocks. Blocks
// for which collide returns false are ignored.
func clipAxis(nearby []nearbyBlock, bb cube.BBox, d float64, axis int, collide func(cube.Pos, cube.Face) bool) float64 {
	if d == 0 {
		return 0
	}
	face := hitFace(axis, d)
	for _, b := range nearby {
		var clipped float64
		switch axis {
		case 0:
			clipped = bb.XOffset(b.box, d)
		case 1:
			clipped = bb.YOffset(b.box, d)
		default:
			clipped = bb.ZOffset(b.box, d)
		}
		if clipped == d {
			continue
		}
		if collide != nil && !collide(b.pos, face) {
			continue
		}
		d = clipped
	}
	return d
}

// hitFace returns the face of a block hit when moving along the axis in the direction of d.
func hitFace(axis int, d float64) cube.Face {
	switch axis {
	case 0:
		if d > 0 {
			return cube.FaceWest
		}
		return cube.FaceEast
	case 1:
		if d > 0 {
			return cube.FaceDown
		}
		return cube.FaceUp
	}
	if d > 0 {
		return cube.FaceNorth
	}
	return cube.FaceSouth
}
