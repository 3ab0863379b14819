package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Traverse visits every unit cell crossed by the segment a -> b using supercover DDA
// Cell (x, y) covers [x, x+1) x [y, y+1); callback returns false to stop early
func Traverse(a, b mgl64.Vec2, callback func(x, y int) bool) {
	ix, iy := int(math.Floor(a.X())), int(math.Floor(a.Y()))
	targetX, targetY := int(math.Floor(b.X())), int(math.Floor(b.Y()))

	if !callback(ix, iy) {
		return
	}
	if ix == targetX && iy == targetY {
		return
	}

	dx := b.X() - a.X()
	dy := b.Y() - a.Y()

	stepX, stepY := 1, 1
	if dx < 0 {
		stepX = -1
		dx = -dx
	}
	if dy < 0 {
		stepY = -1
		dy = -dy
	}

	tMaxX, tMaxY := math.Inf(1), math.Inf(1)
	var tDeltaX, tDeltaY float64
	if dx > 0 {
		tDeltaX = 1 / dx
		fx := a.X() - math.Floor(a.X())
		if stepX > 0 {
			tMaxX = (1 - fx) * tDeltaX
		} else {
			tMaxX = fx * tDeltaX
		}
	}
	if dy > 0 {
		tDeltaY = 1 / dy
		fy := a.Y() - math.Floor(a.Y())
		if stepY > 0 {
			tMaxY = (1 - fy) * tDeltaY
		} else {
			tMaxY = fy * tDeltaY
		}
	}

	// Target bounds checked before each step so the walk always terminates
	for ix != targetX || iy != targetY {
		switch {
		case tMaxX < tMaxY:
			if ix != targetX {
				ix += stepX
				tMaxX += tDeltaX
			} else {
				iy += stepY
				tMaxY += tDeltaY
			}
		case tMaxX > tMaxY:
			if iy != targetY {
				iy += stepY
				tMaxY += tDeltaY
			} else {
				ix += stepX
				tMaxX += tDeltaX
			}
		default:
			if ix != targetX {
				ix += stepX
				tMaxX += tDeltaX
			}
			if iy != targetY {
				iy += stepY
				tMaxY += tDeltaY
			}
		}

		if !callback(ix, iy) {
			return
		}
	}
}
