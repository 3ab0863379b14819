package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World space is Y-up; the navigable plane is X/Z
// Plane vectors are (x, z) pairs stored in mgl64.Vec2

// Epsilon is the tolerance used for plane comparisons
const Epsilon = 1e-9

// Flatten projects a world position onto the ground plane
func Flatten(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v.X(), v.Z()}
}

// Lift places a plane position at the given height
func Lift(p mgl64.Vec2, height float64) mgl64.Vec3 {
	return mgl64.Vec3{p.X(), height, p.Y()}
}

// PlaneDistance is the distance between two world positions ignoring height
func PlaneDistance(a, b mgl64.Vec3) float64 {
	return Flatten(b).Sub(Flatten(a)).Len()
}

// DirectionTo returns the unit plane direction from a to b and the plane distance
// Coincident points yield a zero direction and zero distance
func DirectionTo(a, b mgl64.Vec2) (mgl64.Vec2, float64) {
	d := b.Sub(a)
	dist := d.Len()
	if dist < Epsilon {
		return mgl64.Vec2{}, 0
	}
	return d.Mul(1 / dist), dist
}

// Perpendicular rotates a plane vector 90 degrees counter-clockwise
func Perpendicular(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v.Y(), v.X()}
}

// InverseLerp returns where v sits between a and b, clamped to [0, 1]
// A degenerate range returns 0
func InverseLerp(a, b, v float64) float64 {
	if math.Abs(b-a) < Epsilon {
		return 0
	}
	return mgl64.Clamp((v-a)/(b-a), 0, 1)
}

// Lerp interpolates between a and b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RoundIndex rounds half away from zero and clamps into [0, n-1]
func RoundIndex(f float64, n int) int {
	i := int(math.Round(f))
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// PolylineLength sums segment lengths of from followed by points
func PolylineLength(from mgl64.Vec2, points []mgl64.Vec2) float64 {
	total := 0.0
	prev := from
	for _, p := range points {
		total += p.Sub(prev).Len()
		prev = p
	}
	return total
}
