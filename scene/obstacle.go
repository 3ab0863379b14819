package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// ErrUnknownObstacle is returned for obstacle kinds the scene cannot build
var ErrUnknownObstacle = errors.New("scene: unknown obstacle kind")

// Kind names an obstacle footprint shape
type Kind string

const (
	KindBox  Kind = "box"  // Axis-aligned footprint
	KindWall Kind = "wall" // Segment with thickness and rounded ends
)

// Point is an (x, z) plane coordinate
type Point [2]float64

// IsZero lets yaml omit unset points
func (p Point) IsZero() bool { return p == Point{} }

// Vec2 converts to a plane vector
func (p Point) Vec2() mgl64.Vec2 { return mgl64.Vec2(p) }

// Obstacle is a vertical prism standing on the ground plane
// Rays at or above Top pass over it
type Obstacle struct {
	Kind Kind `yaml:"kind"`

	// Box footprint
	Min Point `yaml:"min,omitempty,flow"`
	Max Point `yaml:"max,omitempty,flow"`

	// Wall centerline and full thickness
	From      Point   `yaml:"from,omitempty,flow"`
	To        Point   `yaml:"to,omitempty,flow"`
	Thickness float64 `yaml:"thickness,omitempty"`

	Top float64 `yaml:"top"`
}

// Box creates an axis-aligned obstacle; corners may be given in any order
func Box(a, b mgl64.Vec2, top float64) Obstacle {
	return Obstacle{
		Kind: KindBox,
		Min:  Point{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y())},
		Max:  Point{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y())},
		Top:  top,
	}
}

// Wall creates a thick segment obstacle
func Wall(from, to mgl64.Vec2, thickness, top float64) Obstacle {
	return Obstacle{
		Kind:      KindWall,
		From:      Point(from),
		To:        Point(to),
		Thickness: thickness,
		Top:       top,
	}
}

// Validate checks geometry for the obstacle kind
func (o Obstacle) Validate() error {
	if !(o.Top > 0) {
		return fmt.Errorf("scene: %s top %v must be positive", o.Kind, o.Top)
	}
	switch o.Kind {
	case KindBox:
		if !(o.Max[0] > o.Min[0]) || !(o.Max[1] > o.Min[1]) {
			return fmt.Errorf("scene: box min %v must be below max %v", o.Min, o.Max)
		}
	case KindWall:
		if o.From == o.To {
			return fmt.Errorf("scene: wall endpoints coincide at %v", o.From)
		}
		if !(o.Thickness > 0) {
			return fmt.Errorf("scene: wall thickness %v must be positive", o.Thickness)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownObstacle, o.Kind)
	}
	return nil
}

// Bounds returns the plane-aligned footprint bounds
func (o Obstacle) Bounds() (lo, hi mgl64.Vec2) {
	if o.Kind == KindWall {
		r := o.Thickness / 2
		lo = mgl64.Vec2{math.Min(o.From[0], o.To[0]) - r, math.Min(o.From[1], o.To[1]) - r}
		hi = mgl64.Vec2{math.Max(o.From[0], o.To[0]) + r, math.Max(o.From[1], o.To[1]) + r}
		return lo, hi
	}
	return o.Min.Vec2(), o.Max.Vec2()
}

// shape builds the chipmunk footprint on body; Y of the plane maps to cp's Y
func (o Obstacle) shape(body *cp.Body) *cp.Shape {
	if o.Kind == KindWall {
		return cp.NewSegment(body,
			cp.Vector{X: o.From[0], Y: o.From[1]},
			cp.Vector{X: o.To[0], Y: o.To[1]},
			o.Thickness/2)
	}
	return cp.NewBox2(body, cp.BB{L: o.Min[0], B: o.Min[1], R: o.Max[0], T: o.Max[1]}, 0)
}
