package scene

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Scene is a static obstacle set answering ray and point queries
// cp.Space locks itself during queries, so each goroutine borrows its own copy from a pool
type Scene struct {
	name      string
	obstacles []Obstacle
	spaces    sync.Pool
}

// New validates obstacles and creates a scene
func New(name string, obstacles []Obstacle) (*Scene, error) {
	for i, o := range obstacles {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("obstacle %d: %w", i, err)
		}
	}

	s := &Scene{
		name:      name,
		obstacles: append([]Obstacle(nil), obstacles...),
	}
	s.spaces.New = func() any {
		return s.buildSpace()
	}
	return s, nil
}

// Name returns the scene name
func (s *Scene) Name() string { return s.name }

// Obstacles returns the obstacle list; callers must not modify it
func (s *Scene) Obstacles() []Obstacle { return s.obstacles }

func (s *Scene) buildSpace() *cp.Space {
	space := cp.NewSpace()
	for i := range s.obstacles {
		shape := s.obstacles[i].shape(space.StaticBody)
		shape.UserData = &s.obstacles[i]
		space.AddShape(shape)
	}
	return space
}

// rayHit collects the outcome of one segment query
type rayHit struct {
	height float64
	hit    bool
}

// Blocked reports whether any obstacle taller than origin's height intersects the ray
// A ray starting inside an obstacle counts as blocked
func (s *Scene) Blocked(origin mgl64.Vec3, dir mgl64.Vec2, dist float64) bool {
	if len(s.obstacles) == 0 {
		return false
	}

	start := cp.Vector{X: origin.X(), Y: origin.Z()}
	end := cp.Vector{X: origin.X() + dir.X()*dist, Y: origin.Z() + dir.Y()*dist}

	space := s.spaces.Get().(*cp.Space)
	defer s.spaces.Put(space)

	probe := rayHit{height: origin.Y()}
	space.SegmentQuery(start, end, 0, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _, _ cp.Vector, _ float64, data interface{}) {
		r := data.(*rayHit)
		if o := shape.UserData.(*Obstacle); o.Top > r.height {
			r.hit = true
		}
	}, &probe)
	return probe.hit
}

// HeightAt returns the tallest obstacle top covering p, 0 on open ground
func (s *Scene) HeightAt(p mgl64.Vec2) float64 {
	if len(s.obstacles) == 0 {
		return 0
	}

	at := cp.Vector{X: p.X(), Y: p.Y()}
	space := s.spaces.Get().(*cp.Space)
	defer s.spaces.Put(space)

	top := 0.0
	space.BBQuery(cp.NewBBForCircle(at, 0), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
		if shape.PointQuery(at).Distance > 0 {
			return
		}
		if o := shape.UserData.(*Obstacle); o.Top > top {
			top = o.Top
		}
	}, nil)
	return top
}
