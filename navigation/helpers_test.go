package navigation

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// testBox is an axis-aligned obstacle footprint on the X/Z plane
type testBox struct {
	minX, minZ, maxX, maxZ float64
	top                    float64
}

// boxField is a slab-test Raycaster over a list of boxes
type boxField []testBox

func (f boxField) Blocked(origin mgl64.Vec3, dir mgl64.Vec2, dist float64) bool {
	ox, oz := origin.X(), origin.Z()
	ex, ez := ox+dir.X()*dist, oz+dir.Y()*dist
	for _, b := range f {
		if b.top <= origin.Y() {
			continue
		}
		if segmentHitsBox(ox, oz, ex, ez, b) {
			return true
		}
	}
	return false
}

func segmentHitsBox(ox, oz, ex, ez float64, b testBox) bool {
	tMin, tMax := 0.0, 1.0
	for _, axis := range [2][4]float64{
		{ox, ex - ox, b.minX, b.maxX},
		{oz, ez - oz, b.minZ, b.maxZ},
	} {
		o, d, lo, hi := axis[0], axis[1], axis[2], axis[3]
		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// pillar returns a square obstacle of half-size r centered at (x, z)
func pillar(x, z, r, top float64) testBox {
	return testBox{minX: x - r, minZ: z - r, maxX: x + r, maxZ: z + r, top: top}
}

func testConfig(size, cell float64, obstacles Raycaster) Config {
	return Config{
		Width:         size,
		Height:        size,
		CellWidth:     cell,
		LowHeight:     0.5,
		HighHeight:    1.5,
		LateralMargin: 0.2,
		Obstacles:     obstacles,
		Workers:       1,
	}
}

func mustBuild(t *testing.T, cfg Config) *Grid {
	t.Helper()
	g, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func at(x, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, 0, z}
}
