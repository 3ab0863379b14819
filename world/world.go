package world

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/navigation"
	"github.com/lixenwraith/sightgrid/scene"
)

// World is one immutable snapshot: obstacles, the grid built over them, and a pathfinder
// Reloads produce a new World rather than mutating an existing one
type World struct {
	File       *scene.File
	Scene      *scene.Scene
	Grid       *navigation.Grid
	Pathfinder *navigation.Pathfinder
}

// Build constructs the scene and evaluates the visibility grid for f
func Build(ctx context.Context, f *scene.File) (*World, error) {
	s, err := f.Scene()
	if err != nil {
		return nil, fmt.Errorf("world: scene %q: %w", f.Name, err)
	}
	grid, err := navigation.Build(ctx, GridConfig(f.Grid, s))
	if err != nil {
		return nil, fmt.Errorf("world: grid %q: %w", f.Name, err)
	}
	return &World{
		File:       f,
		Scene:      s,
		Grid:       grid,
		Pathfinder: navigation.NewPathfinder(grid),
	}, nil
}

// GridConfig maps a scene file's grid section onto a builder config
func GridConfig(spec scene.GridSpec, obstacles navigation.Raycaster) navigation.Config {
	return navigation.Config{
		Origin:        mgl64.Vec3(spec.Origin),
		Width:         spec.Width,
		Height:        spec.Height,
		CellWidth:     spec.CellWidth,
		LowHeight:     spec.LowHeight,
		HighHeight:    spec.HighHeight,
		LateralMargin: spec.LateralMargin,
		Obstacles:     obstacles,
		Workers:       spec.Workers,
	}
}

// Ground lifts a plane point onto the grid's ground height
func (w *World) Ground(p mgl64.Vec2) mgl64.Vec3 {
	return mgl64.Vec3{p.X(), w.Grid.Origin().Y(), p.Y()}
}
