package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/maze"
)

// FromLayout converts a generated layout into a scene file centered on the origin
// Each layout cell becomes one grid cell; runs of equal cells in a row merge into one box
func FromLayout(name string, layout maze.Layout, cellSize, coverTop, wallTop float64) *File {
	cols, rows := layout.Width(), layout.Height()
	width := float64(cols) * cellSize
	height := float64(rows) * cellSize
	x0 := -width / 2
	z0 := -height / 2

	grid := DefaultGridSpec()
	grid.Width = width
	grid.Height = height
	grid.CellWidth = cellSize
	f := &File{Name: name, Grid: grid}

	for y, row := range layout.Cells {
		for x := 0; x < cols; {
			cell := row[x]
			if cell == maze.Passage {
				x++
				continue
			}
			run := x + 1
			for run < cols && row[run] == cell {
				run++
			}

			top := wallTop
			if cell == maze.Cover {
				top = coverTop
			}
			f.Obstacles = append(f.Obstacles, Box(
				mgl64.Vec2{x0 + float64(x)*cellSize, z0 + float64(y)*cellSize},
				mgl64.Vec2{x0 + float64(run)*cellSize, z0 + float64(y+1)*cellSize},
				top,
			))
			x = run
		}
	}
	return f
}

// CellCenter returns the plane position of a layout cell produced by FromLayout
func CellCenter(layout maze.Layout, cellSize float64, p maze.Point) mgl64.Vec2 {
	x0 := -float64(layout.Width()) * cellSize / 2
	z0 := -float64(layout.Height()) * cellSize / 2
	return mgl64.Vec2{
		x0 + (float64(p.X)+0.5)*cellSize,
		z0 + (float64(p.Y)+0.5)*cellSize,
	}
}
