package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lixenwraith/sightgrid/maze"
	"github.com/lixenwraith/sightgrid/parameter"
	"github.com/lixenwraith/sightgrid/scene"
)

var (
	widthFlag       = flag.Int("width", 21, "Layout columns (odd)")
	heightFlag      = flag.Int("height", 15, "Layout rows (odd)")
	braidFlag       = flag.Float64("braid", 0.2, "Braiding factor [0.0 - 1.0]")
	coverFlag       = flag.Float64("cover", 0.3, "Chance a connector wall becomes low cover [0.0 - 1.0]")
	seedFlag        = flag.Int64("seed", 0, "Random seed (0 = time based)")
	cellFlag        = flag.Float64("cell", 1.0, "World size of one layout cell")
	nameFlag        = flag.String("name", "generated", "Scene name")
	outFlag         = flag.String("out", "scene.yaml", "Output YAML path")
	interactiveFlag = flag.Bool("i", false, "Prompt for settings instead of using flags")
)

func main() {
	flag.Parse()

	cfg := maze.Config{
		Width:      *widthFlag,
		Height:     *heightFlag,
		Braiding:   clampUnit(*braidFlag),
		CoverRatio: clampUnit(*coverFlag),
		Seed:       *seedFlag,
	}
	cell := *cellFlag

	if *interactiveFlag {
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("=== SCENE GENERATOR ===")
		cfg.Width = getInt(reader, fmt.Sprintf("Width [odd] (default %d): ", cfg.Width), cfg.Width)
		cfg.Height = getInt(reader, fmt.Sprintf("Height [odd] (default %d): ", cfg.Height), cfg.Height)
		cfg.Braiding = getFloat(reader, fmt.Sprintf("Braiding [0.0 - 1.0] (default %.2f): ", cfg.Braiding), cfg.Braiding)
		cfg.CoverRatio = getFloat(reader, fmt.Sprintf("Cover ratio [0.0 - 1.0] (default %.2f): ", cfg.CoverRatio), cfg.CoverRatio)
	}
	if cell <= 0 {
		fmt.Fprintln(os.Stderr, "scene-gen: -cell must be positive")
		os.Exit(2)
	}

	startT := time.Now()
	layout := maze.Generate(cfg)
	f := scene.FromLayout(*nameFlag, layout, cell, parameter.SceneCoverTop, parameter.SceneWallTop)

	fmt.Printf("Generated %dx%d layout in %v: %d obstacles, %d cover cells\n",
		layout.Width(), layout.Height(), time.Since(startT), len(f.Obstacles), layout.Count(maze.Cover))
	if layout.SolutionPath != nil {
		fmt.Printf("Solution path: %d steps\n", len(layout.SolutionPath))
	} else {
		fmt.Println("Status: unsolvable (isolated start/end)")
	}
	fmt.Print(render(layout))

	if err := f.Save(*outFlag); err != nil {
		fmt.Fprintf(os.Stderr, "scene-gen: %v\n", err)
		os.Exit(1)
	}
	start := scene.CellCenter(layout, cell, layout.Start)
	end := scene.CellCenter(layout, cell, layout.End)
	fmt.Printf("Wrote %s (start %.2f,%.2f  end %.2f,%.2f)\n", *outFlag, start.X(), start.Y(), end.X(), end.Y())
}

// render draws the layout with the solution path marked
func render(l maze.Layout) string {
	onPath := make(map[maze.Point]bool, len(l.SolutionPath))
	for _, p := range l.SolutionPath {
		onPath[p] = true
	}

	var b strings.Builder
	for y, row := range l.Cells {
		for x, cell := range row {
			p := maze.Point{X: x, Y: y}
			switch {
			case p == l.Start:
				b.WriteRune('S')
			case p == l.End:
				b.WriteRune('E')
			case cell == maze.Wall:
				b.WriteRune('█')
			case cell == maze.Cover:
				b.WriteRune('▄')
			case onPath[p]:
				b.WriteRune('•')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// --- Input Helpers ---

func getInt(r *bufio.Reader, prompt string, def int) int {
	fmt.Print(prompt)
	s, _ := r.ReadString('\n')
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func getFloat(r *bufio.Reader, prompt string, def float64) float64 {
	fmt.Print(prompt)
	s, _ := r.ReadString('\n')
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return clampUnit(v)
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
