package navigation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/bits"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sightgrid/parameter"
	"github.com/lixenwraith/sightgrid/vmath"
)

var (
	// ErrInvalidConfig wraps every grid configuration failure
	ErrInvalidConfig = errors.New("navigation: invalid grid config")

	// ErrOutOfBounds is returned by strict lookups outside the grid extent
	ErrOutOfBounds = errors.New("navigation: position outside grid")
)

// Raycaster is the obstacle test used while building visibility
// Blocked reports whether a ray from origin along the unit plane direction dir
// hits an obstacle within dist; origin carries the observer height in Y
type Raycaster interface {
	Blocked(origin mgl64.Vec3, dir mgl64.Vec2, dist float64) bool
}

// RaycastFunc adapts a function to Raycaster
type RaycastFunc func(origin mgl64.Vec3, dir mgl64.Vec2, dist float64) bool

// Blocked implements Raycaster
func (f RaycastFunc) Blocked(origin mgl64.Vec3, dir mgl64.Vec2, dist float64) bool {
	return f(origin, dir, dist)
}

// Config describes the navigable area and how visibility is sampled
type Config struct {
	// Origin is the grid center; its Y is the ground height
	Origin mgl64.Vec3

	// Extent along X and Z in world units
	Width, Height float64

	// CellWidth is nominal; the real size is fitted so cells tile the extent exactly
	CellWidth float64

	// Observer heights above ground for crouch and upright visibility
	LowHeight, HighHeight float64

	// LateralMargin is the corridor half-width as a fraction of the smaller cell side
	LateralMargin float64

	// Obstacles is the ray test, nil means open field
	Obstacles Raycaster

	// Workers bounds parallel row evaluation, <=1 builds on the calling goroutine
	Workers int
}

// DefaultConfig returns the parameter defaults with no obstacles
func DefaultConfig() Config {
	return Config{
		Width:         parameter.NavGridWidth,
		Height:        parameter.NavGridHeight,
		CellWidth:     parameter.NavCellWidth,
		LowHeight:     parameter.NavLowHeight,
		HighHeight:    parameter.NavHighHeight,
		LateralMargin: parameter.NavLateralMargin,
		Workers:       parameter.NavBuildWorkers,
	}
}

// Dimensions returns the fitted column and row counts
func (c Config) Dimensions() (cols, rows int) {
	if c.CellWidth <= 0 {
		return 0, 0
	}
	return int(math.Round(c.Width / c.CellWidth)), int(math.Round(c.Height / c.CellWidth))
}

// Validate fails fast on configurations that would produce a degenerate grid
func (c Config) Validate() error {
	switch {
	case !(c.Width > 0) || !(c.Height > 0):
		return fmt.Errorf("%w: extent %vx%v must be positive", ErrInvalidConfig, c.Width, c.Height)
	case !(c.CellWidth > 0):
		return fmt.Errorf("%w: cell width %v must be positive", ErrInvalidConfig, c.CellWidth)
	case c.LowHeight < 0 || c.HighHeight < c.LowHeight:
		return fmt.Errorf("%w: heights low=%v high=%v must satisfy 0 <= low <= high", ErrInvalidConfig, c.LowHeight, c.HighHeight)
	case c.LateralMargin < 0 || c.LateralMargin >= 0.5:
		return fmt.Errorf("%w: lateral margin %v must be in [0, 0.5)", ErrInvalidConfig, c.LateralMargin)
	}
	cols, rows := c.Dimensions()
	if cols < 1 || rows < 1 {
		return fmt.Errorf("%w: cell width %v yields %dx%d cells", ErrInvalidConfig, c.CellWidth, cols, rows)
	}
	return nil
}

// Grid is the node lattice plus crouch and upright visibility relations
// Read-only after Build; safe for concurrent queries
type Grid struct {
	origin        mgl64.Vec3
	width, height float64
	cols, rows    int
	cellW, cellH  float64
	margin        float64
	lowHeight     float64
	highHeight    float64

	nodes []Node

	// Adjacency bitsets, one padded row of rowWords words per node
	rowWords int
	crouch   []uint64
	upright  []uint64

	obstacles Raycaster
}

// Stats summarizes a built grid
type Stats struct {
	Cols         int     `json:"cols"`
	Rows         int     `json:"rows"`
	CellWidth    float64 `json:"cell_width"`
	CellHeight   float64 `json:"cell_height"`
	Nodes        int     `json:"nodes"`
	CrouchEdges  int     `json:"crouch_edges"`
	UprightEdges int     `json:"upright_edges"`
}

// Build places nodes and evaluates visibility for every unordered node pair
// The O(n^2) pass runs before return; ctx cancels it between rows
func Build(ctx context.Context, cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	startT := time.Now()
	g := newGrid(cfg)

	if err := g.evaluate(ctx, cfg.Workers); err != nil {
		return nil, fmt.Errorf("navigation: build: %w", err)
	}
	g.mirror()

	log.Printf("navigation: built %dx%d grid (cell %.3fx%.3f, %d crouch / %d upright edges) in %v",
		g.cols, g.rows, g.cellW, g.cellH, g.EdgeCount(Crouch), g.EdgeCount(Upright), time.Since(startT))
	return g, nil
}

func newGrid(cfg Config) *Grid {
	cols, rows := cfg.Dimensions()
	g := &Grid{
		origin:     cfg.Origin,
		width:      cfg.Width,
		height:     cfg.Height,
		cols:       cols,
		rows:       rows,
		cellW:      cfg.Width / float64(cols),
		cellH:      cfg.Height / float64(rows),
		lowHeight:  cfg.LowHeight,
		highHeight: cfg.HighHeight,
		obstacles:  cfg.Obstacles,
	}
	g.margin = cfg.LateralMargin * math.Min(g.cellW, g.cellH)

	n := cols * rows
	g.nodes = make([]Node, n)
	x0 := cfg.Origin.X() - cfg.Width/2 + g.cellW/2
	z0 := cfg.Origin.Z() - cfg.Height/2 + g.cellH/2
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			id := y*cols + x
			g.nodes[id] = Node{
				ID:    id,
				Grid:  GridPos{X: x, Y: y},
				World: mgl64.Vec3{x0 + float64(x)*g.cellW, cfg.Origin.Y(), z0 + float64(y)*g.cellH},
			}
		}
	}

	g.rowWords = (n + 63) / 64
	g.crouch = make([]uint64, n*g.rowWords)
	g.upright = make([]uint64, n*g.rowWords)
	return g
}

// evaluate fills the upper triangle; each task writes only its own row
func (g *Grid) evaluate(ctx context.Context, workers int) error {
	n := len(g.nodes)
	if workers <= 1 {
		for a := 0; a < n; a++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.evaluateRow(a)
		}
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for a := 0; a < n; a++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g.evaluateRow(a)
			return nil
		})
	}
	return eg.Wait()
}

func (g *Grid) evaluateRow(a int) {
	pa := vmath.Flatten(g.nodes[a].World)
	for b := a + 1; b < len(g.nodes); b++ {
		pb := vmath.Flatten(g.nodes[b].World)
		low, high := g.pairVisibility(pa, pb)
		if low {
			setBit(g.crouch, a*g.rowWords, b)
		}
		if high {
			setBit(g.upright, a*g.rowWords, b)
		}
	}
}

// pairVisibility runs the corridor test at low height, then at high height only if needed
// Low visibility implies upright visibility
func (g *Grid) pairVisibility(pa, pb mgl64.Vec2) (crouch, upright bool) {
	dir, dist := vmath.DirectionTo(pa, pb)
	if dist == 0 || g.obstacles == nil {
		return true, true
	}
	if g.corridorClear(pa, pb, dir, dist, g.lowHeight) {
		return true, true
	}
	return false, g.corridorClear(pa, pb, dir, dist, g.highHeight)
}

// corridorClear casts four rays, one from each side of each endpoint toward the other endpoint
func (g *Grid) corridorClear(pa, pb, dir mgl64.Vec2, dist, height float64) bool {
	y := g.origin.Y() + height
	off := vmath.Perpendicular(dir).Mul(g.margin)
	back := dir.Mul(-1)

	if g.obstacles.Blocked(vmath.Lift(pa.Add(off), y), dir, dist) {
		return false
	}
	if g.obstacles.Blocked(vmath.Lift(pa.Sub(off), y), dir, dist) {
		return false
	}
	if g.obstacles.Blocked(vmath.Lift(pb.Add(off), y), back, dist) {
		return false
	}
	return !g.obstacles.Blocked(vmath.Lift(pb.Sub(off), y), back, dist)
}

// mirror copies the upper triangle into the lower one
func (g *Grid) mirror() {
	for _, set := range [][]uint64{g.crouch, g.upright} {
		for a := range g.nodes {
			row := set[a*g.rowWords : (a+1)*g.rowWords]
			for w, word := range row {
				for word != 0 {
					bit := bits.TrailingZeros64(word)
					word &= word - 1
					if b := w*64 + bit; b > a {
						setBit(set, b*g.rowWords, a)
					}
				}
			}
		}
	}
}

func setBit(set []uint64, rowOff, b int) {
	set[rowOff+b/64] |= 1 << uint(b%64)
}

func (g *Grid) bitset(h HeightClass) []uint64 {
	if h == Crouch {
		return g.crouch
	}
	return g.upright
}

// --- Queries ---

// Cols returns the number of columns (X)
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of rows (Z)
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the fitted cell width and height
func (g *Grid) CellSize() (float64, float64) { return g.cellW, g.cellH }

// Origin returns the grid center
func (g *Grid) Origin() mgl64.Vec3 { return g.origin }

// Extent returns the configured width and height
func (g *Grid) Extent() (float64, float64) { return g.width, g.height }

// NodeCount returns cols*rows
func (g *Grid) NodeCount() int { return len(g.nodes) }

// Node returns the node with the given id
func (g *Grid) Node(id int) *Node { return &g.nodes[id] }

// NodeAtGrid returns the node at a cell coordinate
func (g *Grid) NodeAtGrid(x, y int) (*Node, bool) {
	if x < 0 || x >= g.cols || y < 0 || y >= g.rows {
		return nil, false
	}
	return &g.nodes[y*g.cols+x], true
}

// NearestNode snaps a world position to the closest node
// Positions outside the grid clamp to the nearest edge node
func (g *Grid) NearestNode(pos mgl64.Vec3) *Node {
	first := g.nodes[0].World
	last := g.nodes[len(g.nodes)-1].World

	tx := vmath.InverseLerp(first.X(), last.X(), pos.X())
	tz := vmath.InverseLerp(first.Z(), last.Z(), pos.Z())

	x := vmath.RoundIndex(vmath.Lerp(0, float64(g.cols-1), tx), g.cols)
	y := vmath.RoundIndex(vmath.Lerp(0, float64(g.rows-1), tz), g.rows)
	return &g.nodes[y*g.cols+x]
}

// NodeAt is the strict form of NearestNode
// Positions outside the grid extent return ErrOutOfBounds
func (g *Grid) NodeAt(pos mgl64.Vec3) (*Node, error) {
	if !g.Contains(pos) {
		return nil, fmt.Errorf("%w: (%.3f, %.3f)", ErrOutOfBounds, pos.X(), pos.Z())
	}
	return g.NearestNode(pos), nil
}

// Contains reports whether pos lies within the grid extent on the plane
func (g *Grid) Contains(pos mgl64.Vec3) bool {
	dx := math.Abs(pos.X() - g.origin.X())
	dz := math.Abs(pos.Z() - g.origin.Z())
	return dx <= g.width/2+vmath.Epsilon && dz <= g.height/2+vmath.Epsilon
}

// IsVisible reports the adjacency of two nodes at a height class
func (g *Grid) IsVisible(a, b *Node, h HeightClass) bool {
	return g.visible(a.ID, b.ID, h)
}

func (g *Grid) visible(a, b int, h HeightClass) bool {
	set := g.bitset(h)
	return set[a*g.rowWords+b/64]&(1<<uint(b%64)) != 0
}

// ForEachNeighbor calls fn for every node visible from id at h, in ascending id order
// Iteration stops when fn returns false
func (g *Grid) ForEachNeighbor(id int, h HeightClass, fn func(nb int) bool) {
	set := g.bitset(h)
	row := set[id*g.rowWords : (id+1)*g.rowWords]
	for w, word := range row {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			word &= word - 1
			if !fn(w*64 + bit) {
				return
			}
		}
	}
}

// EdgeCount returns the number of undirected edges at h
func (g *Grid) EdgeCount(h HeightClass) int {
	total := 0
	for _, word := range g.bitset(h) {
		total += bits.OnesCount64(word)
	}
	return total / 2
}

// Stats returns a summary of the grid
func (g *Grid) Stats() Stats {
	return Stats{
		Cols:         g.cols,
		Rows:         g.rows,
		CellWidth:    g.cellW,
		CellHeight:   g.cellH,
		Nodes:        len(g.nodes),
		CrouchEdges:  g.EdgeCount(Crouch),
		UprightEdges: g.EdgeCount(Upright),
	}
}
