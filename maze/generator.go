package maze

import (
	"math/rand"
	"time"
)

// Cell is the content of one layout cell
type Cell uint8

const (
	Passage Cell = iota // Open ground
	Cover               // Low wall: blocks movement and crouch sight, not upright sight
	Wall                // Tall wall: blocks everything
)

type Point struct {
	X, Y int
}

type Config struct {
	Width, Height int

	// Braiding: 0.0 (tree, dead ends kept) to 1.0 (every dead end gets a loop)
	// Plaza and pillar constraints take precedence
	Braiding float64

	// CoverRatio is the chance that a wall separating two passages is lowered to cover
	CoverRatio float64

	StartPos *Point // Optional (nil = top-left room)
	EndPos   *Point // Optional (nil = bottom-right room)
	Seed     int64  // Optional (0 = time based)
}

// Layout is a generated arena; Cells is indexed [y][x]
type Layout struct {
	Cells        [][]Cell
	Start, End   Point
	SolutionPath []Point // Walkable route Start->End over passages, nil if none
}

// Width returns the number of columns
func (l Layout) Width() int {
	if len(l.Cells) == 0 {
		return 0
	}
	return len(l.Cells[0])
}

// Height returns the number of rows
func (l Layout) Height() int { return len(l.Cells) }

// Count returns how many cells hold c
func (l Layout) Count(c Cell) int {
	n := 0
	for _, row := range l.Cells {
		for _, v := range row {
			if v == c {
				n++
			}
		}
	}
	return n
}

// Generate carves a seeded arena: spanning tree, braided loops, then low cover
func Generate(cfg Config) Layout {
	// Odd dimensions keep rooms on odd coordinates with walls between
	rows := ensureOdd(cfg.Height)
	cols := ensureOdd(cfg.Width)

	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = make([]Cell, cols)
		for x := range cells[y] {
			cells[y][x] = Wall
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := resolvePoint(rows, cols, cfg.StartPos, 1, 1)
	end := resolvePoint(rows, cols, cfg.EndPos, cols-2, rows-2)

	carve(cells, start, rng)
	if cfg.Braiding > 0 {
		braid(cells, cfg.Braiding, rng)
	}
	forceOpen(cells, start)
	forceOpen(cells, end)
	if cfg.CoverRatio > 0 {
		lowerWalls(cells, cfg.CoverRatio, rng)
	}

	return Layout{
		Cells:        cells,
		Start:        start,
		End:          end,
		SolutionPath: solveBFS(cells, start, end),
	}
}

// --- Core Algorithms ---

var (
	orthoDirs = []Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	jumpDirs  = []Point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}
)

// carve runs a recursive backtracker from start, producing a uniform spanning tree of rooms
func carve(cells [][]Cell, start Point, rng *rand.Rand) {
	rows, cols := len(cells), len(cells[0])
	if start.X < 1 || start.X >= cols-1 || start.Y < 1 || start.Y >= rows-1 {
		start = Point{1, 1}
	}
	// Rooms live on odd coordinates
	start.X |= 1
	start.Y |= 1

	stack := []Point{start}
	cells[start.Y][start.X] = Passage

	candidates := make([]Point, 0, 4)
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates = candidates[:0]

		for _, d := range jumpDirs {
			nx, ny := curr.X+d.X, curr.Y+d.Y
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 && cells[ny][nx] == Wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.Intn(len(candidates))]
		cells[curr.Y+d.Y/2][curr.X+d.X/2] = Passage
		next := Point{curr.X + d.X, curr.Y + d.Y}
		cells[next.Y][next.X] = Passage
		stack = append(stack, next)
	}
}

// braid opens a loop at dead ends with the given probability
func braid(cells [][]Cell, probability float64, rng *rand.Rand) {
	rows, cols := len(cells), len(cells[0])

	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			if cells[y][x] != Passage {
				continue
			}

			exits := 0
			for _, d := range orthoDirs {
				if cells[y+d.Y][x+d.X] == Passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			var options []Point
			for _, jd := range jumpDirs {
				nx, ny := x+jd.X, y+jd.Y
				wx, wy := x+jd.X/2, y+jd.Y/2
				if nx < 0 || nx >= cols || ny < 0 || ny >= rows {
					continue
				}
				if cells[ny][nx] == Passage && cells[wy][wx] == Wall && canOpen(cells, wx, wy) {
					options = append(options, Point{wx, wy})
				}
			}
			if len(options) > 0 {
				c := options[rng.Intn(len(options))]
				cells[c.Y][c.X] = Passage
			}
		}
	}
}

// lowerWalls turns connector walls (passage on two opposite sides) into cover
func lowerWalls(cells [][]Cell, ratio float64, rng *rand.Rand) {
	rows, cols := len(cells), len(cells[0])

	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			if cells[y][x] != Wall {
				continue
			}
			horizontal := cells[y][x-1] == Passage && cells[y][x+1] == Passage
			vertical := cells[y-1][x] == Passage && cells[y+1][x] == Passage
			if horizontal == vertical {
				// Neither: not a connector; both: a lone post, keep it tall
				continue
			}
			if rng.Float64() < ratio {
				cells[y][x] = Cover
			}
		}
	}
}

// canOpen checks that opening (x,y) creates no 2x2 plaza and isolates no wall into a pillar
func canOpen(cells [][]Cell, x, y int) bool {
	rows, cols := len(cells), len(cells[0])

	open := func(tx, ty int) bool {
		if tx < 0 || tx >= cols || ty < 0 || ty >= rows {
			return false
		}
		return cells[ty][tx] == Passage
	}

	// Plazas: any 2x2 quadrant around (x,y) already open on its other three cells
	for _, q := range [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		if open(x+q[0], y) && open(x, y+q[1]) && open(x+q[0], y+q[1]) {
			return false
		}
	}

	// Pillars: every adjacent wall must keep another wall neighbor
	for _, d := range orthoDirs {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || nx >= cols || ny < 0 || ny >= rows || cells[ny][nx] == Passage {
			continue
		}
		links := 0
		for _, d2 := range orthoDirs {
			mx, my := nx+d2.X, ny+d2.Y
			if mx == x && my == y {
				continue
			}
			if mx >= 0 && mx < cols && my >= 0 && my < rows && cells[my][mx] != Passage {
				links++
			}
		}
		if links == 0 {
			return false
		}
	}
	return true
}

// --- Helpers ---

func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

func resolvePoint(rows, cols int, p *Point, defX, defY int) Point {
	if p == nil {
		return Point{defX, defY}
	}
	return Point{clamp(p.X, 0, cols-1), clamp(p.Y, 0, rows-1)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// forceOpen clears p and, if it is isolated, one interior neighbor
func forceOpen(cells [][]Cell, p Point) {
	rows, cols := len(cells), len(cells[0])
	cells[p.Y][p.X] = Passage

	for _, d := range orthoDirs {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx >= 0 && nx < cols && ny >= 0 && ny < rows && cells[ny][nx] == Passage {
			return
		}
	}
	for _, d := range orthoDirs {
		nx, ny := p.X+d.X, p.Y+d.Y
		if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 {
			cells[ny][nx] = Passage
			return
		}
	}
}

// solveBFS finds the shortest 4-connected walk over passages
func solveBFS(cells [][]Cell, start, end Point) []Point {
	rows, cols := len(cells), len(cells[0])
	if cells[start.Y][start.X] != Passage || cells[end.Y][end.X] != Passage {
		return nil
	}

	prev := make(map[Point]Point)
	visited := map[Point]bool{start: true}
	queue := []Point{start}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == end {
			var path []Point
			for p := end; p != start; p = prev[p] {
				path = append(path, p)
			}
			path = append(path, start)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for _, d := range orthoDirs {
			next := Point{curr.X + d.X, curr.Y + d.Y}
			if next.X < 0 || next.X >= cols || next.Y < 0 || next.Y >= rows {
				continue
			}
			if cells[next.Y][next.X] == Passage && !visited[next] {
				visited[next] = true
				prev[next] = curr
				queue = append(queue, next)
			}
		}
	}
	return nil
}
