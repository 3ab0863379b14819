package navigation

import (
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/vmath"
)

// Query is one path request; zero values select the unconstrained defaults
type Query struct {
	// World positions, snapped to nodes for search but kept exact for path endpoints
	Start, Goal mgl64.Vec3

	// MaxPathLength abandons nodes whose cost exceeds it, <=0 disables
	MaxPathLength float64

	// MaxDistanceToGoal abandons non-start nodes farther than it from the goal, <=0 disables
	MaxDistanceToGoal float64

	// PreserveEndVisibility abandons nodes without upright visibility to the goal node
	PreserveEndVisibility bool

	Mode NeighborMode

	// Simplify pulls the string on EightConnected paths; ignored in FullReachability
	Simplify bool
}

// Result is the detailed outcome of a query
type Result struct {
	// Waypoints run from the first node after start to the exact goal position
	Waypoints []mgl64.Vec2

	// Cost is the polyline length from the start position through all waypoints
	Cost float64

	// Expanded is the number of nodes moved to the closed set
	Expanded int

	Found bool
}

// Pathfinder runs constrained A* over a built grid
// Search state is per query, so one Pathfinder serves concurrent callers
type Pathfinder struct {
	grid *Grid
	pool sync.Pool
}

// NewPathfinder creates a pathfinder bound to grid
func NewPathfinder(grid *Grid) *Pathfinder {
	p := &Pathfinder{grid: grid}
	p.pool.New = func() any {
		return newScratch(grid.NodeCount())
	}
	return p
}

// Grid returns the grid the pathfinder searches
func (p *Pathfinder) Grid() *Grid {
	return p.grid
}

// FindPath returns the waypoint sequence for q, empty when no path satisfies the constraints
func (p *Pathfinder) FindPath(q Query) []mgl64.Vec2 {
	return p.Find(q).Waypoints
}

// Find runs the search and reports cost and effort alongside the waypoints
func (p *Pathfinder) Find(q Query) Result {
	g := p.grid
	startID := g.NearestNode(q.Start).ID
	goalID := g.NearestNode(q.Goal).ID
	startPos := vmath.Flatten(q.Start)
	goalPos := vmath.Flatten(q.Goal)

	// Endpoint nodes are measured from the exact query positions
	pos := func(id int) mgl64.Vec2 {
		switch id {
		case startID:
			return startPos
		case goalID:
			return goalPos
		}
		return vmath.Flatten(g.nodes[id].World)
	}

	s := p.pool.Get().(*scratch)
	defer p.pool.Put(s)
	s.begin()

	start := s.node(startID)
	start.g = 0
	start.h = startPos.Sub(goalPos).Len()
	s.open.Add(start)

	expanded := 0
	for s.open.Len() > 0 {
		cur, _ := s.open.Pop()

		if q.MaxPathLength > 0 && cur.g > q.MaxPathLength {
			cur.closed = true
			continue
		}
		if q.MaxDistanceToGoal > 0 && cur.id != startID && cur.h > q.MaxDistanceToGoal {
			cur.closed = true
			continue
		}
		if q.PreserveEndVisibility && cur.id != goalID && !g.visible(cur.id, goalID, Upright) {
			cur.closed = true
			continue
		}

		if cur.id == goalID {
			simplify := q.Simplify && q.Mode == EightConnected
			waypoints := p.reconstruct(s, startID, goalID, goalPos, simplify)
			return Result{
				Waypoints: waypoints,
				Cost:      vmath.PolylineLength(startPos, waypoints),
				Expanded:  expanded,
				Found:     true,
			}
		}

		cur.closed = true
		expanded++
		curPos := pos(cur.id)

		p.forEachNeighbor(cur.id, q.Mode, func(nbID int) {
			nb := s.node(nbID)
			if nb.closed {
				return
			}
			nbPos := pos(nbID)
			tentative := cur.g + curPos.Sub(nbPos).Len()

			inOpen := s.open.Contains(nb)
			if inOpen && tentative >= nb.g {
				return
			}
			nb.g = tentative
			nb.h = nbPos.Sub(goalPos).Len()
			nb.parent = cur.id
			if inOpen {
				s.open.UpdatePriority(nb)
			} else {
				s.open.Add(nb)
			}
		})
	}

	return Result{Expanded: expanded}
}

func (p *Pathfinder) forEachNeighbor(id int, mode NeighborMode, fn func(nb int)) {
	g := p.grid
	if mode == EightConnected {
		n := &g.nodes[id]
		for _, d := range DirVectors {
			nb, ok := g.NodeAtGrid(n.Grid.X+d[0], n.Grid.Y+d[1])
			if ok && g.visible(id, nb.ID, Crouch) {
				fn(nb.ID)
			}
		}
		return
	}
	g.ForEachNeighbor(id, Crouch, func(nb int) bool {
		fn(nb)
		return true
	})
}

// reconstruct walks parents from goal to start, excluding start, and reverses
func (p *Pathfinder) reconstruct(s *scratch, startID, goalID int, goalPos mgl64.Vec2, simplify bool) []mgl64.Vec2 {
	if startID == goalID {
		return []mgl64.Vec2{goalPos}
	}
	if simplify {
		p.pullString(s, startID, goalID)
	}

	var path []mgl64.Vec2
	for id := goalID; id != startID && id >= 0; id = s.nodes[id].parent {
		if id == goalID {
			path = append(path, goalPos)
			continue
		}
		path = append(path, vmath.Flatten(p.grid.nodes[id].World))
	}
	slices.Reverse(path)
	return path
}

// pullString splices out waypoints whose predecessor and successor are crouch-visible
// to each other, rewriting parent links in place
func (p *Pathfinder) pullString(s *scratch, startID, goalID int) {
	lastKept := goalID
	cand := s.nodes[goalID].parent
	for cand != startID && cand >= 0 {
		next := s.nodes[cand].parent
		if next >= 0 && p.grid.visible(lastKept, next, Crouch) {
			s.nodes[lastKept].parent = next
		} else {
			lastKept = cand
		}
		cand = s.nodes[lastKept].parent
	}
}
