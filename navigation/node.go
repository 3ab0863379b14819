package navigation

import (
	"github.com/go-gl/mathgl/mgl64"
)

// GridPos is a cell coordinate, X is column and Y is row
type GridPos struct {
	X, Y int
}

// Node is a graph vertex, immutable after the grid is built
// ID is the flat row-major index (Y*cols + X)
type Node struct {
	ID    int
	Grid  GridPos
	World mgl64.Vec3
}

// --- Per-query search state ---

// searchNode is the scratch record for one node during one query
// Records from a previous query are detected by gen and lazily reset
type searchNode struct {
	id     int
	g, h   float64
	parent int // -1 = none
	slot   int // -1 = not in heap
	gen    uint32
	closed bool
}

func (n *searchNode) fCost() float64 {
	return n.g + n.h
}

// Better orders by f cost, ties go to the node closer to the goal
func (n *searchNode) Better(o *searchNode) bool {
	nf, of := n.fCost(), o.fCost()
	if nf != of {
		return nf < of
	}
	return n.h < o.h
}

func (n *searchNode) HeapSlot() int        { return n.slot }
func (n *searchNode) SetHeapSlot(slot int) { n.slot = slot }

// scratch is the private search state of one query, pooled between queries
type scratch struct {
	nodes []searchNode
	open  *Heap[*searchNode]
	gen   uint32
}

func newScratch(n int) *scratch {
	return &scratch{
		nodes: make([]searchNode, n),
		open:  NewHeap[*searchNode](n),
	}
}

// begin invalidates all records from the previous query
func (s *scratch) begin() {
	s.open.Reset()
	s.gen++
	if s.gen == 0 {
		// Wrapped: stale records could collide with the new generation
		clear(s.nodes)
		s.gen = 1
	}
}

// node returns the record for id, resetting it on first touch in this query
func (s *scratch) node(id int) *searchNode {
	n := &s.nodes[id]
	if n.gen != s.gen {
		*n = searchNode{id: id, parent: -1, slot: -1, gen: s.gen}
	}
	return n
}
