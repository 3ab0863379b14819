package navigation

// HeapItem is an element of Heap
// Better reports strict priority over other; the slot is the item's index in the backing array
type HeapItem[T any] interface {
	comparable
	Better(other T) bool
	HeapSlot() int
	SetHeapSlot(slot int)
}

// Heap is a binary min-heap with mutable priorities
// Items record their own array slot so membership and decrease-key are O(1) / O(log n)
type Heap[T HeapItem[T]] struct {
	items []T
}

// NewHeap creates a heap with preallocated capacity
func NewHeap[T HeapItem[T]](capacity int) *Heap[T] {
	return &Heap[T]{items: make([]T, 0, capacity)}
}

// Len returns the number of items in the heap
func (h *Heap[T]) Len() int {
	return len(h.items)
}

// Reset empties the heap keeping capacity
func (h *Heap[T]) Reset() {
	clear(h.items)
	h.items = h.items[:0]
}

// Add inserts item and sifts it up
func (h *Heap[T]) Add(item T) {
	item.SetHeapSlot(len(h.items))
	h.items = append(h.items, item)
	h.siftUp(item.HeapSlot())
}

// Pop removes and returns the best item
func (h *Heap[T]) Pop() (T, bool) {
	var zero T
	n := len(h.items)
	if n == 0 {
		return zero, false
	}

	first := h.items[0]
	last := h.items[n-1]
	h.items[n-1] = zero
	h.items = h.items[:n-1]

	if n > 1 {
		h.items[0] = last
		last.SetHeapSlot(0)
		h.siftDown(0)
	}
	return first, true
}

// Peek returns the best item without removing it
func (h *Heap[T]) Peek() (T, bool) {
	var zero T
	if len(h.items) == 0 {
		return zero, false
	}
	return h.items[0], true
}

// Contains reports whether the slot recorded on item currently holds item
func (h *Heap[T]) Contains(item T) bool {
	slot := item.HeapSlot()
	if slot < 0 || slot >= len(h.items) {
		return false
	}
	return h.items[slot] == item
}

// UpdatePriority restores order after item's priority improved
// Only sifts up: callers must never use it for a worsened priority
func (h *Heap[T]) UpdatePriority(item T) {
	h.siftUp(item.HeapSlot())
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].Better(h.items[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		best := left
		if right := left + 1; right < n && h.items[right].Better(h.items[left]) {
			best = right
		}
		if !h.items[best].Better(h.items[i]) {
			break
		}
		h.swap(i, best)
		i = best
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].SetHeapSlot(i)
	h.items[j].SetHeapSlot(j)
}
